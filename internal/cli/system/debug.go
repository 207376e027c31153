package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/config"
	"github.com/julianstephens/studymon/internal/lock"
	"github.com/julianstephens/studymon/internal/logger"
	"github.com/julianstephens/studymon/internal/storage"
)

type DebugCmd struct {
	Paths DebugPathsCmd `cmd:"" help:"Show storage, log and lock paths."`
	Dump  DebugDumpCmd  `cmd:"" help:"Dump a raw stored record."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"storage": ctx.Store.GetConfigPath(),
		"config":  config.FilePath(ctx.ConfigDir),
		"log":     logger.FilePath(ctx.ConfigDir),
		"lock":    lock.Path(ctx.ConfigDir),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.Stdout(), string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Record string `arg:"" enum:"subjects,todayTasks" help:"Record to dump (subjects|todayTasks)."`
}

// Run prints the record exactly as stored, indented when it is valid JSON.
func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Store.GetRecord(cmd.Record)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("record %q has not been written yet", cmd.Record)
		}
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Fprintf(ctx.Stdout(), "%s\n", data)
		return fmt.Errorf("record %q is not valid JSON: %w", cmd.Record, err)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.Stdout(), string(pretty))
	return nil
}
