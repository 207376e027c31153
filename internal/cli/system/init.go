package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/storage"
	"github.com/julianstephens/studymon/internal/storage/postgres"
	"github.com/julianstephens/studymon/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Discard existing data before initialization."`
	Source string `help:"Storage path or connection string to copy subjects and today tasks from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	if c.Force {
		if c.Source != "" && c.Source == ctx.Store.GetConfigPath() {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", c.Source)
		}
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized studymon storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Fprintf(out, "Copying data from: %s\n", c.Source)
		if err := c.copyRecords(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Fprintln(out, "Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		path := store.GetConfigPath()
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("failed to access existing database: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Fprintf(ctx.Stdout(), "Deleted existing database at: %s\n", path)
	case *storage.JSONStore:
		if err := store.Reset(); err != nil {
			return fmt.Errorf("failed to delete existing records: %w", err)
		}
		fmt.Fprintf(ctx.Stdout(), "Deleted existing records in: %s\n", store.GetConfigPath())
	case *postgres.Store:
		return errors.New("--force is not supported for PostgreSQL; drop the studymon schema manually")
	}
	return nil
}

// copyRecords copies the raw records so that a malformed source record is
// carried over as-is rather than silently emptied.
func (c *InitCmd) copyRecords(ctx *cli.Context) error {
	value, err := cli.ResolveConfigValue(c.Source)
	if err != nil {
		return err
	}
	source, err := cli.OpenProvider(value)
	if err != nil {
		return err
	}
	defer source.Close()
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}

	for _, key := range []string{constants.RecordSubjects, constants.RecordTodayTasks} {
		data, err := source.GetRecord(key)
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				fmt.Fprintf(ctx.Stdout(), "  %s: not present in source, skipped\n", key)
				continue
			}
			return err
		}
		if err := ctx.Store.PutRecord(key, data); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stdout(), "  %s: copied (%d bytes)\n", key, len(data))
	}
	return nil
}
