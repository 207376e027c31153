package main

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/cli/backups"
	"github.com/julianstephens/studymon/internal/cli/subjects"
	"github.com/julianstephens/studymon/internal/cli/system"
	"github.com/julianstephens/studymon/internal/cli/tasks"
	"github.com/julianstephens/studymon/internal/cli/today"
	"github.com/julianstephens/studymon/internal/config"
	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/logger"

	apperrors "github.com/julianstephens/studymon/internal/errors"
)

type CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage location: SQLite file (.db), JSON record directory, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string." type:"string" env:"STUDYMON_CONFIG" default:"~/.config/studymon/studymon.db"`
	Debug   bool   `help:"Log debug output to stderr." env:"STUDYMON_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize studymon storage."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check subjects and today's plan for inconsistencies."`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`

	Subject struct {
		Add    subjects.SubjectAddCmd    `cmd:"" help:"Add a subject."`
		Delete subjects.SubjectDeleteCmd `cmd:"" help:"Delete a subject and its tasks."`
		List   subjects.SubjectListCmd   `cmd:"" help:"List subjects." default:"1"`
	} `cmd:"" help:"Manage subjects."`
	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a task to a subject category."`
		Toggle tasks.TaskToggleCmd `cmd:"" help:"Toggle a task's completion."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete a task."`
		List   tasks.TaskListCmd   `cmd:"" help:"List a subject's tasks."`
	} `cmd:"" help:"Manage subject tasks."`
	Today struct {
		List   today.TodayListCmd   `cmd:"" help:"Show today's plan." default:"1"`
		Add    today.TodayAddCmd    `cmd:"" help:"Add a task to today's plan."`
		Toggle today.TodayToggleCmd `cmd:"" help:"Toggle a today task and its source task."`
		Delete today.TodayDeleteCmd `cmd:"" help:"Remove a task from today's plan."`
		Pick   today.TodayPickCmd   `cmd:"" help:"Print a task's transfer payload."`
		Drop   today.TodayDropCmd   `cmd:"" help:"Add a picked-up task to today's plan."`
	} `cmd:"" help:"Manage today's plan."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage the OS keyring connection string."`
}

// app holds what differs between a real invocation and a test.
type app struct {
	out        io.Writer
	in         io.Reader
	configFile string
}

func main() {
	if err := config.LoadDotEnv(config.DefaultDir()); err != nil {
		apperrors.Fatal(err)
	}

	a := app{
		out:        os.Stdout,
		in:         os.Stdin,
		configFile: config.FilePath(config.DefaultDir()),
	}
	apperrors.Fatal(a.run(os.Args[1:]))
}

func (a app) run(args []string) error {
	var c CLI
	parser, err := kong.New(&c,
		kong.Name(constants.AppName),
		kong.Description("Study task dashboard: subjects, tasks and a daily plan"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.JSONC, a.configFile),
		kong.Vars{"version": constants.Version},
		kong.Writers(a.out, os.Stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	command := strings.Fields(ctx.Command())[0]

	value := c.Config
	if connStr := os.Getenv(constants.EnvDBConnection); connStr != "" && value == constants.DefaultConfigPath {
		value = connStr
	}

	configDir := config.Dir(value)
	if err := logger.Init(logger.Config{Debug: c.Debug, ConfigDir: configDir}); err != nil {
		return err
	}

	appCtx := &cli.Context{ConfigDir: configDir, Out: a.out, In: a.in}
	defer func() {
		if err := appCtx.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}()

	// Keyring commands manage the secret itself and need no storage
	if command != "keyring" {
		resolved, err := cli.ResolveConfigValue(value)
		if err != nil {
			return err
		}
		store, err := cli.OpenProvider(resolved)
		if err != nil {
			return err
		}
		appCtx.Store = store

		// init creates the storage and doctor reports load failures itself
		if command != "init" && command != "doctor" {
			if err := store.Load(); err != nil {
				return err
			}
		}
	}

	return ctx.Run(appCtx)
}
