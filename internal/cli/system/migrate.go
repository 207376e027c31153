package system

import (
	"fmt"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/migration"
)

// migratable is implemented by the SQL storage providers.
type migratable interface {
	Migrations() (*migration.Runner, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(migratable)
	if !ok {
		fmt.Fprintln(ctx.Stdout(), "This storage backend has no schema migrations.")
		return nil
	}
	runner, err := store.Migrations()
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Fprintln(ctx.Stdout(), msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Stdout(), "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Stdout(), "\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
