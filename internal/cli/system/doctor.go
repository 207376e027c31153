package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/dashboard"
	"github.com/julianstephens/studymon/internal/lock"
	"github.com/julianstephens/studymon/internal/logger"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/storage"
	"github.com/julianstephens/studymon/internal/validation"
)

type DoctorCmd struct{}

type doctorCheck struct {
	name string
	// warnOnly checks never fail the run
	warnOnly   bool
	needsStore bool
	run        func(ctx *cli.Context) error
}

var doctorChecks = []doctorCheck{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrationsComplete},
	{name: "Records readable", needsStore: true, run: checkRecordsReadable},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data validation", needsStore: true, run: checkValidation},
	{name: "Instance lock", warnOnly: true, run: checkLock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	storeReachable := true

	if err := checkStoreReachable(ctx); err != nil {
		fail(out, "Storage reachable", err)
		hasError = true
		storeReachable = false
	} else {
		fmt.Fprintf(out, "✓ Storage reachable: OK\n")
	}

	for _, c := range doctorChecks {
		if c.needsStore && !storeReachable {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Fprintf(out, "✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Fprintf(out, "⚠ %s: WARNING\n", c.name)
			fmt.Fprintf(out, "   %v\n", err)
		default:
			fail(out, c.name, err)
			hasError = true
		}
	}

	fmt.Fprintf(out, "ℹ Log file: %s\n", logger.FilePath(ctx.ConfigDir))

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func fail(out io.Writer, name string, err error) {
	fmt.Fprintf(out, "❌ %s: FAIL\n", name)
	fmt.Fprintf(out, "   Error: %v\n", err)
}

func checkStoreReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		return errors.New("no storage configured")
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(migratable)
	if !ok {
		// File-per-record storage has no schema version
		return nil
	}
	runner, err := store.Migrations()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	store, ok := ctx.Store.(migratable)
	if !ok {
		return nil
	}
	runner, err := store.Migrations()
	if err != nil {
		return err
	}
	status, err := runner.Status()
	if err != nil {
		return err
	}
	if status.Pending() {
		return fmt.Errorf("database at version %d, latest is %d; run 'studymon migrate'",
			status.Current, status.Latest)
	}
	return nil
}

// checkRecordsReadable decodes the raw records. A malformed record would be
// silently treated as empty by the dashboard, so it is reported here.
func checkRecordsReadable(ctx *cli.Context) error {
	var errs []error
	var subjects []models.Subject
	if err := decodeRecord(ctx.Store, constants.RecordSubjects, &subjects); err != nil {
		errs = append(errs, err)
	}
	var todayTasks []models.TodayTask
	if err := decodeRecord(ctx.Store, constants.RecordTodayTasks, &todayTasks); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func decodeRecord(p storage.Provider, key string, v any) error {
	data, err := p.GetRecord(key)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: malformed record: %w", key, err)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, ok := ctx.BackupManager()
	if !ok {
		// Backups only apply to SQLite storage
		return nil
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found. Backups are created automatically when the TUI starts, or with 'studymon backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	d := dashboard.New(ctx.Store)
	if err := d.Load(); err != nil {
		return err
	}
	result := validation.New().ValidateDashboard(d.Subjects(), d.TodayTasks())
	if result.HasErrors() {
		return fmt.Errorf("found %d error(s); run 'studymon validate' for details",
			result.Count(validation.SeverityError))
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	if ctx.ConfigDir == "" {
		return nil
	}
	if pid, live := lock.Holder(ctx.ConfigDir); live {
		return fmt.Errorf("another studymon instance (pid %d) holds the lock", pid)
	}
	return nil
}
