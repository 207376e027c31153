package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studymon/internal/backup"
	"github.com/julianstephens/studymon/internal/config"
	"github.com/julianstephens/studymon/internal/dashboard"
	"github.com/julianstephens/studymon/internal/keyring"
	"github.com/julianstephens/studymon/internal/lock"
	"github.com/julianstephens/studymon/internal/logger"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/storage"
	"github.com/julianstephens/studymon/internal/storage/postgres"
	"github.com/julianstephens/studymon/internal/storage/sqlite"

	apperrors "github.com/julianstephens/studymon/internal/errors"
)

// Context is handed to every command's Run method.
type Context struct {
	Store     storage.Provider
	ConfigDir string
	Out       io.Writer
	In        io.Reader

	dashboard *dashboard.Store
	lock      *lock.Lock
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Dashboard loads the dashboard for reading.
func (c *Context) Dashboard() (*dashboard.Store, error) {
	if c.dashboard != nil {
		return c.dashboard, nil
	}
	d := dashboard.New(c.Store)
	if err := d.Load(); err != nil {
		return nil, err
	}
	c.dashboard = d
	return d, nil
}

// WritableDashboard takes the instance lock and loads the dashboard. The
// lock is held until Close.
func (c *Context) WritableDashboard() (*dashboard.Store, error) {
	if err := c.LockInstance(); err != nil {
		return nil, err
	}
	return c.Dashboard()
}

// LockInstance takes the single-instance lock for writers. It is a no-op
// without a config directory or when the lock is already held.
func (c *Context) LockInstance() error {
	if c.lock != nil || c.ConfigDir == "" {
		return nil
	}
	l, err := lock.Acquire(c.ConfigDir)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return apperrors.WithHint(err, "close the running studymon TUI and try again")
		}
		return err
	}
	c.lock = l
	return nil
}

// Close releases the instance lock and the storage provider.
func (c *Context) Close() error {
	var errs []error
	if err := c.lock.Release(); err != nil {
		errs = append(errs, err)
	}
	c.lock = nil
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BackupManager returns a backup manager when the store is a SQLite file.
func (c *Context) BackupManager() (*backup.Manager, bool) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, false
	}
	return backup.NewManager(c.Store.GetConfigPath()), true
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	mgr, ok := c.BackupManager()
	if !ok {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// OpenProvider builds the storage provider selected by a --config value.
// The value must already have its keyring marker resolved.
func OpenProvider(value string) (storage.Provider, error) {
	switch config.DetectBackend(value) {
	case config.BackendPostgres:
		if _, err := postgres.ValidateConnString(value); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, apperrors.WithHint(err,
					"store the connection string with 'studymon keyring set', export "+
						"STUDYMON_DB_CONNECTION, or keep the password in .pgpass")
			}
			return nil, err
		}
		return postgres.New(value), nil
	case config.BackendKeyring:
		return nil, errors.New("keyring connection string was not resolved")
	}

	path, err := config.ExpandHome(value)
	if err != nil {
		return nil, err
	}
	if config.DetectBackend(path) == config.BackendSQLite {
		return sqlite.NewStore(path), nil
	}
	return storage.NewJSONStore(path), nil
}

// ResolveConfigValue turns the keyring marker into the stored connection
// string. Other values pass through.
func ResolveConfigValue(value string) (string, error) {
	if config.DetectBackend(value) != config.BackendKeyring {
		return value, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", apperrors.WithHint(err, "store one with 'studymon keyring set'")
		}
		return "", err
	}
	return connStr, nil
}

// ResolveSubject finds a subject by id or exact name.
func ResolveSubject(d *dashboard.Store, ref string) (models.Subject, error) {
	subject, ok := d.LookupSubject(ref)
	if !ok {
		return models.Subject{}, fmt.Errorf("subject not found: %q", ref)
	}
	return subject, nil
}

// ResolveTask finds a task in a subject category by id or unique id prefix.
func ResolveTask(subject models.Subject, category models.TaskCategory, ref string) (models.Task, error) {
	if i, ok := subject.FindTask(category, ref); ok {
		return subject.Tasks[category][i], nil
	}
	var matches []models.Task
	for _, t := range subject.Tasks[category] {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task not found in %s / %s: %q", subject.Name, category, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("task id prefix %q is ambiguous in %s / %s", ref, subject.Name, category)
	}
}

// ResolveTodayTask finds a today task by id or unique id prefix.
func ResolveTodayTask(d *dashboard.Store, ref string) (models.TodayTask, error) {
	if t, ok := d.TodayTask(ref); ok {
		return t, nil
	}
	var matches []models.TodayTask
	for _, t := range d.TodayTasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.TodayTask{}, fmt.Errorf("today task not found: %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.TodayTask{}, fmt.Errorf("today task id prefix %q is ambiguous", ref)
	}
}

// ShortID abbreviates an id for list output.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Checkbox renders a completion marker.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// Category is a task category argument accepting the canonical name or the
// short forms understood by models.ParseCategory.
type Category models.TaskCategory

func (c *Category) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("category", &s); err != nil {
		return err
	}
	parsed, err := models.ParseCategory(s)
	if err != nil {
		return err
	}
	*c = Category(parsed)
	return nil
}

func (c Category) Value() models.TaskCategory {
	return models.TaskCategory(c)
}

// RequireText trims s and rejects an empty result.
func RequireText(what, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", what)
	}
	return s, nil
}
