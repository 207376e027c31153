// Package config resolves where studymon keeps its data and feeds optional
// file-based settings into the command line parser.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"

	"github.com/julianstephens/studymon/internal/constants"
)

// Backend identifies which storage provider a --config value selects.
type Backend int

const (
	BackendSQLite Backend = iota
	BackendPostgres
	BackendJSON
	BackendKeyring
)

func (b Backend) String() string {
	switch b {
	case BackendSQLite:
		return "sqlite"
	case BackendPostgres:
		return "postgres"
	case BackendJSON:
		return "json"
	case BackendKeyring:
		return "keyring"
	default:
		return "unknown"
	}
}

// DetectBackend picks the backend for a --config value: the keyring marker,
// a postgres URL, a .db/.sqlite file, or otherwise a JSON record directory.
func DetectBackend(value string) Backend {
	switch {
	case value == constants.KeyringConfigValue:
		return BackendKeyring
	case strings.HasPrefix(value, "postgres://"), strings.HasPrefix(value, "postgresql://"):
		return BackendPostgres
	}
	switch strings.ToLower(filepath.Ext(value)) {
	case ".db", ".sqlite", ".sqlite3":
		return BackendSQLite
	}
	return BackendJSON
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// DefaultDir returns the expanded default configuration directory.
func DefaultDir() string {
	dir, err := ExpandHome(constants.DefaultConfigDir)
	if err != nil {
		return constants.DefaultConfigDir
	}
	return dir
}

// Dir returns the directory that holds logs, the lockfile and backups for
// a --config value. Database URLs fall back to the default directory.
func Dir(value string) string {
	switch DetectBackend(value) {
	case BackendPostgres, BackendKeyring:
		return DefaultDir()
	}
	path, err := ExpandHome(value)
	if err != nil {
		return DefaultDir()
	}
	return filepath.Dir(path)
}

// FilePath returns the JSONC settings file inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName)
}

// LoadDotEnv loads dir/.env into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// JSONC is a kong configuration loader for JSON with comments and trailing
// commas. Keys are flag names, e.g. {"config": "...", "debug": true}.
func JSONC(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return kong.JSON(bytes.NewReader(std))
}
