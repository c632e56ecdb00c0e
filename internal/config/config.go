// Package config loads binder's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/binder/internal/persist"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "binder.yaml"

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ValidBackends lists the supported storage backends.
var ValidBackends = []string{BackendFile, BackendSQLite}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config is the on-disk configuration.
type Config struct {
	// BaseDir is the root directory of the file backend.
	BaseDir string `yaml:"base_dir"`

	// Backend selects the storage backend: "file" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file of the sqlite backend. Relative
	// paths are taken relative to BaseDir.
	SQLitePath string `yaml:"sqlite_path"`

	LogLevel string `yaml:"log_level"`

	// Paths overrides the store paths of individual kinds.
	Paths persist.Paths `yaml:"paths"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseDir:    "data",
		Backend:    BackendFile,
		SQLitePath: "binder.db",
		LogLevel:   "info",
		Paths:      persist.DefaultPaths(),
	}
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults. BINDER_BASE_DIR and BINDER_BACKEND override the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := CheckSchema(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Paths = cfg.Paths.WithDefaults()
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("BINDER_BASE_DIR"); dir != "" {
		c.BaseDir = dir
	}
	if b := os.Getenv("BINDER_BACKEND"); b != "" {
		c.Backend = b
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("base_dir must not be empty")
	}
	if !slices.Contains(ValidBackends, c.Backend) {
		return fmt.Errorf("invalid backend: %q (valid: %v)", c.Backend, ValidBackends)
	}
	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		return errors.New("sqlite_path must be set for the sqlite backend")
	}
	if !slices.Contains(ValidLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level: %q (valid: %v)", c.LogLevel, ValidLogLevels)
	}
	if err := c.Paths.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	return nil
}

// SQLiteFile returns the database location, resolved against BaseDir.
func (c *Config) SQLiteFile() string {
	if filepath.IsAbs(c.SQLitePath) {
		return c.SQLitePath
	}
	return filepath.Join(c.BaseDir, c.SQLitePath)
}

// Level returns LogLevel as an slog level. Unknown values map to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
