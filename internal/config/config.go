// Package config provides configuration management for rebackup.
// It supports YAML and TOML configuration files, environment variables,
// and sensible defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/izharus/re-backup/internal/util"
)

// Config represents the complete rebackup configuration.
type Config struct {
	// SourceDir is the directory being watched and mirrored from.
	SourceDir string `yaml:"source_dir" toml:"source_dir"`

	// DestDir is the directory kept in sync with SourceDir.
	DestDir string `yaml:"dest_dir" toml:"dest_dir"`

	// IntervalMinutes is the polling cadence in whole minutes.
	IntervalMinutes int `yaml:"interval_minutes" toml:"interval_minutes"`

	// OnListingError selects the loop policy when a directory cannot be
	// listed: "continue" retries next cycle, "stop" ends the loop.
	OnListingError string `yaml:"on_listing_error" toml:"on_listing_error"`

	// Workers bounds the parallel apply; 0 or 1 means sequential.
	Workers int `yaml:"workers" toml:"workers"`

	// Trash configures the quarantine for deleted files
	Trash TrashConfig `yaml:"trash" toml:"trash"`

	// Notify configures the failure notification sinks
	Notify NotifyConfig `yaml:"notify" toml:"notify"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" toml:"output"`
}

// TrashConfig holds quarantine settings. When disabled, stale destination
// files are unlinked directly.
type TrashConfig struct {
	// Enabled moves deleted files into the trash bin instead of unlinking
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// Location is the trash directory; empty uses the default under the
	// rebackup home
	Location string `yaml:"location,omitempty" toml:"location,omitempty"`
	// MaxEntries limits how many entries are kept (0 = unlimited)
	MaxEntries int `yaml:"max_entries" toml:"max_entries"`
	// MaxAgeDays limits how long entries are kept (0 = unlimited)
	MaxAgeDays int `yaml:"max_age_days" toml:"max_age_days"`
}

// NotifyConfig holds notification sink settings. Failures are always logged;
// a command, when set, is additionally executed for every failure.
type NotifyConfig struct {
	// Command is an external program run on every failure (e.g. an audio
	// alert player). Event details are passed via REBACKUP_EVENT_* env vars.
	Command string `yaml:"command,omitempty" toml:"command,omitempty"`
	// TimeoutSeconds bounds a single command invocation
	TimeoutSeconds int `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" toml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		IntervalMinutes: 5,
		OnListingError:  PolicyContinue,
		Workers:         1,
		Trash: TrashConfig{
			Enabled:    false,
			MaxEntries: 100,
			MaxAgeDays: 30,
		},
		Notify: NotifyConfig{
			TimeoutSeconds: 10,
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
// REBACKUP_CONFIG overrides the default location.
func FilePath() string {
	if v := os.Getenv("REBACKUP_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(util.ConfigHome(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults with environment overrides
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := decode(data, configPath, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := decode(data, path, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// decode parses file data over cfg, selecting the format by file extension.
func decode(data []byte, path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %q: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config %q: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path, selecting the
// format by file extension.
func (c *Config) SaveToPath(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return err
		}
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern REBACKUP_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("REBACKUP_SOURCE_DIR"); v != "" {
		c.SourceDir = v
	}
	if v := os.Getenv("REBACKUP_DEST_DIR"); v != "" {
		c.DestDir = v
	}
	if v := os.Getenv("REBACKUP_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IntervalMinutes = n
		}
	}
	if v := os.Getenv("REBACKUP_ON_LISTING_ERROR"); v != "" {
		c.OnListingError = v
	}
	if v := os.Getenv("REBACKUP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}

	// Trash settings
	if v := os.Getenv("REBACKUP_TRASH_ENABLED"); v != "" {
		c.Trash.Enabled = parseBool(v)
	}
	if v := os.Getenv("REBACKUP_TRASH_LOCATION"); v != "" {
		c.Trash.Location = v
	}
	if v := os.Getenv("REBACKUP_TRASH_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Trash.MaxEntries = n
		}
	}
	if v := os.Getenv("REBACKUP_TRASH_MAX_AGE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Trash.MaxAgeDays = n
		}
	}

	// Notify settings
	if v := os.Getenv("REBACKUP_NOTIFY_COMMAND"); v != "" {
		c.Notify.Command = v
	}
	if v := os.Getenv("REBACKUP_NOTIFY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Notify.TimeoutSeconds = n
		}
	}

	// Output settings
	if v := os.Getenv("REBACKUP_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("REBACKUP_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// ResolvedSource returns the source directory with ~ expanded.
func (c *Config) ResolvedSource() string {
	return util.ExpandPath(c.SourceDir, "")
}

// ResolvedDest returns the destination directory with ~ expanded.
func (c *Config) ResolvedDest() string {
	return util.ExpandPath(c.DestDir, "")
}

// ResolvedTrashLocation returns the trash directory, falling back to the
// default under the rebackup home when unset.
func (c *Config) ResolvedTrashLocation() string {
	if c.Trash.Location == "" {
		return util.DefaultTrashPath()
	}
	return util.ExpandPath(c.Trash.Location, "")
}

// NotifyTimeout returns the command sink timeout as a duration.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutSeconds) * time.Second
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
