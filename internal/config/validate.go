package config

import (
	"fmt"
	"os"
)

// Listing error policies accepted by OnListingError.
const (
	// PolicyContinue logs listing failures and retries on the next cycle.
	PolicyContinue = "continue"
	// PolicyStop ends the sync loop on the first listing failure.
	PolicyStop = "stop"
)

// ConfigError describes a configuration value that prevents startup.
//
//nolint:revive // config.ConfigError reads fine at call sites via errors.As
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks that the configuration is complete and usable. It is
// called once at startup; a non-nil result is always a *ConfigError and
// means no sync cycle may run.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return &ConfigError{Field: "source_dir", Reason: "must be set"}
	}
	if c.DestDir == "" {
		return &ConfigError{Field: "dest_dir", Reason: "must be set"}
	}
	if c.ResolvedSource() == c.ResolvedDest() {
		return &ConfigError{
			Field:  "dest_dir",
			Reason: "must differ from source_dir",
		}
	}
	if c.IntervalMinutes <= 0 {
		return &ConfigError{
			Field:  "interval_minutes",
			Reason: fmt.Sprintf("must be a positive number of minutes, got %d", c.IntervalMinutes),
		}
	}
	if c.OnListingError != PolicyContinue && c.OnListingError != PolicyStop {
		return &ConfigError{
			Field:  "on_listing_error",
			Reason: fmt.Sprintf("must be %q or %q, got %q", PolicyContinue, PolicyStop, c.OnListingError),
		}
	}
	if c.Workers < 0 {
		return &ConfigError{
			Field:  "workers",
			Reason: fmt.Sprintf("must not be negative, got %d", c.Workers),
		}
	}
	if c.Notify.TimeoutSeconds < 0 {
		return &ConfigError{
			Field:  "notify.timeout_seconds",
			Reason: fmt.Sprintf("must not be negative, got %d", c.Notify.TimeoutSeconds),
		}
	}
	if c.Trash.MaxEntries < 0 {
		return &ConfigError{
			Field:  "trash.max_entries",
			Reason: fmt.Sprintf("must not be negative, got %d", c.Trash.MaxEntries),
		}
	}
	if c.Trash.MaxAgeDays < 0 {
		return &ConfigError{
			Field:  "trash.max_age_days",
			Reason: fmt.Sprintf("must not be negative, got %d", c.Trash.MaxAgeDays),
		}
	}
	return nil
}

// ValidatePaths checks that the configured directories are usable on disk.
// It runs after Validate, before the first sync cycle. The source must be
// an existing directory; the destination is created on demand, so only an
// existing non-directory is rejected.
func (c *Config) ValidatePaths() error {
	src := c.ResolvedSource()
	info, err := os.Stat(src)
	switch {
	case os.IsNotExist(err):
		return &ConfigError{
			Field:  "source_dir",
			Reason: fmt.Sprintf("directory does not exist: %s", src),
		}
	case err != nil:
		return &ConfigError{
			Field:  "source_dir",
			Reason: fmt.Sprintf("cannot access %s: %v", src, err),
		}
	case !info.IsDir():
		return &ConfigError{
			Field:  "source_dir",
			Reason: fmt.Sprintf("not a directory: %s", src),
		}
	}

	dst := c.ResolvedDest()
	info, err = os.Stat(dst)
	if err == nil && !info.IsDir() {
		return &ConfigError{
			Field:  "dest_dir",
			Reason: fmt.Sprintf("not a directory: %s", dst),
		}
	}
	return nil
}
