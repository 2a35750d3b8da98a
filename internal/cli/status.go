package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/izharus/re-backup/internal/config"
	"github.com/izharus/re-backup/internal/logging"
	"github.com/izharus/re-backup/internal/mirror"
	"github.com/izharus/re-backup/internal/ui"
)

// TrashStatus holds trash bin statistics for the status report.
type TrashStatus struct {
	Location  string     `json:"location"`
	Entries   int        `json:"entries"`
	TotalSize int64      `json:"total_size_bytes"`
	Oldest    *time.Time `json:"oldest,omitempty"`
	Newest    *time.Time `json:"newest,omitempty"`
}

// Status holds the effective settings and current drift between the
// source and destination directories.
type Status struct {
	ConfigPath      string       `json:"config_path"`
	ConfigExists    bool         `json:"config_exists"`
	Source          string       `json:"source"`
	Dest            string       `json:"dest"`
	IntervalMinutes int          `json:"interval_minutes"`
	OnListingError  string       `json:"on_listing_error"`
	Workers         int          `json:"workers"`
	SourceFiles     int          `json:"source_files"`
	DestFiles       int          `json:"dest_files"`
	PendingCopies   int          `json:"pending_copies"`
	PendingDeletes  int          `json:"pending_deletes"`
	Problem         string       `json:"problem,omitempty"`
	Trash           *TrashStatus `json:"trash,omitempty"`
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Display the effective settings and pending drift",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format for scripting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Debug("collecting status")

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			status := collectStatus(cfg)

			if cmd.Bool("json") {
				return outputStatusJSON(status)
			}
			return outputStatusTable(status)
		},
	}
}

// collectStatus gathers the effective configuration and a read-only
// view of the drift between source and destination.
func collectStatus(cfg *config.Config) *Status {
	status := &Status{
		ConfigPath:      config.FilePath(),
		ConfigExists:    config.Exists(),
		Source:          cfg.ResolvedSource(),
		Dest:            cfg.ResolvedDest(),
		IntervalMinutes: cfg.IntervalMinutes,
		OnListingError:  cfg.OnListingError,
		Workers:         cfg.Workers,
	}

	fsys := afero.NewOsFs()

	src, err := mirror.ListDir(fsys, status.Source)
	if err != nil {
		status.Problem = fmt.Sprintf("cannot list source: %v", err)
	} else {
		status.SourceFiles = src.Cardinality()
	}

	dst, err := mirror.ListDir(fsys, status.Dest)
	if err != nil {
		// A missing destination is created on the first cycle.
		dst = mirror.NewSnapshot()
	}
	status.DestFiles = dst.Cardinality()

	if status.Problem == "" {
		plan := mirror.Compare(src, dst)
		status.PendingCopies = len(plan.ToCopy)
		status.PendingDeletes = len(plan.ToDelete)
	}

	if cfg.Trash.Enabled {
		status.Trash = collectTrashStatus(cfg)
	}

	return status
}

func collectTrashStatus(cfg *config.Config) *TrashStatus {
	ts := &TrashStatus{Location: cfg.ResolvedTrashLocation()}

	bin, err := openBin()
	if err != nil {
		logging.Warn("failed to open trash bin", logging.Err(err))
		return ts
	}
	stats, err := bin.Stats()
	if err != nil {
		logging.Warn("failed to read trash stats", logging.Err(err))
		return ts
	}

	ts.Entries = stats.Entries
	ts.TotalSize = stats.TotalSize
	if !stats.Oldest.IsZero() {
		oldest := stats.Oldest
		ts.Oldest = &oldest
	}
	if !stats.Newest.IsZero() {
		newest := stats.Newest
		ts.Newest = &newest
	}
	return ts
}

// outputStatusJSON outputs the status in JSON format.
func outputStatusJSON(status *Status) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(status); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// outputStatusTable outputs the status in human-readable form.
func outputStatusTable(status *Status) error {
	fmt.Println(ui.Bold("rebackup Status"))
	fmt.Println()

	fmt.Println(ui.Bold("Configuration:"))
	source := status.ConfigPath
	if !status.ConfigExists {
		source += " (not present, using defaults)"
	}
	fmt.Printf("  File:     %s\n", source)
	fmt.Printf("  Source:   %s\n", valueOrUnset(status.Source))
	fmt.Printf("  Dest:     %s\n", valueOrUnset(status.Dest))
	fmt.Printf("  Interval: %d minute(s)\n", status.IntervalMinutes)
	fmt.Printf("  Policy:   %s on listing errors\n", status.OnListingError)
	fmt.Printf("  Workers:  %d\n", status.Workers)
	fmt.Println()

	fmt.Println(ui.Bold("Drift:"))
	if status.Problem != "" {
		fmt.Printf("  %s\n", ui.StatusWarning(status.Problem))
	} else {
		fmt.Printf("  Source files: %d\n", status.SourceFiles)
		fmt.Printf("  Dest files:   %d\n", status.DestFiles)
		if status.PendingCopies == 0 && status.PendingDeletes == 0 {
			fmt.Printf("  %s\n", ui.StatusSuccess("In sync"))
		} else {
			fmt.Printf("  Pending:      %d to copy, %d to delete\n",
				status.PendingCopies, status.PendingDeletes)
		}
	}
	fmt.Println()

	fmt.Println(ui.Bold("Trash:"))
	if status.Trash == nil {
		fmt.Printf("  Status: %s\n", ui.Warning("Disabled"))
		return nil
	}
	fmt.Printf("  Status:   %s\n", ui.Success("Enabled"))
	fmt.Printf("  Location: %s\n", status.Trash.Location)
	fmt.Printf("  Entries:  %d\n", status.Trash.Entries)
	// #nosec G115 - byte totals are non-negative
	fmt.Printf("  Size:     %s\n", humanize.Bytes(uint64(status.Trash.TotalSize)))
	if status.Trash.Newest != nil {
		fmt.Printf("  Newest:   %s\n", humanize.Time(*status.Trash.Newest))
	}
	if status.Trash.Oldest != nil {
		fmt.Printf("  Oldest:   %s\n", humanize.Time(*status.Trash.Oldest))
	}

	return nil
}

func valueOrUnset(v string) string {
	if v == "" {
		return ui.Dim("(unset)")
	}
	return v
}
