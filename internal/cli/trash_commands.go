package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/izharus/re-backup/internal/trash"
	"github.com/izharus/re-backup/internal/ui"
)

func trashCommand() *cli.Command {
	return &cli.Command{
		Name:  "trash",
		Usage: "Manage the quarantine bin for deleted files",
		Description: `Files removed from the destination are quarantined in the trash bin
   when trash.enabled is set, instead of being unlinked. These commands
   inspect the bin, bring files back, and trim old entries.`,
		Commands: []*cli.Command{
			trashListCommand(),
			trashRestoreCommand(),
			trashPruneCommand(),
		},
	}
}

func trashListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List quarantined files, newest first",
		UsageText: `rebackup trash list [options]
   rebackup trash list --verify
   rebackup trash list --format json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Check each entry against its recorded checksum",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table, json, yaml",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return runTrashList(cmd)
		},
	}
}

func runTrashList(cmd *cli.Command) error {
	format := cmd.String("format")
	validFormats := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validFormats[format] {
		return fmt.Errorf("invalid format: %s (use table, json, or yaml)", format)
	}

	bin, err := openBin()
	if err != nil {
		return err
	}

	entries, err := bin.List()
	if err != nil {
		return fmt.Errorf("failed to read trash index: %w", err)
	}

	verify := cmd.Bool("verify")
	outputs := toTrashOutputs(bin, entries, verify)

	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outputs)
	case "yaml":
		data, err := yaml.Marshal(outputs)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		outputTrashTable(bin, outputs, verify)
		return nil
	}
}

// trashEntryOutput represents one trash entry in list output.
type trashEntryOutput struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	OriginalPath string    `json:"original_path" yaml:"original_path"`
	Size         int64     `json:"size_bytes" yaml:"size_bytes"`
	DeletedAt    time.Time `json:"deleted_at" yaml:"deleted_at"`
	Verified     *bool     `json:"verified,omitempty" yaml:"verified,omitempty"`
}

func toTrashOutputs(bin *trash.Bin, entries []trash.Entry, verify bool) []trashEntryOutput {
	outputs := make([]trashEntryOutput, len(entries))
	for i, e := range entries {
		outputs[i] = trashEntryOutput{
			ID:           e.ID,
			Name:         e.Name,
			OriginalPath: e.OriginalPath,
			Size:         e.Size,
			DeletedAt:    e.DeletedAt,
		}
		if verify {
			ok := bin.Verify(e.ID) == nil
			outputs[i].Verified = &ok
		}
	}
	return outputs
}

func outputTrashTable(bin *trash.Bin, outputs []trashEntryOutput, verify bool) {
	fmt.Printf("%s %s\n", ui.Bold("Trash bin:"), bin.Root())

	if len(outputs) == 0 {
		fmt.Println("\nTrash is empty.")
		return
	}

	fmt.Println()
	fmt.Printf("%-28s %-24s %10s  %-15s %s\n", "ID", "NAME", "SIZE", "DELETED", "ORIGINAL")
	for _, o := range outputs {
		line := fmt.Sprintf("%-28s %-24s %10s  %-15s %s",
			o.ID,
			o.Name,
			humanize.Bytes(uint64(o.Size)), // #nosec G115 - file sizes are non-negative
			humanize.Time(o.DeletedAt),
			o.OriginalPath,
		)
		if verify {
			status := ui.StatusSuccess("")
			if o.Verified != nil && !*o.Verified {
				status = ui.StatusError("")
			}
			line = status + " " + line
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d %s.\n", len(outputs), entryWord(len(outputs)))
}

func trashRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore a quarantined file",
		UsageText: `rebackup trash restore <id> [options]
   rebackup trash restore 20240301-120000-a1b2c3d4
   rebackup trash restore 20240301-120000-a1b2c3d4 --to /tmp/recovered.txt`,
		Description: `Copy a quarantined file back to its original path, or to --to when
   given. The restore verifies the checksum first and refuses to
   overwrite an existing file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "to",
				Usage: "Restore to this path instead of the original location",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("restore requires exactly 1 argument: <id>")
			}

			bin, err := openBin()
			if err != nil {
				return err
			}

			path, err := bin.Restore(args.Get(0), cmd.String("to"))
			if err != nil {
				return err
			}

			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Restored %s", path)))
			return nil
		},
	}
}

func trashPruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Remove old trash entries per the retention settings",
		UsageText: `rebackup trash prune [options]
   rebackup trash prune --dry-run`,
		Description: `Trim the trash bin using trash.max_entries and trash.max_age_days
   from the configuration, or the matching flags. The newest entry for
   each original file is always kept.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Report what would be removed without removing it",
			},
			&cli.IntFlag{
				Name:  "max-entries",
				Value: 0, // 0 means "use config value"
				Usage: "Keep at most this many entries per original file (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-age",
				Value: 0, // 0 means "use config value"
				Usage: "Remove entries older than this many days (overrides config)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			bin, err := openBin()
			if err != nil {
				return err
			}

			opts := trash.DefaultPruneOptions()
			opts.MaxEntries = cfg.Trash.MaxEntries
			opts.MaxAge = time.Duration(cfg.Trash.MaxAgeDays) * 24 * time.Hour
			if v := int(cmd.Int("max-entries")); v > 0 {
				opts.MaxEntries = v
			}
			if v := int(cmd.Int("max-age")); v > 0 {
				opts.MaxAge = time.Duration(v) * 24 * time.Hour
			}
			opts.DryRun = cmd.Bool("dry-run")

			removed, err := bin.Prune(opts)
			if err != nil {
				return fmt.Errorf("prune failed: %w", err)
			}

			if len(removed) == 0 {
				fmt.Println("Trash is already within limits.")
				return nil
			}

			if opts.DryRun {
				fmt.Printf("Would remove %d %s:\n", len(removed), entryWord(len(removed)))
			} else {
				fmt.Println(ui.StatusSuccess(fmt.Sprintf("Removed %d %s:", len(removed), entryWord(len(removed)))))
			}
			for _, id := range removed {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

// openBin opens the trash bin at the configured location. The bin is
// usable even when quarantine is disabled, so old entries stay
// reachable after turning the feature off.
func openBin() (*trash.Bin, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	bin, err := trash.New(nil, cfg.ResolvedTrashLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to open trash bin: %w", err)
	}
	return bin, nil
}

func entryWord(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
