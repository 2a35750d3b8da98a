package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/izharus/re-backup/internal/config"
	"github.com/izharus/re-backup/internal/mirror"
	"github.com/izharus/re-backup/internal/notify"
	"github.com/izharus/re-backup/internal/progress"
	"github.com/izharus/re-backup/internal/trash"
	"github.com/izharus/re-backup/internal/ui"
	"github.com/izharus/re-backup/internal/ui/tui"
	"github.com/izharus/re-backup/internal/util"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Run a single mirror cycle now",
		UsageText: "rebackup sync [options]",
		Description: `Run one mirror cycle: copy files that exist only in the source and
   remove files that exist only in the destination. Files present on both
   sides are never touched.

   Examples:
     rebackup sync
     rebackup sync --dry-run
     rebackup sync --interactive
     rebackup sync --source ~/docs --dest /mnt/backup/docs`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Review and select operations before applying",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 0, // 0 means "use config value"
				Usage: "Parallel apply workers (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSync(ctx, cmd)
		},
	}
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	interactive := cmd.Bool("interactive")
	if dryRun && interactive {
		return errors.New("cannot use both --dry-run and --interactive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyMirrorFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidatePaths(); err != nil {
		return err
	}

	var bar *progress.Bar
	syncer, _, err := buildSyncer(cfg, dryRun, func(fr mirror.FileResult) {
		if bar != nil {
			bar.Add(1)
		}
	})
	if err != nil {
		return err
	}

	plan, err := syncer.BuildPlan()
	if err != nil {
		return err
	}
	if plan.Empty() {
		fmt.Println(ui.StatusSuccess("Already in sync, nothing to do."))
		return nil
	}

	if interactive {
		selected, ok, err := reviewPlan(syncer, plan)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted, no changes made.")
			return nil
		}
		plan = selected
	}

	if !dryRun {
		if err := util.EnsureDir(syncer.Dest()); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
		bar = progress.ForPlan(plan.Size(), "Mirroring")
	}

	result := syncer.Apply(ctx, plan)
	if bar != nil {
		bar.Finish()
	}

	fmt.Print(result.Summary())
	if !result.Success() {
		return fmt.Errorf("%d operation(s) failed", len(result.Failed()))
	}
	return nil
}

// reviewPlan runs the interactive selection over the plan. The second
// return value is false when the user quit without confirming.
func reviewPlan(syncer *mirror.Syncer, plan mirror.Plan) (mirror.Plan, bool, error) {
	items := reviewItems(syncer.Source(), plan)
	result, err := tui.RunPlanReview(items, syncer.Source(), syncer.Dest())
	if err != nil {
		return mirror.Plan{}, false, fmt.Errorf("plan review failed: %w", err)
	}
	if result.Action != tui.ReviewActionApply {
		return mirror.Plan{}, false, nil
	}
	return planFromItems(result.Items), true, nil
}

// reviewItems converts a plan into reviewable items, attaching source
// file sizes where they can be read.
func reviewItems(sourceDir string, plan mirror.Plan) []tui.PlanItem {
	items := make([]tui.PlanItem, 0, plan.Size())
	for _, name := range plan.ToCopy {
		size := int64(-1)
		if info, err := os.Stat(filepath.Join(sourceDir, name)); err == nil {
			size = info.Size()
		}
		items = append(items, tui.PlanItem{Name: name, Op: mirror.OpCopy, Size: size})
	}
	for _, name := range plan.ToDelete {
		items = append(items, tui.PlanItem{Name: name, Op: mirror.OpDelete, Size: -1})
	}
	return items
}

func planFromItems(items []tui.PlanItem) mirror.Plan {
	var plan mirror.Plan
	for _, item := range items {
		switch item.Op {
		case mirror.OpCopy:
			plan.ToCopy = append(plan.ToCopy, item.Name)
		case mirror.OpDelete:
			plan.ToDelete = append(plan.ToDelete, item.Name)
		}
	}
	return plan
}

// applyMirrorFlags layers command-line overrides onto the loaded config.
// A zero or empty flag value means "use the config value".
func applyMirrorFlags(cmd *cli.Command, cfg *config.Config) {
	if v := cmd.String("source"); v != "" {
		cfg.SourceDir = v
	}
	if v := cmd.String("dest"); v != "" {
		cfg.DestDir = v
	}
	if v := int(cmd.Int("workers")); v > 0 {
		cfg.Workers = v
	}
}

// buildSyncer assembles a syncer from the effective configuration,
// wiring in the trash bin when quarantine is enabled.
func buildSyncer(cfg *config.Config, dryRun bool, onResult func(mirror.FileResult)) (*mirror.Syncer, *trash.Bin, error) {
	var bin *trash.Bin
	var dep mirror.Depositor
	if cfg.Trash.Enabled {
		b, err := trash.New(nil, cfg.ResolvedTrashLocation())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trash bin: %w", err)
		}
		bin = b
		dep = b
	}

	syncer, err := mirror.New(mirror.Options{
		Source:   cfg.ResolvedSource(),
		Dest:     cfg.ResolvedDest(),
		Workers:  cfg.Workers,
		DryRun:   dryRun,
		Trash:    dep,
		OnResult: onResult,
	})
	if err != nil {
		return nil, nil, err
	}
	return syncer, bin, nil
}

// buildNotifier assembles the failure notification sinks: the log sink is
// always present, the command sink only when configured.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	sinks := []notify.Notifier{notify.NewLogNotifier(nil)}
	if cfg.Notify.Command != "" {
		cmdSink, err := notify.NewCommandNotifier(cfg.Notify.Command, cfg.NotifyTimeout())
		if err != nil {
			return nil, fmt.Errorf("invalid notify command: %w", err)
		}
		sinks = append(sinks, cmdSink)
	}
	return notify.NewMulti(sinks...), nil
}
