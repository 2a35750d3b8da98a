package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/izharus/re-backup/internal/config"
	"github.com/izharus/re-backup/internal/mirror"
	"github.com/izharus/re-backup/internal/ui"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Mirror continuously on the configured interval",
		UsageText: "rebackup run [options]",
		Description: `Start the mirror loop: one cycle runs immediately, then the loop
   sleeps for the configured interval and repeats until interrupted.
   The interval is measured from the end of one cycle to the start of
   the next, so a slow cycle never causes overlapping work.

   Examples:
     rebackup run
     rebackup run --interval 10
     rebackup run --source ~/docs --dest /mnt/backup/docs`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "interval",
				Value: 0, // 0 means "use config value"
				Usage: "Polling interval in whole minutes (overrides config)",
			},
			&cli.StringFlag{
				Name:  "on-listing-error",
				Usage: "Policy when a directory cannot be listed: continue or stop (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 0, // 0 means "use config value"
				Usage: "Parallel apply workers (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runLoop(ctx, cmd)
		},
	}
}

func runLoop(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyMirrorFlags(cmd, cfg)
	if v := int(cmd.Int("interval")); v > 0 {
		cfg.IntervalMinutes = v
	}
	if v := cmd.String("on-listing-error"); v != "" {
		cfg.OnListingError = v
	}

	// Configuration problems must surface before the first cycle runs.
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidatePaths(); err != nil {
		return err
	}

	syncer, _, err := buildSyncer(cfg, false, nil)
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	sched, err := mirror.NewScheduler(syncer, mirror.Schedule{
		Interval:        cfg.Interval(),
		ContinueOnError: cfg.OnListingError == config.PolicyContinue,
		Notifier:        notifier,
		OnCycle:         printCycle,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Mirroring %s -> %s every %d minute(s), press Ctrl+C to stop.\n",
		syncer.Source(), syncer.Dest(), cfg.IntervalMinutes)

	if err := sched.Run(ctx); err != nil {
		return err
	}
	fmt.Println("Stopped.")
	return nil
}

// printCycle reports each completed cycle on stdout. Quiet cycles stay
// silent so an idle loop produces no output.
func printCycle(cycle uint64, result *mirror.Result) {
	if !result.Changed() && result.Success() {
		return
	}
	line := fmt.Sprintf("cycle %d: copied %d, deleted %d, skipped %d, failed %d",
		cycle,
		len(result.Copied()),
		len(result.Deleted()),
		len(result.Skipped()),
		len(result.Failed()),
	)
	if result.Success() {
		fmt.Println(ui.StatusSuccess(line))
	} else {
		fmt.Println(ui.StatusWarning(line))
	}
}
