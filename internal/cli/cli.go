// Package cli provides the command-line interface for rebackup.
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/izharus/re-backup/internal/config"
	"github.com/izharus/re-backup/internal/logging"
	"github.com/izharus/re-backup/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Flag state captured in the Before hook. Config file preferences only
// apply when the matching flag was not given on the command line.
var (
	verbosityFromFlags bool
	colorFromFlags     bool
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "rebackup",
		Usage:   "Mirror a directory to a backup location on a fixed interval",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			versionCommand(),
			configCommand(),
			planCommand(),
			syncCommand(),
			runCommand(),
			statusCommand(),
			trashCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	colorFromFlags = cmd.Bool("no-color")
	if colorFromFlags {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()
	opts.Level = logging.LevelWarn

	verbosityFromFlags = cmd.Bool("debug") || cmd.Bool("verbose")
	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// loadConfig loads the effective configuration and applies its output
// preferences. Flags given on the command line win over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyOutputPrefs(cfg)
	return cfg, nil
}

func applyOutputPrefs(cfg *config.Config) {
	if !colorFromFlags {
		switch cfg.Output.Color {
		case "always":
			ui.EnableColors()
		case "never":
			ui.DisableColors()
		}
	}
	if cfg.Output.Verbose && !verbosityFromFlags {
		opts := logging.DefaultOptions()
		opts.Level = logging.LevelInfo
		logging.SetDefault(logging.New(opts))
	}
}
