package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/izharus/re-backup/internal/config"
	"github.com/izharus/re-backup/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the rebackup configuration",
		Description: `Inspect and maintain the configuration file.

   The file lives under the rebackup home (~/.config/rebackup by
   default, REBACKUP_HOME overrides it) and every value can also be set
   through REBACKUP_* environment variables.`,
		Commands: []*cli.Command{
			configInitCommand(),
			configShowCommand(),
			configPathCommand(),
			configValidateCommand(),
		},
	}
}

func configInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration file with default values",
		UsageText: `rebackup config init [options]
   rebackup config init --source ~/docs --dest /mnt/backup/docs
   rebackup config init --force`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source directory to mirror from",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory to mirror to",
			},
			&cli.IntFlag{
				Name:  "interval",
				Value: 0, // 0 means "keep the default"
				Usage: "Polling interval in whole minutes",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing configuration file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if config.Exists() && !cmd.Bool("force") {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", config.FilePath())
			}

			cfg := config.Default()
			if v := cmd.String("source"); v != "" {
				cfg.SourceDir = v
			}
			if v := cmd.String("dest"); v != "" {
				cfg.DestDir = v
			}
			if v := int(cmd.Int("interval")); v > 0 {
				cfg.IntervalMinutes = v
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Created %s", config.FilePath())))
			if cfg.SourceDir == "" || cfg.DestDir == "" {
				fmt.Println("Edit it to set source_dir and dest_dir before running a sync.")
			}
			return nil
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Aliases: []string{"get"},
		Usage:   "Print the effective configuration",
		Description: `Print the configuration after merging defaults, the config file,
   and environment overrides.`,
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("%s %s\n\n", ui.Bold("Configuration from:"), describeConfigSource())

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configPathCommand() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "Print the configuration file path",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Println(config.FilePath())
			return nil
		},
	}
}

func configValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check that the configuration is complete and usable",
		Description: `Validate the effective configuration the same way the run and sync
   commands do before their first cycle: every value must be in range and
   the source directory must exist.`,
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ValidatePaths(); err != nil {
				return err
			}

			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Configuration is valid (%s)", describeConfigSource())))
			return nil
		},
	}
}

func describeConfigSource() string {
	if config.Exists() {
		return config.FilePath()
	}
	return "built-in defaults"
}
