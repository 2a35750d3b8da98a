package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/izharus/re-backup/internal/mirror"
	"github.com/izharus/re-backup/internal/ui"
)

func planCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Show what the next mirror cycle would do",
		UsageText: "rebackup plan [options]",
		Description: `Compare the source and destination listings and print the pending
   operations without touching either directory.

   Output formats:
   - table: Human-readable listing (default)
   - json: Machine-readable JSON output
   - yaml: Machine-readable YAML output`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table, json, yaml",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory (overrides config)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return runPlan(cmd)
		},
	}
}

func runPlan(cmd *cli.Command) error {
	format := cmd.String("format")
	validFormats := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validFormats[format] {
		return fmt.Errorf("invalid format: %s (use table, json, or yaml)", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyMirrorFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	syncer, _, err := buildSyncer(cfg, true, nil)
	if err != nil {
		return err
	}

	plan, err := syncer.BuildPlan()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return outputPlanJSON(syncer, plan)
	case "yaml":
		return outputPlanYAML(syncer, plan)
	default:
		return outputPlanTable(syncer, plan)
	}
}

// planOutput represents the JSON/YAML output structure.
type planOutput struct {
	Source   string   `json:"source" yaml:"source"`
	Dest     string   `json:"dest" yaml:"dest"`
	ToCopy   []string `json:"to_copy" yaml:"to_copy"`
	ToDelete []string `json:"to_delete" yaml:"to_delete"`
}

func toPlanOutput(syncer *mirror.Syncer, plan mirror.Plan) planOutput {
	return planOutput{
		Source:   syncer.Source(),
		Dest:     syncer.Dest(),
		ToCopy:   append([]string{}, plan.ToCopy...),
		ToDelete: append([]string{}, plan.ToDelete...),
	}
}

func outputPlanJSON(syncer *mirror.Syncer, plan mirror.Plan) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toPlanOutput(syncer, plan))
}

func outputPlanYAML(syncer *mirror.Syncer, plan mirror.Plan) error {
	data, err := yaml.Marshal(toPlanOutput(syncer, plan))
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func outputPlanTable(syncer *mirror.Syncer, plan mirror.Plan) error {
	fmt.Printf("%s %s -> %s\n", ui.Bold("Plan:"), syncer.Source(), syncer.Dest())

	if plan.Empty() {
		fmt.Println()
		fmt.Println(ui.StatusSuccess("Already in sync, nothing to do."))
		return nil
	}

	if len(plan.ToCopy) > 0 {
		fmt.Printf("\nTo copy (%d):\n", len(plan.ToCopy))
		for _, name := range plan.ToCopy {
			fmt.Printf("  %s %s%s\n", ui.Success("+"), name, sourceSizeHint(syncer.Source(), name))
		}
	}

	if len(plan.ToDelete) > 0 {
		fmt.Printf("\nTo delete (%d):\n", len(plan.ToDelete))
		for _, name := range plan.ToDelete {
			fmt.Printf("  %s %s\n", ui.Error("-"), name)
		}
	}

	fmt.Printf("\n%d operation(s) pending.\n", plan.Size())
	return nil
}

// sourceSizeHint formats the size of a source file for display, or
// nothing when the file cannot be read.
func sourceSizeHint(sourceDir, name string) string {
	info, err := os.Stat(filepath.Join(sourceDir, name))
	if err != nil {
		return ""
	}
	// #nosec G115 - file sizes are non-negative
	return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
}
