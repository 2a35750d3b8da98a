package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"
)

const versionTemplate = `rebackup version %s
  commit: %s
  built: %s
  go: %s
  platform: %s/%s
`

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version and build details",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf(versionTemplate,
				Version, Commit, BuildDate,
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
