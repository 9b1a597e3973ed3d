package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Resolve()
			_, _ = fmt.Fprintf(cmd.Root().Writer, "version: %s\n", info.Version)
			if info.Commit != "" {
				_, _ = fmt.Fprintf(cmd.Root().Writer, "commit:  %s\n", info.Commit)
			}
			return nil
		},
	}
}
