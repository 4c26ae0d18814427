package main

import (
	"context"

	"github.com/spf13/cobra"

	"etenderexport/internal/app"
	"etenderexport/internal/operations"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every export without combining",
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, func(ctx context.Context, a *app.Application) (*operations.RunState, error) {
		return a.Download(ctx)
	})
}
