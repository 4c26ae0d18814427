package main

import (
	"context"

	"github.com/spf13/cobra"

	"etenderexport/internal/app"
	"etenderexport/internal/operations"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download every export and combine them (default)",
	Long:  "Creates the download and combined folders, downloads every agency and half-year export, waits for all downloads to finish and writes the combined CSV named after today's date.",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, func(ctx context.Context, a *app.Application) (*operations.RunState, error) {
		return a.Export(ctx)
	})
}
