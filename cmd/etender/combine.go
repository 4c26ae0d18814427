package main

import (
	"context"

	"github.com/spf13/cobra"

	"etenderexport/internal/app"
	"etenderexport/internal/operations"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine the files already in the download folder",
	Long:  "Combines every eTender file currently in the download folder into today's CSV without downloading anything. Useful after a partial run or when files were added by hand.",
	RunE:  runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, func(ctx context.Context, a *app.Application) (*operations.RunState, error) {
		return a.Combine(ctx)
	})
}
