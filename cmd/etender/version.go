package main

import (
	"github.com/spf13/cobra"

	"etenderexport/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the banner and version history",
	Run: func(cmd *cobra.Command, _ []string) {
		app.PrintBanner(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
