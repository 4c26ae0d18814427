// Package main provides the etender command, which downloads the NSW
// eTender contract notice exports and combines them into one CSV.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"etenderexport/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "etender",
	Short:         "Download and combine NSW eTender contract notice exports",
	Long:          "etender downloads the contract notice exports of every configured agency, half-year by half-year, into " + config.DefaultDownloadDir + " and combines them into a dated CSV in " + config.DefaultCombinedDir + ". Running it without a subcommand performs the full export.",
	Version:       config.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExport,
}

var (
	configPath string
	noPause    bool
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default: etender.yaml or configs/etender.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noPause, "no-pause", false, "Do not wait for Enter before exiting")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
