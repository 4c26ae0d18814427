package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"etenderexport/internal/app"
	"etenderexport/internal/operations"
)

const shutdownTimeout = 10 * time.Second

// withApplication builds the application for one command and shuts it down
// afterwards, writing the metrics file.
func withApplication(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	application, err := app.NewApplication(app.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Console:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = application.Shutdown(ctx)
	}()

	return fn(cmd.Context(), application)
}

// runPipeline prints the banner, runs one pipeline variant, prints the
// summary and pauses if configured to.
func runPipeline(cmd *cobra.Command, run func(context.Context, *app.Application) (*operations.RunState, error)) error {
	return withApplication(cmd, func(ctx context.Context, a *app.Application) error {
		out := cmd.OutOrStdout()
		app.PrintBanner(out)

		state, err := run(ctx, a)
		if state != nil {
			app.PrintSummary(out, state)
		}

		pause := a.Config.PauseOnExit && !noPause
		if err == nil {
			app.PrintClosing(out, pause)
		} else if pause {
			fmt.Fprintln(out, "Press Enter to exit.")
		}
		if pause {
			waitForEnter(cmd.InOrStdin())
		}
		return err
	})
}

// waitForEnter blocks until a line (or EOF) is read
func waitForEnter(in io.Reader) {
	_, _ = bufio.NewReader(in).ReadString('\n')
}
