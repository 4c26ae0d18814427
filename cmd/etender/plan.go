package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"etenderexport/internal/app"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "List the downloads a run would perform",
	Long:  "Prints every download task for today's date in request order, without contacting the portal. With --csv the list is also saved as a CSV file.",
	RunE:  runPlan,
}

var (
	planCSV      string
	planShowURLs bool
)

func init() {
	planCmd.Flags().StringVar(&planCSV, "csv", "", "Also write the task list to this CSV file (relative paths go to the combined folder)")
	planCmd.Flags().BoolVar(&planShowURLs, "urls", false, "Print the request URL of each task")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	return withApplication(cmd, func(_ context.Context, a *app.Application) error {
		list := a.Tasks()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%d download tasks for %d agencies\n\n", len(list), len(a.Plan.Agencies))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, t := range list {
			if planShowURLs {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Seq, t.Filename, t.URL)
			} else {
				fmt.Fprintf(tw, "%d\t%s\n", t.Seq, t.Filename)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if planCSV != "" {
			path, err := a.WriteTaskList(planCSV, list)
			if err != nil {
				return fmt.Errorf("failed to write task list: %w", err)
			}
			fmt.Fprintf(out, "\nTask list written to %s\n", path)
		}
		return nil
	})
}
