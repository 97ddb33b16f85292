package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored knowledge artifacts",
	}
	resultsCmd.AddCommand(newResultsListCommand(ctx))
	resultsCmd.AddCommand(newResultsShowCommand(ctx))
	return resultsCmd
}

func newResultsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			results, err := client.ListResults(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No artifacts stored yet.")
				return nil
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{
					result.JobID,
					truncate(result.Title, 48),
					result.Summary.SuggestedCategory,
					formatDuration(result.MediaDuration),
					result.CompletedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"JOB", "TITLE", "CATEGORY", "LENGTH", "COMPLETED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of artifacts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of artifacts to skip")
	return cmd
}

func newResultsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var full bool

	cmd := &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show one stored artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			result, err := client.GetResult(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, result)
			}
			printResult(out, result)
			if full {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Transcript:")
				fmt.Fprintln(out, result.Transcript)
				if result.VisualText != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "On-screen text:")
					fmt.Fprintln(out, result.VisualText)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the artifact as JSON")
	cmd.Flags().BoolVar(&full, "full", false, "Include the full transcript and on-screen text")
	return cmd
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
