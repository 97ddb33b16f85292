package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest URL",
		Short: "Run a media URL through the pipeline and print the artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceURL := strings.TrimSpace(args[0])
			if sourceURL == "" {
				return errors.New("url is required")
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitting %s ...\n", sourceURL)

			result, err := client.Ingest(cmd.Context(), sourceURL)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(out, result)
			}
			printResult(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the artifact as JSON")
	return cmd
}

func printResult(out io.Writer, result *resultPayload) {
	fmt.Fprintf(out, "Job:      %s\n", result.JobID)
	fmt.Fprintf(out, "Title:    %s\n", result.Title)
	if result.CanonicalURL != "" {
		fmt.Fprintf(out, "URL:      %s\n", result.CanonicalURL)
	}
	if result.Summary.SuggestedCategory != "" {
		fmt.Fprintf(out, "Category: %s\n", result.Summary.SuggestedCategory)
	}
	if len(result.Summary.Tags) > 0 {
		fmt.Fprintf(out, "Tags:     %s\n", strings.Join(result.Summary.Tags, ", "))
	}
	if result.ThumbnailURL != "" {
		fmt.Fprintf(out, "Thumb:    %s\n", result.ThumbnailURL)
	}
	if result.MediaDuration > 0 {
		fmt.Fprintf(out, "Duration: %.0fs\n", result.MediaDuration)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Summary.Summary)
	if len(result.Summary.KeyPoints) > 0 {
		fmt.Fprintln(out)
		for _, point := range result.Summary.KeyPoints {
			fmt.Fprintf(out, "  - %s\n", point)
		}
	}

	if len(result.TimingsMS) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Step timings: %s\n", formatTimings(result.TimingsMS))
	}
}

func formatTimings(timings map[string]int64) string {
	order := []string{
		"fetch", "download", "audio_extraction", "thumbnail",
		"transcription", "ocr", "summarization", "merge",
	}
	parts := make([]string, 0, len(timings))
	for _, step := range order {
		if ms, ok := timings[step]; ok {
			parts = append(parts, fmt.Sprintf("%s %dms", step, ms))
		}
	}
	return strings.Join(parts, ", ")
}

func writeJSON(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
