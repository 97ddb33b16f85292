package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reelforge/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report daemon reachability and host readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			server, err := ctx.serverURL()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Health(cmd.Context()); err != nil {
				printStatusLine(out, colorize, false, "daemon", fmt.Sprintf("%s (%v)", server, err))
			} else {
				printStatusLine(out, colorize, true, "daemon", server)
			}

			for _, status := range preflight.CheckSystemDeps(cfg) {
				detail := status.Command
				if !status.Available {
					detail = status.Detail
				}
				printStatusLine(out, colorize, status.Available, status.Name, detail)
			}

			llmCheck := preflight.CheckLLM(cmd.Context(), "llm", cfg.LLM)
			printStatusLine(out, colorize, llmCheck.Passed, llmCheck.Name, llmCheck.Detail)
			return nil
		},
	}
}

func printStatusLine(out io.Writer, colorize, ok bool, name, detail string) {
	marker := "ok"
	color := ansiGreen
	if !ok {
		marker = "fail"
		color = ansiRed
	}
	if colorize {
		marker = color + marker + ansiReset
	}
	fmt.Fprintf(out, "[%s] %-12s %s\n", marker, name, detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
