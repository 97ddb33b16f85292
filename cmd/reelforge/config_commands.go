package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := os.WriteFile(target, []byte(config.SampleConfig()), 0o644); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the LLM api_key (or export OPENROUTER_API_KEY) before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "staging_dir:         %s\n", cfg.Paths.StagingDir)
			fmt.Fprintf(out, "data_dir:            %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir:             %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "api_bind:            %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "api_token:           %s\n", maskSecret(cfg.Paths.APIToken))
			fmt.Fprintf(out, "schedule:            %s\n", cfg.Pipeline.Schedule)
			fmt.Fprintf(out, "max_concurrent_jobs: %d\n", cfg.Pipeline.MaxConcurrentJobs)
			fmt.Fprintf(out, "download_max_mib:    %d\n", cfg.Download.MaxMiB)
			fmt.Fprintf(out, "transcribe_model:    %s\n", cfg.Transcribe.Model)
			fmt.Fprintf(out, "transcribe_api_key:  %s\n", maskSecret(cfg.Transcribe.APIKey))
			fmt.Fprintf(out, "llm_model:           %s\n", cfg.LLM.Model)
			fmt.Fprintf(out, "llm_api_key:         %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Fprintf(out, "ocr_enabled:         %t\n", cfg.OCR.BaseURL != "")
			fmt.Fprintf(out, "thumbnails_enabled:  %t\n", cfg.Thumbnails.Enabled)
			fmt.Fprintf(out, "keepalive_enabled:   %t\n", cfg.KeepAlive.Enabled)
			return nil
		},
	}
}

func maskSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
