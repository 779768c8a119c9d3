package cli

import (
	"context"

	"resumediff/internal/config"
	"resumediff/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumediff",
	Short: "Word-level diffs between resume versions",
	Long: `Resumediff compares two versions of a resume word by word and shows exactly
which words were added and removed. It can also tailor a resume for a job
description with AI and review the changes as a diff, or serve both features
over an HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to all subcommands
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.ExecuteContext(ctx)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// registerFormatFlag adds --format with completion from the configured formats
func registerFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", "", "Output format: json, yaml, text, markdown, unified or patch (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func init() {
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(tailorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
