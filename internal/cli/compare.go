package cli

import (
	"fmt"

	"resumediff/internal/common"
	"resumediff/internal/compare"
	"resumediff/internal/types"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [old-resume-file] [new-resume-file]",
	Short: "Show the word-level differences between two resume versions",
	Long: `Compare two versions of a resume word by word. Whitespace is preserved, so
the old and new texts can be rebuilt exactly from the diff. Very large inputs
fall back to a line-level diff (see --max-cells and --line-fallback).

Formats: json, yaml, text (inline [-removed-] {+added+} markers, or colours
with --color), markdown, unified (line diff) and patch (diff-match-patch).`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if compareConfig.OutputFormat == "" {
			compareConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(compareConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runCompare,
}

var (
	compareConfig       common.CommandConfig
	compareMaxCells     int
	compareLineFallback string
)

func init() {
	compareCmd.Flags().StringVarP(&compareConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	registerFormatFlag(compareCmd, &compareConfig.OutputFormat)
	compareCmd.Flags().BoolVar(&compareConfig.Color, "color", false, "Colour the text format on stdout (default from config)")
	compareCmd.Flags().IntVar(&compareMaxCells, "max-cells", 0, "Largest old*new token product diffed word by word (default from config)")
	compareCmd.Flags().StringVar(&compareLineFallback, "line-fallback", "", "Line fallback algorithm above max-cells: heuristic or myers (default from config)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	diffConfig := cfg.Diff
	if cmd.Flags().Changed("max-cells") {
		diffConfig.MaxCells = compareMaxCells
	}
	if cmd.Flags().Changed("line-fallback") {
		diffConfig.LineFallback = compareLineFallback
	}

	service, err := compare.NewService(diffConfig, nil, logger)
	if err != nil {
		return err
	}

	cmdConfig := compareConfig
	cmdConfig.MaxFileSize = cfg.App.MaxFileSize
	cmdConfig.Stdout = cmd.OutOrStdout()
	if !cmd.Flags().Changed("color") {
		cmdConfig.Color = cfg.App.Color
	}

	createInput := func(args, contents []string) (types.CompareInput, error) {
		if len(contents) != 2 {
			return types.CompareInput{}, fmt.Errorf("expected 2 files, got %d", len(contents))
		}
		return types.CompareInput{
			OldText:  contents[0],
			NewText:  contents[1],
			OldLabel: args[0],
			NewLabel: args[1],
		}, nil
	}

	logDetails := func(input types.CompareInput, cfg common.CommandConfig) {
		logger.Info("Starting resume comparison",
			"old_file", input.OldLabel,
			"new_file", input.NewLabel,
			"max_cells", service.MaxCells(),
			"line_fallback", service.LineFallback(),
			"output_format", cfg.OutputFormat)
	}

	if err := common.RunCommand(cmd.Context(), logger, cmdConfig, args, createInput, service.Compare, logDetails); err != nil {
		return fmt.Errorf("failed to compare resumes: %w", err)
	}
	logger.Info("Resume comparison completed successfully")
	return nil
}
