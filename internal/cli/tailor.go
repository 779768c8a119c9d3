package cli

import (
	"fmt"

	"resumediff/internal/ai"
	"resumediff/internal/common"
	"resumediff/internal/compare"
	"resumediff/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-description-file]",
	Short: "Tailor a resume for a job description and show the changes",
	Long: `Tailor your resume for a specific job description using AI.
The command takes two arguments: the path to your base resume file and
the path to the job description file. Both files should be in plain text format.
The result contains the tailored resume, a summary of the changes and a
word-level diff against the base resume.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if tailorConfig.OutputFormat == "" {
			tailorConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(tailorConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runTailor,
}

var tailorConfig common.CommandConfig

func init() {
	tailorCmd.Flags().StringVarP(&tailorConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	registerFormatFlag(tailorCmd, &tailorConfig.OutputFormat)
}

func runTailor(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	differ, err := compare.NewService(cfg.Diff, nil, logger)
	if err != nil {
		return err
	}
	aiService, err := ai.NewService(cfg.AI, cfg.Observability.HealthCheck.AIModelCheckTimeout, differ, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() {
		if err := aiService.Close(); err != nil {
			logger.LogError(err, "Failed to close AI service")
		}
	}()

	cmdConfig := tailorConfig
	cmdConfig.MaxFileSize = cfg.App.MaxFileSize
	cmdConfig.Color = cfg.App.Color
	cmdConfig.Stdout = cmd.OutOrStdout()

	createInput := func(_, contents []string) (types.TailorResumeInput, error) {
		if len(contents) != 2 {
			return types.TailorResumeInput{}, fmt.Errorf("expected 2 files, got %d", len(contents))
		}
		return types.TailorResumeInput{
			BaseResume:     contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.TailorResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume tailoring",
			"resume_chars", len(input.BaseResume),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	if err := common.RunCommand(cmd.Context(), logger, cmdConfig, args, createInput, aiService.TailorResume, logDetails); err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	logger.Info("Resume tailoring completed successfully")
	return nil
}
