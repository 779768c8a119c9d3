package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"resumediff/internal/errors"
	"resumediff/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
	Color        bool
	Stdout       io.Writer // defaults to os.Stdout
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler. Colour is only applied when
// writing to stdout.
func NewOutputHandler(logger *errors.Logger, cfg CommandConfig) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, cfg.MaxFileSize),
		registry:      formatters.NewFormatterRegistry(formatters.WithColor(cfg.Color && cfg.OutputFile == "")),
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	if _, err := io.WriteString(stdout, output); err != nil {
		return errors.NewIOError(errors.ErrCodeOutputFailed, "Failed to write output", err)
	}
	return nil
}

// GetSupportedFormats returns all formats the registry can produce
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
