package common

import (
	"fmt"
	"slices"

	"resumediff/internal/errors"
	"resumediff/internal/formatters"
)

// ValidateOutputFormat checks format against the configured list and against
// the formats the registry can actually render. An empty list allows any
// format the registry knows.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) > 0 && !slices.Contains(supportedFormats, format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil).
			WithContext("format", format)
	}

	known := formatters.NewFormatterRegistry().GetSupportedFormats()
	if !slices.Contains(known, format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("output format '%s' has no formatter. Available formats: %v", format, known), nil).
			WithContext("format", format)
	}
	return nil
}
