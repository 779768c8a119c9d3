package common

import (
	"testing"

	"resumediff/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputFormat(t *testing.T) {
	configured := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{name: "json", format: "json", supported: configured},
		{name: "markdown", format: "markdown", supported: configured},
		{name: "unified", format: "unified", supported: []string{"json", "unified", "patch"}},
		{name: "no restrictions", format: "patch", supported: nil},
		{
			name:      "patch not configured",
			format:    "patch",
			supported: configured,
			wantErr:   "unsupported output format 'patch'. Supported formats: [json text markdown]",
		},
		{
			name:      "case sensitive",
			format:    "JSON",
			supported: configured,
			wantErr:   "unsupported output format 'JSON'",
		},
		{
			name:      "empty format",
			format:    "",
			supported: configured,
			wantErr:   "unsupported output format ''",
		},
		{
			name:      "configured but unknown",
			format:    "html",
			supported: []string{"json", "html"},
			wantErr:   "output format 'html' has no formatter",
		},
		{
			name:      "unknown without restrictions",
			format:    "xml",
			supported: nil,
			wantErr:   "output format 'xml' has no formatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, errors.ErrorTypeValidation, errors.TypeOf(err))
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
