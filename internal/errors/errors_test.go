package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewIOError(ErrCodeOutputFailed, "failed to write diff", cause)

	assert.Equal(t, "OUTPUT_FAILED: failed to write diff (caused by: disk full)", err.Error())
	assert.Equal(t, ErrorTypeIO, err.Type)
	assert.True(t, stderrors.Is(err, cause))

	plain := NewValidationError(ErrCodeInvalidRequest, "oldText is required", nil)
	assert.Equal(t, "INVALID_REQUEST: oldText is required", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestWithContext(t *testing.T) {
	err := NewValidationError(ErrCodeInputTooLarge, "text too large", nil).
		WithContext("field", "newText").
		WithContext("limit", 1024)

	assert.Equal(t, map[string]any{"field": "newText", "limit": 1024}, err.Context)
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("compare: %w", NewConfigError(ErrCodeInvalidConfig, "bad", nil))

	assert.Equal(t, ErrorTypeConfig, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("plain")))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("tailor: %w", NewAIError(ErrCodeAITimeout, "slow", nil))

	assert.Equal(t, ErrCodeAITimeout, CodeOf(wrapped))
	assert.Empty(t, CodeOf(fmt.Errorf("plain")))
}

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	appErr := NewAIError(ErrCodeAIServiceFailed, "tailor failed", fmt.Errorf("quota")).
		WithContext("model", "gemini-2.0-flash")
	logger.LogError(fmt.Errorf("wrapped: %w", appErr), "Request failed", "request_id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Request failed", record["msg"])
	assert.Equal(t, "ai", record["error_type"])
	assert.Equal(t, ErrCodeAIServiceFailed, record["error_code"])
	assert.Equal(t, "quota", record["error_cause"])
	assert.Equal(t, "gemini-2.0-flash", record["model"])
	assert.Equal(t, "abc", record["request_id"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelWarn).With("component", "test")

	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
