package observability

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testConfig() ObservabilityConfig {
	return ObservabilityConfig{
		ServiceName:        "resumediff-test",
		ServiceVersion:     "test",
		ServiceInstance:    "test-1",
		Enabled:            true,
		SampleRate:         1,
		CollectionInterval: time.Second,
		CustomMetrics: config.CustomMetricsConfig{
			DiffOperations: config.DiffMetricsConfig{Enabled: true, TrackDuration: true, TrackWordCounts: true},
			AIOperations:   config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true},
			Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true, TrackCertReload: true},
		},
	}
}

func newTestManager(t *testing.T, cfg ObservabilityConfig) (*ObservabilityManager, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	logger := errors.NewLoggerWithWriter(io.Discard, slog.LevelError)
	om, err := newObservabilityManager(cfg, logger, reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordComparison(t *testing.T) {
	om, reader := newTestManager(t, testConfig())
	ctx := context.Background()

	om.RecordComparison(ctx, "word", true, 5*time.Millisecond, 3, 1)
	om.RecordComparison(ctx, "line", true, 20*time.Millisecond, 10, 4)
	om.RecordComparison(ctx, "word", false, time.Millisecond, 0, 0)

	got := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, got["resumediff_comparisons_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumediff_line_fallbacks_total"]))

	duration, ok := got["resumediff_compare_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range duration.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	words, ok := got["resumediff_changed_words"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var wordSum int64
	for _, dp := range words.DataPoints {
		wordSum += dp.Sum
	}
	assert.Equal(t, int64(18), wordSum)
}

func TestRecordComparisonDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CustomMetrics.DiffOperations.Enabled = false
	om, reader := newTestManager(t, cfg)

	om.RecordComparison(context.Background(), "word", true, time.Millisecond, 1, 1)

	got := collect(t, reader)
	assert.NotContains(t, got, "resumediff_comparisons_total")
}

func TestTrackAIOperation(t *testing.T) {
	om, reader := newTestManager(t, testConfig())
	ctx := context.Background()

	err := om.TrackAIOperation(ctx, "tailor_resume", func(context.Context) *AIOperationResult {
		return &AIOperationResult{TokenUsage: &TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}}
	})
	require.NoError(t, err)

	failure := stderrors.New("model overloaded")
	err = om.TrackAIOperation(ctx, "tailor_resume", func(context.Context) *AIOperationResult {
		return &AIOperationResult{Error: failure}
	})
	assert.ErrorIs(t, err, failure)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["resumediff_ai_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumediff_ai_errors_total"]))

	tokens, ok := got["resumediff_ai_token_usage"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var tokenSum int64
	for _, dp := range tokens.DataPoints {
		tokenSum += dp.Sum
	}
	assert.Equal(t, int64(300), tokenSum)
}

func TestInfrastructureCounters(t *testing.T) {
	om, reader := newTestManager(t, testConfig())
	ctx := context.Background()

	om.RecordRateLimitHit(ctx, "ip")
	om.RecordRateLimitHit(ctx, "api_key")
	om.RecordCertReload(ctx, true)
	om.RecordResumeTailored(ctx, true)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["resumediff_rate_limit_hits_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumediff_cert_reloads_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["resumediff_resumes_tailored_total"]))
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *ObservabilityManager
	ctx := context.Background()

	assert.NotPanics(t, func() {
		om.RecordComparison(ctx, "word", true, time.Millisecond, 1, 1)
		om.RecordRateLimitHit(ctx, "ip")
		om.RecordCertReload(ctx, false)
		om.RecordResumeTailored(ctx, false)
		_ = om.Tracer("test")
		_ = om.HTTPMiddleware()
	})
	assert.NoError(t, om.Shutdown(ctx))

	called := false
	err := om.TrackAIOperation(ctx, "op", func(context.Context) *AIOperationResult {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestDisabledManager(t *testing.T) {
	logger := errors.NewLoggerWithWriter(io.Discard, slog.LevelError)
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "off"}, logger)
	require.NoError(t, err)

	assert.Nil(t, om.metrics)
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "resumediff"
	cfg.Observability.Prometheus.Enabled = true
	cfg.Observability.Prometheus.Port = "9090"

	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, 15*time.Second, got.CollectionInterval)
	assert.True(t, got.Prometheus.Enabled)
	assert.Equal(t, "9090", got.Prometheus.Port)

	cfg.Observability.ServiceVersion = "pinned"
	assert.Equal(t, "pinned", GetObservabilityConfig(cfg, "1.2.3").ServiceVersion)
}
