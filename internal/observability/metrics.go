package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the custom instruments of the service
type Metrics struct {
	// Diff engine
	CompareDuration metric.Float64Histogram
	Comparisons     metric.Int64Counter
	LineFallbacks   metric.Int64Counter
	ChangedWords    metric.Int64Histogram

	// AI operations
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram
	ResumesTailored  metric.Int64Counter

	// Infrastructure
	RateLimitHits metric.Int64Counter
	CertReloads   metric.Int64Counter
}

// TokenUsage represents token usage information from AI operations
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.CompareDuration, err = meter.Float64Histogram(
		"resumediff_compare_duration_seconds",
		metric.WithDescription("Time spent comparing two texts"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create compare duration histogram: %w", err)
	}

	if m.Comparisons, err = meter.Int64Counter(
		"resumediff_comparisons_total",
		metric.WithDescription("Number of comparisons performed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create comparisons counter: %w", err)
	}

	if m.LineFallbacks, err = meter.Int64Counter(
		"resumediff_line_fallbacks_total",
		metric.WithDescription("Number of comparisons that exceeded the cell budget and diffed lines"),
	); err != nil {
		return nil, fmt.Errorf("failed to create line fallback counter: %w", err)
	}

	if m.ChangedWords, err = meter.Int64Histogram(
		"resumediff_changed_words",
		metric.WithDescription("Words added or removed per comparison"),
		metric.WithUnit("{word}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create changed words histogram: %w", err)
	}

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"resumediff_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time histogram: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"resumediff_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request counter: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"resumediff_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error counter: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"resumediff_ai_token_usage",
		metric.WithDescription("Tokens used per AI request"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage histogram: %w", err)
	}

	if m.ResumesTailored, err = meter.Int64Counter(
		"resumediff_resumes_tailored_total",
		metric.WithDescription("Total number of resumes tailored"),
	); err != nil {
		return nil, fmt.Errorf("failed to create resumes tailored counter: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumediff_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit counter: %w", err)
	}

	if m.CertReloads, err = meter.Int64Counter(
		"resumediff_cert_reloads_total",
		metric.WithDescription("TLS certificate reload attempts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cert reload counter: %w", err)
	}

	return m, nil
}

func (om *ObservabilityManager) active() bool {
	return om != nil && om.metrics != nil
}

// RecordComparison records one run of the diff engine
func (om *ObservabilityManager) RecordComparison(ctx context.Context, strategy string, changed bool, duration time.Duration, addedWords, removedWords int) {
	if !om.active() || !om.config.CustomMetrics.DiffOperations.Enabled {
		return
	}
	cfg := om.config.CustomMetrics.DiffOperations
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.Bool("changed", changed),
	)

	om.metrics.Comparisons.Add(ctx, 1, attrs)
	if strategy == "line" {
		om.metrics.LineFallbacks.Add(ctx, 1)
	}
	if cfg.TrackDuration {
		om.metrics.CompareDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if cfg.TrackWordCounts {
		om.metrics.ChangedWords.Record(ctx, int64(addedWords), metric.WithAttributes(attribute.String("kind", "added")))
		om.metrics.ChangedWords.Record(ctx, int64(removedWords), metric.WithAttributes(attribute.String("kind", "removed")))
	}
}

// TrackAIOperation runs fn inside an "ai.<operation>" span and records
// duration, request, error and token metrics for it.
func (om *ObservabilityManager) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	ctx, span := om.Tracer("resumediff.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start)

	var err error
	if result != nil {
		err = result.Error
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if result != nil && result.TokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	if !om.active() || !om.config.CustomMetrics.AIOperations.Enabled {
		return err
	}
	cfg := om.config.CustomMetrics.AIOperations
	base := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	attrs := metric.WithAttributes(base...)

	om.metrics.AIRequestCount.Add(ctx, 1, attrs)
	if err != nil {
		om.metrics.AIErrorCount.Add(ctx, 1, attrs)
	}
	if cfg.TrackDuration {
		om.metrics.AIProcessingTime.Record(ctx, duration.Seconds(), attrs)
	}
	if cfg.TrackTokenUsage && result != nil && result.TokenUsage != nil {
		usage := result.TokenUsage
		for _, tt := range []struct {
			tokenType string
			value     int64
		}{
			{"input", usage.InputTokens},
			{"output", usage.OutputTokens},
			{"total", usage.TotalTokens},
		} {
			tokenAttrs := append(append([]attribute.KeyValue{}, base...), attribute.String("token_type", tt.tokenType))
			om.metrics.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
		}
	}

	return err
}

// RecordResumeTailored counts a finished tailor request
func (om *ObservabilityManager) RecordResumeTailored(ctx context.Context, success bool) {
	if !om.active() || !om.config.CustomMetrics.AIOperations.Enabled {
		return
	}
	om.metrics.ResumesTailored.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limiterType string) {
	if !om.active() {
		return
	}
	if infra := om.config.CustomMetrics.Infrastructure; !infra.Enabled || !infra.TrackRateLimits {
		return
	}
	om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter_type", limiterType)))
}

// RecordCertReload counts a TLS certificate reload attempt
func (om *ObservabilityManager) RecordCertReload(ctx context.Context, success bool) {
	if !om.active() {
		return
	}
	if infra := om.config.CustomMetrics.Infrastructure; !infra.Enabled || !infra.TrackCertReload {
		return
	}
	om.metrics.CertReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
