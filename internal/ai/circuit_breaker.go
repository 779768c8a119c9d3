package ai

import (
	"resumediff/internal/config"
	"resumediff/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker wraps calls returning T with the circuit breaker pattern.
// A nil breaker runs calls directly.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewCircuitBreaker creates a breaker tripping on the configured failure ratio.
// It returns nil when the breaker is disabled.
func NewCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	return newCircuitBreaker[T](name, cfg, func(counts gobreaker.Counts) bool {
		return tripsAt(counts, cfg.MinRequests, cfg.FailureThreshold)
	}, logger)
}

// NewModelCircuitBreaker creates a breaker for model availability checks.
// Those run on every health probe, so it trips later than the AI breaker.
func NewModelCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	return newCircuitBreaker[T](name, cfg, func(counts gobreaker.Counts) bool {
		return tripsAt(counts, 5, 0.8)
	}, logger)
}

func newCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig, readyToTrip func(gobreaker.Counts) bool, logger *errors.Logger) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}
	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func tripsAt(counts gobreaker.Counts, minRequests uint32, threshold float64) bool {
	if counts.Requests == 0 {
		return false
	}
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= minRequests && failureRatio >= threshold
}

// Execute runs fn with circuit breaker protection
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats returns circuit breaker statistics
func (b *CircuitBreaker[T]) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}

	counts := b.cb.Counts()
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"enabled": true,
		"counts": map[string]uint32{
			"requests":             counts.Requests,
			"totalSuccesses":       counts.TotalSuccesses,
			"totalFailures":        counts.TotalFailures,
			"consecutiveSuccesses": counts.ConsecutiveSuccesses,
			"consecutiveFailures":  counts.ConsecutiveFailures,
		},
	}
}

// IsHealthy returns true if the breaker is closed or disabled
func (b *CircuitBreaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
