// Package compare runs the word diff engine for the CLI and the HTTP server.
package compare

import (
	"context"
	"fmt"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"
	"resumediff/internal/observability"
	"resumediff/internal/types"
	"resumediff/internal/worddiff"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Service compares resume versions with a fixed set of engine options
type Service struct {
	opts        []worddiff.Option
	maxCells    int
	fallback    worddiff.LineFallback
	maxTextSize int64
	obs         *observability.ObservabilityManager
	logger      *errors.Logger
}

// NewService creates a compare service from the diff configuration.
// obs may be nil.
func NewService(cfg config.DiffConfig, obs *observability.ObservabilityManager, logger *errors.Logger) (*Service, error) {
	fallback, err := worddiff.ParseLineFallback(cfg.LineFallback)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid diff configuration", err)
	}

	maxCells := cfg.MaxCells
	if maxCells <= 0 {
		maxCells = worddiff.DefaultMaxCells
	}

	logger.Debug("Initializing compare service",
		"max_cells", maxCells,
		"line_fallback", fallback,
		"max_text_size", cfg.MaxTextSize)

	return &Service{
		opts:        []worddiff.Option{worddiff.WithMaxCells(maxCells), worddiff.WithLineFallback(fallback)},
		maxCells:    maxCells,
		fallback:    fallback,
		maxTextSize: cfg.MaxTextSize,
		obs:         obs,
		logger:      logger,
	}, nil
}

// MaxCells returns the cell budget of the word engine
func (s *Service) MaxCells() int { return s.maxCells }

// LineFallback returns the configured line fallback
func (s *Service) LineFallback() worddiff.LineFallback { return s.fallback }

// MaxTextSize returns the largest accepted text per side; zero means unlimited
func (s *Service) MaxTextSize() int64 { return s.maxTextSize }

// Validate checks the input against the configured size limit
func (s *Service) Validate(input types.CompareInput) error {
	if s.maxTextSize <= 0 {
		return nil
	}
	for _, side := range []struct {
		name string
		text string
	}{
		{"old", input.OldText},
		{"new", input.NewText},
	} {
		if int64(len(side.text)) > s.maxTextSize {
			return errors.NewValidationError(errors.ErrCodeInputTooLarge,
				fmt.Sprintf("%s text is %d bytes, limit is %d", side.name, len(side.text), s.maxTextSize), nil).
				WithContext("side", side.name)
		}
	}
	return nil
}

// Compare diffs the two texts of input. The engine is total, so the only
// error is a size limit violation.
func (s *Service) Compare(ctx context.Context, input types.CompareInput) (types.CompareOutput, error) {
	if err := s.Validate(input); err != nil {
		return types.CompareOutput{}, err
	}

	_, span := s.obs.Tracer("resumediff.compare").Start(ctx, "compare")
	defer span.End()

	start := time.Now()
	result := worddiff.Compare(input.OldText, input.NewText, s.opts...)
	elapsed := time.Since(start)

	out := types.CompareOutput{
		ID:           uuid.NewString(),
		OldLabel:     input.OldLabel,
		NewLabel:     input.NewLabel,
		Strategy:     result.Strategy,
		Changed:      result.Changed(),
		AddedWords:   result.AddedWords,
		RemovedWords: result.RemovedWords,
		Segments:     result.Segments,
	}

	span.SetAttributes(
		attribute.String("compare.id", out.ID),
		attribute.String("compare.strategy", string(out.Strategy)),
		attribute.Int("compare.old_bytes", len(input.OldText)),
		attribute.Int("compare.new_bytes", len(input.NewText)),
		attribute.Int("compare.segments", len(out.Segments)),
		attribute.Int("compare.added_words", out.AddedWords),
		attribute.Int("compare.removed_words", out.RemovedWords),
	)
	s.obs.RecordComparison(ctx, string(out.Strategy), out.Changed, elapsed, out.AddedWords, out.RemovedWords)

	if out.Strategy == worddiff.StrategyLine {
		s.logger.Info("Input exceeded word diff budget, compared lines",
			"id", out.ID,
			"line_fallback", s.fallback,
			"max_cells", s.maxCells)
	}
	s.logger.Debug("Comparison completed",
		"id", out.ID,
		"strategy", out.Strategy,
		"added_words", out.AddedWords,
		"removed_words", out.RemovedWords,
		"duration", elapsed)

	return out, nil
}
