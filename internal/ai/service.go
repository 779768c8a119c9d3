package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"
	"resumediff/internal/observability"
	"resumediff/internal/types"
)

// Differ compares the base resume with the tailored one
type Differ interface {
	Compare(ctx context.Context, input types.CompareInput) (types.CompareOutput, error)
}

// Service tailors resumes and diffs the result against the base resume
type Service struct {
	Provider AIProvider // Exported for access from server package
	differ   Differ
	config   config.AIConfig
	obs      *observability.ObservabilityManager
	logger   *errors.Logger
}

// NewService creates a new AI service for the configured provider
func NewService(cfg config.AIConfig, checkTimeout time.Duration, differ Differ, obs *observability.ObservabilityManager, logger *errors.Logger) (*Service, error) {
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries,
		"use_system_prompts", cfg.UseSystemPrompts,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	var provider AIProvider
	var err error

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, checkTimeout, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	return NewServiceWithProvider(provider, cfg, differ, obs, logger), nil
}

// NewServiceWithProvider creates a service around an existing provider
func NewServiceWithProvider(provider AIProvider, cfg config.AIConfig, differ Differ, obs *observability.ObservabilityManager, logger *errors.Logger) *Service {
	return &Service{
		Provider: provider,
		differ:   differ,
		config:   cfg,
		obs:      obs,
		logger:   logger,
	}
}

// TailorResume asks the provider to tailor the resume for the job and
// returns the tailored text together with its diff against the base resume.
func (s *Service) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, error) {
	if strings.TrimSpace(input.BaseResume) == "" {
		return types.TailorResumeOutput{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "baseResume is required", nil)
	}
	if strings.TrimSpace(input.JobDescription) == "" {
		return types.TailorResumeOutput{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "jobDescription is required", nil)
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	var tailored types.TailoredResume
	err := s.obs.TrackAIOperation(ctx, operationTailor, func(ctx context.Context) *observability.AIOperationResult {
		out, usage, err := s.Provider.TailorResume(ctx, input)
		tailored = out
		if usage != nil {
			s.logger.Info("AI token usage",
				"operation", operationTailor,
				"input_tokens", usage.InputTokens,
				"output_tokens", usage.OutputTokens,
				"total_tokens", usage.TotalTokens)
		}
		return &observability.AIOperationResult{Error: err, TokenUsage: usage}
	})
	s.obs.RecordResumeTailored(ctx, err == nil)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return types.TailorResumeOutput{}, errors.NewAIError(errors.ErrCodeAITimeout,
				fmt.Sprintf("AI request exceeded %s", s.config.Timeout), err)
		}
		return types.TailorResumeOutput{}, err
	}

	diff, err := s.differ.Compare(ctx, types.CompareInput{
		OldText:  input.BaseResume,
		NewText:  tailored.TailoredResume,
		OldLabel: "base",
		NewLabel: "tailored",
	})
	if err != nil {
		return types.TailorResumeOutput{}, err
	}

	return types.TailorResumeOutput{
		TailoredResume: tailored.TailoredResume,
		Summary:        tailored.Summary,
		Highlights:     tailored.Highlights,
		Diff:           diff,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// CircuitBreakerStats returns the provider's circuit breaker state
func (s *Service) CircuitBreakerStats() map[string]any {
	return s.Provider.CircuitBreakerStats()
}

// Close releases the provider
func (s *Service) Close() error {
	return s.Provider.Close()
}
