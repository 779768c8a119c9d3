package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"
	"resumediff/internal/observability"
	"resumediff/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	operationTailor     = "tailor_resume"
	defaultCheckTimeout = 10 * time.Second
	maxBackoff          = 30 * time.Second
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	models         modelsAPI
	config         config.AIConfig
	prompts        promptSet
	checkTimeout   time.Duration
	retryBaseDelay time.Duration
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	logger         *errors.Logger
}

var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider. checkTimeout bounds model
// availability checks; zero selects a default.
func NewGeminiProvider(cfg config.AIConfig, checkTimeout time.Duration, logger *errors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is required (set RESUMEDIFF_AI_APIKEY or GEMINI_API_KEY)", nil)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return newGeminiProvider(client.Models, cfg, checkTimeout, logger)
}

func newGeminiProvider(models modelsAPI, cfg config.AIConfig, checkTimeout time.Duration, logger *errors.Logger) (*GeminiProvider, error) {
	prompts, err := resolvePrompts(cfg.CustomPrompts)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Invalid AI prompt configuration", err)
	}
	if checkTimeout <= 0 {
		checkTimeout = defaultCheckTimeout
	}

	return &GeminiProvider{
		models:         models,
		config:         cfg,
		prompts:        prompts,
		checkTimeout:   checkTimeout,
		retryBaseDelay: time.Second,
		circuitBreaker: NewCircuitBreaker[*genai.GenerateContentResponse]("AI-Tailor", cfg.CircuitBreaker, logger),
		modelBreaker:   NewModelCircuitBreaker[*genai.Model]("AI-Model", cfg.CircuitBreaker, logger),
		logger:         logger,
	}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model != nil {
		modelInfo.DisplayName = model.DisplayName
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attempts++
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempts)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed",
		"operation", operation,
		"total_attempts", attempts)

	return nil, fmt.Errorf("operation '%s' failed after %d attempt(s): %w", operation, attempts, lastErr)
}

// backoff doubles the delay per attempt, adds up to 10% jitter and caps the
// result at maxBackoff.
func (g *GeminiProvider) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.retryBaseDelay
	var jitter time.Duration
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// isRetryableError reports whether err is a network failure or a transient
// API status
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	var genaiErrPtr *genai.APIError
	if stderrors.As(err, &genaiErrPtr) {
		return retryableStatus(genaiErrPtr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// TailorResume implements AIProvider interface for resume tailoring
func (g *GeminiProvider) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailoredResume, *observability.TokenUsage, error) {
	var output types.TailoredResume

	ctx, span := otel.Tracer("resumediff.ai.gemini").Start(ctx, "gemini."+operationTailor)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
		attribute.Int("input.resume_length", len(input.BaseResume)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)

	genaiConfig := g.buildTailorSchema()
	if g.config.UseSystemPrompts && g.prompts.system != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(g.prompts.system, genai.RoleUser)
	}
	userPrompt := g.prompts.tailorPrompt(input.BaseResume, input.JobDescription)

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationTailor, func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate tailored resume", err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, errors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse AI response", err)
	}
	if strings.TrimSpace(output.TailoredResume) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, errors.NewAIError("AI_RESPONSE_EMPTY", "AI response contained no tailored resume", nil)
	}

	tokenUsage := extractTokenUsage(result)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.tailored_length", len(output.TailoredResume)),
		attribute.Int("output.highlights", len(output.Highlights)),
	)
	return output, tokenUsage, nil
}

// CircuitBreakerStats returns the state of both breakers
func (g *GeminiProvider) CircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close releases provider resources
func (g *GeminiProvider) Close() error {
	return nil
}

func (g *GeminiProvider) buildTailorSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"tailoredResume": {Type: genai.TypeString},
				"summary":        {Type: genai.TypeString},
				"highlights": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"tailoredResume", "summary"},
		},
	}

	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		cfg.Temperature = &temperature
	}

	return cfg
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *observability.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &observability.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
