package ai

import (
	"context"

	"resumediff/internal/observability"
	"resumediff/internal/types"

	"google.golang.org/genai"
)

// AIProvider is implemented by resume tailoring backends
type AIProvider interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailoredResume, *observability.TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	CircuitBreakerStats() map[string]any
	Close() error
}

// modelsAPI is the subset of genai.Models used by the Gemini provider
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
