package server

import (
	"io"
	"os"
	"time"

	"resumediff/internal/ai"
	"resumediff/internal/compare"
	"resumediff/internal/config"
	"resumediff/internal/errors"
	"resumediff/internal/observability"
)

// CompareRequest represents the request body for the compare endpoint
type CompareRequest struct {
	OldText  string `json:"oldText"`
	NewText  string `json:"newText"`
	OldLabel string `json:"oldLabel"`
	NewLabel string `json:"newLabel"`
}

// TailorRequest represents the request body for the tailor endpoint
type TailorRequest struct {
	BaseResume     string `json:"baseResume"`
	JobDescription string `json:"jobDescription"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Dependencies are the services the HTTP API is built on. AI may be nil, in
// which case /tailor answers 503.
type Dependencies struct {
	Compare       *compare.Service
	AI            *ai.Service
	Observability *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	HealthCheckTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   config.RateLimitConfig
	RateLimiter *RateLimiter

	compare       *compare.Service
	ai            *ai.Service
	observability *observability.ObservabilityManager
	certificates  *CertReloader

	// Out receives the startup banner
	Out    io.Writer
	Logger *errors.Logger
}

// NewServer creates a new Server from the application configuration
func NewServer(cfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.Server.RateLimit, logger)
	}

	return &Server{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		Version:            version,
		TLSConfig:          cfg.Server.TLS,
		APIKeys:            apiKeyMap,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		HealthCheckTimeout: cfg.Observability.HealthCheck.AIModelCheckTimeout,
		MaxRequestSize:     cfg.Server.MaxRequestSize,
		RateLimit:          cfg.Server.RateLimit,
		RateLimiter:        rateLimiter,
		compare:            deps.Compare,
		ai:                 deps.AI,
		observability:      deps.Observability,
		Out:                os.Stdout,
		Logger:             logger,
	}
}
