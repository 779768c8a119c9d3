package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"resumediff/internal/errors"
)

// healthHandler reports service status, AI model availability and certificate health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumediff",
		"version": s.Version,
	}
	healthy := true

	if s.ai != nil {
		ctx := r.Context()
		if s.HealthCheckTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.HealthCheckTimeout)
			defer cancel()
		}

		modelInfo := s.ai.GetModelInfo(ctx)
		response["ai_model"] = modelInfo
		response["circuit_breakers"] = s.ai.CircuitBreakerStats()
		if !modelInfo.Available {
			healthy = false
		}
	}

	if s.certificates != nil {
		certStatus := s.certificates.Health()
		response["certificates"] = certStatus
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumediff",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"tls_mode":               s.TLSConfig.Mode,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
		"diff": map[string]any{
			"max_cells":           s.compare.MaxCells(),
			"line_fallback":       string(s.compare.LineFallback()),
			"max_text_size_bytes": s.compare.MaxTextSize(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
		response["rate_limit_config"] = map[string]any{
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.ai != nil {
		response["circuit_breakers"] = s.ai.CircuitBreakerStats()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// statusForError maps an application error to an HTTP status code
func statusForError(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeAITimeout:
		return http.StatusGatewayTimeout
	}

	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case errors.ErrorTypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with the status matching its type
func writeAppError(w http.ResponseWriter, title string, err error) {
	writeErrorResponse(w, title, err.Error(), statusForError(err))
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are sent, nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(v)
}
