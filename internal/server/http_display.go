package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string) {
	scheme := "http"
	if s.certificates != nil {
		scheme = "https"
	}
	fmt.Fprintf(s.Out, "Starting server on %s://%s\n", scheme, addr)
	s.displayTLSInfo()
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayTLSInfo() {
	switch s.TLSConfig.Mode {
	case "server":
		fmt.Fprintln(s.Out, "TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Fprintln(s.Out, "TLS mode: Mutual (client certificates required)")
	default:
		fmt.Fprintln(s.Out, "TLS mode: Disabled (HTTP only)")
	}
	if s.certificates != nil && s.certificates.IsRunning() {
		fmt.Fprintln(s.Out, "TLS auto-reload: ENABLED")
	}
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.Out, "Available endpoints:")
	fmt.Fprintln(s.Out, "  GET  /health    - Health check")
	fmt.Fprintln(s.Out, "  GET  /stats     - Server statistics")
	fmt.Fprintln(s.Out, "  POST /compare   - Word-level resume diff")
	if s.ai != nil {
		fmt.Fprintln(s.Out, "  POST /tailor    - Tailor resume and diff the result")
	} else {
		fmt.Fprintln(s.Out, "  POST /tailor    - Unavailable (no AI provider configured)")
	}
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(s.Out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Fprintln(s.Out, "Include 'X-API-Key: <your-key>' header in requests to /compare and /tailor")
	} else {
		fmt.Fprintln(s.Out, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(s.Out, "WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.Out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(s.Out, "Request size limit: DISABLED")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if !s.RateLimit.Enabled {
		fmt.Fprintln(s.Out, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(s.Out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(s.Out, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(s.Out, "  - Per IP address rate limiting enabled")
	}
}
