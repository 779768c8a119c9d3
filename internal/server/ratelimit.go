package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumediff/internal/config"
	"resumediff/internal/errors"

	"golang.org/x/time/rate"
)

const defaultLimiterIdleTimeout = 10 * time.Minute

// LimiterManager manages a collection of rate limiters for different keys (IPs, API keys).
type LimiterManager struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	lastSeen    map[string]time.Time
	rate        rate.Limit
	burst       int
	idleTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
	logger      *errors.Logger
}

// RateLimiter is the limiter used by the server middleware
type RateLimiter = LimiterManager

// NewRateLimiter creates a limiter manager allowing cfg.RequestsPerMin
// requests per key with bursts of cfg.BurstCapacity. Limiters unused for
// cfg.IdleTimeout are evicted.
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *LimiterManager {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = defaultLimiterIdleTimeout
	}

	m := &LimiterManager{
		limiters:    make(map[string]*rate.Limiter),
		lastSeen:    make(map[string]time.Time),
		rate:        rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:       cfg.BurstCapacity,
		idleTimeout: idle,
		done:        make(chan struct{}),
		logger:      logger,
	}

	go m.cleanupRoutine(idle / 2)
	return m
}

// GetLimiter retrieves or creates a limiter for a given key.
func (m *LimiterManager) GetLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()

	return limiter
}

// Allow checks if a request should be allowed for the given key
func (m *LimiterManager) Allow(key string) bool {
	return m.GetLimiter(key).Allow()
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":         true,
		"active_limiters": len(m.limiters),
		"rate_per_second": float64(m.rate),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"idle_timeout":    m.idleTimeout.String(),
	}
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.evictIdle(now)
		case <-m.done:
			return
		}
	}
}

// evictIdle removes limiters not used within the idle timeout before now
func (m *LimiterManager) evictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > m.idleTimeout {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
			evicted++
		}
	}

	if m.logger != nil && evicted > 0 {
		m.logger.Debug("Rate limiter cleanup completed",
			"evicted_limiters", evicted,
			"remaining_limiters", len(m.limiters))
	}
	return evicted
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *LimiterManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-key limit with 429
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if !s.RateLimit.Enabled || s.RateLimiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key, limiterType := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" {
			next(w, r)
			return
		}

		if !s.RateLimiter.Allow(key) {
			s.Logger.Info("Rate limit exceeded",
				"limiter", limiterType,
				"endpoint", r.URL.Path,
				"request_id", requestIDFrom(r.Context()),
				"client_ip", getClientIP(r))
			s.observability.RecordRateLimitHit(r.Context(), limiterType)
			w.Header().Set("Retry-After", "60")
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}

// getRateLimitKey returns the limiter key for r and whether it is keyed by
// API key or IP. An empty key disables limiting for the request.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) (string, string) {
	if byAPIKey {
		if apiKey := apiKeyFrom(r); apiKey != "" {
			return "api:" + apiKey, "api_key"
		}
	}

	if byIP {
		return "ip:" + getClientIP(r), "ip"
	}

	return "", ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
