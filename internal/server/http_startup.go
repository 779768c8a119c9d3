package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start serves the API until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		s.stopCertificates()
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}

	s.displayServerInfo(listener.Addr().String())
	return s.serve(ctx, httpServer, listener)
}

// setupHTTPServer creates the HTTP server and, unless TLS is disabled, its
// certificate reloader
func (s *Server) setupHTTPServer() (*http.Server, error) {
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	switch s.TLSConfig.Mode {
	case "", "disabled":
		return httpServer, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certs, err := NewCertReloader(s.TLSConfig, s.observability, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	tlsConfig, err := buildTLSConfig(s.TLSConfig, certs)
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	if s.TLSConfig.AutoReload.Enabled {
		if err := certs.Start(); err != nil {
			return nil, fmt.Errorf("failed to start certificate watcher: %w", err)
		}
	}

	s.certificates = certs
	httpServer.TLSConfig = tlsConfig
	return httpServer, nil
}

func (s *Server) serve(ctx context.Context, server *http.Server, listener net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", listener.Addr().String(),
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = server.ServeTLS(listener, "", "")
		} else {
			err = server.Serve(listener)
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		s.cleanup()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	defer s.cleanup()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup stops the certificate watcher and the rate limiter
func (s *Server) cleanup() {
	s.stopCertificates()
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}

func (s *Server) stopCertificates() {
	if s.certificates == nil {
		return
	}
	if err := s.certificates.Stop(); err != nil {
		s.Logger.LogError(err, "Failed to stop certificate watcher")
	}
}
