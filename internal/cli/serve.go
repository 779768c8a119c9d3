package cli

import (
	"context"
	"fmt"
	"time"

	"resumediff/internal/ai"
	"resumediff/internal/compare"
	"resumediff/internal/config"
	"resumediff/internal/observability"
	"resumediff/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that provides REST API endpoints for resume diffs and tailoring.

Available endpoints:
- POST /compare: Word-level diff of two resume versions
- POST /tailor: Tailor a resume for a job description (requires an AI API key)
- GET /health: Health check endpoint
- GET /stats: Server statistics, diff settings and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

// serveFlagBindings maps configuration keys to serve flags
var serveFlagBindings = map[string]string{
	"server.port":         "port",
	"server.host":         "host",
	"server.tls.mode":     "tls-mode",
	"server.tls.certFile": "cert-file",
	"server.tls.keyFile":  "key-file",
	"server.tls.caFile":   "ca-file",
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	// Reload so flags take precedence over environment and config file.
	cfg, err := config.LoadConfigWithFlags(cmd.Flags(), serveFlagBindings)
	if err != nil {
		return err
	}
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	differ, err := compare.NewService(cfg.Diff, om, logger)
	if err != nil {
		return err
	}
	deps := server.Dependencies{Compare: differ, Observability: om}

	if cfg.AI.APIKey != "" {
		aiService, err := ai.NewService(cfg.AI, cfg.Observability.HealthCheck.AIModelCheckTimeout, differ, om, logger)
		if err != nil {
			return fmt.Errorf("failed to create AI service: %w", err)
		}
		defer func() {
			if err := aiService.Close(); err != nil {
				logger.LogError(err, "Failed to close AI service")
			}
		}()
		deps.AI = aiService
	} else {
		logger.Warn("No AI API key configured, /tailor is disabled")
	}

	srv := server.NewServer(cfg, Version, deps, logger)
	srv.Out = cmd.OutOrStdout()
	return srv.Start(cmd.Context())
}
