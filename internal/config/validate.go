package config

import (
	"fmt"
	"slices"
	"strconv"

	"resumediff/internal/worddiff"
)

// Validate checks if the configuration is valid. The AI API key is not
// required here; it is checked when the tailoring service is created so that
// compare works without one.
func (c *Config) Validate() error {
	if err := c.validateDiff(); err != nil {
		return fmt.Errorf("diff configuration error: %w", err)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI maxRetries cannot be negative")
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if len(c.App.SupportedFormats) == 0 {
		return fmt.Errorf("at least one supported format is required")
	}
	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	// Certificates from Vault arrive after loading; serve validates TLS then.
	if !c.tlsFromVault() {
		if err := c.ValidateTLSConfig(); err != nil {
			return fmt.Errorf("TLS configuration error: %w", err)
		}
	}

	return nil
}

func (c *Config) validateDiff() error {
	if c.Diff.MaxCells <= 0 {
		return fmt.Errorf("maxCells must be positive, got %d", c.Diff.MaxCells)
	}
	if _, err := worddiff.ParseLineFallback(c.Diff.LineFallback); err != nil {
		return err
	}
	if c.Diff.MaxTextSize <= 0 {
		return fmt.Errorf("maxTextSize must be positive, got %d", c.Diff.MaxTextSize)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("server maxRequestSize must be positive")
	}

	rl := c.Server.RateLimit
	if rl.Enabled {
		if rl.RequestsPerMin <= 0 {
			return fmt.Errorf("rate limit requestsPerMin must be positive")
		}
		if rl.BurstCapacity <= 0 {
			return fmt.Errorf("rate limit burstCapacity must be positive")
		}
		if !rl.ByIP && !rl.ByAPIKey {
			return fmt.Errorf("rate limit must key on IP, API key or both")
		}
	}
	return nil
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	switch t.Mode {
	case "disabled":
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}

	if err := requireOneSource("certificate", t.CertFile, t.CertContent); err != nil {
		return err
	}
	if err := requireOneSource("private key", t.KeyFile, t.KeyContent); err != nil {
		return err
	}

	if t.Mode == "mutual" {
		if err := requireOneSource("CA certificate", t.CAFile, t.CAContent); err != nil {
			return err
		}
		switch t.ClientAuthPolicy {
		case "require", "request", "verify", "":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
		}
	}

	switch t.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}

	return nil
}

func (c *Config) tlsFromVault() bool {
	return c.Vault.Enabled && c.Vault.Secrets.TLSCerts != ""
}

// requireOneSource checks that exactly one of a file path and PEM content is set
func requireOneSource(what, file, content string) error {
	switch {
	case file == "" && content == "":
		return fmt.Errorf("TLS %s is required (provide either a file or content)", what)
	case file != "" && content != "":
		return fmt.Errorf("cannot specify both file and content for TLS %s - choose one", what)
	}
	return nil
}
