package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumediff/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 paths of the secrets to load. Empty paths are skipped.
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`   // key "keys", comma-separated
	GeminiKey string `mapstructure:"geminiKey"` // key "api_key"
	TLSCerts  string `mapstructure:"tlsCerts"`  // keys "cert", "key", "ca"
}

// secretReader is the subset of *api.Logical used to read secrets.
type secretReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	reader secretReader
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and verifies the connection
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiCfg.Address, err)
	}
	logger.Info("Connected to Vault",
		"address", apiCfg.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{reader: client.Logical(), logger: logger}, nil
}

// resolveVaultToken returns the configured token, reading it from TokenFile when needed
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	vc.logger.Debug("Reading secret from Vault", "path", path)

	secret, err := vc.reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses the KVv2 version, which arrives as a JSON number or string
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskSecret(s))
	return s, nil
}

func maskSecret(s string) string {
	switch {
	case len(s) > 8:
		return s[:4] + "****" + s[len(s)-4:]
	case s != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize vault client", err)
	}
	return client.apply(cfg)
}

// apply copies every configured secret into cfg
func (vc *VaultClient) apply(cfg *Config) error {
	paths := cfg.Vault.Secrets

	if paths.APIKeys != "" {
		raw, err := vc.GetStringSecret(paths.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if keys := splitList(raw); len(keys) > 0 {
			cfg.Server.APIKeys = keys
			vc.logger.Info("API keys loaded from Vault", "count", len(keys))
		} else {
			vc.logger.Warn("No API keys found in Vault", "path", paths.APIKeys)
		}
	}

	if paths.GeminiKey != "" {
		key, err := vc.GetStringSecret(paths.GeminiKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load Gemini API key from vault: %w", err)
		}
		if key != "" {
			cfg.AI.APIKey = key
			vc.logger.Info("Gemini API key loaded from Vault")
		}
	}

	if paths.TLSCerts != "" {
		secret, err := vc.GetSecretV2(paths.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		n := applyTLSContent(&cfg.Server.TLS, secret)
		vc.logger.Info("TLS certificates loaded from Vault", "certificates_loaded", n, "version", secret.Version)
	}

	return nil
}

// applyTLSContent copies PEM content from a secret and clears the matching file
// path so that validation sees a single source. It returns how many fields were set.
func applyTLSContent(t *TLSConfig, secret *VaultSecret) int {
	n := 0
	for _, f := range []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &t.CertContent, &t.CertFile},
		{"key", &t.KeyContent, &t.KeyFile},
		{"ca", &t.CAContent, &t.CAFile},
	} {
		if v, ok := secret.Data[f.key].(string); ok && v != "" {
			*f.content = v
			*f.file = ""
			n++
		}
	}
	return n
}
