package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"resumediff/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves KVv2 secrets from memory.
type fakeReader struct {
	secrets map[string]map[string]any
	err     error
}

func (f *fakeReader) Read(path string) (*api.Secret, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.secrets[path]
	if !ok {
		return nil, nil
	}
	return &api.Secret{Data: map[string]any{
		"data":     data,
		"metadata": map[string]any{"version": "3"},
	}}, nil
}

func newTestVaultClient(r secretReader) *VaultClient {
	return &VaultClient{reader: r, logger: errors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)}
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int64
		wantErr bool
	}{
		{name: "int64", input: int64(42), want: 42},
		{name: "float64", input: float64(7), want: 7},
		{name: "string", input: "12", want: 12},
		{name: "bad string", input: "v1", wantErr: true},
		{name: "missing", input: nil, wantErr: true},
		{name: "unsupported", input: []string{"1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersionValue(tt.input, "secret/data/x")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSecretV2(t *testing.T) {
	vc := newTestVaultClient(&fakeReader{secrets: map[string]map[string]any{
		"secret/data/gemini": {"api_key": "abcd1234efgh"},
	}})

	secret, err := vc.GetSecretV2("secret/data/gemini")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)
	assert.Equal(t, "abcd1234efgh", secret.Data["api_key"])

	_, err = vc.GetSecretV2("secret/data/missing")
	assert.ErrorContains(t, err, "secret not found")

	failing := newTestVaultClient(&fakeReader{err: fmt.Errorf("permission denied")})
	_, err = failing.GetSecretV2("secret/data/gemini")
	assert.ErrorContains(t, err, "permission denied")
}

func TestGetStringSecret(t *testing.T) {
	vc := newTestVaultClient(&fakeReader{secrets: map[string]map[string]any{
		"secret/data/app": {"keys": "a,b", "count": 2},
	}})

	value, err := vc.GetStringSecret("secret/data/app", "keys")
	require.NoError(t, err)
	assert.Equal(t, "a,b", value)

	_, err = vc.GetStringSecret("secret/data/app", "absent")
	assert.ErrorContains(t, err, "not found")

	_, err = vc.GetStringSecret("secret/data/app", "count")
	assert.ErrorContains(t, err, "not a string")
}

func TestVaultApply(t *testing.T) {
	vc := newTestVaultClient(&fakeReader{secrets: map[string]map[string]any{
		"secret/data/apikeys": {"keys": "k1, k2"},
		"secret/data/gemini":  {"api_key": "gemini-secret"},
		"secret/data/tls":     {"cert": "CERT PEM", "key": "KEY PEM"},
	}})

	cfg := &Config{
		Vault: VaultConfig{Enabled: true, Secrets: VaultSecrets{
			APIKeys:   "secret/data/apikeys",
			GeminiKey: "secret/data/gemini",
			TLSCerts:  "secret/data/tls",
		}},
		Server: ServerConfig{TLS: TLSConfig{Mode: "server", CertFile: "/etc/old.pem", KeyFile: "/etc/old.key"}},
	}

	require.NoError(t, vc.apply(cfg))
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "gemini-secret", cfg.AI.APIKey)
	assert.Equal(t, "CERT PEM", cfg.Server.TLS.CertContent)
	assert.Equal(t, "KEY PEM", cfg.Server.TLS.KeyContent)
	assert.Empty(t, cfg.Server.TLS.CertFile)
	assert.Empty(t, cfg.Server.TLS.KeyFile)
	assert.NoError(t, cfg.ValidateTLSConfig())
}

func TestVaultApplyMissingSecret(t *testing.T) {
	vc := newTestVaultClient(&fakeReader{secrets: map[string]map[string]any{}})
	cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "secret/data/gemini"}}}

	err := vc.apply(cfg)
	assert.ErrorContains(t, err, "Gemini API key")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	logger := errors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)
	cfg := &Config{AI: AIConfig{APIKey: "keep"}}

	require.NoError(t, ApplyVaultSecrets(cfg, logger))
	assert.Equal(t, "keep", cfg.AI.APIKey)
}

func TestResolveVaultToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("s.file-token\n"), 0600))

	token, err := resolveVaultToken(VaultConfig{Token: "s.direct"})
	require.NoError(t, err)
	assert.Equal(t, "s.direct", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.file-token", token)

	_, err = resolveVaultToken(VaultConfig{TokenFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	_, err = resolveVaultToken(VaultConfig{})
	assert.ErrorContains(t, err, "token is required")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****mnop", maskSecret("abcdefghijklmnop"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Empty(t, maskSecret(""))
}
