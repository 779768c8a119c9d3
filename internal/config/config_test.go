package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumediff/internal/worddiff"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadForTest(t *testing.T) (*Config, error) {
	t.Helper()
	return load(viper.New(), false)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := loadForTest(t)
	require.NoError(t, err)

	assert.Equal(t, worddiff.DefaultMaxCells, cfg.Diff.MaxCells)
	assert.Equal(t, "heuristic", cfg.Diff.LineFallback)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Contains(t, cfg.App.SupportedFormats, "patch")
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.CircuitBreaker.Enabled)
	assert.Empty(t, cfg.AI.APIKey)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("RESUMEDIFF_DIFF_MAXCELLS", "1000")
	t.Setenv("RESUMEDIFF_DIFF_LINEFALLBACK", "myers")
	t.Setenv("RESUMEDIFF_SERVER_PORT", "9000")
	t.Setenv("RESUMEDIFF_SERVER_APIKEYS", " key-one, ,key-two ")
	t.Setenv("RESUMEDIFF_AI_APIKEY", "")
	t.Setenv("GEMINI_API_KEY", "legacy-key")

	cfg, err := loadForTest(t)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Diff.MaxCells)
	assert.Equal(t, "myers", cfg.Diff.LineFallback)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Server.APIKeys)
	assert.Equal(t, "legacy-key", cfg.AI.APIKey)
}

func TestLoadRejectsInvalidDiffSettings(t *testing.T) {
	t.Setenv("RESUMEDIFF_DIFF_LINEFALLBACK", "patience")

	_, err := loadForTest(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diff configuration error")
}

func TestLoadPromptFiles(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "system.txt")
	require.NoError(t, os.WriteFile(systemFile, []byte("  Be concise.\n"), 0600))

	t.Setenv("RESUMEDIFF_AI_CUSTOMPROMPTS_SYSTEMPROMPTFILE", systemFile)
	t.Setenv("RESUMEDIFF_AI_CUSTOMPROMPTS_USERPROMPT", "inline user prompt")

	cfg, err := loadForTest(t)
	require.NoError(t, err)
	assert.Equal(t, "Be concise.", cfg.AI.CustomPrompts.SystemPrompt)
	assert.Equal(t, "inline user prompt", cfg.AI.CustomPrompts.UserPrompt)
}

func TestReadPromptFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("   \n"), 0600))

	_, err := readPromptFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = readPromptFile(dir)
	assert.ErrorContains(t, err, "directory")

	_, err = readPromptFile(empty)
	assert.ErrorContains(t, err, "empty")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{}, splitList(" , "))
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{name: "env split by viper", keys: []string{"alpha", " beta"}, want: []string{"alpha", "beta"}},
		{name: "yaml list with blanks", keys: []string{" key-one ", "", "  "}, want: []string{"key-one"}},
		{name: "single comma string", keys: []string{"a, b,,c"}, want: []string{"a", "b", "c"}},
		{name: "none", keys: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{APIKeys: tt.keys}}
			cfg.applyServerAPIKeyFallbacks()
			assert.Equal(t, tt.want, cfg.Server.APIKeys)
		})
	}
}

func TestApplyTLSDefaults(t *testing.T) {
	cfg := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "mutual"}}}
	cfg.applyTLSDefaults()
	assert.Equal(t, "require", cfg.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", cfg.Server.TLS.MinVersion)

	disabled := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}}}
	disabled.applyTLSDefaults()
	assert.Empty(t, disabled.Server.TLS.MinVersion)
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.String("tls-mode", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "9443"}))

	v := viper.New()
	require.NoError(t, bindFlags(v, flags, map[string]string{
		"server.port":     "port",
		"server.tls.mode": "tls-mode",
	}))

	cfg, err := load(v, false)
	require.NoError(t, err)
	assert.Equal(t, "9443", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode, "unset flags keep the configured value")

	err = bindFlags(viper.New(), flags, map[string]string{"server.host": "host"})
	assert.ErrorContains(t, err, `unknown flag "host"`)
}
