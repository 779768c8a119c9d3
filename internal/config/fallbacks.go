package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills in values that viper cannot derive on its own
func (c *Config) applyFallbacks() {
	c.applyAIKeyFallback()
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyAIKeyFallback honours the conventional GEMINI_API_KEY variable
func (c *Config) applyAIKeyFallback() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// applyServerAPIKeyFallbacks normalises the API key list. viper splits a
// comma-separated env value into a slice without trimming, so every entry is
// trimmed and blanks are dropped, whatever the source.
func (c *Config) applyServerAPIKeyFallbacks() {
	c.Server.APIKeys = splitList(strings.Join(c.Server.APIKeys, ","))
}

// splitList splits a comma-separated list, trimming blanks and dropping empty items
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		EnvPrefix + "_AI_APIKEY",
		EnvPrefix + "_AI_MODEL",
		EnvPrefix + "_DIFF_MAXCELLS",
		EnvPrefix + "_DIFF_LINEFALLBACK",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_SERVER_HOST",
		EnvPrefix + "_SERVER_APIKEYS",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	var set []string
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(envVar), "key") {
			value = "***MASKED***"
		}
		set = append(set, envVar+"="+value)
	}
	if len(set) == 0 {
		log.Println("[CONFIG] Environment variables: none set")
	} else {
		log.Printf("[CONFIG] Environment variables: %s", strings.Join(set, " "))
	}

	aiKey := "***NOT SET***"
	if c.AI.APIKey != "" {
		aiKey = "***CONFIGURED***"
	}
	log.Printf("[CONFIG] Diff: maxCells=%d lineFallback=%s", c.Diff.MaxCells, c.Diff.LineFallback)
	log.Printf("[CONFIG] AI: provider=%s model=%s apiKey=%s", c.AI.Provider, c.AI.Model, aiKey)
	log.Printf("[CONFIG] Server: %s:%s tls=%s apiKeys=%d", c.Server.Host, c.Server.Port, c.Server.TLS.Mode, len(c.Server.APIKeys))
	log.Printf("[CONFIG] Log level: %s, vault: %t, observability: %t", c.App.LogLevel, c.Vault.Enabled, c.Observability.Enabled)
}
