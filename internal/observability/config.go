package observability

import (
	"time"

	"resumediff/internal/config"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
	CustomMetrics      config.CustomMetricsConfig
}

// GetObservabilityConfig creates observability config from application config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: interval,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP:          obs.OTLP,
		CustomMetrics: obs.CustomMetrics,
	}
}
