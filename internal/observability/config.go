package observability

import (
	"time"

	"jobanalyzer/internal/config"
)

const defaultCollectionInterval = 15 * time.Second

// GetObservabilityConfig returns the observability settings to use for this
// build, filling in what the configuration leaves open.
func GetObservabilityConfig(cfg *config.Config, version string) config.ObservabilityConfig {
	if cfg == nil {
		// Fallback to defaults if config not available
		return config.ObservabilityConfig{
			Enabled:        true,
			ServiceName:    "jobanalyzer",
			ServiceVersion: version,
			SampleRate:     1.0,
			Tracing:        config.TracingConfig{Enabled: true, SampleRate: 1.0},
			Metrics:        config.MetricsConfig{Enabled: true, CollectionInterval: defaultCollectionInterval},
			CustomMetrics:  allCustomMetrics(),
			Prometheus:     config.PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "9090"},
		}
	}

	obsConfig := cfg.Observability

	// Use app version if service version not specified
	if obsConfig.ServiceVersion == "" {
		obsConfig.ServiceVersion = version
	}
	if obsConfig.ServiceName == "" {
		obsConfig.ServiceName = "jobanalyzer"
	}
	if obsConfig.Metrics.CollectionInterval <= 0 {
		obsConfig.Metrics.CollectionInterval = defaultCollectionInterval
	}
	if obsConfig.Prometheus.Endpoint == "" {
		obsConfig.Prometheus.Endpoint = "/metrics"
	}
	return obsConfig
}

func allCustomMetrics() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		Analysis: config.AnalysisMetricsConfig{
			Enabled:          true,
			TrackDuration:    true,
			TrackSkillCounts: true,
			TrackCache:       true,
		},
		ModelOperations: config.ModelMetricsConfig{
			Enabled:         true,
			TrackDuration:   true,
			TrackTokenUsage: true,
		},
		Infrastructure: config.InfrastructureMetricsConfig{
			Enabled:         true,
			TrackRateLimits: true,
		},
	}
}

// sampleRate prefers the tracing-specific rate over the service-wide one.
func sampleRate(cfg config.ObservabilityConfig) float64 {
	if cfg.Tracing.SampleRate > 0 {
		return cfg.Tracing.SampleRate
	}
	return cfg.SampleRate
}
