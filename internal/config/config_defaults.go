package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Analyzer Configuration. Tunables without a default stay unset so the profile decides.
	v.SetDefault("analyzer.profile", ProfileDefault)
	v.SetDefault("analyzer.taskTimeout", 30*time.Second)
	v.SetDefault("analyzer.skillDatabase", "")
	v.SetDefault("analyzer.patternsFile", "")

	// Primary skill model
	v.SetDefault("analyzer.model.provider", ModelProviderDictionary)
	v.SetDefault("analyzer.model.model", "gemini-2.0-flash")
	v.SetDefault("analyzer.model.apiKey", "")
	v.SetDefault("analyzer.model.timeout", 30*time.Second)
	v.SetDefault("analyzer.model.maxRetries", 3)
	v.SetDefault("analyzer.model.temperature", 0.1) // Low temperature for consistent extraction

	v.SetDefault("analyzer.model.circuitBreaker.enabled", true)
	v.SetDefault("analyzer.model.circuitBreaker.maxRequests", 3)
	v.SetDefault("analyzer.model.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("analyzer.model.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("analyzer.model.circuitBreaker.minRequests", 3)
	v.SetDefault("analyzer.model.circuitBreaker.failureThreshold", 0.6)

	// Shared result cache
	v.SetDefault("analyzer.sharedCache.enabled", false)
	v.SetDefault("analyzer.sharedCache.url", "")
	v.SetDefault("analyzer.sharedCache.ttl", time.Hour)
	v.SetDefault("analyzer.sharedCache.keyPrefix", "jobanalyzer:")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // batches run longer than single requests
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxBatchSize", 100)
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown", "csv"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.redisURL", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "jobanalyzer")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.analysis.enabled", true)
	v.SetDefault("observability.customMetrics.analysis.trackDuration", true)
	v.SetDefault("observability.customMetrics.analysis.trackSkillCounts", true)
	v.SetDefault("observability.customMetrics.analysis.trackCache", true)
	v.SetDefault("observability.customMetrics.modelOperations.enabled", true)
	v.SetDefault("observability.customMetrics.modelOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.modelOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
}

// optionalKeys have no default, so AutomaticEnv alone would never surface them to Unmarshal.
var optionalKeys = []string{
	"analyzer.confidenceThreshold",
	"analyzer.maxSkillsPerJob",
	"analyzer.fastMode",
	"analyzer.cacheSize",
	"analyzer.enableThreading",
	"analyzer.maxWorkers",
}

func bindOptionalEnv(v *viper.Viper) {
	for _, key := range optionalKeys {
		_ = v.BindEnv(key)
	}
}
