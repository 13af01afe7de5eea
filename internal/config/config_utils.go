package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyModelKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks normalizes the API keys. Each entry may itself be
// a comma separated list; blanks are dropped and keys are trimmed.
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("JOBANALYZER_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = []string{apiKeysEnv}
		}
	}
	var keys []string
	for _, entry := range c.Server.APIKeys {
		keys = append(keys, splitList(entry)...)
	}
	c.Server.APIKeys = keys
}

// applyModelKeyFallbacks falls back to the conventional Gemini variable
func (c *Config) applyModelKeyFallbacks() {
	if c.Analyzer.Model.APIKey == "" {
		c.Analyzer.Model.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Analyzer.Profile == "" {
		c.Analyzer.Profile = ProfileDefault
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// splitList splits a comma-separated value, trimming whitespace and dropping empty items
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"JOBANALYZER_ANALYZER_PROFILE",
		"JOBANALYZER_ANALYZER_FASTMODE",
		"JOBANALYZER_ANALYZER_MODEL_PROVIDER",
		"JOBANALYZER_ANALYZER_MODEL_APIKEY",
		"JOBANALYZER_ANALYZER_SHAREDCACHE_URL",
		"JOBANALYZER_SERVER_PORT",
		"JOBANALYZER_SERVER_HOST",
		"JOBANALYZER_SERVER_APIKEYS",
		"JOBANALYZER_APP_LOGLEVEL",
		"JOBANALYZER_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if isSensitive(envVar) {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Analyzer Profile: %s", c.Analyzer.Profile)
	log.Printf("[CONFIG] Model Provider: %s", c.Analyzer.Model.Provider)
	if c.Analyzer.Model.Provider == ModelProviderGemini {
		log.Printf("[CONFIG] Model: %s", c.Analyzer.Model.Model)
		if c.Analyzer.Model.APIKey != "" {
			log.Println("[CONFIG] Model API Key: ***CONFIGURED***")
		} else {
			log.Println("[CONFIG] Model API Key: ***NOT SET***")
		}
	}
	log.Printf("[CONFIG] Shared Cache Enabled: %t", c.Analyzer.SharedCache.Enabled)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}

func isSensitive(envVar string) bool {
	lower := strings.ToLower(envVar)
	return strings.Contains(lower, "key") || strings.Contains(lower, "url")
}
