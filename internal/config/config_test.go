package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "JOBANALYZER_SERVER_APIKEYS", "JOBANALYZER_ANALYZER_MAXWORKERS"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFileDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)

	assert.Equal(t, ProfileDefault, cfg.Analyzer.Profile)
	assert.Nil(t, cfg.Analyzer.ConfidenceThreshold)
	assert.Nil(t, cfg.Analyzer.FastMode)
	assert.Nil(t, cfg.Analyzer.MaxWorkers)
	assert.Equal(t, 30*time.Second, cfg.Analyzer.TaskTimeout)
	assert.Equal(t, ModelProviderDictionary, cfg.Analyzer.Model.Provider)
	assert.True(t, cfg.Analyzer.Model.CircuitBreaker.Enabled)
	assert.Equal(t, "jobanalyzer:", cfg.Analyzer.SharedCache.KeyPrefix)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.MaxBatchSize)
	assert.Contains(t, cfg.App.SupportedFormats, "csv")
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
analyzer:
  profile: service
  confidenceThreshold: 0.5
  fastMode: false
  taskTimeout: 5s
  sharedCache:
    enabled: true
    url: redis://localhost:6379/0
server:
  apiKeys: ["one", "two"]
`)
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	a := cfg.Analyzer
	assert.Equal(t, ProfileService, a.Profile)
	require.NotNil(t, a.ConfidenceThreshold)
	assert.Equal(t, 0.5, *a.ConfidenceThreshold)
	require.NotNil(t, a.FastMode)
	assert.False(t, *a.FastMode)
	assert.Nil(t, a.CacheSize)
	assert.Equal(t, 5*time.Second, a.TaskTimeout)
	assert.True(t, a.SharedCache.Enabled)
	assert.Equal(t, time.Hour, a.SharedCache.TTL)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)
}

func TestLoadConfigFileEnvOverridesOptionalKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBANALYZER_ANALYZER_MAXWORKERS", "8")
	t.Setenv("JOBANALYZER_SERVER_APIKEYS", "a, b,,c ")
	t.Setenv("GEMINI_API_KEY", "gemini-secret")

	cfg, err := LoadConfigFile(writeConfig(t, "analyzer:\n  model:\n    provider: gemini\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Analyzer.MaxWorkers)
	assert.Equal(t, 8, *cfg.Analyzer.MaxWorkers)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
	assert.Equal(t, "gemini-secret", cfg.Analyzer.Model.APIKey)
}

func TestLoadConfigFileInvalid(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfigFile(writeConfig(t, "analyzer:\n  confidenceThreshold: 1.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidenceThreshold")

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }

func validConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			Profile: ProfileDefault,
			Model:   ModelConfig{Provider: ModelProviderDictionary},
		},
		Server: ServerConfig{Port: "8080", MaxBatchSize: 10},
		App:    AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown profile", mutate: func(c *Config) { c.Analyzer.Profile = "batch" }, wantErr: "profile"},
		{name: "negative threshold", mutate: func(c *Config) { c.Analyzer.ConfidenceThreshold = ptr(-0.1) }, wantErr: "confidenceThreshold"},
		{name: "boundary threshold", mutate: func(c *Config) { c.Analyzer.ConfidenceThreshold = ptr(1.0) }},
		{name: "zero max skills", mutate: func(c *Config) { c.Analyzer.MaxSkillsPerJob = ptr(0) }, wantErr: "maxSkillsPerJob"},
		{name: "zero workers", mutate: func(c *Config) { c.Analyzer.MaxWorkers = ptr(0) }, wantErr: "maxWorkers"},
		{name: "gemini without key", mutate: func(c *Config) {
			c.Analyzer.Model.Provider = ModelProviderGemini
			c.Analyzer.Model.Timeout = time.Second
		}, wantErr: "API key"},
		{name: "gemini with key", mutate: func(c *Config) {
			c.Analyzer.Model = ModelConfig{Provider: ModelProviderGemini, APIKey: "k", Timeout: time.Second}
		}},
		{name: "unknown provider", mutate: func(c *Config) { c.Analyzer.Model.Provider = "unknown-provider" }, wantErr: "provider"},
		{name: "breaker threshold", mutate: func(c *Config) {
			c.Analyzer.Model.CircuitBreaker = CircuitBreakerConfig{Enabled: true, FailureThreshold: 2}
		}, wantErr: "failureThreshold"},
		{name: "shared cache without url", mutate: func(c *Config) { c.Analyzer.SharedCache.Enabled = true }, wantErr: "shared cache"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "port"},
		{name: "bad batch size", mutate: func(c *Config) { c.Server.MaxBatchSize = 0 }, wantErr: "maxBatchSize"},
		{name: "unsupported default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "default format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyFallbacks(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("JOBANALYZER_SERVER_APIKEYS", "k1,k2")

	cfg := &Config{
		Analyzer: AnalyzerConfig{Model: ModelConfig{APIKey: "explicit"}},
		Server:   ServerConfig{APIKeys: []string{"configured"}},
		App:      AppConfig{LogLevel: "debug"},
		Observability: ObservabilityConfig{
			ServiceName: "jobanalyzer",
		},
	}
	cfg.applyFallbacks()

	assert.Equal(t, "explicit", cfg.Analyzer.Model.APIKey)
	assert.Equal(t, []string{"configured"}, cfg.Server.APIKeys)
	assert.Equal(t, ProfileDefault, cfg.Analyzer.Profile)
	assert.True(t, cfg.Observability.ConsoleOutput)
	assert.Contains(t, cfg.Observability.ServiceInstance, "jobanalyzer-")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b,"))
	assert.Empty(t, splitList(""))
}

func TestApplyServerAPIKeyFallbacksTrimsKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		env  string
		want []string
	}{
		{name: "decoded env list", keys: []string{"a", " b", "", "c "}, want: []string{"a", "b", "c"}},
		{name: "comma list in one entry", keys: []string{"one, two"}, want: []string{"one", "two"}},
		{name: "env fallback", env: " x ,y", want: []string{"x", "y"}},
		{name: "nothing configured", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOBANALYZER_SERVER_APIKEYS", tt.env)
			c := &Config{Server: ServerConfig{APIKeys: tt.keys}}
			c.applyServerAPIKeyFallbacks()
			assert.Equal(t, tt.want, c.Server.APIKeys)
		})
	}
}
