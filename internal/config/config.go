package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Analyzer profiles select the baseline options before explicit overrides apply.
const (
	ProfileDefault = "default"
	ProfileService = "service"
)

// Skill model providers
const (
	ModelProviderNone       = "none"
	ModelProviderDictionary = "dictionary"
	ModelProviderGemini     = "gemini"
)

// Config holds all application configuration
// Secret precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (JOBANALYZER_ANALYZER_MODEL_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	Analyzer      AnalyzerConfig      `mapstructure:"analyzer"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AnalyzerConfig holds the extraction engine configuration.
// Pointer fields are left nil when unset so the selected profile keeps its value.
type AnalyzerConfig struct {
	Profile             string        `mapstructure:"profile"`
	ConfidenceThreshold *float64      `mapstructure:"confidenceThreshold"`
	MaxSkillsPerJob     *int          `mapstructure:"maxSkillsPerJob"`
	FastMode            *bool         `mapstructure:"fastMode"`
	CacheSize           *int          `mapstructure:"cacheSize"`
	EnableThreading     *bool         `mapstructure:"enableThreading"`
	MaxWorkers          *int          `mapstructure:"maxWorkers"`
	TaskTimeout         time.Duration `mapstructure:"taskTimeout"`

	SkillDatabase string `mapstructure:"skillDatabase"` // YAML/JSON skill database, embedded default when empty
	PatternsFile  string `mapstructure:"patternsFile"`  // extra fallback categories merged into the built-ins

	Model       ModelConfig       `mapstructure:"model"`
	SharedCache SharedCacheConfig `mapstructure:"sharedCache"`
}

// ModelConfig holds primary skill model configuration
type ModelConfig struct {
	Provider       string               `mapstructure:"provider"` // none, dictionary, gemini
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	Temperature    float32              `mapstructure:"temperature"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// SharedCacheConfig holds the Redis second-level cache configuration
type SharedCacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"keyPrefix"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	MaxBatchSize int `mapstructure:"maxBatchSize"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	Analysis        AnalysisMetricsConfig       `mapstructure:"analysis"`
	ModelOperations ModelMetricsConfig          `mapstructure:"modelOperations"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AnalysisMetricsConfig holds analysis and cache metrics configuration
type AnalysisMetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TrackDuration    bool `mapstructure:"trackDuration"`
	TrackSkillCounts bool `mapstructure:"trackSkillCounts"`
	TrackCache       bool `mapstructure:"trackCache"`
}

// ModelMetricsConfig holds remote skill model metrics configuration
type ModelMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	return load(newViper())
}

// LoadConfigFile loads configuration from an explicit file path instead of the search paths
func LoadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	v := newViper()
	v.SetConfigFile(path)
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("JOBANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindOptionalEnv(v)

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/jobanalyzer/")
	v.AddConfigPath("$HOME/.jobanalyzer")
	v.AddConfigPath(".")
	return v
}

func load(v *viper.Viper) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")
	log.Println("[CONFIG] Configured environment variable handling with prefix 'JOBANALYZER'")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Analyzer.Validate(); err != nil {
		return err
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server maxBatchSize must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// Validate checks the analyzer section
func (a *AnalyzerConfig) Validate() error {
	switch a.Profile {
	case ProfileDefault, ProfileService:
	default:
		return fmt.Errorf("invalid analyzer profile: %s (must be '%s' or '%s')", a.Profile, ProfileDefault, ProfileService)
	}

	if t := a.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("analyzer confidenceThreshold must be within [0, 1], got %g", *t)
	}
	if n := a.MaxSkillsPerJob; n != nil && *n <= 0 {
		return fmt.Errorf("analyzer maxSkillsPerJob must be positive")
	}
	if n := a.MaxWorkers; n != nil && *n <= 0 {
		return fmt.Errorf("analyzer maxWorkers must be positive")
	}
	if a.TaskTimeout < 0 {
		return fmt.Errorf("analyzer taskTimeout must not be negative")
	}

	switch a.Model.Provider {
	case ModelProviderNone, ModelProviderDictionary:
	case ModelProviderGemini:
		if a.Model.APIKey == "" {
			return fmt.Errorf("gemini API key is required (set JOBANALYZER_ANALYZER_MODEL_APIKEY or GEMINI_API_KEY)")
		}
		if a.Model.Timeout <= 0 {
			return fmt.Errorf("model timeout must be positive")
		}
	default:
		return fmt.Errorf("invalid model provider: %s", a.Model.Provider)
	}

	if cb := a.Model.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failureThreshold must be within (0, 1]")
	}

	if a.SharedCache.Enabled && a.SharedCache.URL == "" {
		return fmt.Errorf("shared cache url is required when the shared cache is enabled")
	}

	return nil
}

// Global configuration instance
var GlobalConfig *Config

// InitConfig initializes the global configuration
func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}
