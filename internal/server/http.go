package server

import (
	"context"
	"reflect"
	"strings"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	jaErrors "jobanalyzer/internal/errors"
	"jobanalyzer/internal/observability"
	"jobanalyzer/internal/skillmodel"

	"github.com/go-playground/validator/v10"
)

// HealthChecker is a dependency that can report its health, such as the
// shared result cache.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request limits
	MaxRequestSize int64
	MaxBatchSize   int

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Analyzers     *analyzer.Provider
	Models        *skillmodel.Service
	SharedCache   HealthChecker
	Observability *observability.ObservabilityManager

	validate *validator.Validate

	// Logger
	Logger *jaErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxBatchSize   int
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the collaborators the handlers call into. Models and
// SharedCache may be nil; Observability is required.
type Dependencies struct {
	Analyzers     *analyzer.Provider
	Models        *skillmodel.Service
	SharedCache   HealthChecker
	Observability *observability.ObservabilityManager
}

// NewServerConfig derives the server settings from the application config
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		MaxBatchSize:   cfg.Server.MaxBatchSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *jaErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxBatchSize:   cfg.MaxBatchSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Analyzers:      deps.Analyzers,
		Models:         deps.Models,
		SharedCache:    deps.SharedCache,
		Observability:  deps.Observability,
		validate:       newValidator(),
		Logger:         logger,
	}
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
