// Package skillmodel provides the primary skill models used by the analyzer:
// a local dictionary model over the skill database and a Gemini-backed model.
package skillmodel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
)

// TokenUsage represents token usage information from a remote model response
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// CallStats describes one remote model call
type CallStats struct {
	Model     string
	Operation string
	Duration  time.Duration
	Usage     TokenUsage
	Err       error
}

// CallRecorder receives remote model call statistics
type CallRecorder interface {
	RecordModelCall(ctx context.Context, stats CallStats)
}

// ModelInfo describes the availability of the configured model for health checks
type ModelInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// Service builds the configured skill model and keeps a handle on it for
// health and statistics reporting.
type Service struct {
	cfg      config.ModelConfig
	db       *analyzer.SkillDatabase
	recorder CallRecorder
	logger   *errors.Logger

	mu    sync.RWMutex
	model analyzer.SkillModel
}

// NewService creates a skill model service. recorder may be nil.
func NewService(cfg config.ModelConfig, db *analyzer.SkillDatabase, recorder CallRecorder, logger *errors.Logger) *Service {
	logger.Debug("Initializing skill model service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	return &Service{cfg: cfg, db: db, recorder: recorder, logger: logger}
}

// Factory returns the analyzer.ModelFactory for the configured provider, or
// nil when no primary model is configured.
func (s *Service) Factory() analyzer.ModelFactory {
	if s.cfg.Provider == config.ModelProviderNone || s.cfg.Provider == "" {
		return nil
	}
	return func() (analyzer.SkillModel, error) {
		model, err := s.build()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.model = model
		s.mu.Unlock()
		return model, nil
	}
}

func (s *Service) build() (analyzer.SkillModel, error) {
	switch s.cfg.Provider {
	case config.ModelProviderDictionary:
		return NewDictionaryModel(s.db)
	case config.ModelProviderGemini:
		return NewGeminiModel(context.Background(), s.cfg, s.db, s.recorder, s.logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported skill model provider: %s", s.cfg.Provider), nil)
	}
}

// Provider returns the configured provider name.
func (s *Service) Provider() string {
	if s.cfg.Provider == "" {
		return config.ModelProviderNone
	}
	return s.cfg.Provider
}

// Model returns the last model the factory built, or nil.
func (s *Service) Model() analyzer.SkillModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// ModelInfo reports model availability for health checks
func (s *Service) ModelInfo(ctx context.Context) *ModelInfo {
	switch model := s.Model().(type) {
	case nil:
		return &ModelInfo{Name: s.cfg.Model, Provider: s.cfg.Provider, Error: "model not initialized"}
	case *GeminiModel:
		return model.ModelInfo(ctx)
	default:
		return &ModelInfo{Name: model.Name(), Provider: s.cfg.Provider, Available: true}
	}
}

// Stats returns circuit breaker statistics for remote models
func (s *Service) Stats() map[string]any {
	if g, ok := s.Model().(*GeminiModel); ok {
		return g.BreakerStats()
	}
	return map[string]any{"enabled": false, "provider": s.cfg.Provider}
}
