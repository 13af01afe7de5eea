package cli

import (
	"context"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/skillmodel"
	"jobanalyzer/internal/store"
)

// engine holds everything needed to build analyzers from configuration:
// the skill database, the primary model service and the optional shared
// cache.
type engine struct {
	cfg      *config.Config
	logger   *errors.Logger
	opts     analyzer.Options
	options  []analyzer.Option
	models   *skillmodel.Service
	shared   *store.RedisStore
	observer analyzer.Observer
}

// newEngine resolves the analyzer dependencies. recorder and observer may
// be nil. A shared cache that cannot be reached is logged and skipped.
func newEngine(ctx context.Context, cfg *config.Config, logger *errors.Logger, recorder skillmodel.CallRecorder, observer analyzer.Observer) (*engine, error) {
	db := analyzer.LoadSkillDatabase(cfg.Analyzer.SkillDatabase, logger)
	models := skillmodel.NewService(cfg.Analyzer.Model, db, recorder, logger)

	options := []analyzer.Option{
		analyzer.WithSkillDatabase(db),
		analyzer.WithModelFactory(models.Factory()),
	}

	if cfg.Analyzer.PatternsFile != "" {
		extra, err := analyzer.LoadCategories(cfg.Analyzer.PatternsFile)
		if err != nil {
			return nil, err
		}
		options = append(options, analyzer.WithCategories(analyzer.MergeCategories(analyzer.DefaultCategories(), extra)))
		logger.Info("Loaded extra skill patterns", "path", cfg.Analyzer.PatternsFile, "categories", len(extra))
	}

	e := &engine{
		cfg:      cfg,
		logger:   logger,
		opts:     analyzer.OptionsFromConfig(cfg.Analyzer),
		options:  options,
		models:   models,
		observer: observer,
	}

	if cfg.Analyzer.SharedCache.Enabled {
		shared, err := store.NewRedisStore(ctx, cfg.Analyzer.SharedCache, logger)
		if err != nil {
			logger.LogError(err, "Shared cache unavailable, continuing with the local cache only")
		} else {
			e.shared = shared
		}
	}

	return e, nil
}

// build creates an analyzer with the configured options
func (e *engine) build() (*analyzer.Analyzer, error) {
	return e.buildWith(e.opts)
}

// buildWith creates an analyzer with opts in place of the configured options
func (e *engine) buildWith(opts analyzer.Options) (*analyzer.Analyzer, error) {
	options := append([]analyzer.Option{}, e.options...)
	if e.shared != nil {
		options = append(options, analyzer.WithSharedCache(e.shared))
	}
	if e.observer != nil {
		options = append(options, analyzer.WithObserver(e.observer))
	}
	return analyzer.New(opts, e.logger, options...)
}

// sharedCache returns the shared cache, or nil when it is not in use
func (e *engine) sharedCache() *store.RedisStore {
	return e.shared
}

// Close releases the shared cache connection
func (e *engine) Close() {
	if e.shared == nil {
		return
	}
	if err := e.shared.Close(); err != nil {
		e.logger.Warn("Failed to close shared cache", "error", err)
	}
}
