// Package analyzer extracts skills, entities and keywords from job postings
// and memoizes results in an LRU cache.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/nlp"
)

const fastModeSkillTarget = 5

// SharedCache is an optional second cache level shared between processes.
type SharedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Observer receives analysis events. Implementations must be safe for
// concurrent use.
type Observer interface {
	JobAnalyzed(ctx context.Context, result *JobAnalysisResult)
	CacheLookup(ctx context.Context, hit bool)
	BatchCompleted(ctx context.Context, succeeded, failed int, elapsed time.Duration)
}

// Analyzer runs the extraction pipeline for single postings and batches.
// It is safe for concurrent use.
type Analyzer struct {
	opts     Options
	logger   *errors.Logger
	registry *Registry
	names    *SkillDatabase
	primary  *PrimaryExtractor
	fallback *FallbackExtractor
	pipeline nlp.Pipeline
	cache    *ResultCache
	shared   SharedCache
	observer Observer
	stats    statsRecorder
}

type buildConfig struct {
	factory    ModelFactory
	pipeline   nlp.Pipeline
	registry   *Registry
	categories []Category
	skillDB    *SkillDatabase
	shared     SharedCache
	observer   Observer
}

// Option customizes analyzer construction.
type Option func(*buildConfig)

// WithModelFactory sets how the primary skill model is constructed.
func WithModelFactory(factory ModelFactory) Option {
	return func(c *buildConfig) { c.factory = factory }
}

// WithSkillModel uses an already constructed primary skill model.
func WithSkillModel(model SkillModel) Option {
	return func(c *buildConfig) {
		if model == nil {
			c.factory = nil
			return
		}
		c.factory = func() (SkillModel, error) { return model, nil }
	}
}

func WithPipeline(pipeline nlp.Pipeline) Option {
	return func(c *buildConfig) { c.pipeline = pipeline }
}

// WithRegistry replaces the pattern registry. It takes precedence over
// WithCategories.
func WithRegistry(registry *Registry) Option {
	return func(c *buildConfig) { c.registry = registry }
}

// WithCategories compiles the registry from categories instead of the defaults.
func WithCategories(categories []Category) Option {
	return func(c *buildConfig) { c.categories = categories }
}

// WithSkillDatabase sets the skill id to name table used by the primary extractor.
func WithSkillDatabase(db *SkillDatabase) Option {
	return func(c *buildConfig) { c.skillDB = db }
}

func WithSharedCache(cache SharedCache) Option {
	return func(c *buildConfig) { c.shared = cache }
}

func WithObserver(observer Observer) Option {
	return func(c *buildConfig) { c.observer = observer }
}

// New builds an analyzer. Only invalid options are an error; a primary model
// that cannot be constructed leaves the analyzer running on the fallback path.
func New(opts Options, logger *errors.Logger, options ...Option) (*Analyzer, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if opts.ConfidenceThreshold < 0 || opts.ConfidenceThreshold > 1 {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "confidence threshold must be between 0 and 1", nil).
			WithContext("confidence_threshold", opts.ConfidenceThreshold)
	}
	opts = opts.normalized()

	cfg := &buildConfig{}
	for _, apply := range options {
		apply(cfg)
	}

	registry := cfg.registry
	if registry == nil {
		categories := cfg.categories
		if categories == nil {
			categories = DefaultCategories()
		}
		registry = NewRegistry(categories, opts.FastMode, logger)
	}

	names := cfg.skillDB
	if names == nil {
		names = DefaultSkillDatabase(logger)
	}

	pipeline := cfg.pipeline
	if pipeline == nil {
		pipeline = nlp.NewProsePipeline(registry.Terms()...)
	}

	a := &Analyzer{
		opts:     opts,
		logger:   logger,
		registry: registry,
		names:    names,
		fallback: NewFallbackExtractor(registry, logger),
		pipeline: pipeline,
		cache:    NewResultCache(opts.CacheSize),
		shared:   cfg.shared,
		observer: cfg.observer,
	}

	// fast mode never consults the primary model, so skip its construction
	if !opts.FastMode {
		a.primary = NewPrimaryExtractor(cfg.factory, names, opts, logger)
	}

	logger.Info("Job analyzer initialized",
		"fast_mode", opts.FastMode,
		"confidence_threshold", opts.ConfidenceThreshold,
		"cache_size", opts.CacheSize,
		"enable_threading", opts.EnableThreading,
		"max_workers", opts.MaxWorkers,
		"categories", len(registry.Categories()),
		"primary_model", a.primary.ModelName(),
	)
	return a, nil
}

// Options returns the options the analyzer was built with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// PrimaryEnabled reports whether the primary skill model is in use.
func (a *Analyzer) PrimaryEnabled() bool {
	return a.primary.Enabled()
}

// Analyze runs the full pipeline on one posting. It never fails: any error
// or panic is reported as a result with Metadata.Error set. An empty jobID
// is replaced with a timestamped one.
func (a *Analyzer) Analyze(ctx context.Context, text, jobID string) (result *JobAnalysisResult) {
	start := time.Now()
	if jobID == "" {
		jobID = generateJobID(start)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("Recovered analysis panic", "stack", string(debug.Stack()))
			result = a.failedResult(jobID, fmt.Errorf("panic: %v", r), start)
		}
	}()

	result, err := a.analyze(ctx, text, jobID, start)
	if err != nil {
		return a.failedResult(jobID, err, start)
	}
	return result
}

func (a *Analyzer) analyze(ctx context.Context, text, jobID string, start time.Time) (*JobAnalysisResult, error) {
	clean, err := NormalizeText(text, a.logger)
	if err != nil {
		return nil, err
	}

	key := CacheKey(clean)
	if cached, ok := a.lookup(ctx, key); ok {
		cached.CacheHit = true
		cached.JobID = jobID
		return cached, nil
	}

	var (
		primarySkills, fallbackSkills []ExtractedSkill
		primaryTime, fallbackTime     time.Duration
		entities                      = []ExtractedEntity{}
		keywords                      = []Keyword{}
		entityTime, keywordTime       time.Duration
	)

	merged := []ExtractedSkill{}
	if utf8.RuneCountInString(clean) >= minAnalyzableLength {
		if !a.opts.FastMode && a.primary.Enabled() {
			primarySkills, primaryTime = a.primary.Extract(ctx, clean)
		}
		fallbackSkills, fallbackTime = a.fallback.Extract(clean)
		merged = MergeSkills(a.opts.MaxSkillsPerJob, primarySkills, fallbackSkills)

		if !a.opts.FastMode || len(merged) < fastModeSkillTarget {
			entities, entityTime = ExtractEntities(a.pipeline, clean, a.logger)
			keywords, keywordTime = ExtractKeywords(a.pipeline, a.registry, clean, a.logger)
		}
	}

	total := time.Since(start)
	result := newResult(jobID)
	result.Skills = merged
	result.Entities = entities
	result.Keywords = keywords
	result.ProcessingTime = total.Seconds()
	result.Metadata = Metadata{
		OriginalLength:      utf8.RuneCountInString(text),
		CleanedLength:       utf8.RuneCountInString(clean),
		WordCount:           len(strings.Fields(clean)),
		SkillnerSkillsCount: len(primarySkills),
		FallbackSkillsCount: len(fallbackSkills),
		TotalUniqueSkills:   len(merged),
		EntitiesCount:       len(entities),
		KeywordsCount:       len(keywords),
		ProcessingTimes: ProcessingTimes{
			Total:    round(total.Seconds(), 4),
			Skillner: round(primaryTime.Seconds(), 4),
			Fallback: round(fallbackTime.Seconds(), 4),
			Entities: round(entityTime.Seconds(), 4),
			Keywords: round(keywordTime.Seconds(), 4),
		},
		FastMode:            a.opts.FastMode,
		ConfidenceThreshold: a.opts.ConfidenceThreshold,
		ProcessingTimestamp: timestamp(time.Now()),
	}

	a.store(ctx, key, result)
	a.stats.record(total, primaryTime, entityTime+keywordTime, fallbackTime)
	if a.observer != nil {
		a.observer.JobAnalyzed(ctx, result)
	}
	return result, nil
}

// lookup consults the local cache, then the shared cache. A shared hit is
// promoted into the local cache.
func (a *Analyzer) lookup(ctx context.Context, key string) (*JobAnalysisResult, bool) {
	if cached, ok := a.cache.Get(key); ok {
		a.observeLookup(ctx, true)
		return cached, true
	}
	if a.shared == nil {
		a.observeLookup(ctx, false)
		return nil, false
	}

	data, ok, err := a.shared.Get(ctx, key)
	if err != nil {
		a.logger.LogError(errors.NewNetworkError(errors.ErrCodeCacheUnavailable, "shared cache read failed", err), "Shared cache lookup failed")
	}
	if err != nil || !ok {
		a.observeLookup(ctx, false)
		return nil, false
	}

	var result JobAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		a.logger.Warn("Discarding undecodable shared cache entry", "error", err.Error())
		a.observeLookup(ctx, false)
		return nil, false
	}
	a.cache.Put(key, &result)
	a.observeLookup(ctx, true)
	return result.Clone(), true
}

func (a *Analyzer) store(ctx context.Context, key string, result *JobAnalysisResult) {
	a.cache.Put(key, result)
	if a.shared == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		a.logger.Warn("Failed to encode result for shared cache", "error", err.Error())
		return
	}
	if err := a.shared.Set(ctx, key, data, a.opts.SharedCacheTTL); err != nil {
		a.logger.LogError(errors.NewNetworkError(errors.ErrCodeCacheUnavailable, "shared cache write failed", err), "Failed to cache result")
	}
}

func (a *Analyzer) observeLookup(ctx context.Context, hit bool) {
	if a.observer != nil {
		a.observer.CacheLookup(ctx, hit)
	}
}

func (a *Analyzer) failedResult(jobID string, err error, start time.Time) *JobAnalysisResult {
	if jobID == "" {
		jobID = "error_job"
	}
	elapsed := time.Since(start).Seconds()
	a.logger.LogError(err, "Error analyzing job posting", "job_id", jobID)

	result := newResult(jobID)
	result.ProcessingTime = elapsed
	result.Metadata = Metadata{
		Error:               err.Error(),
		ProcessingTime:      elapsed,
		ProcessingTimestamp: timestamp(time.Now()),
	}
	return result
}

// Configuration is the options snapshot included in performance reports.
type Configuration struct {
	FastMode            bool    `json:"fast_mode"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	MaxSkillsPerJob     int     `json:"max_skills_per_job"`
	CacheSize           int     `json:"cache_size"`
	EnableThreading     bool    `json:"enable_threading"`
	MaxWorkers          int     `json:"max_workers"`
}

// PerformanceReport summarizes analyzer activity since start or the last
// cache clear.
type PerformanceReport struct {
	PerformanceStats PerformanceStats `json:"performance_stats"`
	CacheStats       CacheStats       `json:"cache_stats"`
	Configuration    Configuration    `json:"configuration"`
	ReportTimestamp  string           `json:"report_timestamp"`
}

func (a *Analyzer) PerformanceReport() PerformanceReport {
	return PerformanceReport{
		PerformanceStats: a.stats.snapshot(),
		CacheStats:       a.cache.Stats(),
		Configuration: Configuration{
			FastMode:            a.opts.FastMode,
			ConfidenceThreshold: a.opts.ConfidenceThreshold,
			MaxSkillsPerJob:     a.opts.MaxSkillsPerJob,
			CacheSize:           a.opts.CacheSize,
			EnableThreading:     a.opts.EnableThreading,
			MaxWorkers:          a.opts.MaxWorkers,
		},
		ReportTimestamp: timestamp(time.Now()),
	}
}

// ClearCache empties the local result cache and resets its counters. The
// shared cache is left alone.
func (a *Analyzer) ClearCache() {
	a.cache.Clear()
	a.logger.Info("Cache cleared")
}

// CacheLen returns the number of locally cached results.
func (a *Analyzer) CacheLen() int {
	return a.cache.Len()
}

// generateJobID formats t as job_YYYYMMDD_HHMMSS_ffffff (microseconds).
func generateJobID(t time.Time) string {
	return fmt.Sprintf("job_%s_%06d", t.Format("20060102_150405"), t.Nanosecond()/1000)
}
