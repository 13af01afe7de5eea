package analyzer

import (
	"time"

	"jobanalyzer/internal/config"
)

const (
	defaultConfidenceThreshold = 0.35
	defaultMaxSkillsPerJob     = 50
	defaultCacheSize           = 512
	defaultMaxWorkers          = 4
	defaultTaskTimeout         = 30 * time.Second
)

// Options configure an Analyzer. They are fixed once the analyzer is built.
type Options struct {
	ConfidenceThreshold float64
	MaxSkillsPerJob     int
	FastMode            bool
	CacheSize           int
	EnableThreading     bool
	MaxWorkers          int
	// TaskTimeout bounds each batch task, measured from submission.
	TaskTimeout time.Duration
	// SharedCacheTTL is passed to the shared cache on writes; zero means no expiry.
	SharedCacheTTL time.Duration
}

// DefaultOptions returns the library defaults.
func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold: defaultConfidenceThreshold,
		MaxSkillsPerJob:     defaultMaxSkillsPerJob,
		CacheSize:           defaultCacheSize,
		MaxWorkers:          defaultMaxWorkers,
		TaskTimeout:         defaultTaskTimeout,
	}
}

// ServiceProfile returns the options used by the long-running web service:
// fast mode with a lower threshold, a smaller cache and parallel batches.
func ServiceProfile() Options {
	opts := DefaultOptions()
	opts.FastMode = true
	opts.ConfidenceThreshold = 0.25
	opts.CacheSize = 256
	opts.EnableThreading = true
	opts.MaxWorkers = 4
	return opts
}

// OptionsFromConfig maps the analyzer configuration section onto Options.
// The "service" profile starts from ServiceProfile, anything else from the
// defaults; explicitly configured values always win.
func OptionsFromConfig(cfg config.AnalyzerConfig) Options {
	opts := DefaultOptions()
	if cfg.Profile == config.ProfileService {
		opts = ServiceProfile()
	}
	if cfg.ConfidenceThreshold != nil {
		opts.ConfidenceThreshold = *cfg.ConfidenceThreshold
	}
	if cfg.MaxSkillsPerJob != nil {
		opts.MaxSkillsPerJob = *cfg.MaxSkillsPerJob
	}
	if cfg.FastMode != nil {
		opts.FastMode = *cfg.FastMode
	}
	if cfg.CacheSize != nil {
		opts.CacheSize = *cfg.CacheSize
	}
	if cfg.EnableThreading != nil {
		opts.EnableThreading = *cfg.EnableThreading
	}
	if cfg.MaxWorkers != nil {
		opts.MaxWorkers = *cfg.MaxWorkers
	}
	if cfg.TaskTimeout > 0 {
		opts.TaskTimeout = cfg.TaskTimeout
	}
	if cfg.SharedCache.Enabled {
		opts.SharedCacheTTL = cfg.SharedCache.TTL
	}
	return opts.normalized()
}

// normalized replaces out-of-range values with defaults.
func (o Options) normalized() Options {
	if o.CacheSize <= 0 {
		o.CacheSize = defaultCacheSize
	}
	if o.MaxSkillsPerJob <= 0 {
		o.MaxSkillsPerJob = defaultMaxSkillsPerJob
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = defaultMaxWorkers
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = defaultTaskTimeout
	}
	return o
}

// OptimizeForBatch returns options tuned for a batch of the expected size.
func (o Options) OptimizeForBatch(expectedBatchSize int) Options {
	switch {
	case expectedBatchSize > 100:
		o.EnableThreading = true
		o.MaxWorkers = min(8, expectedBatchSize/10)
		o.CacheSize = min(1024, expectedBatchSize*2)
	case expectedBatchSize > 20:
		o.EnableThreading = true
		o.MaxWorkers = 4
	}
	return o
}
