package analyzer

import (
	"sync"
	"sync/atomic"

	"jobanalyzer/internal/errors"
)

// Provider lazily builds one shared Analyzer on first use. A failed build is
// retried on the next Get.
type Provider struct {
	mu       sync.Mutex
	instance atomic.Pointer[Analyzer]
	build    func() (*Analyzer, error)
	logger   *errors.Logger
}

func NewProvider(build func() (*Analyzer, error), logger *errors.Logger) *Provider {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &Provider{build: build, logger: logger}
}

// Get returns the shared analyzer, or nil if it cannot be built.
func (p *Provider) Get() *Analyzer {
	if a := p.instance.Load(); a != nil {
		return a
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if a := p.instance.Load(); a != nil {
		return a
	}

	a, err := p.build()
	if err != nil {
		p.logger.Warn("Job analyzer not available", "error", err.Error())
		return nil
	}
	p.instance.Store(a)
	return a
}

// Ready reports whether the analyzer has been built.
func (p *Provider) Ready() bool {
	return p.instance.Load() != nil
}
