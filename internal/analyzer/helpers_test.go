package analyzer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/nlp"
)

const samplePosting = "Looking for a Python developer with Docker and PostgreSQL experience"

type fakeModel struct {
	matches  []RawMatch
	annotate func(ctx context.Context, text string) (*Annotation, error)
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) Annotate(ctx context.Context, text string) (*Annotation, error) {
	if m.annotate != nil {
		return m.annotate(ctx, text)
	}
	return &Annotation{FullMatches: m.matches}, nil
}

type fakePipeline struct {
	doc *nlp.Doc
}

func (p fakePipeline) Process(text string) *nlp.Doc {
	return p.doc
}

type memoryShared struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryShared() *memoryShared {
	return &memoryShared{items: map[string][]byte{}}
}

func (m *memoryShared) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memoryShared) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	m.sets++
	return nil
}

type recordingObserver struct {
	mu       sync.Mutex
	analyzed int
	hits     int
	misses   int
	batches  int
}

func (o *recordingObserver) JobAnalyzed(context.Context, *JobAnalysisResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.analyzed++
}

func (o *recordingObserver) CacheLookup(_ context.Context, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) BatchCompleted(context.Context, int, int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches++
}

func testSkillDB(t *testing.T) *SkillDatabase {
	t.Helper()
	db, err := ParseSkillDatabase([]byte(`{
		"KS_PY": {"skill_name": "Python", "skill_type": "Hard Skill", "surface_forms": ["python"]},
		"KS_GO": {"surface_forms": ["golang", "go"]},
		"KS_RAW": "Raw Skill"
	}`), "json", nil)
	require.NoError(t, err)
	return db
}

func newTestAnalyzer(t *testing.T, opts Options, options ...Option) *Analyzer {
	t.Helper()
	a, err := New(opts, errors.NewDiscardLogger(), options...)
	require.NoError(t, err)
	return a
}

func skillNames(skills []ExtractedSkill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

func findSkill(skills []ExtractedSkill, name string) (ExtractedSkill, bool) {
	for _, s := range skills {
		if s.Name == name {
			return s, true
		}
	}
	return ExtractedSkill{}, false
}
