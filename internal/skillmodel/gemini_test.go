package skillmodel

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
)

type fakeModels struct {
	mu        sync.Mutex
	calls     int
	responses []func() (*genai.GenerateContentResponse, error)
	lastModel string
	lastCfg   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastModel = model
	f.lastCfg = cfg
	next := f.responses[min(f.calls, len(f.responses)-1)]
	f.calls++
	return next()
}

func (f *fakeModels) Get(_ context.Context, model string, _ *genai.GetModelConfig) (*genai.Model, error) {
	if model == "missing" {
		return nil, &googleapi.Error{Code: http.StatusNotFound}
	}
	return &genai.Model{Name: model, DisplayName: "Gemini Flash", Version: "001"}, nil
}

func textResponse(body string) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(body, genai.RoleModel)}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     120,
				CandidatesTokenCount: 30,
				TotalTokenCount:      150,
			},
		}, nil
	}
}

func failure(err error) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) { return nil, err }
}

type recorder struct {
	mu    sync.Mutex
	calls []CallStats
}

func (r *recorder) RecordModelCall(_ context.Context, stats CallStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, stats)
}

func geminiConfig() config.ModelConfig {
	return config.ModelConfig{
		Provider:    config.ModelProviderGemini,
		Model:       "gemini-2.0-flash",
		APIKey:      "test",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		Temperature: 0.1,
	}
}

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = prev })
}

const skillsJSON = `{"skills": [
	{"skill": "Python", "surface_form": "python3", "skill_type": "Hard Skill", "confidence": 0.92},
	{"skill": "Team leadership", "surface_form": "leading a team", "skill_type": "Soft Skill", "confidence": 0.7},
	{"skill": "Kubernetes", "surface_form": "k8s", "skill_type": "Hard Skill", "confidence": 0.4},
	{"skill": " ", "surface_form": "noise", "skill_type": "Hard Skill", "confidence": 1}
]}`

func TestGeminiModelAnnotate(t *testing.T) {
	fake := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){textResponse(skillsJSON)}}
	rec := &recorder{}
	g := newGeminiModel(fake, geminiConfig(), testDB(t), rec, errors.NewDiscardLogger())

	annotation, err := g.Annotate(context.Background(), "python3 and k8s, leading a team")
	require.NoError(t, err)

	require.Len(t, annotation.FullMatches, 3)
	assert.Equal(t, "KS_PY", annotation.FullMatches[0]["skill_id"], "known names map to database ids")
	assert.Equal(t, "python3", annotation.FullMatches[0]["surface_form"])
	assert.Equal(t, 0.92, annotation.FullMatches[0]["confidence"])
	assert.Equal(t, "Team leadership", annotation.FullMatches[1]["skill_id"])
	assert.Equal(t, "Soft Skill", annotation.FullMatches[1]["skill_type"])

	assert.Equal(t, "gemini-2.0-flash", fake.lastModel)
	assert.Equal(t, "application/json", fake.lastCfg.ResponseMIMEType)
	require.NotNil(t, fake.lastCfg.Temperature)
	assert.InDelta(t, 0.1, *fake.lastCfg.Temperature, 1e-6)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, TokenUsage{InputTokens: 120, OutputTokens: 30, TotalTokens: 150}, rec.calls[0].Usage)
	assert.NoError(t, rec.calls[0].Err)
	assert.Equal(t, "gemini:gemini-2.0-flash", g.Name())
}

func TestGeminiModelRetriesTransientErrors(t *testing.T) {
	fastRetries(t)
	fake := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		failure(&googleapi.Error{Code: http.StatusServiceUnavailable}),
		failure(&googleapi.Error{Code: http.StatusTooManyRequests}),
		textResponse(`{"skills": []}`),
	}}
	g := newGeminiModel(fake, geminiConfig(), nil, nil, errors.NewDiscardLogger())

	annotation, err := g.Annotate(context.Background(), "some posting text")
	require.NoError(t, err)
	assert.Empty(t, annotation.FullMatches)
	assert.Equal(t, 3, fake.calls)
}

func TestGeminiModelStopsOnPermanentErrors(t *testing.T) {
	fastRetries(t)
	fake := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){
		failure(&googleapi.Error{Code: http.StatusUnauthorized}),
	}}
	rec := &recorder{}
	g := newGeminiModel(fake, geminiConfig(), nil, rec, errors.NewDiscardLogger())

	_, err := g.Annotate(context.Background(), "some posting text")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeModelFailed))
	assert.Equal(t, 1, fake.calls)
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].Err)
}

func TestGeminiModelRejectsMalformedOutput(t *testing.T) {
	fake := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){textResponse("not json")}}
	g := newGeminiModel(fake, geminiConfig(), nil, nil, errors.NewDiscardLogger())

	_, err := g.Annotate(context.Background(), "some posting text")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestGeminiModelCircuitBreakerOpens(t *testing.T) {
	cfg := geminiConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
	fake := &fakeModels{responses: []func() (*genai.GenerateContentResponse, error){failure(fmt.Errorf("boom"))}}
	g := newGeminiModel(fake, cfg, nil, nil, errors.NewDiscardLogger())

	for range 2 {
		_, err := g.Annotate(context.Background(), "some posting text")
		require.Error(t, err)
	}
	_, err := g.Annotate(context.Background(), "some posting text")
	assert.True(t, stderrors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 2, fake.calls)

	stats := g.BreakerStats()
	assert.Equal(t, false, stats["overall_healthy"])
	assert.Equal(t, "open", stats["extraction"].(map[string]any)["state"])
}

func TestGeminiModelInfo(t *testing.T) {
	g := newGeminiModel(&fakeModels{}, geminiConfig(), nil, nil, errors.NewDiscardLogger())
	info := g.ModelInfo(context.Background())
	assert.True(t, info.Available)
	assert.Equal(t, "Gemini Flash", info.DisplayName)

	cfg := geminiConfig()
	cfg.Model = "missing"
	info = newGeminiModel(&fakeModels{}, cfg, nil, nil, errors.NewDiscardLogger()).ModelInfo(context.Background())
	assert.False(t, info.Available)
	assert.NotEmpty(t, info.Error)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", fmt.Errorf("bad request"), false},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"wrapped gateway timeout", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusGatewayTimeout}), true},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestBackoffIsCapped(t *testing.T) {
	assert.GreaterOrEqual(t, backoff(1), retryBaseDelay)
	assert.Less(t, backoff(1), 2*retryBaseDelay)
	assert.Equal(t, maxBackoff, backoff(10))
}

func TestNewGeminiModelRequiresKey(t *testing.T) {
	cfg := geminiConfig()
	cfg.APIKey = ""
	_, err := NewGeminiModel(context.Background(), cfg, nil, nil, errors.NewDiscardLogger())
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))
}
