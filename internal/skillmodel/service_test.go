package skillmodel

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
)

func TestServiceFactory(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		wantNil    bool
		wantErr    bool
		wantName   string
		wantStatus bool
	}{
		{name: "none", provider: config.ModelProviderNone, wantNil: true},
		{name: "empty", provider: "", wantNil: true},
		{name: "dictionary", provider: config.ModelProviderDictionary, wantName: "dictionary", wantStatus: true},
		{name: "gemini without key", provider: config.ModelProviderGemini, wantErr: true},
		{name: "unknown", provider: "unknown-provider", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(config.ModelConfig{Provider: tt.provider}, testDB(t), nil, errors.NewDiscardLogger())
			factory := svc.Factory()
			if tt.wantNil {
				assert.Nil(t, factory)
				return
			}
			require.NotNil(t, factory)

			model, err := factory()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc.Model())
				assert.False(t, svc.ModelInfo(context.Background()).Available)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, model.Name())
			assert.Same(t, model, svc.Model())
			assert.Equal(t, tt.wantStatus, svc.ModelInfo(context.Background()).Available)
			assert.Equal(t, false, svc.Stats()["enabled"])
		})
	}
}

func TestBreakerDisabledPassesThrough(t *testing.T) {
	var b *Breaker[int]
	assert.Nil(t, NewBreaker[int]("off", config.CircuitBreakerConfig{}, errors.NewDiscardLogger()))

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, b.Healthy())
	assert.Equal(t, map[string]any{"enabled": false}, b.Stats())
}

func TestBreakerTripsAndRecovers(t *testing.T) {
	b := NewBreaker[int]("test", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          20 * time.Millisecond,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}, errors.NewDiscardLogger())
	require.NotNil(t, b)

	fail := func() (int, error) { return 0, fmt.Errorf("unavailable") }
	succeed := func() (int, error) { return 1, nil }

	_, _ = b.Execute(succeed)
	_, _ = b.Execute(fail)
	_, _ = b.Execute(fail)
	assert.False(t, b.Healthy(), "2 of 3 requests failed")
	assert.Equal(t, "test", b.Stats()["name"])

	assert.Eventually(t, func() bool {
		_, err := b.Execute(succeed)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	assert.True(t, b.Healthy())
}
