package observability

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/skillmodel"
)

func manualConfig() config.ObservabilityConfig {
	cfg := GetObservabilityConfig(nil, "test")
	cfg.Prometheus.Enabled = false
	cfg.Tracing.Enabled = false
	return cfg
}

func newManager(t *testing.T, cfg config.ObservabilityConfig) *ObservabilityManager {
	t.Helper()
	om, err := NewObservabilityManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om
}

func collect(t *testing.T, om *ObservabilityManager) map[string]metricdata.Metrics {
	t.Helper()
	require.NotNil(t, om.manualReader)
	var rm metricdata.ResourceMetrics
	require.NoError(t, om.manualReader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.Emit()] += dp.Value
	}
	return out
}

func TestGetObservabilityConfig(t *testing.T) {
	defaults := GetObservabilityConfig(nil, "1.2.3")
	assert.Equal(t, "jobanalyzer", defaults.ServiceName)
	assert.Equal(t, "1.2.3", defaults.ServiceVersion)
	assert.True(t, defaults.CustomMetrics.Analysis.TrackCache)

	cfg := &config.Config{Observability: config.ObservabilityConfig{ServiceName: "analyzer-api", SampleRate: 0.5}}
	resolved := GetObservabilityConfig(cfg, "2.0.0")
	assert.Equal(t, "analyzer-api", resolved.ServiceName)
	assert.Equal(t, "2.0.0", resolved.ServiceVersion)
	assert.Equal(t, defaultCollectionInterval, resolved.Metrics.CollectionInterval)
	assert.Equal(t, "/metrics", resolved.Prometheus.Endpoint)
	assert.Equal(t, 0.5, sampleRate(resolved))

	resolved.Tracing.SampleRate = 0.1
	assert.Equal(t, 0.1, sampleRate(resolved))
}

func TestObserverRecordsAnalysisMetrics(t *testing.T) {
	om := newManager(t, manualConfig())

	a, err := analyzer.New(analyzer.DefaultOptions(), errors.NewDiscardLogger(), analyzer.WithObserver(om))
	require.NoError(t, err)

	text := "Site reliability engineer: Kubernetes, Terraform, AWS and Python automation"
	a.Analyze(context.Background(), text, "job-1")
	a.Analyze(context.Background(), text, "job-2")

	metrics := collect(t, om)
	assert.Equal(t, map[string]int64{"true": 1}, sumByAttr(t, metrics["jobanalyzer_jobs_analyzed_total"], "success"))
	assert.Equal(t, map[string]int64{"hit": 1, "miss": 1}, sumByAttr(t, metrics["jobanalyzer_cache_lookups_total"], "result"))
	assert.Contains(t, metrics, "jobanalyzer_analysis_duration_seconds")
	assert.Contains(t, metrics, "jobanalyzer_skills_extracted")
}

func TestObserverRecordsBatches(t *testing.T) {
	om := newManager(t, manualConfig())

	om.BatchCompleted(context.Background(), 8, 2, time.Second)
	om.BatchCompleted(context.Background(), 3, 0, time.Second)

	metrics := collect(t, om)
	failures := metrics["jobanalyzer_batch_failures_total"].Data.(metricdata.Sum[int64])
	require.Len(t, failures.DataPoints, 1)
	assert.Equal(t, int64(2), failures.DataPoints[0].Value)
	assert.Equal(t, map[string]int64{"10": 1, "3": 1}, sumByAttr(t, metrics["jobanalyzer_batches_total"], "jobs"))
}

func TestRecordModelCall(t *testing.T) {
	om := newManager(t, manualConfig())
	var recorder skillmodel.CallRecorder = om

	recorder.RecordModelCall(context.Background(), skillmodel.CallStats{
		Model:     "gemini-2.0-flash",
		Operation: "extract_skills",
		Duration:  200 * time.Millisecond,
		Usage:     skillmodel.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120},
	})
	recorder.RecordModelCall(context.Background(), skillmodel.CallStats{
		Model:     "gemini-2.0-flash",
		Operation: "extract_skills",
		Err:       fmt.Errorf("unavailable"),
	})

	metrics := collect(t, om)
	assert.Equal(t, map[string]int64{"true": 1, "false": 1}, sumByAttr(t, metrics["jobanalyzer_model_requests_total"], "success"))
	assert.Equal(t, map[string]int64{"false": 1}, sumByAttr(t, metrics["jobanalyzer_model_errors_total"], "success"))

	tokens := metrics["jobanalyzer_model_token_usage"].Data.(metricdata.Histogram[int64])
	assert.Len(t, tokens.DataPoints, 3, "input, output and total")
}

func TestRateLimitHitsRespectConfig(t *testing.T) {
	cfg := manualConfig()
	om := newManager(t, cfg)
	om.RecordRateLimitHit(context.Background(), "ip", "/analyze")
	om.RecordRateLimitHit(context.Background(), "api_key", "/analyze")
	assert.Equal(t, map[string]int64{"ip": 1, "api_key": 1},
		sumByAttr(t, collect(t, om)["jobanalyzer_rate_limit_hits_total"], "limit_type"))

	cfg.CustomMetrics.Infrastructure.TrackRateLimits = false
	quiet := newManager(t, cfg)
	quiet.RecordRateLimitHit(context.Background(), "ip", "/analyze")
	assert.NotContains(t, collect(t, quiet), "jobanalyzer_rate_limit_hits_total")
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om := newManager(t, config.ObservabilityConfig{})

	om.JobAnalyzed(context.Background(), &analyzer.JobAnalysisResult{})
	om.CacheLookup(context.Background(), true)
	om.BatchCompleted(context.Background(), 1, 1, time.Second)
	om.RecordModelCall(context.Background(), skillmodel.CallStats{})
	om.RecordRateLimitHit(context.Background(), "ip", "/")

	assert.Nil(t, om.MetricsHandler())
	_, span := om.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())

	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestPrometheusHandlerServesCustomMetrics(t *testing.T) {
	cfg := manualConfig()
	cfg.Prometheus = config.PrometheusConfig{Enabled: true, Endpoint: "/metrics"}
	om := newManager(t, cfg)
	require.NotNil(t, om.MetricsHandler())
	assert.Nil(t, om.manualReader)

	om.CacheLookup(context.Background(), false)

	rec := httptest.NewRecorder()
	om.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "jobanalyzer_cache_lookups_total"), "scrape output:\n%s", body)
	assert.Contains(t, body, "go_goroutines")
}
