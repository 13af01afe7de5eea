// Package observability wires OpenTelemetry tracing and metrics for the
// analyzer, the skill models and the HTTP server.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/skillmodel"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds all custom metrics for the analyzer service
type Metrics struct {
	// Analysis metrics
	JobsAnalyzed     metric.Int64Counter
	AnalysisDuration metric.Float64Histogram
	SkillsExtracted  metric.Int64Histogram
	CacheLookups     metric.Int64Counter
	BatchesCompleted metric.Int64Counter
	BatchFailures    metric.Int64Counter

	// Skill model metrics
	ModelDuration   metric.Float64Histogram
	ModelRequests   metric.Int64Counter
	ModelErrors     metric.Int64Counter
	ModelTokenUsage metric.Int64Histogram

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup. It implements
// analyzer.Observer and skillmodel.CallRecorder.
type ObservabilityManager struct {
	config         config.ObservabilityConfig
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error

	prometheusHandler http.Handler
	manualReader      *sdkmetric.ManualReader
}

var (
	_ analyzer.Observer       = (*ObservabilityManager)(nil)
	_ skillmodel.CallRecorder = (*ObservabilityManager)(nil)
)

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig config.ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if obsConfig.Tracing.Enabled {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if obsConfig.Metrics.Enabled {
		if err := om.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return om, nil
}

// initResource creates the OpenTelemetry resource shared by traces and metrics
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.serviceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		// Console exporter for development
		opts := []stdouttrace.Option{}
		if om.config.Console.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.config.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(sampleRate(om.config)))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(om.resource),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.config.Metrics.CollectionInterval)))
	}

	if om.config.OTLP.Enabled {
		otlpReader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, otlpReader)
	}

	if om.config.Prometheus.Enabled {
		prometheusReader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		readers = append(readers, prometheusReader)
		om.prometheusHandler = handler

		if server := StartPrometheusServer(handler, om.config.Prometheus); server != nil {
			om.shutdownFuncs = append(om.shutdownFuncs, server.Shutdown)
		}
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		om.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, om.manualReader)
	}

	return readers, nil
}

// initCustomMetrics creates all custom metrics
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createAnalysisMetrics(meter); err != nil {
		return err
	}
	if err := om.createModelMetrics(meter); err != nil {
		return err
	}
	return om.createRateLimitMetrics(meter)
}

// createAnalysisMetrics creates per-job, cache and batch metrics
func (om *ObservabilityManager) createAnalysisMetrics(meter metric.Meter) error {
	var err error

	om.metrics.JobsAnalyzed, err = meter.Int64Counter(
		"jobanalyzer_jobs_analyzed_total",
		metric.WithDescription("Total number of job postings analyzed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create jobs analyzed metric: %w", err)
	}

	om.metrics.AnalysisDuration, err = meter.Float64Histogram(
		"jobanalyzer_analysis_duration_seconds",
		metric.WithDescription("Time spent analyzing a job posting"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	om.metrics.SkillsExtracted, err = meter.Int64Histogram(
		"jobanalyzer_skills_extracted",
		metric.WithDescription("Number of unique skills extracted per posting"),
		metric.WithExplicitBucketBoundaries(0, 1, 3, 5, 10, 20, 30, 50),
	)
	if err != nil {
		return fmt.Errorf("failed to create skills extracted metric: %w", err)
	}

	om.metrics.CacheLookups, err = meter.Int64Counter(
		"jobanalyzer_cache_lookups_total",
		metric.WithDescription("Result cache lookups by result"),
	)
	if err != nil {
		return fmt.Errorf("failed to create cache lookups metric: %w", err)
	}

	om.metrics.BatchesCompleted, err = meter.Int64Counter(
		"jobanalyzer_batches_total",
		metric.WithDescription("Total number of batches analyzed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batches metric: %w", err)
	}

	om.metrics.BatchFailures, err = meter.Int64Counter(
		"jobanalyzer_batch_failures_total",
		metric.WithDescription("Batch jobs that timed out or failed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batch failures metric: %w", err)
	}

	return nil
}

// createModelMetrics creates remote skill model metrics
func (om *ObservabilityManager) createModelMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ModelDuration, err = meter.Float64Histogram(
		"jobanalyzer_model_duration_seconds",
		metric.WithDescription("Time spent in skill model calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create model duration metric: %w", err)
	}

	om.metrics.ModelRequests, err = meter.Int64Counter(
		"jobanalyzer_model_requests_total",
		metric.WithDescription("Total number of skill model requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create model request count metric: %w", err)
	}

	om.metrics.ModelErrors, err = meter.Int64Counter(
		"jobanalyzer_model_errors_total",
		metric.WithDescription("Total number of skill model request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create model error count metric: %w", err)
	}

	om.metrics.ModelTokenUsage, err = meter.Int64Histogram(
		"jobanalyzer_model_token_usage",
		metric.WithDescription("Token usage for skill model requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create model token usage metric: %w", err)
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (om *ObservabilityManager) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"jobanalyzer_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{}
	if om.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(om.tracerProvider))
	}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// MetricsHandler returns the Prometheus scrape handler, or nil when the
// Prometheus exporter is disabled.
func (om *ObservabilityManager) MetricsHandler() http.Handler {
	return om.prometheusHandler
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// JobAnalyzed records one analyzed posting
func (om *ObservabilityManager) JobAnalyzed(ctx context.Context, result *analyzer.JobAnalysisResult) {
	analysis := om.config.CustomMetrics.Analysis
	if om.metrics == nil || !analysis.Enabled || result == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", result.Metadata.Error == ""),
		attribute.Bool("fast_mode", result.Metadata.FastMode),
	)
	om.metrics.JobsAnalyzed.Add(ctx, 1, attrs)
	if analysis.TrackDuration {
		om.metrics.AnalysisDuration.Record(ctx, result.ProcessingTime, attrs)
	}
	if analysis.TrackSkillCounts {
		om.metrics.SkillsExtracted.Record(ctx, int64(len(result.Skills)), attrs)
	}
}

// CacheLookup records a result cache hit or miss
func (om *ObservabilityManager) CacheLookup(ctx context.Context, hit bool) {
	analysis := om.config.CustomMetrics.Analysis
	if om.metrics == nil || !analysis.Enabled || !analysis.TrackCache {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	om.metrics.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// BatchCompleted records a finished batch and its failed jobs
func (om *ObservabilityManager) BatchCompleted(ctx context.Context, succeeded, failed int, elapsed time.Duration) {
	if om.metrics == nil || !om.config.CustomMetrics.Analysis.Enabled {
		return
	}

	om.metrics.BatchesCompleted.Add(ctx, 1, metric.WithAttributes(attribute.Int("jobs", succeeded+failed)))
	if failed > 0 {
		om.metrics.BatchFailures.Add(ctx, int64(failed))
	}

	_, span := om.Tracer("jobanalyzer.batch").Start(ctx, "batch.completed")
	span.SetAttributes(
		attribute.Int("batch.succeeded", succeeded),
		attribute.Int("batch.failed", failed),
		attribute.Float64("batch.elapsed_seconds", elapsed.Seconds()),
	)
	span.End()
}

// RecordModelCall records duration, outcome and token usage of a skill model call
func (om *ObservabilityManager) RecordModelCall(ctx context.Context, stats skillmodel.CallStats) {
	ops := om.config.CustomMetrics.ModelOperations
	if om.metrics == nil || !ops.Enabled {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("model", stats.Model),
		attribute.String("operation", stats.Operation),
		attribute.Bool("success", stats.Err == nil),
	}

	if ops.TrackDuration {
		om.metrics.ModelDuration.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(attrs...))
	}
	om.metrics.ModelRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	if stats.Err != nil {
		om.metrics.ModelErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if ops.TrackTokenUsage {
		om.recordTokenMetrics(ctx, stats.Usage, attrs)
	}
}

// recordTokenMetrics records individual token usage metrics
func (om *ObservabilityManager) recordTokenMetrics(ctx context.Context, usage skillmodel.TokenUsage, attrs []attribute.KeyValue) {
	if usage.TotalTokens == 0 {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		om.metrics.ModelTokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordRateLimitHit counts a rejected request
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limitType, path string) {
	infra := om.config.CustomMetrics.Infrastructure
	if om.metrics == nil || !infra.Enabled || !infra.TrackRateLimits {
		return
	}
	om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limit_type", limitType),
		attribute.String("path", path),
	))
}

// No-op exporters for when console output is disabled
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.config.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.config.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.config.Metrics.CollectionInterval)), nil
}

// serviceInstanceID returns the service instance ID from config
func (om *ObservabilityManager) serviceInstanceID() string {
	if om.config.ServiceInstance != "" {
		return om.config.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}
