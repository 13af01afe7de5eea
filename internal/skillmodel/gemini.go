package skillmodel

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	extractOperation  = "extract_skills"
	maxBackoff        = 30 * time.Second
	modelCheckTimeout = 10 * time.Second
)

// retryBaseDelay is the first retry backoff; later retries double it.
var retryBaseDelay = time.Second

// modelsAPI is the part of the genai client the Gemini model uses
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiModel is a remote skill model backed by Google Gemini structured output
type GeminiModel struct {
	models       modelsAPI
	cfg          config.ModelConfig
	index        map[string]string // lowercase skill name or surface form -> skill id
	breaker      *Breaker[*genai.GenerateContentResponse]
	modelBreaker *Breaker[*genai.Model]
	recorder     CallRecorder
	logger       *errors.Logger
}

// NewGeminiModel creates a Gemini client. Skills the model returns are mapped
// back to db ids where a name or surface form matches.
func NewGeminiModel(ctx context.Context, cfg config.ModelConfig, db *analyzer.SkillDatabase, recorder CallRecorder, logger *errors.Logger) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "Gemini API key is not configured", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeModelFailed, "Failed to create Gemini client", err)
	}
	return newGeminiModel(client.Models, cfg, db, recorder, logger), nil
}

func newGeminiModel(models modelsAPI, cfg config.ModelConfig, db *analyzer.SkillDatabase, recorder CallRecorder, logger *errors.Logger) *GeminiModel {
	g := &GeminiModel{
		models:       models,
		cfg:          cfg,
		index:        map[string]string{},
		breaker:      NewBreaker[*genai.GenerateContentResponse]("Gemini-"+extractOperation, cfg.CircuitBreaker, logger),
		modelBreaker: NewBreaker[*genai.Model]("Gemini-model-info", cfg.CircuitBreaker, logger),
		recorder:     recorder,
		logger:       logger,
	}
	if db != nil {
		for _, entry := range db.Entries {
			g.index[strings.ToLower(entry.Name)] = entry.ID
			for _, form := range entry.SurfaceForms {
				if _, taken := g.index[strings.ToLower(form)]; !taken {
					g.index[strings.ToLower(form)] = entry.ID
				}
			}
		}
	}
	return g
}

// Name implements analyzer.SkillModel
func (g *GeminiModel) Name() string { return "gemini:" + g.cfg.Model }

type geminiSkill struct {
	Skill       string  `json:"skill"`
	SurfaceForm string  `json:"surface_form"`
	SkillType   string  `json:"skill_type"`
	Confidence  float64 `json:"confidence"`
}

type geminiResponse struct {
	Skills []geminiSkill `json:"skills"`
}

// Annotate implements analyzer.SkillModel
func (g *GeminiModel) Annotate(ctx context.Context, text string) (*analyzer.Annotation, error) {
	tracer := otel.Tracer("jobanalyzer.skillmodel.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+extractOperation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", config.ModelProviderGemini),
		attribute.String("ai.model", g.cfg.Model),
		attribute.Float64("ai.temperature", float64(g.cfg.Temperature)),
		attribute.Int("input.job_length", len(text)),
	)

	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(callCtx, extractOperation, func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(callCtx, g.cfg.Model, genai.Text(fmt.Sprintf(DefaultUserPrompt, text)), g.generateConfig())
		})
	})
	usage := extractTokenUsage(result)
	g.record(ctx, time.Since(start), usage, err)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewExtractionError(errors.ErrCodeModelFailed, "Failed to generate content for "+extractOperation, err)
	}

	var payload geminiResponse
	if err := json.Unmarshal([]byte(result.Text()), &payload); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewExtractionError(errors.ErrCodeInvalidFormat, "Failed to parse model response for "+extractOperation, err)
	}

	annotation := &analyzer.Annotation{FullMatches: make([]analyzer.RawMatch, 0, len(payload.Skills))}
	for _, s := range payload.Skills {
		if strings.TrimSpace(s.Skill) == "" {
			continue
		}
		annotation.FullMatches = append(annotation.FullMatches, g.toRawMatch(s))
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.skills_count", len(annotation.FullMatches)),
	)
	return annotation, nil
}

func (g *GeminiModel) toRawMatch(s geminiSkill) analyzer.RawMatch {
	id := strings.TrimSpace(s.Skill)
	if known, ok := g.index[strings.ToLower(id)]; ok {
		id = known
	} else if known, ok := g.index[strings.ToLower(strings.TrimSpace(s.SurfaceForm))]; ok {
		id = known
	}

	m := analyzer.RawMatch{
		"skill_id":     id,
		"surface_form": s.SurfaceForm,
		"confidence":   s.Confidence,
	}
	if s.SkillType != "" {
		m["skill_type"] = s.SkillType
	}
	return m
}

func (g *GeminiModel) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(DefaultSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"skills": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"skill":        {Type: genai.TypeString},
							"surface_form": {Type: genai.TypeString},
							"skill_type":   {Type: genai.TypeString},
							"confidence":   {Type: genai.TypeNumber},
						},
						Required: []string{"skill", "surface_form", "skill_type", "confidence"},
					},
				},
			},
			Required: []string{"skills"},
		},
	}

	if g.cfg.Temperature > 0 {
		temperature := g.cfg.Temperature
		cfg.Temperature = &temperature
	}
	return cfg
}

// executeWithRetry executes a model call with retry logic and exponential backoff
func (g *GeminiModel) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying model operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.cfg.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Model operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Model operation failed after all retry attempts",
		"operation", operation,
		"max_retries", g.cfg.MaxRetries)

	return nil, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// backoff doubles retryBaseDelay per attempt, adds up to 10% jitter and caps at maxBackoff
func backoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt-1))) * retryBaseDelay
	var jitter time.Duration
	if jitterMax := big.NewInt(int64(float64(base) * 0.1)); jitterMax.Sign() > 0 {
		if j, err := rand.Int(rand.Reader, jitterMax); err == nil {
			jitter = time.Duration(j.Int64())
		}
	}
	return min(base+jitter, maxBackoff)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// timeouts, refused connections and resets
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

func (g *GeminiModel) record(ctx context.Context, elapsed time.Duration, usage *TokenUsage, err error) {
	if g.recorder == nil {
		return
	}
	stats := CallStats{Model: g.cfg.Model, Operation: extractOperation, Duration: elapsed, Err: err}
	if usage != nil {
		stats.Usage = *usage
	}
	g.recorder.RecordModelCall(ctx, stats)
}

// ModelInfo checks the availability of the configured model
func (g *GeminiModel) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.cfg.Model, Provider: config.ModelProviderGemini}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.cfg.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed", "model", g.cfg.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// BreakerStats returns circuit breaker statistics for both call paths
func (g *GeminiModel) BreakerStats() map[string]any {
	return map[string]any{
		"extraction":      g.breaker.Stats(),
		"model_info":      g.modelBreaker.Stats(),
		"overall_healthy": g.breaker.Healthy() && g.modelBreaker.Healthy(),
	}
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
