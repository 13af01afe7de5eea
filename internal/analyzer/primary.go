package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobanalyzer/internal/errors"
)

// RawMatch is one loosely typed match produced by a skill model.
type RawMatch map[string]any

// Annotation is a skill model's output for one text. Only full matches feed
// extraction; partial matches are informational.
type Annotation struct {
	FullMatches []RawMatch `json:"full_matches"`
	NgramScored []RawMatch `json:"ngram_scored,omitempty"`
}

// SkillModel annotates text against a skill database.
type SkillModel interface {
	Name() string
	Annotate(ctx context.Context, text string) (*Annotation, error)
}

// ModelFactory constructs a SkillModel. It may fail transiently.
type ModelFactory func() (SkillModel, error)

const modelInitAttempts = 3

// modelInitDelay is the pause between model construction attempts.
var modelInitDelay = 500 * time.Millisecond

// fieldAccessor reads one candidate value from a raw match.
type fieldAccessor func(RawMatch) string

func field(key string) fieldAccessor {
	return func(m RawMatch) string {
		return asString(m[key])
	}
}

func surfaceFormField(key string) fieldAccessor {
	return func(m RawMatch) string {
		first, ok := firstSurfaceForm(m)
		if !ok {
			return ""
		}
		return asString(first[key])
	}
}

// resolve returns the first non-empty value in accessor order.
func resolve(m RawMatch, accessors ...fieldAccessor) string {
	for _, get := range accessors {
		if v := strings.TrimSpace(get(m)); v != "" {
			return v
		}
	}
	return ""
}

var (
	skillIDFields      = []fieldAccessor{field("skill_id"), field("skill"), field("id")}
	skillTypeFields    = []fieldAccessor{field("skill_type"), field("type")}
	surfaceFormFields  = []fieldAccessor{surfaceFormField("surface_form"), surfaceFormField("surface"), surfaceFormField("text")}
	topLevelFormFields = []fieldAccessor{field("surface_form"), field("surface"), field("text")}
	confidenceKeys     = []string{"confidence_score", "score", "confidence"}
)

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool, map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// firstSurfaceForm returns surface_forms[0] when the field is a non-empty list.
func firstSurfaceForm(m RawMatch) (map[string]any, bool) {
	forms, ok := m["surface_forms"].([]any)
	if !ok || len(forms) == 0 {
		return nil, false
	}
	first, ok := forms[0].(map[string]any)
	return first, ok
}

func hasSurfaceFormList(m RawMatch) bool {
	forms, ok := m["surface_forms"].([]any)
	return ok && len(forms) > 0
}

// PrimaryExtractor turns skill model annotations into skills. A nil or
// disabled extractor returns no skills.
type PrimaryExtractor struct {
	model     SkillModel
	names     *SkillDatabase
	threshold float64
	maxSkills int
	logger    *errors.Logger
}

// NewPrimaryExtractor constructs the model, retrying transient failures. If
// every attempt fails the failure is logged once and the returned extractor
// is disabled.
func NewPrimaryExtractor(factory ModelFactory, names *SkillDatabase, opts Options, logger *errors.Logger) *PrimaryExtractor {
	p := &PrimaryExtractor{
		names:     names,
		threshold: opts.ConfidenceThreshold,
		maxSkills: opts.MaxSkillsPerJob,
		logger:    logger,
	}
	if factory == nil {
		return p
	}

	var lastErr error
	for attempt := 1; attempt <= modelInitAttempts; attempt++ {
		model, err := factory()
		if err == nil && model != nil {
			p.model = model
			logger.Info("Skill model initialized", "model", model.Name(), "attempt", attempt)
			return p
		}
		if err == nil {
			err = fmt.Errorf("factory returned no model")
		}
		lastErr = err
		if attempt < modelInitAttempts {
			logger.Warn("Skill model init attempt failed, retrying", "attempt", attempt, "error", err.Error())
			time.Sleep(modelInitDelay)
		}
	}

	logger.LogError(
		errors.NewExtractionError(errors.ErrCodeExtractorUnavailable, "skill model initialization failed", lastErr).
			WithContext("attempts", modelInitAttempts),
		"Primary skill extractor disabled",
	)
	return p
}

// Enabled reports whether a model is available.
func (p *PrimaryExtractor) Enabled() bool {
	return p != nil && p.model != nil
}

// ModelName returns the underlying model name, or an empty string.
func (p *PrimaryExtractor) ModelName() string {
	if !p.Enabled() {
		return ""
	}
	return p.model.Name()
}

// Extract annotates text and converts matches at or above the confidence
// threshold into skills. Malformed matches are skipped.
func (p *PrimaryExtractor) Extract(ctx context.Context, text string) ([]ExtractedSkill, time.Duration) {
	if !p.Enabled() {
		return []ExtractedSkill{}, 0
	}

	start := time.Now()
	annotation, err := p.model.Annotate(ctx, text)
	if err != nil {
		p.logger.LogError(
			errors.NewExtractionError(errors.ErrCodeModelFailed, "skill model annotation failed", err),
			"Primary skill extraction failed",
			"model", p.model.Name(),
		)
		return []ExtractedSkill{}, time.Since(start)
	}
	if annotation == nil {
		return []ExtractedSkill{}, time.Since(start)
	}

	matches := annotation.FullMatches
	if len(matches) > p.maxSkills {
		matches = matches[:p.maxSkills]
	}

	skills := make([]ExtractedSkill, 0, len(matches))
	for i, m := range matches {
		skill, ok, err := p.convert(m)
		if err != nil {
			p.logger.Warn("Error processing skill data", "index", i, "error", err.Error())
			continue
		}
		if ok {
			skills = append(skills, skill)
		}
	}

	elapsed := time.Since(start)
	p.logger.Debug("Primary extractor finished", "skills", len(skills), "elapsed", elapsed.String())
	return skills, elapsed
}

// convert maps one raw match to a skill. ok is false for matches that are
// well formed but filtered out.
func (p *PrimaryExtractor) convert(m RawMatch) (ExtractedSkill, bool, error) {
	if m == nil {
		return ExtractedSkill{}, false, fmt.Errorf("empty match")
	}
	if hasSurfaceFormList(m) {
		if _, ok := firstSurfaceForm(m); !ok {
			return ExtractedSkill{}, false, fmt.Errorf("surface_forms[0] is not an object")
		}
	}

	id := resolve(m, skillIDFields...)
	if id == "" {
		return ExtractedSkill{}, false, nil
	}

	name, ok := p.names.Name(id)
	if !ok || name == "" {
		name = resolve(m, surfaceFormField("surface_form"), func(RawMatch) string { return id })
	}

	var surface string
	if hasSurfaceFormList(m) {
		surface = resolve(m, surfaceFormFields...)
	} else {
		surface = resolve(m, topLevelFormFields...)
	}
	if surface == "" {
		surface = name
	}

	confidence := 0.0
	for _, key := range confidenceKeys {
		if raw, present := m[key]; present {
			if f, ok := asFloat(raw); ok {
				confidence = f
				break
			}
		}
	}
	if confidence < p.threshold {
		return ExtractedSkill{}, false, nil
	}

	skillType := resolve(m, skillTypeFields...)
	if skillType == "" {
		skillType = "Technical"
	}

	skill := NewSkill(name, surface, confidence, skillType, SourcePrimary)
	if skill.Name == "" || skill.SurfaceForm == "" {
		return ExtractedSkill{}, false, nil
	}
	return skill, true, nil
}
