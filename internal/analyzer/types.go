package analyzer

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Skill sources
const (
	SourcePrimary  = "skillNER"
	SourceFallback = "fallback"
)

// timestampLayout matches the ISO-8601 local timestamps written into metadata.
const timestampLayout = "2006-01-02T15:04:05.000000"

// ExtractedSkill is one recognized skill or technology mention.
type ExtractedSkill struct {
	Name        string  `json:"name"`
	SurfaceForm string  `json:"surface_form"`
	Confidence  float64 `json:"confidence"`
	SkillType   string  `json:"skill_type"`
	Source      string  `json:"source"`
}

// NewSkill builds a skill with trimmed text fields and a confidence clamped to [0,1].
func NewSkill(name, surfaceForm string, confidence float64, skillType, source string) ExtractedSkill {
	return ExtractedSkill{
		Name:        strings.TrimSpace(name),
		SurfaceForm: strings.TrimSpace(surfaceForm),
		Confidence:  clamp01(confidence),
		SkillType:   skillType,
		Source:      source,
	}
}

// ExtractedEntity is a named entity found in the normalized text.
type ExtractedEntity struct {
	Text        string  `json:"text"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// NewEntity builds an entity with trimmed text and a clamped confidence.
func NewEntity(text, label, description string, confidence float64, start, end int) ExtractedEntity {
	return ExtractedEntity{
		Text:        strings.TrimSpace(text),
		Label:       label,
		Description: description,
		Confidence:  clamp01(confidence),
		Start:       start,
		End:         end,
	}
}

// Keyword is a scored lexical term.
type Keyword struct {
	Text            string   `json:"text"`
	POS             string   `json:"pos"`
	Frequency       int      `json:"frequency"`
	OriginalForms   []string `json:"original_forms"`
	ImportanceScore float64  `json:"importance_score"`
	IsTechnical     bool     `json:"is_technical"`
}

// ProcessingTimes holds per-stage durations in seconds.
type ProcessingTimes struct {
	Total    float64 `json:"total"`
	Skillner float64 `json:"skillner"`
	Fallback float64 `json:"fallback"`
	Entities float64 `json:"entities"`
	Keywords float64 `json:"keywords"`
}

// Metadata describes how a result was produced. A degenerate result only
// carries Error, ProcessingTime and ProcessingTimestamp.
type Metadata struct {
	OriginalLength      int             `json:"original_length"`
	CleanedLength       int             `json:"cleaned_length"`
	WordCount           int             `json:"word_count"`
	SkillnerSkillsCount int             `json:"skillner_skills_count"`
	FallbackSkillsCount int             `json:"fallback_skills_count"`
	TotalUniqueSkills   int             `json:"total_unique_skills"`
	EntitiesCount       int             `json:"entities_count"`
	KeywordsCount       int             `json:"keywords_count"`
	ProcessingTimes     ProcessingTimes `json:"processing_times"`
	FastMode            bool            `json:"fast_mode"`
	ConfidenceThreshold float64         `json:"confidence_threshold"`
	ProcessingTimestamp string          `json:"processing_timestamp"`

	Error          string  `json:"error,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
}

type errorMetadata struct {
	Error               string  `json:"error"`
	ProcessingTime      float64 `json:"processing_time"`
	ProcessingTimestamp string  `json:"processing_timestamp"`
}

// MarshalJSON writes the reduced shape for degenerate results.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.Error != "" {
		return json.Marshal(errorMetadata{
			Error:               m.Error,
			ProcessingTime:      m.ProcessingTime,
			ProcessingTimestamp: m.ProcessingTimestamp,
		})
	}
	type plain Metadata
	return json.Marshal(plain(m))
}

// JobAnalysisResult is the unit of work and the unit of caching.
type JobAnalysisResult struct {
	JobID                string            `json:"job_id"`
	Skills               []ExtractedSkill  `json:"skills"`
	Entities             []ExtractedEntity `json:"entities"`
	Keywords             []Keyword         `json:"keywords"`
	RequirementsSections []string          `json:"requirements_sections"`
	Metadata             Metadata          `json:"metadata"`
	ProcessingTime       float64           `json:"processing_time"`
	CacheHit             bool              `json:"cache_hit"`
}

// Failed reports whether the result is a degenerate error result.
func (r *JobAnalysisResult) Failed() bool {
	return r.Metadata.Error != ""
}

// Clone returns a deep copy so cached entries never share slices with callers.
func (r *JobAnalysisResult) Clone() *JobAnalysisResult {
	out := *r
	out.Skills = append([]ExtractedSkill{}, r.Skills...)
	out.Entities = append([]ExtractedEntity{}, r.Entities...)
	out.RequirementsSections = append([]string{}, r.RequirementsSections...)
	out.Keywords = make([]Keyword, len(r.Keywords))
	for i, kw := range r.Keywords {
		kw.OriginalForms = append([]string{}, kw.OriginalForms...)
		out.Keywords[i] = kw
	}
	return &out
}

func newResult(jobID string) *JobAnalysisResult {
	return &JobAnalysisResult{
		JobID:                jobID,
		Skills:               []ExtractedSkill{},
		Entities:             []ExtractedEntity{},
		Keywords:             []Keyword{},
		RequirementsSections: []string{},
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
