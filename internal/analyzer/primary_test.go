package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/errors"
)

func withFastModelInit(t *testing.T) {
	t.Helper()
	prev := modelInitDelay
	modelInitDelay = time.Millisecond
	t.Cleanup(func() { modelInitDelay = prev })
}

func newTestPrimary(t *testing.T, model SkillModel, opts Options) *PrimaryExtractor {
	t.Helper()
	factory := func() (SkillModel, error) { return model, nil }
	return NewPrimaryExtractor(factory, testSkillDB(t), opts, errors.NewDiscardLogger())
}

func TestPrimaryExtractResolvesFields(t *testing.T) {
	tests := []struct {
		name  string
		match RawMatch
		want  *ExtractedSkill
	}{
		{
			name: "name from database and surface form from first form",
			match: RawMatch{
				"skill_id":      "KS_PY",
				"surface_forms": []any{map[string]any{"surface_form": "python3"}},
				"score":         0.9,
				"skill_type":    "Hard Skill",
			},
			want: &ExtractedSkill{Name: "Python", SurfaceForm: "python3", Confidence: 0.9, SkillType: "Hard Skill", Source: SourcePrimary},
		},
		{
			name:  "alternate id key and string confidence",
			match: RawMatch{"skill": "KS_GO", "surface": "go", "confidence": "0.7", "type": "Language"},
			want:  &ExtractedSkill{Name: "golang", SurfaceForm: "go", Confidence: 0.7, SkillType: "Language", Source: SourcePrimary},
		},
		{
			name:  "unknown id falls back to id and default type",
			match: RawMatch{"id": "KS_UNKNOWN", "confidence_score": json.Number("0.5")},
			want:  &ExtractedSkill{Name: "KS_UNKNOWN", SurfaceForm: "KS_UNKNOWN", Confidence: 0.5, SkillType: "Technical", Source: SourcePrimary},
		},
		{
			name:  "confidence above one is clamped",
			match: RawMatch{"skill_id": "KS_RAW", "text": "raw", "score": 1.7},
			want:  &ExtractedSkill{Name: "Raw Skill", SurfaceForm: "raw", Confidence: 1, SkillType: "Technical", Source: SourcePrimary},
		},
		{
			name:  "first parseable confidence key wins",
			match: RawMatch{"skill_id": "KS_PY", "confidence_score": "n/a", "score": 3, "confidence": 0.1},
			want:  &ExtractedSkill{Name: "Python", SurfaceForm: "Python", Confidence: 1, SkillType: "Technical", Source: SourcePrimary},
		},
		{
			name:  "missing confidence is below threshold",
			match: RawMatch{"skill_id": "KS_PY"},
		},
		{
			name:  "below threshold",
			match: RawMatch{"skill_id": "KS_PY", "score": 0.2},
		},
		{
			name:  "missing id",
			match: RawMatch{"surface_form": "python", "score": 0.9},
		},
		{
			name:  "malformed surface forms",
			match: RawMatch{"skill_id": "KS_PY", "surface_forms": []any{"python"}, "score": 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{matches: []RawMatch{tt.match}}
			p := newTestPrimary(t, model, DefaultOptions())
			require.True(t, p.Enabled())

			skills, _ := p.Extract(context.Background(), "some posting text")
			if tt.want == nil {
				assert.Empty(t, skills)
				return
			}
			require.Len(t, skills, 1)
			assert.Equal(t, *tt.want, skills[0])
		})
	}
}

func TestPrimaryExtractSkipsMalformedAndContinues(t *testing.T) {
	model := &fakeModel{matches: []RawMatch{
		nil,
		{"skill_id": "KS_PY", "surface_forms": []any{42}, "score": 0.9},
		{"skill_id": "KS_GO", "score": 0.8},
	}}
	p := newTestPrimary(t, model, DefaultOptions())

	skills, _ := p.Extract(context.Background(), "text")
	assert.Equal(t, []string{"golang"}, skillNames(skills))
}

func TestPrimaryExtractCapsRawMatches(t *testing.T) {
	var matches []RawMatch
	for i := range 10 {
		matches = append(matches, RawMatch{"skill_id": fmt.Sprintf("KS_%d", i), "score": 0.9})
	}
	opts := DefaultOptions()
	opts.MaxSkillsPerJob = 3

	p := newTestPrimary(t, &fakeModel{matches: matches}, opts)
	skills, _ := p.Extract(context.Background(), "text")
	assert.Len(t, skills, 3)
}

func TestPrimaryExtractModelError(t *testing.T) {
	model := &fakeModel{annotate: func(context.Context, string) (*Annotation, error) {
		return nil, fmt.Errorf("model offline")
	}}
	p := newTestPrimary(t, model, DefaultOptions())

	skills, _ := p.Extract(context.Background(), "text")
	assert.NotNil(t, skills)
	assert.Empty(t, skills)
}

func TestPrimaryDisabled(t *testing.T) {
	var nilExtractor *PrimaryExtractor
	skills, elapsed := nilExtractor.Extract(context.Background(), "text")
	assert.Empty(t, skills)
	assert.Zero(t, elapsed)
	assert.False(t, nilExtractor.Enabled())

	p := NewPrimaryExtractor(nil, nil, DefaultOptions(), errors.NewDiscardLogger())
	assert.False(t, p.Enabled())
}

func TestPrimaryInitRetries(t *testing.T) {
	withFastModelInit(t)

	t.Run("succeeds on third attempt", func(t *testing.T) {
		calls := 0
		factory := func() (SkillModel, error) {
			calls++
			if calls < 3 {
				return nil, fmt.Errorf("database not ready")
			}
			return &fakeModel{}, nil
		}
		p := NewPrimaryExtractor(factory, nil, DefaultOptions(), errors.NewDiscardLogger())
		assert.True(t, p.Enabled())
		assert.Equal(t, 3, calls)
		assert.Equal(t, "fake", p.ModelName())
	})

	t.Run("disabled after exhausting attempts", func(t *testing.T) {
		calls := 0
		factory := func() (SkillModel, error) {
			calls++
			return nil, fmt.Errorf("database missing")
		}
		p := NewPrimaryExtractor(factory, nil, DefaultOptions(), errors.NewDiscardLogger())
		assert.False(t, p.Enabled())
		assert.Equal(t, modelInitAttempts, calls)

		skills, _ := p.Extract(context.Background(), "text")
		assert.Empty(t, skills)
	})
}

func TestSkillDatabaseNames(t *testing.T) {
	db := testSkillDB(t)

	tests := []struct {
		id   string
		want string
	}{
		{"KS_PY", "Python"},
		{"KS_GO", "golang"},
		{"KS_RAW", "Raw Skill"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			name, ok := db.Name(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, name)
		})
	}

	_, ok := db.Name("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"KS_GO", "KS_PY", "KS_RAW"}, []string{db.Entries[0].ID, db.Entries[1].ID, db.Entries[2].ID})
}

func TestDefaultSkillDatabaseLoads(t *testing.T) {
	db := DefaultSkillDatabase(errors.NewDiscardLogger())
	assert.Greater(t, db.Len(), 20)
	for _, e := range db.Entries {
		assert.NotEmpty(t, e.Name, e.ID)
		assert.NotEmpty(t, e.SurfaceForms, e.ID)
	}

	empty := LoadSkillDatabase("/does/not/exist.json", errors.NewDiscardLogger())
	assert.Zero(t, empty.Len())
}
