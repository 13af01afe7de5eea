package formatters

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/analyzer"
)

func sampleResult() *analyzer.JobAnalysisResult {
	return &analyzer.JobAnalysisResult{
		JobID: "job-1",
		Skills: []analyzer.ExtractedSkill{
			analyzer.NewSkill("Python", "python", 0.85, "programming_languages", analyzer.SourceFallback),
			analyzer.NewSkill("CI/CD", "ci/cd", 0.85, "devops_cloud", analyzer.SourceFallback),
		},
		Entities: []analyzer.ExtractedEntity{
			analyzer.NewEntity("Acme Corp", "ORG", "Companies, agencies, institutions, etc.", 1, 0, 9),
		},
		Keywords: []analyzer.Keyword{
			{Text: "python", POS: "PROPN", Frequency: 3, OriginalForms: []string{"Python"}, ImportanceScore: 10.8, IsTechnical: true},
		},
		RequirementsSections: []string{},
		Metadata: analyzer.Metadata{
			WordCount:         42,
			TotalUniqueSkills: 2,
			EntitiesCount:     1,
			KeywordsCount:     1,
		},
		ProcessingTime: 0.0123,
	}
}

func sampleReport() *analyzer.BatchReport {
	return &analyzer.BatchReport{
		Summary: analyzer.BatchSummary{TotalJobsAnalyzed: 2, SuccessRate: 100, AvgSkillsPerJob: 2},
		SkillsAnalysis: analyzer.SkillsAnalysis{
			TopSkills:    []analyzer.ItemCount{{Item: "Python", Count: 2}},
			SkillsByType: map[string][]analyzer.ItemCount{"programming_languages": {{Item: "Python", Count: 2}}},
		},
		IndividualResults: []analyzer.IndividualResult{
			{JobID: "a", Skills: []analyzer.ResultSkill{{Name: "Python"}}},
			{JobID: "b", CacheHit: true},
		},
		FailedJobs: []analyzer.FailedJob{{JobID: "c", Error: "Timeout after 30 seconds"}},
	}
}

func TestFormatterRegistry(t *testing.T) {
	registry := NewFormatterRegistry()
	assert.Equal(t, []string{"csv", "json", "markdown", "text"}, registry.GetSupportedFormats())

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
		wantErr  bool
	}{
		{
			name:     "result as text",
			data:     sampleResult(),
			format:   "text",
			contains: []string{"=== JOB ANALYSIS: job-1 ===", "- Python (programming_languages, fallback, 0.85)", "Acme Corp [ORG]", "[technical]"},
		},
		{
			name:     "result value as markdown",
			data:     *sampleResult(),
			format:   "markdown",
			contains: []string{"# Job Analysis: job-1", "| Python | python | programming_languages | fallback | 0.85 |", "`python` 10.80 _(technical)_"},
		},
		{
			name:     "batch as text",
			data:     sampleReport(),
			format:   "text",
			contains: []string{"Jobs analyzed: 2 (failed: 0, success rate: 100.0%)", "1. Python (2)", "programming_languages:", "- c: Timeout after 30 seconds"},
		},
		{
			name:     "batch as markdown",
			data:     sampleReport(),
			format:   "markdown",
			contains: []string{"| Jobs analyzed | 2 |", "| b | 0 | true |", "## Failed Jobs"},
		},
		{
			name:     "match as text",
			data:     analyzer.ProfileMatch{MatchedSkills: []string{"go"}, JobSkillCount: 4, ProfileSkillCount: 2, MatchCount: 1, JobCoverage: 25, ProfileCoverage: 50, Score: 25},
			format:   "text",
			contains: []string{"Score: 25.0", "Matched 1 of 4 job skills (25.0%)", "- go"},
		},
		{
			name:     "any type as json",
			data:     map[string]int{"a": 1},
			format:   "json",
			contains: []string{`"a": 1`},
		},
		{
			name:    "no text formatter for plain data",
			data:    map[string]int{"a": 1},
			format:  "text",
			wantErr: true,
		},
		{
			name:    "unknown format",
			data:    sampleResult(),
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestJSONFormatterKeepsSnakeCaseKeys(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleResult(), "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "job-1", decoded["job_id"])
	assert.Contains(t, decoded, "requirements_sections")
	assert.NotContains(t, out, `&`)
}

func TestCSVFormatters(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleResult(), "csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"job_id", "name", "surface_form", "confidence", "skill_type", "source"}, rows[0])
	assert.Equal(t, []string{"job-1", "CI/CD", "ci/cd", "0.85", "devops_cloud", "fallback"}, rows[2])

	out, err = GlobalRegistry.Format(sampleReport(), "csv")
	require.NoError(t, err)
	rows, err = csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "job_id", rows[0][0])
	assert.Equal(t, "true", rows[2][2])
}

func TestFailedOutputs(t *testing.T) {
	failed := &analyzer.JobAnalysisResult{JobID: "error_job", Metadata: analyzer.Metadata{Error: "boom"}}
	out, err := GlobalRegistry.Format(failed, "text")
	require.NoError(t, err)
	assert.Equal(t, "=== JOB ANALYSIS FAILED: error_job ===\nError: boom\n", out)

	report := &analyzer.BatchReport{Error: "No jobs successfully analyzed", FailedJobs: []analyzer.FailedJob{{JobID: "x", Error: "Timeout after 30 seconds"}}}
	out, err = GlobalRegistry.Format(report, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "**Error:** No jobs successfully analyzed")
	assert.Contains(t, out, "- `x`: Timeout after 30 seconds")
}

func TestFormatterTypeMismatch(t *testing.T) {
	_, err := (&AnalysisTextFormatter{}).Format(sampleReport())
	assert.EqualError(t, err, "expected JobAnalysisResult, got *analyzer.BatchReport")
}
