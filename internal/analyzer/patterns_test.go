package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/errors"
)

func fallbackNames(t *testing.T, fastMode bool, text string) []string {
	t.Helper()
	registry := NewRegistry(DefaultCategories(), fastMode, errors.NewDiscardLogger())
	skills, _ := NewFallbackExtractor(registry, errors.NewDiscardLogger()).Extract(text)
	return skillNames(skills)
}

func TestFallbackExtractRecognizesRegistryTerms(t *testing.T) {
	registry := NewRegistry(DefaultCategories(), false, errors.NewDiscardLogger())
	skills, _ := NewFallbackExtractor(registry, errors.NewDiscardLogger()).Extract(samplePosting)

	assert.Equal(t, []string{"Python", "Postgresql", "Docker"}, skillNames(skills))
	for _, s := range skills {
		assert.Equal(t, SourceFallback, s.Source)
		assert.Equal(t, 0.85, s.Confidence)
	}

	python, ok := findSkill(skills, "Python")
	require.True(t, ok)
	assert.Equal(t, "Programming Languages", python.SkillType)
	assert.Equal(t, "Python", python.SurfaceForm)
}

func TestFallbackWholeWordMatching(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"symbols in terms", "Strong c++ and C# skills, plus .NET", []string{"C++", "C#", ".Net"}},
		{"no match inside words", "We use golang and django daily", []string{"Django"}},
		{"longer term after prefix", "Modern JavaScript developer", []string{"Javascript"}},
		{"dotted framework", "Build services with Node.js and React", []string{"Node.Js", "React"}},
		{"duplicates collapse", "python, Python and PYTHON again", []string{"Python"}},
		{"nothing", "An unrelated sentence about cooking", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fallbackNames(t, false, tt.text))
		})
	}
}

func TestFallbackMultiWordSpacing(t *testing.T) {
	text := "Design a rest   api for the platform"

	assert.Equal(t, []string{"Rest   Api"}, fallbackNames(t, false, text))
	assert.Empty(t, fallbackNames(t, true, text))
	assert.Equal(t, []string{"Rest Api"}, fallbackNames(t, true, "Design a rest api for the platform"))
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"postgresql": "Postgresql",
		"node.js":    "Node.Js",
		"neo4j":      "Neo4J",
		"SQL SERVER": "Sql Server",
		"c#":         "C#",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, titleCase(in))
		})
	}
}

func TestRegistrySkipsBrokenCategory(t *testing.T) {
	categories := []Category{
		{Name: "Empty", Terms: []string{" "}},
		{Name: "Queues", Terms: []string{"kafka"}},
	}
	registry := NewRegistry(categories, false, errors.NewDiscardLogger())

	assert.Equal(t, []string{"Queues"}, registry.Categories())
	assert.True(t, registry.IsTechnical("Kafka"))
	assert.False(t, registry.IsTechnical("cooking"))
}

func TestLoadAndMergeCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`categories:
  - name: Databases
    terms: [clickhouse]
  - name: Messaging
    terms: [kafka, rabbitmq]
`), 0o644))

	extra, err := LoadCategories(path)
	require.NoError(t, err)

	merged := MergeCategories(DefaultCategories(), extra)
	require.Len(t, merged, len(DefaultCategories())+1)
	assert.Equal(t, "Messaging", merged[len(merged)-1].Name)

	var databases Category
	for _, c := range merged {
		if c.Name == "Databases" {
			databases = c
		}
	}
	assert.Contains(t, databases.Terms, "clickhouse")
	assert.NotContains(t, DefaultCategories()[3].Terms, "clickhouse")

	_, err = LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotReadable))
}
