package skillmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/errors"
)

const testDatabase = `
KS_PY:
  skill_name: "Python (Programming Language)"
  skill_type: "Hard Skill"
  surface_forms: ["python", "python3"]
KS_ML:
  skill_name: "Machine Learning"
  skill_type: "Hard Skill"
  surface_forms: ["machine learning"]
KS_MLE:
  skill_name: "Machine Learning Engineering"
  surface_forms: ["machine learning engineering"]
KS_CPP:
  skill_name: "C++"
  surface_forms: ["c++"]
KS_NODE: "Node.js"
KS_CICD:
  skill_name: "Continuous Integration"
  surface_forms: ["continuous integration pipelines"]
`

func testDB(t *testing.T) *analyzer.SkillDatabase {
	t.Helper()
	db, err := analyzer.ParseSkillDatabase([]byte(testDatabase), "yaml", errors.NewDiscardLogger())
	require.NoError(t, err)
	return db
}

func ids(matches []analyzer.RawMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m["skill_id"].(string))
	}
	return out
}

func TestDictionaryModelAnnotate(t *testing.T) {
	model, err := NewDictionaryModel(testDB(t))
	require.NoError(t, err)
	assert.Equal(t, "dictionary", model.Name())

	text := "We use Python3, C++ and Node.js. Machine Learning engineering experience; python again. Continuous integration is a plus."
	annotation, err := model.Annotate(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"KS_PY", "KS_CPP", "KS_NODE", "KS_MLE"}, ids(annotation.FullMatches))

	first := annotation.FullMatches[0]
	assert.Equal(t, 1.0, first["score"])
	assert.Equal(t, "Hard Skill", first["skill_type"])
	assert.Equal(t, "Python3", first["surface_forms"].([]any)[0].(map[string]any)["surface_form"])

	mle := annotation.FullMatches[3]
	assert.Equal(t, "Machine Learning engineering", mle["surface_forms"].([]any)[0].(map[string]any)["surface_form"])
	assert.NotContains(t, mle, "skill_type")

	require.Len(t, annotation.NgramScored, 1)
	partial := annotation.NgramScored[0]
	assert.Equal(t, "KS_CICD", partial["skill_id"])
	assert.InDelta(t, 2.0/3.0, partial["score"], 1e-9)
}

func TestDictionaryModelFeedsPrimaryExtractor(t *testing.T) {
	db := testDB(t)
	model, err := NewDictionaryModel(db)
	require.NoError(t, err)

	a, err := analyzer.New(analyzer.DefaultOptions(), errors.NewDiscardLogger(),
		analyzer.WithSkillDatabase(db),
		analyzer.WithSkillModel(model))
	require.NoError(t, err)
	require.True(t, a.PrimaryEnabled())

	result := a.Analyze(context.Background(), "Senior engineer with strong Python and C++ background", "job-1")
	var primary []string
	for _, s := range result.Skills {
		if s.Source == analyzer.SourcePrimary {
			primary = append(primary, s.Name)
		}
	}
	assert.ElementsMatch(t, []string{"Python (Programming Language)", "C++"}, primary)
}

func TestDictionaryModelEmptyDatabase(t *testing.T) {
	_, err := NewDictionaryModel(&analyzer.SkillDatabase{})
	assert.Error(t, err)
}

func TestDictionaryModelCancelled(t *testing.T) {
	model, err := NewDictionaryModel(testDB(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = model.Annotate(ctx, "python")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Built C#, .NET and scikit-learn apps. Done.")
	var words []string
	for _, tok := range tokens {
		words = append(words, tok.lower)
	}
	assert.Equal(t, []string{"built", "c#", "net", "and", "scikit-learn", "apps", "done"}, words)
	assert.Equal(t, "scikit-learn", "Built C#, .NET and scikit-learn apps. Done."[tokens[4].start:tokens[4].end])
}
