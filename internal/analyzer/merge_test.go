package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSkillsPrefersPrimary(t *testing.T) {
	primary := []ExtractedSkill{NewSkill("Python", "Python", 0.9, "Technical", SourcePrimary)}
	fallback := []ExtractedSkill{NewSkill("python", "python", 0.85, "Programming Languages", SourceFallback)}

	for _, order := range [][][]ExtractedSkill{{primary, fallback}, {fallback, primary}} {
		merged := MergeSkills(50, order...)
		require.Len(t, merged, 1)
		assert.Equal(t, "Python", merged[0].Name)
		assert.Equal(t, SourcePrimary, merged[0].Source)
	}

	lowPrimary := []ExtractedSkill{NewSkill("Python", "Python", 0.4, "Technical", SourcePrimary)}
	merged := MergeSkills(50, fallback, lowPrimary)
	require.Len(t, merged, 1)
	assert.Equal(t, SourcePrimary, merged[0].Source, "source outranks confidence")
}

func TestMergeSkillsTieBreaks(t *testing.T) {
	tests := []struct {
		name   string
		skills []ExtractedSkill
		want   ExtractedSkill
	}{
		{
			name: "higher confidence",
			skills: []ExtractedSkill{
				NewSkill("Docker", "docker", 0.6, "t", SourcePrimary),
				NewSkill("docker", "Docker", 0.8, "t", SourcePrimary),
			},
			want: NewSkill("docker", "Docker", 0.8, "t", SourcePrimary),
		},
		{
			name: "shorter surface form",
			skills: []ExtractedSkill{
				NewSkill("Kubernetes", "kubernetes cluster", 0.8, "t", SourcePrimary),
				NewSkill("Kubernetes", "k8s", 0.8, "t", SourcePrimary),
			},
			want: NewSkill("Kubernetes", "k8s", 0.8, "t", SourcePrimary),
		},
		{
			name: "full tie keeps first",
			skills: []ExtractedSkill{
				NewSkill("Go", "go", 0.85, "a", SourceFallback),
				NewSkill("go", "Go", 0.85, "b", SourceFallback),
			},
			want: NewSkill("Go", "go", 0.85, "a", SourceFallback),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeSkills(50, tt.skills)
			require.Len(t, merged, 1)
			assert.Equal(t, tt.want, merged[0])
		})
	}
}

func TestMergeSkillsFoldsSpellings(t *testing.T) {
	skills := []ExtractedSkill{
		NewSkill("Node.js", "Node.js", 0.85, "f", SourceFallback),
		NewSkill("nodejs", "nodejs", 0.7, "f", SourcePrimary),
		NewSkill("scikit-learn", "scikit-learn", 0.85, "d", SourceFallback),
		NewSkill("scikit_learn", "scikit_learn", 0.85, "d", SourceFallback),
		NewSkill("Scikit Learn", "Scikit Learn", 0.85, "d", SourceFallback),
	}
	merged := MergeSkills(50, skills)

	assert.Equal(t, []string{"scikit-learn", "nodejs"}, skillNames(merged))
}

func TestMergeSkillsSortsAndTruncates(t *testing.T) {
	skills := []ExtractedSkill{
		NewSkill("A", "a", 0.5, "t", SourceFallback),
		NewSkill("B", "b", 0.9, "t", SourceFallback),
		NewSkill("C", "c", 0.7, "t", SourceFallback),
		NewSkill("D", "d", 0.9, "t", SourceFallback),
		NewSkill("", "e", 1, "t", SourceFallback),
	}

	assert.Equal(t, []string{"B", "D", "C", "A"}, skillNames(MergeSkills(50, skills)))
	assert.Equal(t, []string{"B", "D"}, skillNames(MergeSkills(2, skills)))
	assert.Empty(t, MergeSkills(10))
}
