package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/errors"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "Senior\t\tGo   engineer\n\nneeded now", "Senior Go engineer needed now"},
		{"years spacing", "Need 5+years of backend work", "Need 5+ years of backend work"},
		{"years singular", "At least 1+ Year of Go", "At least 1+ years of Go"},
		{"dot js spacing", "Experience with Node . js and Vue .js", "Experience with Node.js and Vue.js"},
		{"strips disallowed characters", "Python \u2014 Django <b>stack</b>", "Python Django b stack /b"},
		{"keeps tech notation", "C++, C# and F# (nice-to-have)!", "C++, C# and F# (nice-to-have)!"},
		{"folds full width", "Ｐｙｔｈｏｎ developer", "Python developer"},
		{"short text untouched", "  Go dev  ", "Go dev"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeText(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTextRejectsInvalidUTF8(t *testing.T) {
	_, err := NormalizeText("bad \xff\xfe input text", errors.NewDiscardLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}
