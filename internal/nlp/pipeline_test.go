package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEntity(doc *Doc, text string) (Span, bool) {
	for _, ent := range doc.Entities {
		if ent.Text == text {
			return ent, true
		}
	}
	return Span{}, false
}

func findToken(doc *Doc, text string) (Token, bool) {
	for _, tok := range doc.Tokens {
		if tok.Text == text {
			return tok, true
		}
	}
	return Token{}, false
}

func TestProcessRecognizesEntities(t *testing.T) {
	p := NewHeuristicPipeline("python", "docker")
	text := "We are looking for a Senior Engineer at Acme Corp to build APIs with Python. Salary $120k-$150k and 10% bonus."
	doc := p.Process(text)

	tests := []struct {
		text  string
		label string
	}{
		{"Acme Corp", "ORG"},
		{"Python", "PRODUCT"},
		{"$120k-$150k", "MONEY"},
		{"10%", "PERCENT"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ent, ok := findEntity(doc, tt.text)
			require.True(t, ok, "entity %q not found in %+v", tt.text, doc.Entities)
			assert.Equal(t, tt.label, ent.Label)
			assert.Equal(t, tt.text, text[ent.Start:ent.End])
		})
	}

	_, ok := findEntity(doc, "Salary")
	assert.False(t, ok, "sentence-initial common word should not become an entity")
}

func TestProcessSkipsRoleWordsInEntities(t *testing.T) {
	p := NewHeuristicPipeline()
	text := "Senior Engineer at Google. Contact John Smith for details. We need a Lead Developer at Acme Corp."
	doc := p.Process(text)

	tests := []struct {
		text  string
		label string
	}{
		{"Google", "ORG"},
		{"John Smith", "PERSON"},
		{"Acme Corp", "ORG"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ent, ok := findEntity(doc, tt.text)
			require.True(t, ok, "entity %q not found in %+v", tt.text, doc.Entities)
			assert.Equal(t, tt.label, ent.Label)
		})
	}

	for _, bad := range []string{"Engineer", "Senior Engineer", "Contact John Smith", "Contact", "Lead Developer"} {
		_, ok := findEntity(doc, bad)
		assert.False(t, ok, "%q should not be an entity", bad)
	}

	engineer, ok := findToken(doc, "Engineer")
	require.True(t, ok)
	assert.Equal(t, POSNoun, engineer.POS)
	contact, ok := findToken(doc, "Contact")
	require.True(t, ok)
	assert.Equal(t, POSVerb, contact.POS)
}

func TestProcessOffsetsAreCharacterBased(t *testing.T) {
	p := NewHeuristicPipeline()
	text := "Café team works with Acme Corp daily."
	doc := p.Process(text)

	ent, ok := findEntity(doc, "Acme Corp")
	require.True(t, ok)
	runes := []rune(text)
	assert.Equal(t, "Acme Corp", string(runes[ent.Start:ent.End]))
}

func TestProcessTagsAndLemmas(t *testing.T) {
	p := NewHeuristicPipeline("kubernetes")
	doc := p.Process("We are looking for engineers managing kubernetes clusters and designing systems.")

	tests := []struct {
		text  string
		pos   string
		lemma string
	}{
		{"looking", POSVerb, "look"},
		{"engineers", POSNoun, "engineer"},
		{"managing", POSVerb, "manage"},
		{"kubernetes", POSNoun, "kubernetes"},
		{"clusters", POSNoun, "cluster"},
		{"designing", POSVerb, "design"},
		{"for", POSAdp, "for"},
		{".", POSPunct, "."},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tok, ok := findToken(doc, tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.pos, tok.POS)
			assert.Equal(t, tt.lemma, tok.Lemma)
		})
	}

	forTok, _ := findToken(doc, "for")
	assert.True(t, forTok.IsStop)
	dot, _ := findToken(doc, ".")
	assert.True(t, dot.IsPunct)
}

func TestTokenizeKeepsTechnicalForms(t *testing.T) {
	text := "C++ and C# with node.js"
	tokens := tokenize(text, newRuneIndex(text))

	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Text)
	}
	assert.Equal(t, []string{"C++", "and", "C#", "with", "node.js"}, got)
}

func TestSingularAndVerbStem(t *testing.T) {
	assert.Equal(t, "technology", singular("technologies"))
	assert.Equal(t, "skill", singular("skills"))
	assert.Equal(t, "process", singular("process"))
	assert.Equal(t, "analysis", singular("analysis"))
	assert.Equal(t, "debug", verbStem("debugging"))
	assert.Equal(t, "design", verbStem("designed"))
	assert.Equal(t, "use", verbStem("using"))
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "Companies, agencies, institutions, etc.", Explain("ORG"))
	assert.Equal(t, "Monetary values, including unit", Explain("MONEY"))
	assert.Equal(t, "CUSTOM", Explain("CUSTOM"))
}
