package skillmodel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"jobanalyzer/internal/analyzer"
)

// DictionaryModel is a local skill model that phrase-matches the surface
// forms of a skill database. A complete surface form match scores 1.0; a
// multi-word form whose leading words match is reported as a partial match.
type DictionaryModel struct {
	forms    []surfaceForm
	maxWords int
}

type surfaceForm struct {
	id        string
	skillType string
	words     []string
}

type token struct {
	lower      string
	start, end int
}

// NewDictionaryModel indexes every surface form in db
func NewDictionaryModel(db *analyzer.SkillDatabase) (*DictionaryModel, error) {
	if db.Len() == 0 {
		return nil, fmt.Errorf("skill database is empty")
	}

	m := &DictionaryModel{}
	for _, entry := range db.Entries {
		for _, form := range entry.SurfaceForms {
			words := tokenize(form)
			if len(words) == 0 {
				continue
			}
			sf := surfaceForm{id: entry.ID, skillType: entry.SkillType}
			for _, w := range words {
				sf.words = append(sf.words, w.lower)
			}
			m.forms = append(m.forms, sf)
			m.maxWords = max(m.maxWords, len(sf.words))
		}
	}
	if len(m.forms) == 0 {
		return nil, fmt.Errorf("skill database has no usable surface forms")
	}

	// longest forms first so "machine learning engineer" wins over "machine learning"
	sort.SliceStable(m.forms, func(i, j int) bool {
		return len(m.forms[i].words) > len(m.forms[j].words)
	})
	return m, nil
}

// Name implements analyzer.SkillModel
func (m *DictionaryModel) Name() string { return "dictionary" }

// Annotate implements analyzer.SkillModel. Each skill is reported once, at
// its first full match.
func (m *DictionaryModel) Annotate(ctx context.Context, text string) (*analyzer.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	annotation := &analyzer.Annotation{FullMatches: []analyzer.RawMatch{}}
	seenFull := map[string]bool{}
	seenPartial := map[string]bool{}

	for i := 0; i < len(tokens); {
		consumed := 1
		for _, form := range m.forms {
			n := matchedWords(tokens[i:], form.words)
			if n == len(form.words) {
				if !seenFull[form.id] {
					seenFull[form.id] = true
					annotation.FullMatches = append(annotation.FullMatches,
						rawMatch(form, text[tokens[i].start:tokens[i+n-1].end], 1.0, i, n))
				}
				consumed = n
				break
			}
			if n > 0 && len(form.words) > 1 && !seenPartial[form.id] {
				seenPartial[form.id] = true
				score := float64(n) / float64(len(form.words))
				annotation.NgramScored = append(annotation.NgramScored,
					rawMatch(form, text[tokens[i].start:tokens[i+n-1].end], score, i, n))
			}
		}
		i += consumed
	}

	// a partial match superseded by a full match elsewhere is noise
	partial := annotation.NgramScored[:0]
	for _, p := range annotation.NgramScored {
		if !seenFull[p["skill_id"].(string)] {
			partial = append(partial, p)
		}
	}
	annotation.NgramScored = partial
	return annotation, nil
}

// matchedWords counts how many leading words of form match tokens.
func matchedWords(tokens []token, form []string) int {
	n := 0
	for n < len(form) && n < len(tokens) && tokens[n].lower == form[n] {
		n++
	}
	return n
}

func rawMatch(form surfaceForm, surface string, score float64, first, n int) analyzer.RawMatch {
	nodes := make([]any, n)
	for k := range n {
		nodes[k] = first + k
	}
	m := analyzer.RawMatch{
		"skill_id":    form.id,
		"score":       score,
		"doc_node_id": nodes,
		"surface_forms": []any{
			map[string]any{"surface_form": surface},
		},
	}
	if form.skillType != "" {
		m["skill_type"] = form.skillType
	}
	return m
}

// tokenize splits text into lowercase word tokens with byte offsets. Tokens
// keep the symbols that distinguish tech names ("c++", "c#", "node.js")
// but drop trailing sentence punctuation.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := strings.TrimRight(text[start:end], ".")
		if word != "" {
			tokens = append(tokens, token{lower: strings.ToLower(word), start: start, end: start + len(word)})
		}
		start = -1
	}

	for i, r := range text {
		if isTokenRune(r) {
			if start < 0 {
				if r == '.' {
					continue
				}
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

func isTokenRune(r rune) bool {
	switch r {
	case '+', '#', '.', '-', '_':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
