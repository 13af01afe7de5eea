package analyzer

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/nlp"
)

const (
	entityConfidence = 1.0
	maxKeywords      = 50
)

var (
	relevantEntityLabels = map[string]bool{
		"ORG": true, "PRODUCT": true, "WORK_OF_ART": true, "EVENT": true,
		"LAW": true, "LANGUAGE": true, "MONEY": true, "PERCENT": true,
	}

	// technology names that taggers tend to label as people or places
	misclassifiedTechTerms = map[string]bool{
		"python": true, "java": true, "javascript": true, "react": true,
		"angular": true, "aws": true, "docker": true, "kubernetes": true,
		"tensorflow": true, "pytorch": true, "mongodb": true, "postgresql": true,
	}

	personOrPlaceLabels = map[string]bool{"PERSON": true, "LOC": true, "GPE": true}

	keywordPOS = map[string]bool{
		nlp.POSNoun: true, nlp.POSAdj: true, nlp.POSPropn: true, nlp.POSVerb: true,
	}

	excludedKeywords = map[string]bool{"year": true, "years": true, "experience": true}
)

// ExtractEntities runs the pipeline's recognizer and keeps entities that are
// useful in a job posting context.
func ExtractEntities(pipeline nlp.Pipeline, text string, logger *errors.Logger) ([]ExtractedEntity, time.Duration) {
	start := time.Now()
	entities := []ExtractedEntity{}
	if pipeline == nil {
		return entities, time.Since(start)
	}

	doc := pipeline.Process(text)
	for _, ent := range doc.Entities {
		trimmed := strings.TrimSpace(ent.Text)
		lower := strings.ToLower(trimmed)
		length := utf8.RuneCountInString(trimmed)

		if misclassifiedTechTerms[lower] && personOrPlaceLabels[ent.Label] {
			continue
		}
		if length < 2 && ent.Label != "ORG" {
			continue
		}
		if !relevantEntityLabels[ent.Label] && length <= 3 {
			continue
		}

		description := nlp.Explain(ent.Label)
		if description == "" {
			description = ent.Label
		}
		entities = append(entities, NewEntity(ent.Text, ent.Label, description, entityConfidence, ent.Start, ent.End))
	}

	elapsed := time.Since(start)
	logger.Debug("Entity extraction finished", "entities", len(entities), "elapsed", elapsed.String())
	return entities, elapsed
}

type keywordAcc struct {
	lemma     string
	pos       string
	frequency int
	forms     []string
	seenForms map[string]struct{}
	technical bool
}

// ExtractKeywords scores content-word lemmas by frequency, part of speech and
// whether the registry lists them as technical terms.
func ExtractKeywords(pipeline nlp.Pipeline, registry *Registry, text string, logger *errors.Logger) ([]Keyword, time.Duration) {
	start := time.Now()
	if pipeline == nil {
		return []Keyword{}, time.Since(start)
	}

	doc := pipeline.Process(text)
	var order []*keywordAcc
	byLemma := make(map[string]*keywordAcc)

	for _, tok := range doc.Tokens {
		if tok.IsStop || tok.IsPunct || tok.IsSpace {
			continue
		}
		if utf8.RuneCountInString(tok.Text) < 3 || isAllDigits(tok.Text) || excludedKeywords[strings.ToLower(tok.Text)] {
			continue
		}
		if !keywordPOS[tok.POS] {
			continue
		}

		lemma := strings.ToLower(tok.Lemma)
		acc, ok := byLemma[lemma]
		if !ok {
			acc = &keywordAcc{lemma: lemma, pos: tok.POS, seenForms: map[string]struct{}{}}
			acc.technical = registry != nil && registry.IsTechnical(lemma)
			byLemma[lemma] = acc
			order = append(order, acc)
		}
		acc.frequency++
		if _, dup := acc.seenForms[tok.Text]; !dup {
			acc.seenForms[tok.Text] = struct{}{}
			acc.forms = append(acc.forms, tok.Text)
		}
	}

	keywords := make([]Keyword, 0, len(order))
	for _, acc := range order {
		keywords = append(keywords, Keyword{
			Text:            acc.lemma,
			POS:             acc.pos,
			Frequency:       acc.frequency,
			OriginalForms:   acc.forms,
			ImportanceScore: round(importance(acc), 2),
			IsTechnical:     acc.technical,
		})
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].ImportanceScore > keywords[j].ImportanceScore
	})
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	elapsed := time.Since(start)
	logger.Debug("Keyword extraction finished", "keywords", len(keywords), "elapsed", elapsed.String())
	return keywords, elapsed
}

func importance(acc *keywordAcc) float64 {
	score := float64(acc.frequency)
	if acc.pos == nlp.POSNoun || acc.pos == nlp.POSPropn {
		score *= 1.5
	}
	if acc.technical {
		score *= 2.0
	}
	if acc.frequency > 2 {
		score *= 1.2
	}
	return score
}
