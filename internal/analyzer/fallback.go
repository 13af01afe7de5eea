package analyzer

import (
	"strings"
	"time"
	"unicode"

	"jobanalyzer/internal/errors"
)

const fallbackConfidence = 0.85

// FallbackExtractor matches registry terms directly. It needs no model and is
// always available.
type FallbackExtractor struct {
	registry *Registry
	logger   *errors.Logger
}

func NewFallbackExtractor(registry *Registry, logger *errors.Logger) *FallbackExtractor {
	return &FallbackExtractor{registry: registry, logger: logger}
}

// Extract returns one skill per distinct registry term found, in category
// order, deduplicated by lowercase name.
func (f *FallbackExtractor) Extract(text string) ([]ExtractedSkill, time.Duration) {
	start := time.Now()
	skills := []ExtractedSkill{}
	seen := make(map[string]struct{})

	for _, m := range f.registry.matchers {
		for _, match := range m.findAll(text) {
			term := strings.ToLower(strings.TrimSpace(match.Text))
			if len([]rune(term)) < 2 || isAllDigits(term) {
				continue
			}
			skill := NewSkill(titleCase(match.Text), match.Text, fallbackConfidence, m.name, SourceFallback)
			key := strings.ToLower(skill.Name)
			if _, dup := seen[key]; dup || skill.Name == "" {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, skill)
		}
	}

	elapsed := time.Since(start)
	f.logger.Debug("Fallback extractor finished", "skills", len(skills), "elapsed", elapsed.String())
	return skills, elapsed
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "node.js" becomes "Node.Js" and "neo4j" "Neo4J".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
