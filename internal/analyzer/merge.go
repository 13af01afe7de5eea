package analyzer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

var dedupKeyReplacer = strings.NewReplacer("_", " ", "-", " ")

func dedupKey(name string) string {
	key := strings.TrimSpace(strings.ToLower(name))
	key = strings.ReplaceAll(key, ".js", "js")
	return dedupKeyReplacer.Replace(key)
}

// better reports whether a should represent its group instead of b.
func better(a, b ExtractedSkill) bool {
	aPrimary, bPrimary := a.Source == SourcePrimary, b.Source == SourcePrimary
	if aPrimary != bPrimary {
		return aPrimary
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return utf8.RuneCountInString(a.SurfaceForm) < utf8.RuneCountInString(b.SurfaceForm)
}

// MergeSkills collapses equivalent spellings into one representative per
// group, sorted by confidence (ties keep first-seen group order) and capped
// at maxSkills.
func MergeSkills(maxSkills int, lists ...[]ExtractedSkill) []ExtractedSkill {
	var keys []string
	best := make(map[string]ExtractedSkill)
	for _, list := range lists {
		for _, skill := range list {
			if skill.Name == "" {
				continue
			}
			key := dedupKey(skill.Name)
			current, ok := best[key]
			if !ok {
				keys = append(keys, key)
				best[key] = skill
				continue
			}
			if better(skill, current) {
				best[key] = skill
			}
		}
	}

	merged := make([]ExtractedSkill, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, best[key])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	if maxSkills > 0 && len(merged) > maxSkills {
		merged = merged[:maxSkills]
	}
	return merged
}
