package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

const fallbackJobTerms = 20

var plainWordRe = regexp.MustCompile(`[A-Za-z]{3,}`)

// ProfileMatch compares a posting's skills against a candidate profile.
// Coverages are percentages.
type ProfileMatch struct {
	MatchedSkills     []string `json:"matched_skills"`
	JobSkillCount     int      `json:"job_skill_count"`
	ProfileSkillCount int      `json:"profile_skill_count"`
	MatchCount        int      `json:"match_count"`
	JobCoverage       float64  `json:"job_coverage"`
	ProfileCoverage   float64  `json:"profile_coverage"`
	Score             float64  `json:"score"`
}

// MatchProfile intersects the lowercased job skills with the profile skills.
// Profile entries may be comma separated lists. When the result has no
// skills the twenty most common plain words of rawText stand in for them.
func MatchProfile(result *JobAnalysisResult, rawText string, profileSkills []string) ProfileMatch {
	jobSet := map[string]struct{}{}
	if result != nil {
		for _, s := range result.Skills {
			name := s.Name
			if name == "" {
				name = s.SurfaceForm
			}
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				jobSet[name] = struct{}{}
			}
		}
	}
	if len(jobSet) == 0 {
		var words []string
		for _, w := range plainWordRe.FindAllString(rawText, -1) {
			words = append(words, strings.ToLower(w))
		}
		for _, c := range mostCommon(words, fallbackJobTerms) {
			jobSet[c.Item] = struct{}{}
		}
	}

	profileSet := map[string]struct{}{}
	for _, entry := range profileSkills {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				profileSet[part] = struct{}{}
			}
		}
	}

	matched := []string{}
	for skill := range jobSet {
		if _, ok := profileSet[skill]; ok {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)

	m := ProfileMatch{
		MatchedSkills:     matched,
		JobSkillCount:     len(jobSet),
		ProfileSkillCount: len(profileSet),
		MatchCount:        len(matched),
	}
	if m.JobSkillCount > 0 {
		m.JobCoverage = round(float64(m.MatchCount)/float64(m.JobSkillCount)*100, 1)
	}
	if m.ProfileSkillCount > 0 {
		m.ProfileCoverage = round(float64(m.MatchCount)/float64(m.ProfileSkillCount)*100, 1)
	}
	m.Score = m.JobCoverage
	return m
}
