package formatters

import (
	"fmt"
	"strings"
)

// MatchTextFormatter handles text formatting for profile match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	m, err := asMatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== PROFILE MATCH ===\n")
	output.WriteString(fmt.Sprintf("Score: %.1f\n", m.Score))
	output.WriteString(fmt.Sprintf("Matched %d of %d job skills (%.1f%%)\n", m.MatchCount, m.JobSkillCount, m.JobCoverage))
	output.WriteString(fmt.Sprintf("Matched %d of %d profile skills (%.1f%%)\n", m.MatchCount, m.ProfileSkillCount, m.ProfileCoverage))
	if len(m.MatchedSkills) > 0 {
		output.WriteString("\nMatched skills:\n")
		for _, s := range m.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}
	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return TypeProfileMatch
}

// MatchMarkdownFormatter handles markdown formatting for profile match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	m, err := asMatch(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Profile Match\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %.1f\n\n", m.Score))
	output.WriteString("| | Matched | Total | Coverage |\n|---|---|---|---|\n")
	output.WriteString(fmt.Sprintf("| Job skills | %d | %d | %.1f%% |\n", m.MatchCount, m.JobSkillCount, m.JobCoverage))
	output.WriteString(fmt.Sprintf("| Profile skills | %d | %d | %.1f%% |\n\n", m.MatchCount, m.ProfileSkillCount, m.ProfileCoverage))
	if len(m.MatchedSkills) > 0 {
		output.WriteString("## Matched Skills\n\n")
		for _, s := range m.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}
	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return TypeProfileMatch
}
