package formatters

import (
	"fmt"
	"strings"

	"jobanalyzer/internal/analyzer"
)

const keywordsShown = 15

// AnalysisTextFormatter handles text formatting for single posting results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	if result.Failed() {
		output.WriteString(fmt.Sprintf("=== JOB ANALYSIS FAILED: %s ===\n", result.JobID))
		output.WriteString(fmt.Sprintf("Error: %s\n", result.Metadata.Error))
		return output.String(), nil
	}

	meta := result.Metadata
	output.WriteString(fmt.Sprintf("=== JOB ANALYSIS: %s ===\n", result.JobID))
	output.WriteString(fmt.Sprintf("Processing time: %.4fs (cache hit: %t)\n", result.ProcessingTime, result.CacheHit))
	output.WriteString(fmt.Sprintf("Words: %d | Skills: %d | Entities: %d | Keywords: %d\n\n",
		meta.WordCount, meta.TotalUniqueSkills, meta.EntitiesCount, meta.KeywordsCount))

	output.WriteString("=== SKILLS ===\n")
	if len(result.Skills) == 0 {
		output.WriteString("No skills found\n")
	}
	for _, s := range result.Skills {
		output.WriteString(fmt.Sprintf("- %s (%s, %s, %.2f)", s.Name, s.SkillType, s.Source, s.Confidence))
		if s.SurfaceForm != "" && !strings.EqualFold(s.SurfaceForm, s.Name) {
			output.WriteString(fmt.Sprintf(" [%s]", s.SurfaceForm))
		}
		output.WriteString("\n")
	}
	output.WriteString("\n")

	if len(result.Entities) > 0 {
		output.WriteString("=== ENTITIES ===\n")
		for _, e := range result.Entities {
			output.WriteString(fmt.Sprintf("- %s [%s] %s\n", e.Text, e.Label, e.Description))
		}
		output.WriteString("\n")
	}

	if len(result.Keywords) > 0 {
		output.WriteString("=== TOP KEYWORDS ===\n")
		for i, k := range result.Keywords {
			if i == keywordsShown {
				break
			}
			output.WriteString(fmt.Sprintf("%d. %s (%s) score %.2f, seen %d", i+1, k.Text, k.POS, k.ImportanceScore, k.Frequency))
			if k.IsTechnical {
				output.WriteString(" [technical]")
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return TypeJobAnalysis
}

// AnalysisMarkdownFormatter handles markdown formatting for single posting results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Job Analysis: %s\n\n", result.JobID))
	if result.Failed() {
		output.WriteString(fmt.Sprintf("**Error:** %s\n", result.Metadata.Error))
		return output.String(), nil
	}

	meta := result.Metadata
	output.WriteString(fmt.Sprintf("**Processing time:** %.4fs  \n", result.ProcessingTime))
	output.WriteString(fmt.Sprintf("**Cache hit:** %t  \n", result.CacheHit))
	output.WriteString(fmt.Sprintf("**Fast mode:** %t  \n", meta.FastMode))
	output.WriteString(fmt.Sprintf("**Word count:** %d\n\n", meta.WordCount))

	output.WriteString("## Skills\n\n")
	if len(result.Skills) == 0 {
		output.WriteString("_No skills found_\n\n")
	} else {
		output.WriteString("| Skill | Surface form | Type | Source | Confidence |\n")
		output.WriteString("|---|---|---|---|---|\n")
		for _, s := range result.Skills {
			output.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f |\n",
				escapeCell(s.Name), escapeCell(s.SurfaceForm), s.SkillType, s.Source, s.Confidence))
		}
		output.WriteString("\n")
	}

	if len(result.Entities) > 0 {
		output.WriteString("## Entities\n\n")
		for _, e := range result.Entities {
			output.WriteString(fmt.Sprintf("- **%s** `%s` %s\n", e.Text, e.Label, e.Description))
		}
		output.WriteString("\n")
	}

	if len(result.Keywords) > 0 {
		output.WriteString("## Top Keywords\n\n")
		for i, k := range result.Keywords {
			if i == keywordsShown {
				break
			}
			technical := ""
			if k.IsTechnical {
				technical = " _(technical)_"
			}
			output.WriteString(fmt.Sprintf("%d. `%s` %.2f%s\n", i+1, k.Text, k.ImportanceScore, technical))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return TypeJobAnalysis
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatCounts(counts []analyzer.ItemCount, bullet string) string {
	var b strings.Builder
	for i, c := range counts {
		prefix := bullet
		if bullet == "" {
			prefix = fmt.Sprintf("%d.", i+1)
		}
		b.WriteString(fmt.Sprintf("%s %s (%d)\n", prefix, c.Item, c.Count))
	}
	return b.String()
}
