package formatters

import (
	"fmt"
	"sort"
	"strings"

	"jobanalyzer/internal/analyzer"
)

const topItemsShown = 10

// BatchTextFormatter handles text formatting for batch reports
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	if report.Failed() {
		output.WriteString("=== BATCH ANALYSIS FAILED ===\n")
		output.WriteString(fmt.Sprintf("Error: %s\n", report.Error))
		output.WriteString(fmt.Sprintf("Processing time: %.2fs\n", report.ProcessingTime))
		writeFailedJobsText(&output, report.FailedJobs)
		return output.String(), nil
	}

	s := report.Summary
	output.WriteString("=== BATCH ANALYSIS SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Jobs analyzed: %d (failed: %d, success rate: %.1f%%)\n", s.TotalJobsAnalyzed, s.FailedJobsCount, s.SuccessRate))
	output.WriteString(fmt.Sprintf("Average skills per job: %.1f\n", s.AvgSkillsPerJob))
	output.WriteString(fmt.Sprintf("Unique skills: %d | Unique entities: %d | Skill diversity: %.2f\n", s.TotalUniqueSkills, s.TotalUniqueEntities, s.SkillDiversity))
	output.WriteString(fmt.Sprintf("Processing time: %.2fs total, %.4fs average\n", s.TotalProcessingTime, s.AvgProcessingTime))
	output.WriteString(fmt.Sprintf("Cache hit rate: %.1f%%\n\n", s.CacheHitRate))

	output.WriteString("=== TOP SKILLS ===\n")
	output.WriteString(formatCounts(limit(report.SkillsAnalysis.TopSkills), ""))
	output.WriteString("\n")

	if len(report.SkillsAnalysis.SkillsByType) > 0 {
		output.WriteString("=== SKILLS BY TYPE ===\n")
		for _, typ := range sortedKeys(report.SkillsAnalysis.SkillsByType) {
			output.WriteString(fmt.Sprintf("%s:\n", typ))
			output.WriteString(formatCounts(limit(report.SkillsAnalysis.SkillsByType[typ]), "  -"))
		}
		output.WriteString("\n")
	}

	if len(report.EntitiesAnalysis.TopEntities) > 0 {
		output.WriteString("=== TOP ENTITIES ===\n")
		output.WriteString(formatCounts(limit(report.EntitiesAnalysis.TopEntities), ""))
		output.WriteString("\n")
	}

	if len(report.KeywordsAnalysis.TopKeywords) > 0 {
		output.WriteString("=== TOP KEYWORDS ===\n")
		output.WriteString(formatCounts(limit(report.KeywordsAnalysis.TopKeywords), ""))
		output.WriteString("\n")
	}

	pt := report.PerformanceMetrics.ProcessingTimes
	output.WriteString("=== PERFORMANCE ===\n")
	output.WriteString(fmt.Sprintf("Min %.4fs | Max %.4fs | Avg %.4fs | Median %.4fs\n", pt.Min, pt.Max, pt.Avg, pt.Median))

	writeFailedJobsText(&output, report.FailedJobs)
	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return TypeBatchReport
}

// BatchMarkdownFormatter handles markdown formatting for batch reports
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Batch Analysis Report\n\n")

	if report.Failed() {
		output.WriteString(fmt.Sprintf("**Error:** %s\n\n", report.Error))
		writeFailedJobsMarkdown(&output, report.FailedJobs)
		return output.String(), nil
	}

	s := report.Summary
	output.WriteString("## Summary\n\n")
	output.WriteString("| Metric | Value |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Jobs analyzed | %d |\n", s.TotalJobsAnalyzed))
	output.WriteString(fmt.Sprintf("| Failed jobs | %d |\n", s.FailedJobsCount))
	output.WriteString(fmt.Sprintf("| Success rate | %.1f%% |\n", s.SuccessRate))
	output.WriteString(fmt.Sprintf("| Avg skills per job | %.1f |\n", s.AvgSkillsPerJob))
	output.WriteString(fmt.Sprintf("| Unique skills | %d |\n", s.TotalUniqueSkills))
	output.WriteString(fmt.Sprintf("| Cache hit rate | %.1f%% |\n", s.CacheHitRate))
	output.WriteString(fmt.Sprintf("| Total processing time | %.2fs |\n\n", s.TotalProcessingTime))

	output.WriteString("## Top Skills\n\n")
	output.WriteString(formatCounts(limit(report.SkillsAnalysis.TopSkills), ""))
	output.WriteString("\n")

	if len(report.SkillsAnalysis.SkillsBySource) > 0 {
		output.WriteString("## Skills by Source\n\n")
		for _, source := range sortedKeys(report.SkillsAnalysis.SkillsBySource) {
			output.WriteString(fmt.Sprintf("### %s\n", source))
			output.WriteString(formatCounts(limit(report.SkillsAnalysis.SkillsBySource[source]), "-"))
			output.WriteString("\n")
		}
	}

	if len(report.KeywordsAnalysis.TopKeywords) > 0 {
		output.WriteString("## Top Keywords\n\n")
		output.WriteString(formatCounts(limit(report.KeywordsAnalysis.TopKeywords), ""))
		output.WriteString("\n")
	}

	output.WriteString("## Jobs\n\n")
	output.WriteString("| Job | Skills | Cache hit | Time (s) |\n|---|---|---|---|\n")
	for _, r := range report.IndividualResults {
		output.WriteString(fmt.Sprintf("| %s | %d | %t | %.4f |\n", escapeCell(r.JobID), len(r.Skills), r.CacheHit, r.ProcessingTime))
	}
	output.WriteString("\n")

	writeFailedJobsMarkdown(&output, report.FailedJobs)
	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return TypeBatchReport
}

func writeFailedJobsText(b *strings.Builder, failed []analyzer.FailedJob) {
	if len(failed) == 0 {
		return
	}
	b.WriteString("\n=== FAILED JOBS ===\n")
	for _, f := range failed {
		b.WriteString(fmt.Sprintf("- %s: %s\n", f.JobID, f.Error))
	}
}

func writeFailedJobsMarkdown(b *strings.Builder, failed []analyzer.FailedJob) {
	if len(failed) == 0 {
		return
	}
	b.WriteString("## Failed Jobs\n\n")
	for _, f := range failed {
		b.WriteString(fmt.Sprintf("- `%s`: %s\n", f.JobID, f.Error))
	}
}

func limit[T any](items []T) []T {
	if len(items) > topItemsShown {
		return items[:topItemsShown]
	}
	return items
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
