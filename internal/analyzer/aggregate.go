package analyzer

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const (
	topSkillsLimit       = 25
	skillsByGroupLimit   = 15
	topEntitiesLimit     = 20
	topKeywordsLimit     = 25
	noSuccessfulAnalysis = "No jobs successfully analyzed"
)

// ItemCount is one entry of a frequency table. It serializes as a
// two-element array.
type ItemCount struct {
	Item  string
	Count int
}

func (c ItemCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Item, c.Count})
}

type BatchSummary struct {
	TotalJobsAnalyzed   int     `json:"total_jobs_analyzed"`
	FailedJobsCount     int     `json:"failed_jobs_count"`
	SuccessRate         float64 `json:"success_rate"`
	AvgSkillsPerJob     float64 `json:"avg_skills_per_job"`
	AvgProcessingTime   float64 `json:"avg_processing_time"`
	TotalProcessingTime float64 `json:"total_processing_time"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	SkillDiversity      float64 `json:"skill_diversity"`
	TotalUniqueSkills   int     `json:"total_unique_skills"`
	TotalUniqueEntities int     `json:"total_unique_entities"`
	ProcessingTimestamp string  `json:"processing_timestamp"`
}

type SkillsAnalysis struct {
	TopSkills                  []ItemCount            `json:"top_skills"`
	SkillsByType               map[string][]ItemCount `json:"skills_by_type"`
	SkillsBySource             map[string][]ItemCount `json:"skills_by_source"`
	SkillFrequencyDistribution map[string]int         `json:"skill_frequency_distribution"`
}

type EntitiesAnalysis struct {
	TopEntities                 []ItemCount    `json:"top_entities"`
	EntityFrequencyDistribution map[string]int `json:"entity_frequency_distribution"`
}

type KeywordsAnalysis struct {
	TopKeywords                  []ItemCount    `json:"top_keywords"`
	KeywordFrequencyDistribution map[string]int `json:"keyword_frequency_distribution"`
}

type TimeStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

type CachePerformance struct {
	HitRate    float64    `json:"hit_rate"`
	TotalHits  int        `json:"total_hits"`
	CacheStats CacheStats `json:"cache_stats"`
}

type PerformanceMetrics struct {
	ProcessingTimes  TimeStats        `json:"processing_times"`
	CachePerformance CachePerformance `json:"cache_performance"`
	OverallStats     PerformanceStats `json:"overall_stats"`
}

type ResultSkill struct {
	Name        string  `json:"name"`
	SurfaceForm string  `json:"surface_form"`
	Confidence  float64 `json:"confidence"`
	Type        string  `json:"type"`
	Source      string  `json:"source"`
}

type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type ResultEntity struct {
	Text        string   `json:"text"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Position    Position `json:"position"`
}

// IndividualResult is the per-job section of a batch report.
type IndividualResult struct {
	JobID          string         `json:"job_id"`
	ProcessingTime float64        `json:"processing_time"`
	CacheHit       bool           `json:"cache_hit"`
	Skills         []ResultSkill  `json:"skills"`
	Entities       []ResultEntity `json:"entities"`
	Keywords       []Keyword      `json:"keywords"`
	Metadata       Metadata       `json:"metadata"`
}

// BatchReport aggregates a batch. When no job succeeded only Error,
// FailedJobs and ProcessingTime are set.
type BatchReport struct {
	Summary            BatchSummary       `json:"summary"`
	SkillsAnalysis     SkillsAnalysis     `json:"skills_analysis"`
	EntitiesAnalysis   EntitiesAnalysis   `json:"entities_analysis"`
	KeywordsAnalysis   KeywordsAnalysis   `json:"keywords_analysis"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
	IndividualResults  []IndividualResult `json:"individual_results"`
	FailedJobs         []FailedJob        `json:"failed_jobs"`
	ExportTimestamp    string             `json:"export_timestamp"`

	Error          string  `json:"error,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
}

type failedBatchReport struct {
	Error          string      `json:"error"`
	FailedJobs     []FailedJob `json:"failed_jobs"`
	ProcessingTime float64     `json:"processing_time"`
}

// MarshalJSON writes the reduced shape for batches without any success.
func (r BatchReport) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(failedBatchReport{
			Error:          r.Error,
			FailedJobs:     r.FailedJobs,
			ProcessingTime: r.ProcessingTime,
		})
	}
	type plain BatchReport
	return json.Marshal(plain(r))
}

// Failed reports whether no job in the batch succeeded.
func (r *BatchReport) Failed() bool {
	return r.Error != ""
}

// aggregate builds the batch report. Frequency tables list the most common
// items first and break ties by first appearance.
func (a *Analyzer) aggregate(results []*JobAnalysisResult, failed []FailedJob, elapsed time.Duration) *BatchReport {
	if failed == nil {
		failed = []FailedJob{}
	}
	if len(results) == 0 {
		return &BatchReport{
			Error:          noSuccessfulAnalysis,
			FailedJobs:     failed,
			ProcessingTime: elapsed.Seconds(),
		}
	}

	var (
		allSkills, allEntities, allKeywords []string
		typeOrder, sourceOrder              []string
		skillTypes                          = map[string][]string{}
		skillSources                        = map[string][]string{}
		times                               = make([]float64, 0, len(results))
		cacheHits, skillMentions            int
		totalTime                           float64
	)
	for _, r := range results {
		for _, s := range r.Skills {
			allSkills = append(allSkills, s.Name)
			if _, ok := skillTypes[s.SkillType]; !ok {
				typeOrder = append(typeOrder, s.SkillType)
			}
			skillTypes[s.SkillType] = append(skillTypes[s.SkillType], s.Name)
			if _, ok := skillSources[s.Source]; !ok {
				sourceOrder = append(sourceOrder, s.Source)
			}
			skillSources[s.Source] = append(skillSources[s.Source], s.Name)
		}
		skillMentions += len(r.Skills)
		for _, e := range r.Entities {
			allEntities = append(allEntities, strings.ToLower(e.Text))
		}
		for _, k := range r.Keywords {
			for range k.Frequency {
				allKeywords = append(allKeywords, k.Text)
			}
		}
		times = append(times, r.ProcessingTime)
		totalTime += r.ProcessingTime
		if r.CacheHit {
			cacheHits++
		}
	}

	jobs := len(results)
	avgTime := totalTime / float64(jobs)
	hitRate := float64(cacheHits) / float64(jobs)
	uniqueSkills := countDistinct(allSkills)
	diversity := 0.0
	if len(allSkills) > 0 {
		diversity = float64(uniqueSkills) / float64(len(allSkills))
	}

	byType := make(map[string][]ItemCount, len(typeOrder))
	for _, t := range typeOrder {
		byType[t] = mostCommon(skillTypes[t], skillsByGroupLimit)
	}
	bySource := make(map[string][]ItemCount, len(sourceOrder))
	for _, s := range sourceOrder {
		bySource[s] = mostCommon(skillSources[s], skillsByGroupLimit)
	}

	individual := make([]IndividualResult, 0, jobs)
	for _, r := range results {
		individual = append(individual, toIndividualResult(r))
	}

	now := timestamp(time.Now())
	return &BatchReport{
		Summary: BatchSummary{
			TotalJobsAnalyzed:   jobs,
			FailedJobsCount:     len(failed),
			SuccessRate:         float64(jobs) / float64(jobs+len(failed)),
			AvgSkillsPerJob:     round(float64(skillMentions)/float64(jobs), 2),
			AvgProcessingTime:   round(avgTime, 4),
			TotalProcessingTime: round(elapsed.Seconds(), 2),
			CacheHitRate:        round(hitRate, 3),
			SkillDiversity:      round(diversity, 3),
			TotalUniqueSkills:   uniqueSkills,
			TotalUniqueEntities: countDistinct(allEntities),
			ProcessingTimestamp: now,
		},
		SkillsAnalysis: SkillsAnalysis{
			TopSkills:                  mostCommon(allSkills, topSkillsLimit),
			SkillsByType:               byType,
			SkillsBySource:             bySource,
			SkillFrequencyDistribution: frequencyDistribution(allSkills),
		},
		EntitiesAnalysis: EntitiesAnalysis{
			TopEntities:                 mostCommon(allEntities, topEntitiesLimit),
			EntityFrequencyDistribution: frequencyDistribution(allEntities),
		},
		KeywordsAnalysis: KeywordsAnalysis{
			TopKeywords:                  mostCommon(allKeywords, topKeywordsLimit),
			KeywordFrequencyDistribution: frequencyDistribution(allKeywords),
		},
		PerformanceMetrics: PerformanceMetrics{
			ProcessingTimes: timeStats(times, avgTime),
			CachePerformance: CachePerformance{
				HitRate:    hitRate,
				TotalHits:  cacheHits,
				CacheStats: a.cache.Stats(),
			},
			OverallStats: a.stats.totals(),
		},
		IndividualResults: individual,
		FailedJobs:        failed,
		ExportTimestamp:   now,
	}
}

func toIndividualResult(r *JobAnalysisResult) IndividualResult {
	skills := make([]ResultSkill, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, ResultSkill{
			Name:        s.Name,
			SurfaceForm: s.SurfaceForm,
			Confidence:  round(s.Confidence, 3),
			Type:        s.SkillType,
			Source:      s.Source,
		})
	}
	entities := make([]ResultEntity, 0, len(r.Entities))
	for _, e := range r.Entities {
		entities = append(entities, ResultEntity{
			Text:        e.Text,
			Label:       e.Label,
			Description: e.Description,
			Confidence:  round(e.Confidence, 3),
			Position:    Position{Start: e.Start, End: e.End},
		})
	}
	keywords := r.Keywords
	if keywords == nil {
		keywords = []Keyword{}
	}
	return IndividualResult{
		JobID:          r.JobID,
		ProcessingTime: r.ProcessingTime,
		CacheHit:       r.CacheHit,
		Skills:         skills,
		Entities:       entities,
		Keywords:       keywords,
		Metadata:       r.Metadata,
	}
}

// mostCommon counts items and returns the n most frequent. Equal counts keep
// first-appearance order.
func mostCommon(items []string, n int) []ItemCount {
	counts := make(map[string]int, len(items))
	var order []string
	for _, item := range items {
		if _, ok := counts[item]; !ok {
			order = append(order, item)
		}
		counts[item]++
	}
	out := make([]ItemCount, 0, len(order))
	for _, item := range order {
		out = append(out, ItemCount{Item: item, Count: counts[item]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// frequencyDistribution buckets distinct items by how often they occur.
func frequencyDistribution(items []string) map[string]int {
	if len(items) == 0 {
		return map[string]int{}
	}
	counts := make(map[string]int)
	for _, item := range items {
		counts[item]++
	}
	dist := map[string]int{
		"single_occurrence":      0,
		"low_frequency_2_5":      0,
		"medium_frequency_6_10":  0,
		"high_frequency_11_plus": 0,
	}
	for _, c := range counts {
		switch {
		case c == 1:
			dist["single_occurrence"]++
		case c <= 5:
			dist["low_frequency_2_5"]++
		case c <= 10:
			dist["medium_frequency_6_10"]++
		default:
			dist["high_frequency_11_plus"]++
		}
	}
	return dist
}

func timeStats(times []float64, avg float64) TimeStats {
	sorted := append([]float64{}, times...)
	sort.Float64s(sorted)
	return TimeStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Avg:    avg,
		Median: sorted[len(sorted)/2],
	}
}

func countDistinct(items []string) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item] = struct{}{}
	}
	return len(seen)
}
