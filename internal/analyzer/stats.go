package analyzer

import (
	"sync"
	"time"
)

// PerformanceStats are running totals across analyzed jobs, in seconds.
// Cache hits and failed analyses are not counted.
type PerformanceStats struct {
	TotalJobs    int64   `json:"total_jobs"`
	TotalTime    float64 `json:"total_time"`
	SkillnerTime float64 `json:"skillner_time"`
	NLPTime      float64 `json:"spacy_time"`
	FallbackTime float64 `json:"fallback_time"`

	AvgTimePerJob   *float64 `json:"avg_time_per_job,omitempty"`
	AvgSkillnerTime *float64 `json:"avg_skillner_time,omitempty"`
	AvgNLPTime      *float64 `json:"avg_spacy_time,omitempty"`
	AvgFallbackTime *float64 `json:"avg_fallback_time,omitempty"`
}

type statsRecorder struct {
	mu    sync.Mutex
	stats PerformanceStats
}

func (s *statsRecorder) record(total, primary, nlpTime, fallback time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalJobs++
	s.stats.TotalTime += total.Seconds()
	s.stats.SkillnerTime += primary.Seconds()
	s.stats.NLPTime += nlpTime.Seconds()
	s.stats.FallbackTime += fallback.Seconds()
}

// snapshot returns the totals with averages filled in once any job has run.
func (s *statsRecorder) snapshot() PerformanceStats {
	s.mu.Lock()
	out := s.stats
	s.mu.Unlock()

	if out.TotalJobs > 0 {
		n := float64(out.TotalJobs)
		avg := func(v float64) *float64 {
			a := v / n
			return &a
		}
		out.AvgTimePerJob = avg(out.TotalTime)
		out.AvgSkillnerTime = avg(out.SkillnerTime)
		out.AvgNLPTime = avg(out.NLPTime)
		out.AvgFallbackTime = avg(out.FallbackTime)
	}
	return out
}

// totals returns the raw running totals without averages.
func (s *statsRecorder) totals() PerformanceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
