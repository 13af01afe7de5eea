package server

import (
	"fmt"
	"net/http"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jobanalyzer.api"

// analyzeHandler analyzes one posting
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze")
	defer span.End()

	var req types.AnalyzeRequest
	if !s.decodeRequest(w, r, span, &req) {
		return
	}

	a := s.analyzerOrUnavailable(w, r, span)
	if a == nil {
		return
	}

	span.SetAttributes(
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.String("operation", "analyze"),
	)

	result := a.Analyze(ctx, req.JobDescription, req.JobID)
	annotateResult(span, result)
	writeJSON(w, http.StatusOK, result)
}

// batchHandler analyzes a batch of postings and returns the aggregated report
func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze_batch")
	defer span.End()

	var req types.BatchRequest
	if !s.decodeRequest(w, r, span, &req) {
		return
	}

	if s.MaxBatchSize > 0 && len(req.Postings) > s.MaxBatchSize {
		err := fmt.Errorf("batch of %d postings exceeds limit of %d", len(req.Postings), s.MaxBatchSize)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, r, "Batch too large", err.Error(), http.StatusBadRequest)
		return
	}

	a := s.analyzerOrUnavailable(w, r, span)
	if a == nil {
		return
	}

	texts, jobIDs := batchInputs(req)
	span.SetAttributes(
		attribute.Int("request.postings", len(texts)),
		attribute.String("operation", "analyze_batch"),
	)

	report, err := a.AnalyzeMany(ctx, texts, jobIDs)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeAppError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("batch.analyzed", report.Summary.TotalJobsAnalyzed),
		attribute.Int("batch.failed", report.Summary.FailedJobsCount),
	)
	writeJSON(w, http.StatusOK, report)
}

// matchHandler analyzes a posting and compares its skills with a profile
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.match")
	defer span.End()

	var req types.MatchRequest
	if !s.decodeRequest(w, r, span, &req) {
		return
	}

	a := s.analyzerOrUnavailable(w, r, span)
	if a == nil {
		return
	}

	result := a.Analyze(ctx, req.JobDescription, req.JobID)
	annotateResult(span, result)

	match := analyzer.MatchProfile(result, req.JobDescription, req.ProfileSkills)
	span.SetAttributes(
		attribute.Int("match.count", match.MatchCount),
		attribute.Float64("match.score", match.Score),
	)
	writeJSON(w, http.StatusOK, types.MatchResponse{Match: match, Analysis: result})
}

// cacheClearHandler empties the local result cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.cache_clear")
	defer span.End()

	a := s.analyzerOrUnavailable(w, r, span)
	if a == nil {
		return
	}

	cleared := a.CacheLen()
	a.ClearCache()
	span.SetAttributes(attribute.Int("cache.cleared", cleared))
	s.Logger.Info("Result cache cleared via API", "entries", cleared, "request_id", requestID(r.Context()))
	writeJSON(w, http.StatusOK, types.CacheClearResponse{Cleared: cleared, Status: "cleared"})
}

// analyzerOrUnavailable returns the shared analyzer or writes a 503
func (s *Server) analyzerOrUnavailable(w http.ResponseWriter, r *http.Request, span trace.Span) *analyzer.Analyzer {
	a := s.Analyzers.Get()
	if a == nil {
		err := errors.NewInternalError(errors.ErrCodeExtractorUnavailable, "job analyzer is not available", nil)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "unavailable"))
		writeErrorResponse(w, r, "Analyzer unavailable", err.Message, http.StatusServiceUnavailable)
	}
	return a
}

// batchInputs splits postings into parallel slices. Ids are passed only when
// at least one posting names one; the rest are numbered by position.
func batchInputs(req types.BatchRequest) ([]string, []string) {
	texts := make([]string, len(req.Postings))
	ids := make([]string, len(req.Postings))
	named := false
	for i, p := range req.Postings {
		texts[i] = p.JobDescription
		ids[i] = p.JobID
		if p.JobID != "" {
			named = true
		}
	}
	if !named {
		return texts, nil
	}
	for i := range ids {
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("job_%03d", i+1)
		}
	}
	return texts, ids
}

func annotateResult(span trace.Span, result *analyzer.JobAnalysisResult) {
	span.SetAttributes(
		attribute.String("job.id", result.JobID),
		attribute.Int("result.skills", len(result.Skills)),
		attribute.Bool("result.cache_hit", result.CacheHit),
		attribute.Bool("success", !result.Failed()),
	)
}
