package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobanalyzer/internal/errors"
)

const (
	parallelThreshold       = 2
	parallelProgressEvery   = 10
	sequentialProgressEvery = 5
)

// FailedJob records a batch task that produced no result.
type FailedJob struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
}

type taskOutcome struct {
	result *JobAnalysisResult
	err    error
}

// AnalyzeMany analyzes a batch of postings and aggregates the results. A nil
// jobIDs slice yields job_001, job_002 and so on; otherwise its length must
// match texts. Only an arity mismatch is returned as an error, and it is
// detected before any analysis runs.
func (a *Analyzer) AnalyzeMany(ctx context.Context, texts []string, jobIDs []string) (*BatchReport, error) {
	if jobIDs == nil {
		jobIDs = make([]string, len(texts))
		for i := range texts {
			jobIDs[i] = fmt.Sprintf("job_%03d", i+1)
		}
	}
	if len(jobIDs) != len(texts) {
		return nil, errors.NewValidationError(errors.ErrCodeArityMismatch, "number of job ids must match number of job postings", nil).
			WithContext("job_ids", len(jobIDs)).
			WithContext("job_postings", len(texts))
	}

	start := time.Now()
	var results []*JobAnalysisResult
	var failed []FailedJob
	if a.opts.EnableThreading && len(texts) > parallelThreshold {
		results, failed = a.runParallel(ctx, texts, jobIDs)
	} else {
		results, failed = a.runSequential(ctx, texts, jobIDs)
	}
	elapsed := time.Since(start)
	a.logger.Info("Batch processing completed", "jobs", len(texts), "failed", len(failed), "elapsed", elapsed.String())

	if a.observer != nil {
		a.observer.BatchCompleted(ctx, len(results), len(failed), elapsed)
	}
	return a.aggregate(results, failed, elapsed), nil
}

// runParallel fans tasks out over at most MaxWorkers goroutines. Each task's
// timeout starts when a worker picks it up, so time spent queued behind other
// jobs never counts against it. Results are collected in completion order.
func (a *Analyzer) runParallel(ctx context.Context, texts, jobIDs []string) ([]*JobAnalysisResult, []FailedJob) {
	a.logger.Info("Processing jobs in parallel", "jobs", len(texts), "workers", a.opts.MaxWorkers)

	var (
		mu        sync.Mutex
		results   = make([]*JobAnalysisResult, 0, len(texts))
		failed    []FailedJob
		completed int
	)

	var g errgroup.Group
	g.SetLimit(a.opts.MaxWorkers)
	for i := range texts {
		text, jobID := texts[i], jobIDs[i]
		g.Go(func() error {
			result, err := a.runWithTimeout(ctx, text, jobID)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				a.logger.Warn("Failed to analyze job", "job_id", jobID, "error", err.Error())
				failed = append(failed, FailedJob{JobID: jobID, Error: err.Error()})
			} else {
				results = append(results, result)
			}
			if completed%parallelProgressEvery == 0 {
				a.logger.Info("Batch progress", "completed", completed, "total", len(texts))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, failed
}

// runWithTimeout runs one analysis and gives up after TaskTimeout.
// An abandoned analysis keeps running; its result is discarded.
func (a *Analyzer) runWithTimeout(ctx context.Context, text, jobID string) (*JobAnalysisResult, error) {
	taskCtx, cancel := context.WithTimeout(ctx, a.opts.TaskTimeout)
	defer cancel()
	if err := taskCtx.Err(); err != nil {
		return nil, taskError(err, a.opts.TaskTimeout)
	}

	done := make(chan taskOutcome, 1)
	go func() {
		done <- a.safeAnalyze(taskCtx, text, jobID)
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-taskCtx.Done():
		return nil, taskError(taskCtx.Err(), a.opts.TaskTimeout)
	}
}

func (a *Analyzer) runSequential(ctx context.Context, texts, jobIDs []string) ([]*JobAnalysisResult, []FailedJob) {
	a.logger.Info("Processing jobs sequentially", "jobs", len(texts))

	results := make([]*JobAnalysisResult, 0, len(texts))
	var failed []FailedJob
	for i := range texts {
		out := a.safeAnalyze(ctx, texts[i], jobIDs[i])
		if out.err != nil {
			a.logger.Warn("Failed to analyze job", "job_id", jobIDs[i], "error", out.err.Error())
			failed = append(failed, FailedJob{JobID: jobIDs[i], Error: out.err.Error()})
		} else {
			results = append(results, out.result)
		}
		if (i+1)%sequentialProgressEvery == 0 {
			a.logger.Info("Batch progress", "completed", i+1, "total", len(texts))
		}
	}
	return results, failed
}

// safeAnalyze converts a panic that escapes Analyze into a task error.
func (a *Analyzer) safeAnalyze(ctx context.Context, text, jobID string) (out taskOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = taskOutcome{err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return taskOutcome{result: a.Analyze(ctx, text, jobID)}
}

func taskError(err error, timeout time.Duration) error {
	if err == context.DeadlineExceeded {
		return fmt.Errorf("analysis timed out after %s", timeout)
	}
	return err
}
