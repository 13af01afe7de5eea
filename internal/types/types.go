package types

import "jobanalyzer/internal/analyzer"

// AnalyzeRequest represents the request body for the analyze endpoint
type AnalyzeRequest struct {
	JobDescription string `json:"jobDescription" validate:"required"`
	JobID          string `json:"jobId,omitempty" validate:"omitempty,max=128"`
}

// BatchRequest represents the request body for the batch endpoint
type BatchRequest struct {
	Postings []AnalyzeRequest `json:"postings" validate:"required,min=1,dive"`
}

// MatchRequest represents the request body for the match endpoint
type MatchRequest struct {
	JobDescription string   `json:"jobDescription" validate:"required"`
	JobID          string   `json:"jobId,omitempty" validate:"omitempty,max=128"`
	ProfileSkills  []string `json:"profileSkills" validate:"required,min=1,dive,required"`
}

// MatchResponse pairs a profile match with the analysis it was computed from
type MatchResponse struct {
	Match    analyzer.ProfileMatch       `json:"match"`
	Analysis *analyzer.JobAnalysisResult `json:"analysis"`
}

// CacheClearResponse reports how many cached results were dropped
type CacheClearResponse struct {
	Cleared int    `json:"cleared"`
	Status  string `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}
