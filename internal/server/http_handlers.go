package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/types"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultHealthCheckTimeout = 5 * time.Second

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig == nil || s.AppConfig.Observability.HealthCheck.Timeout <= 0 {
		return defaultHealthCheckTimeout
	}
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler reports analyzer, skill model and shared cache status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
	defer cancel()

	response := map[string]any{
		"status":  "healthy",
		"service": "jobanalyzer",
		"version": s.Version,
	}
	healthy := true

	a := s.Analyzers.Get()
	if a == nil {
		healthy = false
		response["analyzer"] = map[string]any{"available": false}
	} else {
		response["analyzer"] = map[string]any{
			"available":       true,
			"primary_enabled": a.PrimaryEnabled(),
			"fast_mode":       a.Options().FastMode,
			"cached_results":  a.CacheLen(),
		}
	}

	// A missing primary model degrades extraction quality, not availability.
	if s.Models != nil {
		response["skill_model"] = s.Models.ModelInfo(ctx)
		response["circuit_breaker"] = s.Models.Stats()
	}

	if s.SharedCache != nil {
		cacheHealthy := s.SharedCache.Healthy(ctx)
		response["shared_cache"] = map[string]any{"available": cacheHealthy}
		healthy = healthy && cacheHealthy
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server, rate limiting and analyzer statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "jobanalyzer",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_batch_size":         s.MaxBatchSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	// Stats never force the analyzer to be built.
	if s.Analyzers.Ready() {
		response["analyzer"] = s.Analyzers.Get().PerformanceReport()
	}
	if s.Models != nil {
		response["circuit_breaker"] = s.Models.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeRequest parses and validates a JSON body, writing a 400 and
// returning false when it is unusable.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, span trace.Span, v any) bool {
	if err := parseJSONRequest(r, v); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, r, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}

	if err := s.validate.Struct(v); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))

		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			writeErrorResponse(w, r, "Invalid request", err.Error(), http.StatusBadRequest)
			return false
		}
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Error:     "Validation failed",
			Message:   fmt.Sprintf("%d invalid field(s)", len(fieldErrs)),
			Fields:    validationFields(fieldErrs),
			RequestID: requestID(r.Context()),
		})
		return false
	}
	return true
}

// validationFields maps field paths such as postings[0].jobDescription to
// the failed rule.
func validationFields(fieldErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[path] = rule
	}
	return fields
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeAppError maps an application error to a status code
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Request failed"
	message := err.Error()

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
		switch appErr.Type {
		case errors.ErrorTypeValidation:
			status, title = http.StatusBadRequest, "Invalid request"
		case errors.ErrorTypeNetwork:
			status, title = http.StatusBadGateway, "Upstream failure"
		}
	}
	writeErrorResponse(w, r, title, message, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, error, message string, statusCode int) {
	writeJSON(w, statusCode, types.ErrorResponse{
		Error:     error,
		Message:   message,
		RequestID: requestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
