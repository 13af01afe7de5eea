package server

import "fmt"

// displayServerInfo prints the startup banner
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAnalyzerInfo()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Printf("jobanalyzer %s listening on %s:%s\n", s.Version, s.Host, s.Port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health         - Health check")
	fmt.Println("  GET  /stats          - Server and analyzer statistics")
	fmt.Println("  POST /analyze        - Analyze one job posting")
	fmt.Println("  POST /analyze/batch  - Analyze a batch of job postings")
	fmt.Println("  POST /match          - Match a job posting against profile skills")
	fmt.Println("  POST /cache/clear    - Clear the result cache")
	if s.Observability.MetricsHandler() != nil {
		fmt.Println("  GET  /metrics        - Prometheus metrics")
	}
}

// displayAnalyzerInfo shows how analyzers will be built. The analyzer itself
// is created on the first request.
func (s *Server) displayAnalyzerInfo() {
	if s.Models != nil {
		fmt.Printf("Primary skill model: %s\n", s.Models.Provider())
	}
	if s.SharedCache != nil {
		fmt.Println("Shared result cache: ENABLED")
	}
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) == 0 {
		fmt.Println("API authentication: DISABLED, POST endpoints are open")
		return
	}
	fmt.Printf("API authentication: ENABLED (%d keys), send X-API-Key or a Bearer token on POST endpoints\n", len(s.APIKeys))
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %.1f MB\n", float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("WARNING: request size limit disabled")
	}
	if s.MaxBatchSize > 0 {
		fmt.Printf("Batch size limit: %d postings\n", s.MaxBatchSize)
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Println("WARNING: rate limiting disabled")
		return
	}
	var scopes []string
	if s.RateLimit.ByAPIKey {
		scopes = append(scopes, "api key")
	}
	if s.RateLimit.ByIP {
		scopes = append(scopes, "ip")
	}
	fmt.Printf("Rate limiting: %d requests/min, burst %d, per %v\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity, scopes)
}
