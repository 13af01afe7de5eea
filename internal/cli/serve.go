package cli

import (
	"context"
	"fmt"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/observability"
	"jobanalyzer/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for job posting analysis",
	Long: `Start an HTTP server that exposes the job analyzer as a REST API.

Available endpoints:
- POST /analyze: Analyze one job posting
- POST /analyze/batch: Analyze a batch of job postings
- POST /match: Match a job posting against profile skills
- POST /cache/clear: Clear the result cache
- GET /health: Health check
- GET /stats: Server, rate limiting and analyzer statistics

The analyzer is built on the first request. Set analyzer.profile to
"service" for the long-running service tuning.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Flags override the loaded configuration
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	eng, err := newEngine(cmd.Context(), cfg, logger, om, om)
	if err != nil {
		return err
	}
	defer eng.Close()

	deps := server.Dependencies{
		Analyzers:     analyzer.NewProvider(eng.build, logger),
		Models:        eng.models,
		Observability: om,
	}
	if shared := eng.sharedCache(); shared != nil {
		deps.SharedCache = shared
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), deps, logger)
	return srv.Start(cmd.Context())
}
