package cli

import (
	"context"
	"fmt"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/common"
	"jobanalyzer/internal/errors"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-posting-file]",
	Short: "Extract skills, entities and keywords from one job posting",
	Long: `Analyze a single job posting. HTML files are reduced to their readable
text first.

The result lists:
- skills from the primary skill model and the pattern fallback, with confidence
- named entities (organizations, locations, technologies)
- the top keywords, flagged when they are technical terms
- requirement sections and posting metadata`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeJobID  string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, markdown or csv")
	analyzeCmd.Flags().StringVar(&analyzeJobID, "job-id", "", "Job id for the result (default: the file name)")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	eng, err := newEngine(cmd.Context(), cfg, logger, nil, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	a, err := eng.build()
	if err != nil {
		return fmt.Errorf("failed to create job analyzer: %w", err)
	}

	logDetails := func(postings []common.Posting, cfg common.CommandConfig) {
		logger.Info("Starting job posting analysis",
			"file", postings[0].Path,
			"job_chars", len(postings[0].Text),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, postings []common.Posting) (*analyzer.JobAnalysisResult, error) {
		if len(postings) != 1 {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("expected 1 job posting, got %d (use batch for directories)", len(postings)), nil)
		}
		jobID := analyzeJobID
		if jobID == "" {
			jobID = postings[0].ID
		}
		return a.Analyze(ctx, postings[0].Text, jobID), nil
	}

	err = common.RunPostingCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		analyzeOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze job posting: %w", err)
	}
	logger.Info("Job posting analysis completed successfully")
	return nil
}
