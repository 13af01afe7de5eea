package cli

import (
	"context"
	"fmt"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/common"
	"jobanalyzer/internal/errors"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Analyze many job postings and aggregate the results",
	Long: `Analyze a batch of job postings and print an aggregated report: the most
requested skills by type and source, common entities and keywords, and
processing time statistics. Directories contribute every .txt, .md and .html
file they contain, in name order.

Large batches run in parallel. Use --export to also write the report as
JSON or as a per-job CSV summary.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.ValidateExportFormat(batchExportFormat); err != nil {
			return err
		}
		return resolveOutputFormat(cmd, &batchConfig)
	},
	RunE: runBatch,
}

var (
	batchConfig       common.CommandConfig
	batchJobIDs       string
	batchExportFormat string
	batchExportFile   string
)

func init() {
	batchCmd.Flags().StringVarP(&batchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().StringVar(&batchConfig.OutputFormat, "format", "", "Output format: json, text, markdown or csv")
	batchCmd.Flags().StringVar(&batchJobIDs, "ids", "", "Comma separated job ids, one per posting (default: job_001, job_002, ...)")
	batchCmd.Flags().StringVar(&batchExportFormat, "export", "", "Also export the report: json or csv")
	batchCmd.Flags().StringVar(&batchExportFile, "export-file", "", "Export file path (default: job_analysis_results_<timestamp>.<format>)")

	_ = batchCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = batchCmd.RegisterFlagCompletionFunc("export", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return common.ExportFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	logDetails := func(postings []common.Posting, cfg common.CommandConfig) {
		logger.Info("Starting batch analysis",
			"postings", len(postings),
			"output_format", cfg.OutputFormat,
			"export_format", batchExportFormat)
	}

	batchOperation := func(ctx context.Context, postings []common.Posting) (*analyzer.BatchReport, error) {
		texts := make([]string, len(postings))
		for i, p := range postings {
			texts[i] = p.Text
		}

		a, err := eng.buildWith(eng.opts.OptimizeForBatch(len(postings)))
		if err != nil {
			return nil, fmt.Errorf("failed to create job analyzer: %w", err)
		}

		report, err := a.AnalyzeMany(ctx, texts, common.SplitList(batchJobIDs))
		if err != nil {
			return nil, err
		}

		if batchExportFormat != "" {
			file, err := analyzer.Export(report, batchExportFile, batchExportFormat)
			if err != nil {
				return nil, err
			}
			logger.Info("Batch report exported", "file", file, "format", batchExportFormat)
		}
		return report, nil
	}

	err = common.RunPostingCommand(
		cmd.Context(),
		logger,
		batchConfig,
		args,
		batchOperation,
		logDetails,
	)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeArityMismatch) {
			return fmt.Errorf("--ids must name one job id per posting: %w", err)
		}
		return fmt.Errorf("failed to analyze job postings: %w", err)
	}
	logger.Info("Batch analysis completed successfully")
	return nil
}
