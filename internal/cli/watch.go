package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/common"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/utils"
	"jobanalyzer/internal/watcher"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Analyze job postings as they are added to a directory",
	Long: `Watch a directory and analyze every job posting file written to it.
Bursts of file events are debounced into one pass. Only one watcher may run
per directory; a lock file guards it.

Results are printed to stdout, or written next to each other in --output-dir
as <job-id>.<format>.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &watchConfig)
	},
	RunE: runWatch,
}

var (
	watchConfig    common.CommandConfig
	watchOutputDir string
	watchDebounce  time.Duration
	watchExisting  bool
)

func init() {
	watchCmd.Flags().StringVar(&watchConfig.OutputFormat, "format", "", "Output format: json, text, markdown or csv")
	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "", "Directory for result files (default: stdout)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", time.Second, "Quiet period before changed files are analyzed")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Analyze postings already in the directory on start")

	_ = watchCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	p := &postingPass{
		analyzer:      a,
		fileProcessor: common.NewFileProcessor(logger, watchConfig.MaxFileSize),
		outputHandler: common.NewOutputHandler(logger),
		format:        watchConfig.OutputFormat,
		outputDir:     watchOutputDir,
		logger:        logger,
	}

	dir := args[0]
	if watchOutputDir != "" && sameDir(watchOutputDir, dir) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"--output-dir must differ from the watched directory", nil)
	}
	if watchExisting {
		existing, err := utils.ListPostingFiles(dir)
		if err != nil {
			return errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot list directory: %s", dir), err)
		}
		p.run(cmd.Context(), existing)
	}

	w, err := watcher.New(dir, watchDebounce, p.run, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Watching %s for job postings (Ctrl+C to stop)\n", dir)
	return w.Run(cmd.Context())
}

// postingPass analyzes one debounced set of posting files
type postingPass struct {
	analyzer      *analyzer.Analyzer
	fileProcessor *common.FileProcessor
	outputHandler *common.OutputHandler
	format        string
	outputDir     string
	logger        *errors.Logger
}

// run analyzes each path. A bad file is logged and skipped.
func (p *postingPass) run(ctx context.Context, paths []string) {
	for _, path := range paths {
		posting, err := p.fileProcessor.ReadPosting(path)
		if err != nil {
			p.logger.LogError(err, "Skipping unreadable posting", "file", path)
			continue
		}

		result := p.analyzer.Analyze(ctx, posting.Text, posting.ID)
		p.logger.Info("Analyzed posting",
			"file", path,
			"job_id", result.JobID,
			"skills", len(result.Skills),
			"cache_hit", result.CacheHit)

		out := common.CommandConfig{OutputFormat: p.format}
		if p.outputDir != "" {
			out.OutputFile = filepath.Join(p.outputDir, posting.ID+"."+formatExtension(p.format))
		}
		if err := p.outputHandler.HandleOutput(result, out); err != nil {
			p.logger.LogError(err, "Failed to write analysis result", "file", path)
		}
	}
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// formatExtension maps an output format to a file extension
func formatExtension(format string) string {
	switch format {
	case "markdown":
		return "md"
	case "text":
		return "txt"
	default:
		return format
	}
}
