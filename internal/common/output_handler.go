package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/formatters"
)

// CommandConfig is the output and input settings shared by posting commands.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
}

// OutputHandler renders results with the formatter registry and sends them
// to a file or stdout.
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        os.Stdout,
	}
}

// HandleOutput renders data in the configured format. Stdout output always
// ends with a newline so consecutive results stay separated.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		if !strings.HasSuffix(output, "\n") {
			output += "\n"
		}
		_, _ = io.WriteString(oh.stdout, output)
		return nil
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
		return err
	}
	oh.logger.Info("Output written",
		append([]any{"file", config.OutputFile, "format", config.OutputFormat}, describe(data)...)...)
	return nil
}

// describe returns log attributes summarizing what was written.
func describe(data any) []any {
	switch v := data.(type) {
	case *analyzer.JobAnalysisResult:
		return []any{"job_id", v.JobID, "skills", len(v.Skills)}
	case *analyzer.BatchReport:
		return []any{"jobs", v.Summary.TotalJobsAnalyzed, "failed", v.Summary.FailedJobsCount}
	case analyzer.ProfileMatch:
		return []any{"matched_skills", v.MatchCount, "score", v.Score}
	}
	return nil
}
