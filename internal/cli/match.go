package cli

import (
	"context"
	"fmt"

	"jobanalyzer/internal/analyzer"
	"jobanalyzer/internal/common"
	"jobanalyzer/internal/errors"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [job-posting-file]",
	Short: "Compare the skills of a job posting with a candidate profile",
	Long: `Analyze a job posting and compare the skills it asks for with the skills
given in --profile. The result lists the matched skills, how much of the
posting and of the profile they cover, and an overall score.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(common.SplitList(matchProfile)) == 0 {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"--profile must list at least one skill", nil)
		}
		return resolveOutputFormat(cmd, &matchConfig)
	},
	RunE: runMatch,
}

var (
	matchConfig  common.CommandConfig
	matchProfile string
)

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text or markdown")
	matchCmd.Flags().StringVar(&matchProfile, "profile", "", `Comma separated profile skills, e.g. "go,docker,postgresql"`)

	_ = matchCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runMatch(cmd *cobra.Command, args []string) error {
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

	profile := common.SplitList(matchProfile)
	logDetails := func(postings []common.Posting, cfg common.CommandConfig) {
		logger.Info("Starting profile match",
			"file", postings[0].Path,
			"profile_skills", len(profile),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, postings []common.Posting) (analyzer.ProfileMatch, error) {
		if len(postings) != 1 {
			return analyzer.ProfileMatch{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("expected 1 job posting, got %d", len(postings)), nil)
		}
		result := a.Analyze(ctx, postings[0].Text, postings[0].ID)
		if result.Failed() {
			logger.Warn("Analysis failed, matching against an empty skill list",
				"job_id", result.JobID, "error", result.Metadata.Error)
		}
		return analyzer.MatchProfile(result, postings[0].Text, profile), nil
	}

	err = common.RunPostingCommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		matchOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to match profile: %w", err)
	}
	return nil
}
