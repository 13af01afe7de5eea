package common

import (
	"context"
	"fmt"

	"jobanalyzer/internal/errors"
)

// OperationFunc is the work a posting command performs on the postings it read.
type OperationFunc[Output any] func(context.Context, []Posting) (Output, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(postings []Posting, cfg CommandConfig)

// RunPostingCommand encapsulates the common logic for file-based CLI
// commands: read the postings named by args, run the operation and write
// the formatted output.
func RunPostingCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	operation OperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	postings, err := fileProcessor.ReadPostings(args...)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("No job postings found in %v", args), nil)
	}

	if logDetails != nil {
		logDetails(postings, cmdConfig)
	}

	result, err := operation(ctx, postings)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
