package pgnc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds an upload run can end with.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	result := pipeline.Run(ctx, path)
//	if errors.Is(result.Failure, pgnc.ErrValidationFailed) {
//	    // Nothing was sent to the database
//	}
var (
	// ErrInvalidConfig indicates the connection bundle is incomplete or malformed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFileInvalid indicates the input file is missing, unreadable, or has a wrong header.
	ErrFileInvalid = errors.New("invalid input file")

	// ErrValidationFailed indicates at least one row was rejected.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConnectionFailed indicates the tunnel or the database session could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInsertFailed indicates the transaction was rolled back.
	ErrInsertFailed = errors.New("insert failed")

	// ErrApprovalDenied indicates the operator declined the upload.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrInterrupted indicates the run was cancelled by a signal or the timeout.
	ErrInterrupted = errors.New("upload interrupted")
)

// Interrupted wraps a context error so it carries ErrInterrupted. The
// context error stays reachable with errors.Is.
func Interrupted(err error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, err)
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrFileInvalid):
		return ExitFileError
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrInsertFailed):
		return ExitInsertFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// ExitCodeForResult maps the outcome of a run to a process exit status.
func ExitCodeForResult(r UploadResult) int {
	if r.Failure != nil {
		return ExitCodeForError(r.Failure)
	}
	if len(r.Errors) > 0 {
		return ExitValidationFailed
	}
	return ExitSuccess
}

// isUsageError recognizes the argument errors cobra and pflag return.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"required flag",
		"invalid argument",
		"flag needs an argument",
		"missing required argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
