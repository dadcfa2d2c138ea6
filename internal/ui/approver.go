package ui

import (
	"context"

	"github.com/pgnc/pgnc-upload/internal/tui"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// NonInteractiveApprover approves without prompting. It is used when no
// terminal is attached, so scripted uploads keep working without --yes.
type NonInteractiveApprover struct {
	logger pgnc.Logger
}

// NewNonInteractiveApprover creates a NonInteractiveApprover.
func NewNonInteractiveApprover(logger pgnc.Logger) pgnc.Approver {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &NonInteractiveApprover{logger: logger}
}

// RequestApproval logs the pending upload and approves it.
func (a *NonInteractiveApprover) RequestApproval(ctx context.Context, dbName string, rowCount int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.logger.Info("No terminal attached, uploading %d rows into %s without confirmation", rowCount, dbName)
	return true, nil
}

var _ pgnc.Approver = (*NonInteractiveApprover)(nil)

// SelectApprover picks the approver for a run: --yes forces the countdown,
// a terminal gets the prompt, anything else proceeds unattended.
func SelectApprover(mode tui.Mode, yes, verbose bool, logger pgnc.Logger) pgnc.Approver {
	switch {
	case yes:
		return NewForcedApprover(verbose)
	case mode == tui.ModeInteractive:
		return NewInteractiveApprover(verbose)
	default:
		return NewNonInteractiveApprover(logger)
	}
}
