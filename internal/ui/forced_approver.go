package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pgnc/pgnc-upload/internal/tui"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// ForcedApprover implements the Approver interface for --yes runs. It shows
// what is about to be written, counts down, then approves.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) pgnc.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr, sleepFn: time.Sleep}
}

// RequestApproval displays a countdown and approves when it completes.
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbName string, rowCount int) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, tui.WarningStyle.Render(fmt.Sprintf("Uploading %d rows into database '%s' (status internal)", rowCount, dbName)))

	countdownSeconds := int(pgnc.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.output)
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rStarting in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(1 * time.Second)
		}
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s Proceeding with upload...                              \n", tui.SymbolCheck)
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ pgnc.Approver = (*ForcedApprover)(nil)
