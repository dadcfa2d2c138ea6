package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pgnc/pgnc-upload/internal/tui"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the operator to type the database
// name before anything is written.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover reading stdin.
func NewInteractiveApprover(verbose bool) pgnc.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the operator to type the database name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, dbName string, rowCount int) (bool, error) {
	fmt.Fprintf(a.output, "\n%s You are about to upload %d rows into the database '%s'\n",
		tui.WarningStyle.Render("WARNING:"), rowCount, dbName)
	fmt.Fprintln(a.output, "Rows are stored with status 'internal' and stay hidden until reviewed.")
	fmt.Fprintf(a.output, "\nTo confirm, type the database name '%s' and press Enter: ", dbName)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == dbName {
			fmt.Fprintf(a.output, "%s Confirmed. Proceeding with upload...\n", tui.SymbolCheck)
			return true, nil
		}
		fmt.Fprintf(a.output, "%s Input '%s' does not match database name '%s'. Upload cancelled.\n", tui.SymbolCross, input, dbName)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ pgnc.Approver = (*InteractiveApprover)(nil)
