// Package report renders an UploadResult for the operator.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pgnc/pgnc-upload/internal/tui"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// MaxListedErrors caps the rejected rows printed in full. The rest are counted.
const MaxListedErrors = 50

// Render formats result as a boxed summary followed by any rejected rows and
// the run failure.
func Render(result pgnc.UploadResult) string {
	var b strings.Builder

	summary := []string{
		tui.TitleStyle.Render("pgnc-upload"),
		line("Run", tui.MutedStyle.Render(result.RunID)),
	}
	if result.FileChecksum != "" {
		summary = append(summary, line("SHA-256", tui.MutedStyle.Render(result.FileChecksum)))
	}
	summary = append(summary,
		line("Attempted", fmt.Sprintf("%d", result.Attempted)),
		line("Inserted", fmt.Sprintf("%d", result.Inserted)),
		line("Rejected", fmt.Sprintf("%d", len(result.Errors))),
		line("Outcome", outcome(result)),
	)
	b.WriteString(tui.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, summary...)))
	b.WriteString("\n")

	if len(result.Errors) > 0 {
		b.WriteString("\nRejected rows:\n")
		for i, e := range result.Errors {
			if i == MaxListedErrors {
				fmt.Fprintf(&b, "  %s ... and %d more\n", tui.SymbolBullet, len(result.Errors)-MaxListedErrors)
				break
			}
			fmt.Fprintf(&b, "  %s %s\n", tui.ErrorStyle.Render(tui.SymbolCross), describe(e))
		}
	}

	if result.Failure != nil && !errors.Is(result.Failure, pgnc.ErrValidationFailed) {
		fmt.Fprintf(&b, "\n%s %s\n", tui.ErrorStyle.Render("Error:"), result.Failure)
	}

	return b.String()
}

// Write renders result to w.
func Write(w io.Writer, result pgnc.UploadResult) error {
	_, err := io.WriteString(w, Render(result))
	return err
}

func line(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, tui.LabelStyle.Render(label), value)
}

func outcome(result pgnc.UploadResult) string {
	switch {
	case result.DryRun && result.Succeeded():
		return tui.SuccessStyle.Render(tui.SymbolCheck + " valid (dry run, nothing written)")
	case result.Succeeded():
		return tui.SuccessStyle.Render(tui.SymbolCheck + " committed with status " + pgnc.StatusInternal)
	case errors.Is(result.Failure, pgnc.ErrValidationFailed) || len(result.Errors) > 0:
		return tui.ErrorStyle.Render(tui.SymbolCross + " validation failed, nothing written")
	case errors.Is(result.Failure, pgnc.ErrInsertFailed):
		return tui.ErrorStyle.Render(tui.SymbolCross + " rolled back, nothing written")
	default:
		return tui.ErrorStyle.Render(tui.SymbolCross + " failed, nothing written")
	}
}

func describe(e pgnc.ValidationError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "row %d", e.Row)
	if e.FileLine > 0 {
		fmt.Fprintf(&b, " (line %d)", e.FileLine)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Value != "" && e.Column != "" {
		fmt.Fprintf(&b, " [%s = %q]", e.Column, e.Value)
	}
	return b.String()
}
