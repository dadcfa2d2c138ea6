// Package tui holds terminal detection and the lipgloss styles shared by the
// approvers and the run report.
package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for pgnc-upload.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether pgnc-upload runs interactively.
//
// Returns ModeNonInteractive if:
//   - stdin is not a terminal (piped input, CI/CD)
//   - PGNC_NON_INTERACTIVE=1 is set
//   - CI=true is set (common CI/CD convention)
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	if os.Getenv("PGNC_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	// Prompts go to stderr
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}
