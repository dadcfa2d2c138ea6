package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireFilePath validates that exactly one file argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireFilePath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <file>

Usage: %s

Example:
  %s genes.tsv`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
