package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgnc/pgnc-upload/internal/files/filesystem"
	"github.com/pgnc/pgnc-upload/internal/files/tsv"
	"github.com/pgnc/pgnc-upload/internal/logging"
	"github.com/pgnc/pgnc-upload/internal/services"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a file without connecting to anything",
	Long: `Validate parses the file and checks every row with the same rules the
upload uses. It needs no connection settings and never opens a tunnel.

Examples:
  pgnc-upload validate genes.tsv
  pgnc-upload validate genes.tsv -v`,
	Args: RequireFilePath,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	checker := services.NewChecker(tsv.NewReader(filesystem.NewOSFileSystem()), logger)

	ctx, cancel := newRunContext(pgnc.DefaultTimeout)
	defer cancel()

	result, _ := checker.Check(ctx, args[0])
	result.DryRun = true
	return finish(cmd, result)
}
