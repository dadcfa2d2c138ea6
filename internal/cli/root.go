package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgnc-upload --file <path>",
	Short: "Upload a gene nomenclature TSV file into the PGNC database",
	Long: `pgnc-upload validates every row of a tab-separated gene nomenclature file
and, only if all rows are valid, inserts them into the PGNC database in a
single transaction through an SSH tunnel to the bastion host.

Every row is stored with status 'internal'. Nothing is written when any row
fails validation, the operator declines, or any insert fails.

Expected header (tab separated):
  PotriID  Gene symbol  Symbol type  Gene name  Name type  Location  Locus type

Connection settings are read from the environment and the env file
(default .env): BASTION_IP, BASTION_PORT, BASTION_USER, PKEY_NAME or
PKEY_PATH, KNOWN_HOSTS, RDS_HOST, RDS_PORT, DB_NAME, DB_USER, DB_PASS,
DB_SSLMODE. An optional pgnc.yaml supplies defaults; flags override all.

Exit Codes:
  0  - Success (all rows committed, or dry run passed)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Tunnel or database connection failed
  12 - Operator declined the upload
  13 - Insert failed, transaction rolled back
  14 - Input file missing, unreadable or malformed header
  15 - One or more rows failed validation
  130 - Interrupted (Ctrl+C, SIGTERM or --timeout), nothing committed`,
	Args:          cobra.NoArgs,
	RunE:          runUpload,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	err := rootCmd.Execute()
	printUnreported(err)
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// reportedError marks an error the run report already showed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func printUnreported(err error) {
	if err == nil {
		return
	}
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
