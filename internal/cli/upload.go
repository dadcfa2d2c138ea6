package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgnc/pgnc-upload/internal/config"
	"github.com/pgnc/pgnc-upload/internal/db"
	"github.com/pgnc/pgnc-upload/internal/db/schema"
	"github.com/pgnc/pgnc-upload/internal/files/filesystem"
	"github.com/pgnc/pgnc-upload/internal/files/tsv"
	"github.com/pgnc/pgnc-upload/internal/logging"
	"github.com/pgnc/pgnc-upload/internal/report"
	"github.com/pgnc/pgnc-upload/internal/services"
	"github.com/pgnc/pgnc-upload/internal/tui"
	"github.com/pgnc/pgnc-upload/internal/tunnel"
	"github.com/pgnc/pgnc-upload/internal/ui"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

type uploadFlagValues struct {
	file, envFile, configFile string
	schema, knownHosts        string
	yes, dryRun               bool
	timeout                   time.Duration
}

var uploadFlags uploadFlagValues

func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&uploadFlags.file, "file", "f", "",
		"Tab separated gene nomenclature file to upload (required)")
	flags.StringVar(&uploadFlags.envFile, "env-file", config.DefaultEnvFile,
		"Env file with connection settings\n"+
			"A missing default file is ignored; an explicit one must exist")
	flags.StringVar(&uploadFlags.configFile, "config", config.ConfigFileName,
		"Optional yaml file with connection defaults")
	flags.StringVar(&uploadFlags.schema, "schema", "",
		"Target table layout: flat|pgnc (default flat, or schema in pgnc.yaml)")
	flags.StringVar(&uploadFlags.knownHosts, "known-hosts", "",
		"known_hosts file used to verify the bastion host key\n"+
			"Precedence: --known-hosts > $KNOWN_HOSTS > pgnc.yaml")
	flags.BoolVarP(&uploadFlags.yes, "yes", "y", false,
		"Skip the interactive confirmation (a short countdown is still shown)")
	flags.BoolVar(&uploadFlags.dryRun, "dry-run", false,
		"Parse and validate only; no tunnel, no database")
	flags.DurationVar(&uploadFlags.timeout, "timeout", pgnc.DefaultTimeout,
		"Upper bound for the whole run, approval included\n"+
			"Examples: 30s, 5m, 1h")
}

// buildUploadConfig resolves the connection bundle from flags, environment,
// env file and pgnc.yaml.
func buildUploadConfig(cmd *cobra.Command) (*config.Config, error) {
	src := config.Sources{
		EnvFile:            uploadFlags.envFile,
		EnvFileExplicit:    cmd.Flags().Changed("env-file"),
		ConfigFile:         uploadFlags.configFile,
		ConfigFileExplicit: cmd.Flags().Changed("config"),
		Flags: config.Flags{
			Schema:         uploadFlags.schema,
			KnownHostsPath: uploadFlags.knownHosts,
		},
	}
	if cmd.Flags().Changed("timeout") {
		src.Flags.Timeout = uploadFlags.timeout
	}

	cfg, err := config.Resolve(src)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadFlags.file == "" {
		return fmt.Errorf(`required flag(s) "file" not set

Usage: %s

Example:
  %s --file genes.tsv`, cmd.UseLine(), cmd.CommandPath())
	}
	verbose := getVerboseFlag(cmd)

	cfg, err := buildUploadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	for _, line := range cfg.Describe() {
		logger.Verbose("%s", line)
	}

	target, err := schema.ForName(cfg.Schema)
	if err != nil {
		return err
	}

	fsProvider := filesystem.NewOSFileSystem()
	pipeline := services.NewPipeline(
		cfg.UploadConfig(uploadFlags.dryRun),
		tsv.NewReader(fsProvider),
		tunnel.NewManager(fsProvider, logger),
		db.NewGateway(db.NewStandardConnector(logger), target, logger),
		ui.SelectApprover(tui.DetectMode(), uploadFlags.yes, verbose, logger),
		logger,
	)

	ctx, cancel := newRunContext(cfg.Timeout)
	defer cancel()

	return finish(cmd, pipeline.Run(ctx, uploadFlags.file))
}

// finish prints the report and turns the result into the command error.
func finish(cmd *cobra.Command, result pgnc.UploadResult) error {
	if err := report.Write(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.Failure != nil {
		return &reportedError{err: result.Failure}
	}
	if len(result.Errors) > 0 {
		return &reportedError{err: fmt.Errorf("%d rows rejected: %w", len(result.Errors), pgnc.ErrValidationFailed)}
	}
	return nil
}

// newRunContext bounds a run by timeout and cancels it on SIGINT or SIGTERM.
func newRunContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling upload...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
