package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/passmigrate/internal/config"
	"github.com/nao1215/passmigrate/internal/log"
	"github.com/nao1215/passmigrate/internal/model"
	"github.com/nao1215/passmigrate/internal/pipeline"
	"github.com/nao1215/passmigrate/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a pass store to a Proton Pass CSV",
		Long: `Export walks the pass store, decrypts every entry with gpg, classifies
the decrypted text into login fields, and writes one CSV row per entry.

Classification follows the pass convention: the first line is the
password, labeled lines (username:, user:, login:) become the username,
a line containing "@" becomes the email, and everything else lands in
the note column. Entries that fail to decrypt are skipped and listed in
the summary; the export continues without them.

The CSV holds every exported secret in clear text. Import it into
Proton Pass, then delete it.

Examples:
  # Export ~/.password-store with defaults
  passmigrate export

  # Export a specific store to a specific file
  passmigrate export --store ~/secrets --output /tmp/protonpass.csv

  # Non-interactive run with a preset passphrase
  PASSMIGRATE_GPG_PASSPHRASE=secret passmigrate export --keygrip ABC123...

  # Preview failures without writing anything
  passmigrate export --dry-run

  # Markdown summary into a file as well as stdout
  passmigrate export --markdown --report export-report.md`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	// Store and output flags
	cmd.Flags().StringP("store", "s", config.DefaultStoreDir(),
		"Password store root to migrate")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile(),
		"Destination CSV file path (parent directories created owner-only)")
	cmd.Flags().String("vault", "",
		"Vault name written into each exported row")

	// GPG flags
	cmd.Flags().String("gpg-binary", config.DefaultGPGBinary,
		"GnuPG binary used for decryption")
	cmd.Flags().StringP("passphrase", "p", "",
		"GPG passphrase (prefer the PASSMIGRATE_GPG_PASSPHRASE environment variable)")
	cmd.Flags().StringP("keygrip", "k", "",
		"Keygrip of the decryption key, used to preset the passphrase into gpg-agent")
	cmd.Flags().DurationP("timeout", "t", config.DefaultDecryptTimeout,
		"Timeout for each gpg invocation")

	// Classification flags
	cmd.Flags().StringSlice("username-label", nil,
		"Line prefix recognized as a username field, trailing colon included (repeatable)")

	// Summary flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the summary to this file in addition to stdout")

	// Run behavior flags
	cmd.Flags().BoolP("dry-run", "n", false,
		"Classify every entry but write no CSV and record no history")
	cmd.Flags().Bool("no-history", false,
		"Skip recording this run in the local history database")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	// Build config from defaults, config file, environment, and flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExport(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// buildConfig creates a Config from all configuration sources.
// Precedence, lowest to highest: built-in defaults, YAML config file,
// environment variables, command-line flags. Only flags the user actually
// changed override the lower layers; otherwise a flag's default value
// would stomp the file and environment settings.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// Load the YAML config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	cfg.ConfigFilePath = getConfigFlag(cmd)
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Overlay environment variables
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	// Overlay flags the user changed
	var err error

	if cmd.Flags().Changed("store") {
		cfg.StoreDir, err = cmd.Flags().GetString("store")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("output") {
		cfg.OutputFile, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("vault") {
		cfg.Vault, err = cmd.Flags().GetString("vault")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("gpg-binary") {
		cfg.GPGBinary, err = cmd.Flags().GetString("gpg-binary")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("passphrase") {
		cfg.Passphrase, err = cmd.Flags().GetString("passphrase")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("keygrip") {
		cfg.Keygrip, err = cmd.Flags().GetString("keygrip")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("timeout") {
		cfg.DecryptTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("username-label") {
		cfg.UsernameLabels, err = cmd.Flags().GetStringSlice("username-label")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("no-history") {
		cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
		if err != nil {
			return nil, err
		}
	}

	// Summary flags have no file or environment layer
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runExport executes the migration.
func runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting export",
		"store", cfg.StoreDir,
		"output", cfg.OutputFile,
		"vault", cfg.Vault,
		"dryRun", cfg.DryRun,
	)

	p, err := pipeline.ExportPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build export pipeline: %w", err)
	}

	rep := model.NewExportReport(cfg.StoreDir, cfg.OutputFile)

	// Progress lines stay off stdout when a machine-readable summary
	// format was requested.
	plainOutput := !cfg.JSONReport && !cfg.MarkdownReport
	if plainOutput {
		fmt.Printf("Exporting %s...\n", cfg.StoreDir)
	}

	execErr := p.Execute(ctx, rep)
	rep.Finish(execErr)

	if plainOutput && execErr == nil {
		fmt.Printf("Export completed in %s\n\n", rep.Duration.Round(time.Millisecond))
	}

	// The summary goes out even when the run failed; it carries the
	// error status and whatever per-entry results were collected.
	if err := outputSummary(cfg, rep); err != nil {
		logger.Error("failed to write summary", "error", err)
		if execErr == nil {
			return err
		}
	}

	return execErr
}

// outputSummary writes the run summary to stdout and, when --report was
// given, to the report file as well. Both destinations receive the same
// format; they are written concurrently through the MultiWriter.
func outputSummary(cfg *config.Config, rep *model.ExportReport) error {
	writers := []report.Writer{newSummaryWriter(cfg, os.Stdout)}

	if cfg.ReportFile != "" {
		f, err := openReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		writers = append(writers, newSummaryWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(rep)
	return err
}

// newSummaryWriter creates the summary writer for the configured format.
func newSummaryWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// openReportFile creates the report file and any missing parent
// directories. The summary lists entry names and failure reasons, so the
// file is created readable by the owner only (0600).
func openReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}
