package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/passmigrate/internal/classify"
	"github.com/nao1215/passmigrate/internal/config"
	"github.com/nao1215/passmigrate/internal/database"
	"github.com/nao1215/passmigrate/internal/gpg"
	"github.com/nao1215/passmigrate/internal/model"
	"github.com/nao1215/passmigrate/internal/sink"
	"github.com/nao1215/passmigrate/internal/store"
)

// entryWalker enumerates encrypted entries under a store root.
// *store.Walker is the production implementation; tests substitute
// in-memory fakes.
type entryWalker interface {
	Count(ctx context.Context) (int, error)
	Walk(ctx context.Context, fn store.WalkFunc) error
}

// passphrasePresetter warms up gpg-agent with a passphrase.
// *gpg.Agent is the production implementation.
type passphrasePresetter interface {
	PresetPassphrase(ctx context.Context, keygrip, passphrase string) error
}

// rowSink persists export rows to their destination.
// *sink.CSVSink is the production implementation.
type rowSink interface {
	Path() string
	Write(rows []model.ExportRow) (*sink.Result, error)
}

// SetupStep prepares the GPG environment before any decryption happens.
// It exports GPG_TTY so an interactive pinentry can reach the terminal
// and optionally presets the passphrase into the running gpg-agent.
//
// Design decision: Environment preparation is a separate step because:
// 1. It must happen exactly once, before the first gpg invocation
// 2. Its failures are warnings; the loopback passphrase path still works
// 3. Keeping subprocess side effects out of ProcessStep simplifies testing
type SetupStep struct {
	// agent presets the passphrase into gpg-agent.
	agent passphrasePresetter

	// passphrase is the optional pre-supplied GPG passphrase.
	passphrase string

	// keygrip identifies the decryption key inside gpg-agent.
	keygrip string

	// logger for structured logging.
	logger *slog.Logger
}

// SetupStepOption configures a SetupStep.
type SetupStepOption func(*SetupStep)

// WithSetupLogger sets a custom logger for the setup step.
func WithSetupLogger(logger *slog.Logger) SetupStepOption {
	return func(s *SetupStep) {
		s.logger = logger
	}
}

// NewSetupStep creates a new environment preparation step.
// The passphrase preset only runs when both a passphrase and a keygrip
// are configured; either one alone is not enough to call
// gpg-preset-passphrase.
func NewSetupStep(passphrase, keygrip string, opts ...SetupStepOption) *SetupStep {
	s := &SetupStep{
		agent:      gpg.NewAgent(),
		passphrase: passphrase,
		keygrip:    keygrip,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SetupStep) Name() string {
	return "setup"
}

// Do executes the setup step.
func (s *SetupStep) Do(ctx context.Context, _ *model.ExportReport) error {
	gpg.EnsureTTY()

	if s.passphrase == "" || s.keygrip == "" {
		s.logger.Debug("skipping passphrase preset, passphrase or keygrip not configured")
		return nil
	}

	if err := s.agent.PresetPassphrase(ctx, s.keygrip, s.passphrase); err != nil {
		// Non-fatal: the loopback passphrase path still covers decryption
		s.logger.Warn("passphrase preset failed", "error", err)
		return nil
	}

	s.logger.Debug("passphrase preset into gpg-agent", "keygrip", s.keygrip)
	return nil
}

// CountStep enumerates the store and records the total entry count.
// Counting before processing lets progress lines show "i/N" and surfaces
// store-level problems (missing root, unreadable directories) before the
// first gpg invocation.
type CountStep struct {
	// walker enumerates encrypted entries.
	walker entryWalker

	// logger for structured logging.
	logger *slog.Logger
}

// CountStepOption configures a CountStep.
type CountStepOption func(*CountStep)

// WithCountLogger sets a custom logger for the count step.
func WithCountLogger(logger *slog.Logger) CountStepOption {
	return func(s *CountStep) {
		s.logger = logger
	}
}

// NewCountStep creates a new entry counting step.
func NewCountStep(walker entryWalker, opts ...CountStepOption) *CountStep {
	s := &CountStep{
		walker: walker,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CountStep) Name() string {
	return "count"
}

// Do executes the count step.
func (s *CountStep) Do(ctx context.Context, report *model.ExportReport) error {
	total, err := s.walker.Count(ctx)
	if err != nil {
		return fmt.Errorf("enumerate store: %w", err)
	}

	report.TotalEntries = total
	if total == 0 {
		s.logger.Info("store holds no entries, output will be a header-only CSV")
		return nil
	}

	s.logger.Info("store enumerated", "entries", total)
	return nil
}

// ProcessStep decrypts and classifies every entry in the store.
// Each entry is handled independently: a failure is recorded in the
// report and processing moves on, so one stubborn blob cannot sink the
// whole migration.
//
// Design decision: Entries are processed sequentially rather than with
// a worker pool because:
// 1. gpg invocations serialize on the agent socket anyway
// 2. Deterministic entry order keeps repeated exports byte-identical
// 3. One subprocess at a time keeps at most one plaintext in memory
type ProcessStep struct {
	// walker enumerates encrypted entries in deterministic order.
	walker entryWalker

	// decryptor turns encrypted blobs into plaintext lines.
	decryptor gpg.Decryptor

	// classifier assigns plaintext lines to output fields.
	classifier *classify.Classifier

	// vault is the optional vault name stamped on every row.
	vault string

	// logger for structured logging.
	logger *slog.Logger
}

// ProcessStepOption configures a ProcessStep.
type ProcessStepOption func(*ProcessStep)

// WithProcessVault sets the vault name stamped on every exported row.
func WithProcessVault(vault string) ProcessStepOption {
	return func(s *ProcessStep) {
		s.vault = vault
	}
}

// WithProcessClassifier sets a custom classifier.
// The default recognizes the standard username labels.
func WithProcessClassifier(classifier *classify.Classifier) ProcessStepOption {
	return func(s *ProcessStep) {
		if classifier != nil {
			s.classifier = classifier
		}
	}
}

// WithProcessLogger sets a custom logger for the process step.
func WithProcessLogger(logger *slog.Logger) ProcessStepOption {
	return func(s *ProcessStep) {
		s.logger = logger
	}
}

// NewProcessStep creates a new decrypt-and-classify step.
func NewProcessStep(walker entryWalker, decryptor gpg.Decryptor, opts ...ProcessStepOption) *ProcessStep {
	s := &ProcessStep{
		walker:     walker,
		decryptor:  decryptor,
		classifier: classify.New(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ProcessStep) Name() string {
	return "process"
}

// Do executes the process step.
func (s *ProcessStep) Do(ctx context.Context, report *model.ExportReport) error {
	index := 0
	err := s.walker.Walk(ctx, func(entry model.EncryptedEntry, walkErr error) error {
		index++
		s.logger.Info("processing entry",
			"progress", fmt.Sprintf("%d/%d", index, report.TotalEntries),
			"entry", entry.Name(),
		)

		if walkErr != nil {
			s.logger.Warn("entry unreadable",
				"entry", entry.Name(),
				"error", walkErr,
			)
			report.AddFailure(entry.Name(), fmt.Sprintf("unreadable file: %v", walkErr))
			return nil
		}

		payload, err := s.decryptor.Decrypt(ctx, entry)
		if err != nil {
			// Cancellation is not a per-entry failure; abort the walk
			if ctx.Err() != nil {
				return ctx.Err()
			}

			s.logger.Warn("entry failed",
				"entry", entry.Name(),
				"error", err,
			)
			report.AddFailure(entry.Name(), failureReason(entry.Name(), err))
			return nil
		}

		// An empty payload is not an error; the row keeps its name and
		// vault with every field blank
		record := s.classifier.Classify(payload)
		report.AddRow(model.NewExportRow(entry.Name(), record, s.vault))
		return nil
	})
	if err != nil {
		return fmt.Errorf("process entries: %w", err)
	}

	s.logger.Info("processing completed",
		"succeeded", report.SucceededCount,
		"failed", report.FailedCount,
	)
	return nil
}

// failureReason derives the recorded failure reason from a decryption
// error. The gpg package prefixes its errors with the entry name; the
// failure record already carries the name, so the prefix is dropped.
func failureReason(name string, err error) string {
	return strings.TrimPrefix(err.Error(), name+": ")
}

// ExportStep writes the classified rows to the CSV sink.
// The write is atomic: rows land in a temp file that is renamed over the
// destination only after a successful flush, so a crash never leaves a
// partial export behind.
type ExportStep struct {
	// sink persists the rows.
	sink rowSink

	// dryRun skips the write and marks the report accordingly.
	dryRun bool

	// logger for structured logging.
	logger *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithExportDryRun makes the step skip the CSV write.
// Classification results still appear in the run summary.
func WithExportDryRun(dryRun bool) ExportStepOption {
	return func(s *ExportStep) {
		s.dryRun = dryRun
	}
}

// WithExportLogger sets a custom logger for the export step.
func WithExportLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		s.logger = logger
	}
}

// NewExportStep creates a new CSV writing step.
func NewExportStep(sink rowSink, opts ...ExportStepOption) *ExportStep {
	s := &ExportStep{
		sink:   sink,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export step.
func (s *ExportStep) Do(_ context.Context, report *model.ExportReport) error {
	if s.dryRun {
		report.DryRun = true
		s.logger.Info("dry run, no CSV written",
			"rows", len(report.Rows),
			"path", s.sink.Path(),
		)
		return nil
	}

	result, err := s.sink.Write(report.Rows)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	report.RowsWritten = result.Rows
	report.Checksum = result.Checksum

	s.logger.Info("output written",
		"path", result.Path,
		"rows", result.Rows,
		"bytes", result.Bytes,
		"checksum", result.Checksum,
	)
	return nil
}

// HistoryStep records the finished run in the local history database.
//
// Design decision: History recording is best effort because:
// 1. The CSV is already on disk when this step runs; failing the run
//    over bookkeeping would discard a successful migration
// 2. First runs have no database yet; Open creates it on demand
type HistoryStep struct {
	// dbDir is the directory holding the run history database.
	dbDir string

	// logger for structured logging.
	logger *slog.Logger
}

// HistoryStepOption configures a HistoryStep.
type HistoryStepOption func(*HistoryStep)

// WithHistoryLogger sets a custom logger for the history step.
func WithHistoryLogger(logger *slog.Logger) HistoryStepOption {
	return func(s *HistoryStep) {
		s.logger = logger
	}
}

// NewHistoryStep creates a new run recording step.
func NewHistoryStep(dbDir string, opts ...HistoryStepOption) *HistoryStep {
	s := &HistoryStep{
		dbDir:  dbDir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, report *model.ExportReport) error {
	// Stamp the duration so the stored record covers the whole run
	report.Duration = time.Since(report.StartedAt)

	rdb, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		s.logger.Warn("run history unavailable", "error", err)
		return nil
	}
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			s.logger.Warn("closing run history failed", "error", cerr)
		}
	}()

	if err := rdb.SaveRun(ctx, report); err != nil {
		s.logger.Warn("recording run failed", "error", err)
		return nil
	}

	s.logger.Debug("run recorded",
		"database", rdb.Path(),
		"run_id", report.RunID,
	)
	return nil
}

// ExportPipeline creates the standard migration pipeline from configuration.
//
// Design decision: We provide a pre-assembled pipeline because:
// 1. Every export runs the same stages in the same order
// 2. It keeps the CLI layer free of wiring boilerplate
// 3. The fatal preconditions (gpg missing, empty output path) surface
//    here, before any entry is enumerated
func ExportPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	decryptor, err := gpg.NewGPGDecryptor(
		gpg.WithBinary(cfg.GPGBinary),
		gpg.WithPassphrase(cfg.Passphrase),
		gpg.WithTimeout(cfg.DecryptTimeout),
	)
	if err != nil {
		return nil, err
	}

	csvSink, err := sink.NewCSVSink(cfg.OutputFile)
	if err != nil {
		return nil, err
	}

	walker := store.NewWalker(cfg.StoreDir)

	processOpts := []ProcessStepOption{
		WithProcessVault(cfg.Vault),
		WithProcessLogger(logger),
	}
	if len(cfg.UsernameLabels) > 0 {
		processOpts = append(processOpts, WithProcessClassifier(
			classify.New(classify.WithUsernameLabels(cfg.UsernameLabels...)),
		))
	}

	p := New(WithLogger(logger))
	p.AddSteps(
		NewSetupStep(cfg.Passphrase, cfg.Keygrip, WithSetupLogger(logger)),
		NewCountStep(walker, WithCountLogger(logger)),
		NewProcessStep(walker, decryptor, processOpts...),
		NewExportStep(csvSink, WithExportDryRun(cfg.DryRun), WithExportLogger(logger)),
	)

	// Dry runs record no history; so does --no-history
	if !cfg.NoHistory && !cfg.DryRun {
		p.AddStep(NewHistoryStep(cfg.DBDir, WithHistoryLogger(logger)))
	}

	return p, nil
}
