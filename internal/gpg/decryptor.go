package gpg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nao1215/passmigrate/internal/model"
)

// DefaultTimeout bounds a single gpg invocation. Decrypting one pass
// entry takes milliseconds; anything near this limit means gpg is stuck
// waiting on a pinentry prompt or an unreachable agent.
const DefaultTimeout = 30 * time.Second

// defaultBinary is the gpg executable resolved from PATH when no
// explicit binary is configured.
const defaultBinary = "gpg"

// Decryptor turns one encrypted store entry into its plaintext lines.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. The pipeline only needs "entry in, lines out" and should not know
//     about subprocess mechanics
//  2. Allows for easy mocking in tests without a gpg installation
//  3. Leaves room for an in-process OpenPGP implementation later
type Decryptor interface {
	// Decrypt returns the plaintext of the entry as an ordered sequence
	// of trimmed, non-empty lines. The returned payload must never be
	// logged or persisted by the caller.
	//
	// The context should be used for cancellation and timeouts.
	// Implementations must respect context cancellation.
	Decrypt(ctx context.Context, entry model.EncryptedEntry) (model.DecryptedPayload, error)
}

// GPGDecryptor decrypts entries by shelling out to the gpg binary.
// It relies on the user's existing GnuPG setup (keyring, gpg-agent,
// pinentry) instead of reimplementing OpenPGP.
//
// Design decision: We invoke the gpg binary rather than an OpenPGP
// library because:
//  1. The store was written by gpg; the same binary is guaranteed to
//     read it, including smartcard-backed and agent-cached keys
//  2. The secret key never has to be loaded into this process
//  3. Interactive pinentry keeps working when no passphrase is supplied
type GPGDecryptor struct {
	// binary is the resolved path to the gpg executable.
	binary string

	// passphrase, when non-empty, is fed to gpg over stdin using
	// loopback pinentry so no interactive prompt appears.
	passphrase string

	// timeout bounds each gpg invocation.
	timeout time.Duration
}

// Option configures a GPGDecryptor.
type Option func(*GPGDecryptor)

// WithBinary sets the gpg executable name or path.
// The default is "gpg" resolved from PATH.
func WithBinary(binary string) Option {
	return func(d *GPGDecryptor) {
		if binary != "" {
			d.binary = binary
		}
	}
}

// WithPassphrase supplies the passphrase fed to gpg over stdin.
// When empty, gpg falls back to its normal pinentry flow.
func WithPassphrase(passphrase string) Option {
	return func(d *GPGDecryptor) {
		d.passphrase = passphrase
	}
}

// WithTimeout sets the per-invocation timeout.
// Non-positive values are ignored and the default is kept.
func WithTimeout(timeout time.Duration) Option {
	return func(d *GPGDecryptor) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewGPGDecryptor creates a decryptor backed by the gpg binary.
// It returns ErrGPGNotFound when the binary cannot be resolved.
//
// Design decision: We resolve the binary in the constructor rather than
// on first use because a missing gpg makes the whole run pointless.
// Failing here surfaces the fatal error before any entry is enumerated,
// and the lookup is a local PATH scan, not a network operation.
func NewGPGDecryptor(opts ...Option) (*GPGDecryptor, error) {
	d := &GPGDecryptor{
		binary:  defaultBinary,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	path, err := exec.LookPath(d.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGPGNotFound, d.binary)
	}
	d.binary = path

	return d, nil
}

// Decrypt runs gpg on the entry's blob and returns the normalized
// plaintext lines. Failures are classified into the package error
// values so the caller can tell a bad passphrase from a corrupt blob.
func (d *GPGDecryptor) Decrypt(ctx context.Context, entry model.EncryptedEntry) (model.DecryptedPayload, error) {
	execCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, d.binary, d.commandArgs(entry.BlobPath())...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if d.passphrase != "" {
		cmd.Stdin = strings.NewReader(d.passphrase)
	}

	if err := cmd.Run(); err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s: %w", entry.Name(), ErrDecryptTimeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), ctxErr)
		}
		return nil, classifyFailure(entry.Name(), stderr.String(), err)
	}

	return newPayload(stdout.String()), nil
}

// commandArgs builds the gpg argument list for one blob.
//
// --batch and --yes suppress all interactive confirmation, --quiet keeps
// informational chatter out of stderr so failure classification stays
// reliable. The loopback pinentry flags are only added when a passphrase
// is supplied; otherwise gpg keeps its normal pinentry flow. The blob
// path must come last, after --decrypt.
func (d *GPGDecryptor) commandArgs(blobPath string) []string {
	args := []string{"--batch", "--quiet", "--yes"}
	if d.passphrase != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-fd", "0")
	}
	return append(args, "--decrypt", blobPath)
}

// classifyFailure maps a gpg failure to one of the package error values
// based on its stderr output. gpg's stderr wording has been stable for
// years across 2.x releases, and it never contains decrypted content,
// so matching on it is safe to log.
func classifyFailure(name, stderrText string, runErr error) error {
	msg := strings.ToLower(stderrText)
	switch {
	case strings.Contains(msg, "bad passphrase"),
		strings.Contains(msg, "bad session key"),
		strings.Contains(msg, "no secret key"):
		return fmt.Errorf("%s: %w", name, ErrWrongPassphrase)
	case strings.Contains(msg, "no valid openpgp data"):
		return fmt.Errorf("%s: %w", name, ErrCorruptData)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if line := firstLine(stderrText); line != "" {
			return fmt.Errorf("%s: %w: %s", name, ErrDecryptFailed, line)
		}
		return fmt.Errorf("%s: %w: exit status %d", name, ErrDecryptFailed, exitErr.ExitCode())
	}
	return fmt.Errorf("%s: %w: %v", name, ErrDecryptFailed, runErr)
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// newPayload normalizes raw gpg output into payload lines: CRLF becomes
// LF, each line is trimmed, and fully blank lines are dropped. The first
// surviving line is therefore always the password line, even when the
// plaintext starts with blank lines.
func newPayload(raw string) model.DecryptedPayload {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	payload := make(model.DecryptedPayload, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		payload = append(payload, line)
	}
	return payload
}
