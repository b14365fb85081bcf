package gpg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// presetToolName is the gpg-agent helper that caches a passphrase for a
// keygrip so later decryptions skip pinentry entirely.
const presetToolName = "gpg-preset-passphrase"

// presetFallbackDirs are well-known install locations for the preset
// helper, tried in order when gpgconf cannot report its libexec
// directory. Debian and Ubuntu ship it under /usr/lib/gnupg2 or
// /usr/lib/gnupg; Fedora and macOS installers use /usr/libexec.
var presetFallbackDirs = []string{
	"/usr/lib/gnupg2",
	"/usr/lib/gnupg",
	"/usr/libexec",
}

// Agent warms the running gpg-agent before a migration starts.
// Presetting the passphrase once means every subsequent decryption is
// served from the agent cache instead of prompting or re-deriving keys.
//
// Design decision: Preset is an optimization layered on top of the
// loopback passphrase path, never a requirement. Every Agent failure is
// reported to the caller as an error to log at warn level; the run
// itself proceeds because gpg can still decrypt without the warm cache.
type Agent struct {
	// gpgconf is the binary asked for the libexec directory that holds
	// the preset helper.
	gpgconf string

	// fallbackDirs are searched for the preset helper when gpgconf
	// is unavailable or its answer does not pan out.
	fallbackDirs []string
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithGPGConf sets the gpgconf executable name or path.
func WithGPGConf(binary string) AgentOption {
	return func(a *Agent) {
		if binary != "" {
			a.gpgconf = binary
		}
	}
}

// WithFallbackDirs replaces the directories searched for the preset
// helper when gpgconf cannot locate it.
func WithFallbackDirs(dirs ...string) AgentOption {
	return func(a *Agent) {
		a.fallbackDirs = dirs
	}
}

// NewAgent creates an Agent with the standard gpgconf lookup.
func NewAgent(opts ...AgentOption) *Agent {
	a := &Agent{
		gpgconf:      "gpgconf",
		fallbackDirs: presetFallbackDirs,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PresetPassphrase caches the passphrase in the running gpg-agent for
// the given keygrip. The passphrase travels over the helper's stdin,
// never through the process argument list, so it cannot appear in ps
// output.
func (a *Agent) PresetPassphrase(ctx context.Context, keygrip, passphrase string) error {
	tool, err := a.presetToolPath(ctx)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, tool, "--preset", keygrip)
	cmd.Stdin = strings.NewReader(passphrase)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if line := firstLine(stderr.String()); line != "" {
			return fmt.Errorf("preset passphrase for keygrip %s: %s", keygrip, line)
		}
		return fmt.Errorf("preset passphrase for keygrip %s: %w", keygrip, err)
	}
	return nil
}

// presetToolPath locates the gpg-preset-passphrase helper. It asks
// gpgconf first because that reflects the actual installation, then
// falls back to the well-known directories.
func (a *Agent) presetToolPath(ctx context.Context) (string, error) {
	if dir := a.libexecDir(ctx); dir != "" {
		candidate := filepath.Join(dir, presetToolName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	for _, dir := range a.fallbackDirs {
		candidate := filepath.Join(dir, presetToolName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", ErrPresetToolNotFound
}

// libexecDir asks gpgconf where GnuPG installed its helper binaries.
// Returns an empty string when gpgconf is missing or misbehaves.
func (a *Agent) libexecDir(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, a.gpgconf, "--list-dirs", "libexecdir").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// isExecutable reports whether path is a regular file with any execute
// bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// EnsureTTY sets GPG_TTY from the controlling terminal when it is not
// already set. gpg-agent needs it to place an interactive pinentry on
// the right terminal; without a passphrase configured, that prompt is
// the only way decryption can proceed.
//
// Best effort: in a non-interactive session the tty lookup fails and
// the environment is left untouched.
func EnsureTTY() {
	if os.Getenv("GPG_TTY") != "" {
		return
	}
	out, err := exec.Command("tty").Output()
	if err != nil {
		return
	}
	tty := strings.TrimSpace(string(out))
	if tty == "" {
		return
	}
	_ = os.Setenv("GPG_TTY", tty)
}
