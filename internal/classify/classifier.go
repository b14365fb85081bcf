package classify

import (
	"strings"

	"github.com/nao1215/passmigrate/internal/model"
)

// noteSeparator joins note lines. A real newline keeps multi-line notes
// readable after import; the CSV encoder quotes it.
const noteSeparator = "\n"

// defaultUsernameLabels are the label prefixes that mark a line as a
// username. Matching is case-insensitive and the label includes the colon,
// so "userx:" never matches "user:".
var defaultUsernameLabels = []string{"username:", "user:", "login:"}

// Classifier assigns payload lines to record fields using the ordered
// heuristics described in the package documentation. A Classifier is
// stateless across calls and safe to reuse for every entry of a run.
type Classifier struct {
	usernameLabels []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithUsernameLabels replaces the recognized username label set.
// Labels must include their trailing colon and are matched
// case-insensitively.
func WithUsernameLabels(labels ...string) Option {
	return func(c *Classifier) {
		c.usernameLabels = labels
	}
}

// New creates a Classifier with the default username labels.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		usernameLabels: defaultUsernameLabels,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify builds a ClassifiedRecord from one decrypted payload.
//
// The first line is always the password, even when it looks like an email
// or carries a username label. Remaining lines are matched against the
// username rule, then the email rule; only the first match sets each field
// and later matches join the note. An empty payload yields a zero record.
func (c *Classifier) Classify(payload model.DecryptedPayload) model.ClassifiedRecord {
	var record model.ClassifiedRecord
	if payload.Empty() {
		return record
	}

	record.Password = strings.TrimSpace(payload[0])

	var noteLines []string
	for _, raw := range payload[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// A username-labelled line is claimed by the username rule even when
		// the field is already set; it then joins the note instead of being
		// retried as an email.
		if value, ok := c.matchUsername(line); ok {
			if record.Username == "" {
				record.Username = value
				continue
			}
		} else if strings.Contains(line, "@") {
			if record.Email == "" {
				record.Email = emailValue(line)
				continue
			}
		}

		noteLines = append(noteLines, line)
	}

	record.Note = strings.Join(noteLines, noteSeparator)
	return record
}

// matchUsername reports whether the line starts with a username label and
// returns the trimmed value after the label's colon.
func (c *Classifier) matchUsername(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, label := range c.usernameLabels {
		if strings.HasPrefix(lower, label) {
			_, value, _ := strings.Cut(line, ":")
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// emailValue extracts the email from a line, stripping a leading label when
// one is present ("email: a@b.com" yields "a@b.com", a bare "a@b.com" is
// returned as is).
func emailValue(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return line
}
