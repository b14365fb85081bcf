// Package classify assigns the lines of a decrypted password-store entry to
// the structured fields of the import format.
//
// Entries in a pass store are free-form text with one strong convention: the
// secret itself is the first line. Everything below it is a mix of labelled
// values ("username: alice"), bare values ("alice@example.com"), and prose.
// The classifier turns that mix into a ClassifiedRecord using a fixed rule
// order:
//
//  1. The first line is the password, unconditionally.
//  2. A line starting with a username label (username:, user:, login:,
//     case-insensitive) sets the username. First match wins.
//  3. A line containing "@" sets the email. First match wins.
//  4. Every other line becomes part of the note, in original order.
//
// Design decision: rule 2 runs before rule 3 so that "username: foo@corp.com"
// is a username, not an email. Swapping the order changes how ambiguous lines
// classify, so the order is part of the contract, not an implementation
// detail. Each line is consumed by exactly one rule; lines that lose a
// first-match race fall through to the note rather than being dropped.
package classify
