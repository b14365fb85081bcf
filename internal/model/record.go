package model

// ClassifiedRecord is the structured result of classifying one decrypted
// payload. Every payload line is assigned to exactly one of the four fields;
// no line is dropped and none is duplicated.
//
// Design decision: fields are plain strings rather than richer types because
// the import format is flat text. All fields carry json:"-" so that a record
// can never leak through report serialization; records reach durable storage
// only as CSV columns written by the sink.
type ClassifiedRecord struct {
	// Password is the first payload line, verbatim. Empty for an empty payload.
	Password string `json:"-"`

	// Username is the value of the first username-labelled line, if any.
	Username string `json:"-"`

	// Email is the first line containing "@" that no earlier rule consumed.
	Email string `json:"-"`

	// Note holds every remaining line in original order, joined by "\n".
	Note string `json:"-"`
}

// IsZero reports whether no field was populated. True exactly when the
// source payload was empty.
func (r ClassifiedRecord) IsZero() bool {
	return r.Password == "" && r.Username == "" && r.Email == "" && r.Note == ""
}
