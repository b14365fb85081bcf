package model

// CSVHeader returns the fixed header row of the import format. Column order
// is part of the format contract and must not change.
func CSVHeader() []string {
	return []string{"name", "url", "email", "username", "password", "note", "totp", "vault"}
}

// ExportRow is one data row of the CSV import format: a ClassifiedRecord
// bound to its entry name plus the columns the source store cannot provide.
// The url and totp columns are always empty; vault is empty unless a default
// vault name was configured. Rows are built by the serializer, held until
// the run finishes, written once, and discarded.
type ExportRow struct {
	Name     string `json:"-"`
	URL      string `json:"-"`
	Email    string `json:"-"`
	Username string `json:"-"`
	Password string `json:"-"`
	Note     string `json:"-"`
	TOTP     string `json:"-"`
	Vault    string `json:"-"`
}

// NewExportRow serializes a classified record into an export row.
// Field values are copied verbatim; quoting is the CSV encoder's job.
func NewExportRow(name string, record ClassifiedRecord, vault string) ExportRow {
	return ExportRow{
		Name:     name,
		Email:    record.Email,
		Username: record.Username,
		Password: record.Password,
		Note:     record.Note,
		Vault:    vault,
	}
}

// Columns returns the row as CSV fields in header order.
func (r ExportRow) Columns() []string {
	return []string{r.Name, r.URL, r.Email, r.Username, r.Password, r.Note, r.TOTP, r.Vault}
}
