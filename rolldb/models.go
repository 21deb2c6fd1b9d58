package rolldb

import "database/sql"

// Voter is one entry of the electoral roll. Names are stored in Devanagari
// (VoterName) and in a Latin transcription (VoterNameEn).
type Voter struct {
	VoterID      string
	SerialNo     int64
	VoterName    string
	VoterNameEn  string
	RelativeName sql.NullString
	HouseNo      sql.NullString
	Age          sql.NullInt64
	Gender       sql.NullString
	BoothID      sql.NullString
}

// VoterRow is a voter joined with its visit mark, if any, and the name of
// the canvasser who made it.
type VoterRow struct {
	Voter
	VisitedBy     sql.NullString
	VisitedByName sql.NullString
	VisitedAt     sql.NullInt64 // unix millis
	Notes         sql.NullString
}

// Visited reports whether the voter carries a visit mark.
func (r VoterRow) Visited() bool {
	return r.VisitedBy.Valid
}

type Visit struct {
	ID        int64
	VoterID   string
	VisitedBy string
	VisitedAt int64 // unix millis
	Notes     sql.NullString
}

type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    int64 // unix millis
}

// Filter renders a WHERE fragment over the voters table aliased as v. The
// fragment's first placeholder is number offset+1 and args pair 1:1 with
// its placeholders.
type Filter interface {
	Render(d Dialect, offset int) (where string, args []any)
}
