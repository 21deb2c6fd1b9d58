// Package rollimport reads electoral roll exports into storage rows.
package rollimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/canvasstrack/voterroll/internal/utils"
	"github.com/canvasstrack/voterroll/rolldb"
)

// Column names are matched case-insensitively with spaces, dashes and
// underscores ignored, so "Voter ID", "voter_id" and "voterId" all work.
const (
	colVoterID      = "voterid"
	colSerialNo     = "serialno"
	colVoterName    = "votername"
	colVoterNameEn  = "voternameen"
	colRelativeName = "relativename"
	colHouseNo      = "houseno"
	colAge          = "age"
	colGender       = "gender"
	colBoothID      = "boothid"
)

var requiredColumns = []string{colVoterID, colSerialNo, colVoterName}

var ErrEmptyFile = errors.New("roll file has no header row")

// LineError locates a bad record in the input.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ReadVoters parses a CSV roll with a header row. Voter IDs must be unique
// within the file.
func ReadVoters(r io.Reader) ([]rolldb.Voter, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[canonicalColumn(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var voters []rolldb.Voter
	seen := make(map[string]int)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roll: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}

		v, err := parseRecord(record, index)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		if first, dup := seen[v.VoterID]; dup {
			return nil, &LineError{Line: line, Err: fmt.Errorf("voter %s already listed on line %d", v.VoterID, first)}
		}
		seen[v.VoterID] = line
		voters = append(voters, v)
	}
	return voters, nil
}

func parseRecord(record []string, index map[string]int) (rolldb.Voter, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	v := rolldb.Voter{
		VoterID:      field(colVoterID),
		VoterName:    field(colVoterName),
		VoterNameEn:  field(colVoterNameEn),
		RelativeName: utils.ToNullString(field(colRelativeName)),
		HouseNo:      utils.ToNullString(field(colHouseNo)),
		Gender:       utils.ToNullString(field(colGender)),
		BoothID:      utils.ToNullString(field(colBoothID)),
	}
	if v.VoterID == "" {
		return rolldb.Voter{}, errors.New("voter id is empty")
	}
	if v.VoterName == "" {
		return rolldb.Voter{}, fmt.Errorf("voter %s has no name", v.VoterID)
	}

	serial, err := strconv.ParseInt(field(colSerialNo), 10, 64)
	if err != nil || serial < 1 {
		return rolldb.Voter{}, fmt.Errorf("voter %s has invalid serial number %q", v.VoterID, field(colSerialNo))
	}
	v.SerialNo = serial

	if raw := field(colAge); raw != "" {
		age, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || age < 0 {
			return rolldb.Voter{}, fmt.Errorf("voter %s has invalid age %q", v.VoterID, raw)
		}
		v.Age.Int64, v.Age.Valid = age, true
	}
	return v, nil
}

func canonicalColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
