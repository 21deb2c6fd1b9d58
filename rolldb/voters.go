package rolldb

import (
	"context"
	"fmt"
	"strings"
)

const voterRowColumns = `
    v.voter_id,
    v.serial_no,
    v.voter_name,
    v.voter_name_en,
    v.relative_name,
    v.house_no,
    v.age,
    v.gender,
    v.booth_id,
    vv.visited_by,
    u.display_name,
    vv.visited_at,
    vv.notes`

func (q *Queries) voterRowFrom() string {
	return `
FROM voters v
LEFT JOIN voter_visits vv ON ` + q.dialect.JoinEq("vv.voter_id", "v.voter_id") + `
LEFT JOIN users u ON u.id = vv.visited_by`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoterRow(s rowScanner) (VoterRow, error) {
	var i VoterRow
	err := s.Scan(
		&i.VoterID,
		&i.SerialNo,
		&i.VoterName,
		&i.VoterNameEn,
		&i.RelativeName,
		&i.HouseNo,
		&i.Age,
		&i.Gender,
		&i.BoothID,
		&i.VisitedBy,
		&i.VisitedByName,
		&i.VisitedAt,
		&i.Notes,
	)
	return i, err
}

func (q *Queries) queryVoterRows(ctx context.Context, query string, args ...any) ([]VoterRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // closing is also checked explicitly below
	var items []VoterRow
	for rows.Next() {
		i, err := scanVoterRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countVoters = `SELECT COUNT(*) FROM voters`

func (q *Queries) CountVoters(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVoters).Scan(&count)
	return count, err
}

type ListVotersParams struct {
	Limit  int64
	Offset int64
}

// ListVoters returns one page of the roll in serial number order.
func (q *Queries) ListVoters(ctx context.Context, arg ListVotersParams) ([]VoterRow, error) {
	query := "SELECT" + voterRowColumns + q.voterRowFrom() + `
ORDER BY v.serial_no, v.voter_id
LIMIT ? OFFSET ?`
	return q.queryVoterRows(ctx, q.dialect.Rebind(query), arg.Limit, arg.Offset)
}

// CountVotersMatching counts every voter matching filter. The count is not
// capped.
func (q *Queries) CountVotersMatching(ctx context.Context, filter Filter) (int64, error) {
	where, args := filter.Render(q.dialect, 0)
	query := "SELECT COUNT(*) FROM voters v WHERE " + where
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// SearchVoterCandidates returns at most limit voters matching filter, in
// serial number order.
func (q *Queries) SearchVoterCandidates(ctx context.Context, filter Filter, limit int64) ([]VoterRow, error) {
	where, args := filter.Render(q.dialect, 0)
	query := "SELECT" + voterRowColumns + q.voterRowFrom() + `
WHERE ` + where + `
ORDER BY v.serial_no, v.voter_id
LIMIT ` + q.dialect.Placeholder(len(args)+1)
	return q.queryVoterRows(ctx, query, append(args, limit)...)
}

// FullVoterList returns the entire roll with visit information.
func (q *Queries) FullVoterList(ctx context.Context) ([]VoterRow, error) {
	query := "SELECT" + voterRowColumns + q.voterRowFrom() + `
ORDER BY v.serial_no, v.voter_id`
	return q.queryVoterRows(ctx, query)
}

const getVoter = `
SELECT voter_id, serial_no, voter_name, voter_name_en, relative_name,
    house_no, age, gender, booth_id
FROM voters
WHERE voter_id = ?
`

func (q *Queries) GetVoter(ctx context.Context, voterID string) (Voter, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.Rebind(getVoter), voterID)
	var i Voter
	err := row.Scan(
		&i.VoterID,
		&i.SerialNo,
		&i.VoterName,
		&i.VoterNameEn,
		&i.RelativeName,
		&i.HouseNo,
		&i.Age,
		&i.Gender,
		&i.BoothID,
	)
	return i, translateError(err)
}

const deleteAllVoters = `DELETE FROM voters`

func (q *Queries) DeleteAllVoters(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllVoters)
	return err
}

const voterColumnCount = 9

// InsertVoters writes voters with multi-row INSERT statements of at most
// batchSize rows each.
func (q *Queries) InsertVoters(ctx context.Context, voters []Voter, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBulkInsertBatchSize
	}
	for start := 0; start < len(voters); start += batchSize {
		end := min(start+batchSize, len(voters))
		batch := voters[start:end]

		var b strings.Builder
		b.WriteString(`INSERT INTO voters (voter_id, serial_no, voter_name, voter_name_en, relative_name, house_no, age, gender, booth_id) VALUES `)
		args := make([]any, 0, len(batch)*voterColumnCount)
		for i, v := range batch {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(")
			for c := 0; c < voterColumnCount; c++ {
				if c > 0 {
					b.WriteString(", ")
				}
				b.WriteString(q.dialect.Placeholder(len(args) + c + 1))
			}
			b.WriteString(")")
			args = append(args,
				v.VoterID, v.SerialNo, v.VoterName, v.VoterNameEn,
				v.RelativeName, v.HouseNo, v.Age, v.Gender, v.BoothID)
		}

		if _, err := q.db.ExecContext(ctx, b.String(), args...); err != nil {
			return fmt.Errorf("failed to insert voters %d-%d: %w", start, end-1, translateError(err))
		}
	}
	return nil
}
