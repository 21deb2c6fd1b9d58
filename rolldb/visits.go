package rolldb

import (
	"context"
	"database/sql"
)

type CreateVisitParams struct {
	VoterID   string
	VisitedBy string
	VisitedAt int64
	Notes     sql.NullString
}

const createVisit = `
INSERT INTO voter_visits (voter_id, visited_by, visited_at, notes)
VALUES (?, ?, ?, ?)
`

// CreateVisit records a visit mark. A second mark for the same voter fails
// with ErrDuplicate; the unique index on voter_id settles races.
func (q *Queries) CreateVisit(ctx context.Context, arg CreateVisitParams) error {
	_, err := q.db.ExecContext(ctx, q.dialect.Rebind(createVisit),
		arg.VoterID,
		arg.VisitedBy,
		arg.VisitedAt,
		arg.Notes,
	)
	return translateError(err)
}

const getVisit = `
SELECT id, voter_id, visited_by, visited_at, notes
FROM voter_visits
WHERE voter_id = ?
`

func (q *Queries) GetVisit(ctx context.Context, voterID string) (Visit, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.Rebind(getVisit), voterID)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.VoterID,
		&i.VisitedBy,
		&i.VisitedAt,
		&i.Notes,
	)
	return i, translateError(err)
}

const deleteVisit = `DELETE FROM voter_visits WHERE voter_id = ?`

// DeleteVisit removes the visit mark of a voter, returning ErrNotFound when
// there was none.
func (q *Queries) DeleteVisit(ctx context.Context, voterID string) error {
	res, err := q.db.ExecContext(ctx, q.dialect.Rebind(deleteVisit), voterID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type VoterStats struct {
	TotalVoters int64
	TotalMarked int64
	MarkedByMe  int64
}

// VoterStats counts the voters matching filter, how many of them are
// marked, and how many were marked by userID. A nil filter counts the
// whole roll.
func (q *Queries) VoterStats(ctx context.Context, userID string, filter Filter) (VoterStats, error) {
	var stats VoterStats

	where, args := "1 = 1", []any(nil)
	if filter != nil {
		where, args = filter.Render(q.dialect, 0)
	}

	total := "SELECT COUNT(*) FROM voters v WHERE " + where
	if err := q.db.QueryRowContext(ctx, total, args...).Scan(&stats.TotalVoters); err != nil {
		return stats, err
	}

	marked := "SELECT COUNT(*) FROM voters v JOIN voter_visits vv ON " +
		q.dialect.JoinEq("vv.voter_id", "v.voter_id") + " WHERE " + where
	if err := q.db.QueryRowContext(ctx, marked, args...).Scan(&stats.TotalMarked); err != nil {
		return stats, err
	}

	mineWhere, mineArgs := "1 = 1", []any(nil)
	if filter != nil {
		mineWhere, mineArgs = filter.Render(q.dialect, 1)
	}
	mine := "SELECT COUNT(*) FROM voters v JOIN voter_visits vv ON " +
		q.dialect.JoinEq("vv.voter_id", "v.voter_id") +
		" WHERE vv.visited_by = " + q.dialect.Placeholder(1) + " AND (" + mineWhere + ")"
	if err := q.db.QueryRowContext(ctx, mine, append([]any{userID}, mineArgs...)...).Scan(&stats.MarkedByMe); err != nil {
		return stats, err
	}

	return stats, nil
}

type UserWiseStatsRow struct {
	UserID       string
	Username     string
	DisplayName  string
	VisitCount   int64
	FirstVisitAt sql.NullInt64
	LastVisitAt  sql.NullInt64
}

// userWiseStats counts only marks whose voter is still on the roll, so the
// tallies agree with VoterStats after a roll replacement.
func (q *Queries) userWiseStats() string {
	return `
SELECT
    u.id,
    u.username,
    u.display_name,
    COUNT(vv.id) AS visit_count,
    MIN(vv.visited_at) AS first_visit_at,
    MAX(vv.visited_at) AS last_visit_at
FROM users u
LEFT JOIN voter_visits vv ON vv.visited_by = u.id
    AND EXISTS (SELECT 1 FROM voters v WHERE ` + q.dialect.JoinEq("v.voter_id", "vv.voter_id") + `)
GROUP BY u.id, u.username, u.display_name
ORDER BY visit_count DESC, u.username
`
}

// UserWiseStats returns the visit tally of every user, busiest first.
func (q *Queries) UserWiseStats(ctx context.Context) ([]UserWiseStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, q.userWiseStats())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var items []UserWiseStatsRow
	for rows.Next() {
		var i UserWiseStatsRow
		if err := rows.Scan(
			&i.UserID,
			&i.Username,
			&i.DisplayName,
			&i.VisitCount,
			&i.FirstVisitAt,
			&i.LastVisitAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
