package rolldb

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func sampleVoters() []Voter {
	return []Voter{
		{VoterID: "MH0001", SerialNo: 3, VoterName: "अक्षय शर्मा", VoterNameEn: "Akshay Sharma", Gender: nullString("पु"), Age: sql.NullInt64{Int64: 34, Valid: true}},
		{VoterID: "MH0002", SerialNo: 1, VoterName: "सीता पाटील", VoterNameEn: "Sita Patil", Gender: nullString("स्त्री"), Age: sql.NullInt64{Int64: 52, Valid: true}},
		{VoterID: "MH0003", SerialNo: 2, VoterName: "राम पाटील", VoterNameEn: "Ram Patil", Gender: nullString("पु")},
		{VoterID: "MH0004", SerialNo: 5, VoterName: "लक्ष्मी जाधव", VoterNameEn: "Laxmi Jadhav"},
		{VoterID: "MH0005", SerialNo: 4, VoterName: "अमित शिंदे", VoterNameEn: "Amit Shinde", RelativeName: nullString("सुरेश शिंदे")},
	}
}

// likeFilter matches the Latin name against one pattern.
type likeFilter string

func (f likeFilter) Render(d Dialect, offset int) (string, []any) {
	return d.Like("v.voter_name_en", d.Placeholder(offset+1)), []any{string(f)}
}

func seedUsers(t *testing.T, q *Queries) (User, User) {
	t.Helper()
	ctx := context.Background()
	alice, err := q.CreateUser(ctx, CreateUserParams{ID: "u-alice", Username: "alice", DisplayName: "Alice", PasswordHash: "h1", CreatedAt: 1})
	require.NoError(t, err)
	bob, err := q.CreateUser(ctx, CreateUserParams{ID: "u-bob", Username: "bob", DisplayName: "Bob", PasswordHash: "h2", IsAdmin: true, CreatedAt: 2})
	require.NoError(t, err)
	return alice, bob
}

func TestInsertAndListVoters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries

	// batch size smaller than the input exercises multi-statement inserts
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 2))

	count, err := q.CountVoters(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	page, err := q.ListVoters(ctx, ListVotersParams{Limit: 3, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 3, spew.Sdump(page))
	assert.Equal(t, []string{"MH0002", "MH0003", "MH0001"}, []string{page[0].VoterID, page[1].VoterID, page[2].VoterID})

	page, err = q.ListVoters(ctx, ListVotersParams{Limit: 3, Offset: 3})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "MH0005", page[0].VoterID)
	assert.Equal(t, "सुरेश शिंदे", page[0].RelativeName.String)
	assert.False(t, page[0].Visited())

	voter, err := q.GetVoter(ctx, "MH0001")
	require.NoError(t, err)
	assert.Equal(t, "अक्षय शर्मा", voter.VoterName)
	assert.EqualValues(t, 34, voter.Age.Int64)

	_, err = q.GetVoter(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertVoters_Duplicate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	voters := sampleVoters()
	require.NoError(t, client.BulkInsertVoters(ctx, voters[:1]))
	err := client.BulkInsertVoters(ctx, voters[:1])
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestReplaceVoters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.BulkInsertVoters(ctx, sampleVoters()))
	require.NoError(t, client.ReplaceVoters(ctx, sampleVoters()[:2]))

	count, err := client.Queries.CountVoters(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestReplaceVoters_OrphanedMarksLeaveTallies(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, client.BulkInsertVoters(ctx, sampleVoters()))
	_, bob := seedUsers(t, q)

	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0001", VisitedBy: bob.ID, VisitedAt: 10}))
	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0004", VisitedBy: bob.ID, VisitedAt: 40}))

	require.NoError(t, client.ReplaceVoters(ctx, sampleVoters()[:2]))

	stats, err := q.VoterStats(ctx, bob.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalMarked)

	users, err := q.UserWiseStats(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	assert.Equal(t, bob.ID, users[0].UserID)
	assert.EqualValues(t, stats.TotalMarked, users[0].VisitCount)
	assert.EqualValues(t, 10, users[0].LastVisitAt.Int64)
}

func TestSearchVoterCandidates(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 0))

	total, err := q.CountVotersMatching(ctx, likeFilter("%patil%"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	rows, err := q.SearchVoterCandidates(ctx, likeFilter("%PATIL%"), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MH0002", rows[0].VoterID, "candidates come back in serial order")

	capped, err := q.SearchVoterCandidates(ctx, likeFilter("%a%"), 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)

	uncapped, err := q.CountVotersMatching(ctx, likeFilter("%a%"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, uncapped)
}

func TestSearch_EscapedPatternIsLiteral(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, []Voter{
		{VoterID: "X1", SerialNo: 1, VoterName: "क", VoterNameEn: "100% Sure"},
		{VoterID: "X2", SerialNo: 2, VoterName: "ख", VoterNameEn: "1000 Sure"},
	}, 0))

	total, err := q.CountVotersMatching(ctx, likeFilter("%"+EscapeLike("100%")+"%"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestVisits(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 0))
	alice, _ := seedUsers(t, q)

	err := q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0002", VisitedBy: alice.ID, VisitedAt: 1700000000000, Notes: nullString("door locked")})
	require.NoError(t, err)

	err = q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0002", VisitedBy: alice.ID, VisitedAt: 1700000000001})
	assert.ErrorIs(t, err, ErrDuplicate)

	visit, err := q.GetVisit(ctx, "MH0002")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, visit.VisitedBy)
	assert.EqualValues(t, 1700000000000, visit.VisitedAt)
	assert.Equal(t, "door locked", visit.Notes.String)

	rows, err := q.ListVoters(ctx, ListVotersParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Visited())
	assert.Equal(t, "Alice", rows[0].VisitedByName.String)
	assert.EqualValues(t, 1700000000000, rows[0].VisitedAt.Int64)

	require.NoError(t, q.DeleteVisit(ctx, "MH0002"))
	assert.ErrorIs(t, q.DeleteVisit(ctx, "MH0002"), ErrNotFound)
	_, err = q.GetVisit(ctx, "MH0002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateVisit_ConcurrentMarksOneWinner(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.Queries.InsertVoters(ctx, sampleVoters(), 0))
	alice, bob := seedUsers(t, client.Queries)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []User{alice, bob} {
		wg.Add(1)
		go func(i int, user User) {
			defer wg.Done()
			errs[i] = client.WithConn(ctx, func(q *Queries) error {
				return q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0001", VisitedBy: user.ID, VisitedAt: int64(i)})
			})
		}(i, user)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrDuplicate):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestVoterStats(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 0))
	alice, bob := seedUsers(t, q)

	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0002", VisitedBy: alice.ID, VisitedAt: 1}))
	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0003", VisitedBy: bob.ID, VisitedAt: 2}))
	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0004", VisitedBy: alice.ID, VisitedAt: 3}))

	all, err := q.VoterStats(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, VoterStats{TotalVoters: 5, TotalMarked: 3, MarkedByMe: 2}, all)

	patils, err := q.VoterStats(ctx, alice.ID, likeFilter("%patil%"))
	require.NoError(t, err)
	assert.Equal(t, VoterStats{TotalVoters: 2, TotalMarked: 2, MarkedByMe: 1}, patils)
}

func TestUserWiseStats(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 0))
	alice, bob := seedUsers(t, q)

	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0002", VisitedBy: bob.ID, VisitedAt: 10}))
	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0003", VisitedBy: bob.ID, VisitedAt: 30}))
	require.NoError(t, q.CreateVisit(ctx, CreateVisitParams{VoterID: "MH0004", VisitedBy: bob.ID, VisitedAt: 20}))

	stats, err := q.UserWiseStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, bob.ID, stats[0].UserID)
	assert.EqualValues(t, 3, stats[0].VisitCount)
	assert.EqualValues(t, 10, stats[0].FirstVisitAt.Int64)
	assert.EqualValues(t, 30, stats[0].LastVisitAt.Int64)

	assert.Equal(t, alice.ID, stats[1].UserID)
	assert.Zero(t, stats[1].VisitCount)
	assert.False(t, stats[1].FirstVisitAt.Valid)
}

func TestUsers(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	alice, bob := seedUsers(t, q)

	_, err := q.CreateUser(ctx, CreateUserParams{ID: "u-other", Username: "alice", DisplayName: "Imposter", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := q.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob, got)
	assert.True(t, got.IsAdmin)

	got, err = q.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)

	_, err = q.GetUserByUsername(ctx, "carol")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, q.UpdateUserPassword(ctx, alice.ID, "new-hash"))
	got, err = q.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.ErrorIs(t, q.UpdateUserPassword(ctx, "missing", "h"), ErrNotFound)

	users, err := q.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, []string{users[0].Username, users[1].Username})

	require.NoError(t, q.DeleteUser(ctx, bob.ID))
	assert.ErrorIs(t, q.DeleteUser(ctx, bob.ID), ErrNotFound)
}

func TestFullVoterList(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	q := client.Queries
	require.NoError(t, q.InsertVoters(ctx, sampleVoters(), 0))

	rows, err := q.FullVoterList(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].SerialNo, rows[i].SerialNo)
	}
}
