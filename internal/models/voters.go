package models

import (
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/internal/utils"
	"github.com/canvasstrack/voterroll/rolldb"
)

type Voter struct {
	SerialNo      int64  `json:"serialNo"`
	VoterID       string `json:"voterId"`
	HouseNo       string `json:"houseNo"`
	VoterName     string `json:"voterName"`
	VoterNameEn   string `json:"voterNameEn"`
	RelativeName  string `json:"relativeName"`
	Age           *int64 `json:"age"`
	Gender        string `json:"gender"`
	BoothID       string `json:"boothId,omitempty"`
	Visited       bool   `json:"visited"`
	VisitedBy     string `json:"visitedBy,omitempty"`
	VisitedByName string `json:"visitedByName,omitempty"`
	VisitedAt     *int64 `json:"visitedAt,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Score         *int   `json:"score,omitempty"`
}

func NewVoter(row rolldb.VoterRow) Voter {
	return Voter{
		SerialNo:      row.SerialNo,
		VoterID:       row.VoterID,
		HouseNo:       utils.NullStringOrEmpty(row.HouseNo),
		VoterName:     row.VoterName,
		VoterNameEn:   row.VoterNameEn,
		RelativeName:  utils.NullStringOrEmpty(row.RelativeName),
		Age:           utils.NullInt64Ptr(row.Age),
		Gender:        utils.NullStringOrEmpty(row.Gender),
		BoothID:       utils.NullStringOrEmpty(row.BoothID),
		Visited:       row.Visited(),
		VisitedBy:     utils.NullStringOrEmpty(row.VisitedBy),
		VisitedByName: utils.NullStringOrEmpty(row.VisitedByName),
		VisitedAt:     utils.NullInt64Ptr(row.VisitedAt),
		Notes:         utils.NullStringOrEmpty(row.Notes),
	}
}

func NewVoters(rows []rolldb.VoterRow) []Voter {
	out := make([]Voter, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewVoter(row))
	}
	return out
}

// NewScoredVoters converts a ranked page; the relevance score is exposed
// only for active searches.
func NewScoredVoters(rows []search.ScoredCandidate, active bool) []Voter {
	out := make([]Voter, 0, len(rows))
	for _, row := range rows {
		v := NewVoter(row.VoterRow)
		if active {
			score := row.Score
			v.Score = &score
		}
		out = append(out, v)
	}
	return out
}

type Visit struct {
	VoterID   string `json:"voterId"`
	VisitedBy string `json:"visitedBy"`
	VisitedAt int64  `json:"visitedAt"`
	Notes     string `json:"notes,omitempty"`
}

func NewVisit(v rolldb.Visit) Visit {
	return Visit{
		VoterID:   v.VoterID,
		VisitedBy: v.VisitedBy,
		VisitedAt: v.VisitedAt,
		Notes:     utils.NullStringOrEmpty(v.Notes),
	}
}

type VoterStats struct {
	TotalVoters int64 `json:"totalVoters"`
	TotalMarked int64 `json:"totalMarked"`
	MarkedByMe  int64 `json:"markedByMe"`
}

func NewVoterStats(s rolldb.VoterStats) VoterStats {
	return VoterStats{
		TotalVoters: s.TotalVoters,
		TotalMarked: s.TotalMarked,
		MarkedByMe:  s.MarkedByMe,
	}
}

type UserStats struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	TotalMarked  int64  `json:"totalMarked"`
	FirstVisitAt *int64 `json:"firstVisitAt"`
	LastVisitAt  *int64 `json:"lastVisitAt"`
}

func NewUserStats(rows []rolldb.UserWiseStatsRow) []UserStats {
	out := make([]UserStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserStats{
			UserID:       row.UserID,
			Username:     row.Username,
			DisplayName:  row.DisplayName,
			TotalMarked:  row.VisitCount,
			FirstVisitAt: utils.NullInt64Ptr(row.FirstVisitAt),
			LastVisitAt:  utils.NullInt64Ptr(row.LastVisitAt),
		})
	}
	return out
}

// User never carries the password hash.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
	CreatedAt   int64  `json:"createdAt"`
}

func NewUser(u rolldb.User) User {
	return User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

func NewUsers(users []rolldb.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, NewUser(u))
	}
	return out
}

type Login struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	UserName  string `json:"userName"`
	IsAdmin   bool   `json:"isAdmin"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
