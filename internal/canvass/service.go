// Package canvass records and reports door-to-door visits.
package canvass

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/canvasstrack/voterroll/internal/clock"
	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/search"
	"github.com/canvasstrack/voterroll/internal/utils"
	"github.com/canvasstrack/voterroll/rolldb"
)

var (
	ErrAlreadyVisited = errors.New("voter already visited")
	ErrNotVisited     = errors.New("voter has not been visited")
	ErrVoterNotFound  = errors.New("voter not found")
	ErrForbidden      = errors.New("admin access required")
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type Service struct {
	db       *rolldb.Client
	searcher *search.Searcher
	clock    clock.Clock
	logger   *slog.Logger
}

func NewService(db *rolldb.Client, searcher *search.Searcher, c clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		searcher: searcher,
		clock:    c,
		logger:   logger.With(slog.String("component", "canvass")),
	}
}

// MarkVisited records that userID visited voterID. When two canvassers mark
// the same voter concurrently exactly one succeeds; the other gets
// ErrAlreadyVisited.
func (s *Service) MarkVisited(ctx context.Context, voterID, userID, notes string) (rolldb.Visit, error) {
	var visit rolldb.Visit
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		if _, err := q.GetVoter(ctx, voterID); err != nil {
			if errors.Is(err, rolldb.ErrNotFound) {
				return ErrVoterNotFound
			}
			return err
		}

		notes = strings.TrimSpace(notes)
		arg := rolldb.CreateVisitParams{
			VoterID:   voterID,
			VisitedBy: userID,
			VisitedAt: s.clock.NowUnixMilli(),
			Notes:     utils.ToNullString(notes),
		}
		if err := q.CreateVisit(ctx, arg); err != nil {
			if errors.Is(err, rolldb.ErrDuplicate) {
				return ErrAlreadyVisited
			}
			return err
		}

		var err error
		visit, err = q.GetVisit(ctx, voterID)
		return err
	})
	if err != nil {
		return rolldb.Visit{}, err
	}

	logging.LogOperation(s.logger, "voter_marked_visited",
		slog.String("voter_id", voterID),
		slog.String("user_id", userID))
	return visit, nil
}

// Unmark removes the visit mark of voterID. Only admins may unmark.
func (s *Service) Unmark(ctx context.Context, voterID string, actor Actor) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		return q.DeleteVisit(ctx, voterID)
	})
	if errors.Is(err, rolldb.ErrNotFound) {
		return ErrNotVisited
	}
	if err != nil {
		return err
	}

	logging.LogOperation(s.logger, "voter_unmarked",
		slog.String("voter_id", voterID),
		slog.String("admin_id", actor.UserID))
	return nil
}

// Stats counts voters, marked voters and voters marked by userID among the
// voters matching term. A term below the search threshold covers the whole
// roll.
func (s *Service) Stats(ctx context.Context, userID, term string) (rolldb.VoterStats, error) {
	if err := s.searcher.CheckLength(term); err != nil {
		return rolldb.VoterStats{}, err
	}
	filter := s.searcher.Filter(term)
	var stats rolldb.VoterStats
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		stats, err = q.VoterStats(ctx, userID, filter)
		return err
	})
	return stats, err
}

func (s *Service) UserWiseStats(ctx context.Context) ([]rolldb.UserWiseStatsRow, error) {
	var rows []rolldb.UserWiseStatsRow
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		rows, err = q.UserWiseStats(ctx)
		return err
	})
	return rows, err
}

// FullList returns every voter with visit details in serial order.
func (s *Service) FullList(ctx context.Context) ([]rolldb.VoterRow, error) {
	var rows []rolldb.VoterRow
	err := s.db.WithConn(ctx, func(q *rolldb.Queries) error {
		var err error
		rows, err = q.FullVoterList(ctx)
		return err
	})
	return rows, err
}
