package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/canvasstrack/voterroll/internal/logging"
	"github.com/canvasstrack/voterroll/internal/translit"
	"github.com/canvasstrack/voterroll/rolldb"
)

// ErrQueryTooLong rejects a term longer than Tuning.MaxQueryLength runes.
var ErrQueryTooLong = errors.New("search term is too long")

// VoterStore is the read side of rolldb.Queries used by searches.
type VoterStore interface {
	CountVoters(ctx context.Context) (int64, error)
	ListVoters(ctx context.Context, arg rolldb.ListVotersParams) ([]rolldb.VoterRow, error)
	CountVotersMatching(ctx context.Context, filter rolldb.Filter) (int64, error)
	SearchVoterCandidates(ctx context.Context, filter rolldb.Filter, limit int64) ([]rolldb.VoterRow, error)
}

// Source hands out a VoterStore bound to one acquired connection for the
// duration of fn.
type Source interface {
	WithVoters(ctx context.Context, fn func(VoterStore) error) error
}

// ClientSource adapts a rolldb.Client.
type ClientSource struct {
	Client *rolldb.Client
}

func (s ClientSource) WithVoters(ctx context.Context, fn func(VoterStore) error) error {
	return s.Client.WithConn(ctx, func(q *rolldb.Queries) error {
		return fn(q)
	})
}

// Result is one page of a search.
type Result struct {
	Query        Query
	TotalMatches int64 // every match in storage, not capped
	Page         int
	PageSize     int
	Rows         []ScoredCandidate
}

// Showing is the number of rows on this page.
func (r Result) Showing() int {
	return len(r.Rows)
}

type Searcher struct {
	source   Source
	expander *translit.Expander
	scorer   *Scorer
	tuning   Tuning
}

func NewSearcher(source Source, expander *translit.Expander, tuning Tuning) *Searcher {
	tuning = tuning.WithDefaults()
	if expander == nil {
		expander = translit.NewExpander(nil)
	}
	return &Searcher{
		source:   source,
		expander: expander,
		scorer:   NewScorer(tuning.Weights),
		tuning:   tuning,
	}
}

func (s *Searcher) Tuning() Tuning {
	return s.tuning
}

// CheckLength reports ErrQueryTooLong when the trimmed raw exceeds the
// configured maximum.
func (s *Searcher) CheckLength(raw string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(raw)); n > s.tuning.MaxQueryLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrQueryTooLong, n, s.tuning.MaxQueryLength)
	}
	return nil
}

// Prepare normalises raw and, for active Latin queries, attaches the
// Devanagari variants.
func (s *Searcher) Prepare(raw string) Query {
	q := Normalize(raw, s.tuning.MinQueryLength)
	if q.Active && q.IsLatin {
		q.Variants = s.expander.Expand(q.Term)
	}
	return q
}

// Filter returns the storage filter for raw, or nil when the query is too
// short to filter.
func (s *Searcher) Filter(raw string) rolldb.Filter {
	q := s.Prepare(raw)
	if !q.Active {
		return nil
	}
	return NewPatternSet(q)
}

// PageBounds clamps page and pageSize and returns the row offset. An
// offset that would overflow saturates at math.MaxInt, which is past the
// end of any roll.
func (s *Searcher) PageBounds(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.tuning.DefaultPageSize
	}
	if pageSize > s.tuning.MaxPageSize {
		pageSize = s.tuning.MaxPageSize
	}
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return page, pageSize, math.MaxInt
	}
	return page, pageSize, (page - 1) * pageSize
}

// Search returns one page of voters for raw. Short queries list the roll in
// serial order. Longer ones fetch at most CandidateCap matches in serial
// order, rank them and slice the ranked list, so pages beyond the cap are
// empty even though TotalMatches counts every match.
func (s *Searcher) Search(ctx context.Context, raw string, page, pageSize int) (Result, error) {
	if err := s.CheckLength(raw); err != nil {
		return Result{}, err
	}
	page, pageSize, offset := s.PageBounds(page, pageSize)
	q := s.Prepare(raw)
	res := Result{Query: q, Page: page, PageSize: pageSize}

	if !q.Active {
		err := s.source.WithVoters(ctx, func(store VoterStore) error {
			total, err := store.CountVoters(ctx)
			if err != nil {
				return fmt.Errorf("count voters: %w", err)
			}
			res.TotalMatches = total
			if int64(offset) >= total {
				res.Rows = []ScoredCandidate{}
				return nil
			}
			rows, err := store.ListVoters(ctx, rolldb.ListVotersParams{Limit: int64(pageSize), Offset: int64(offset)})
			if err != nil {
				return fmt.Errorf("list voters: %w", err)
			}
			res.Rows = make([]ScoredCandidate, len(rows))
			for i, row := range rows {
				res.Rows[i] = ScoredCandidate{VoterRow: row}
			}
			return nil
		})
		return res, err
	}

	patterns := NewPatternSet(q)
	var candidates []rolldb.VoterRow
	err := s.source.WithVoters(ctx, func(store VoterStore) error {
		total, err := store.CountVotersMatching(ctx, patterns)
		if err != nil {
			return fmt.Errorf("count matches: %w", err)
		}
		res.TotalMatches = total
		if total == 0 {
			return nil
		}
		candidates, err = store.SearchVoterCandidates(ctx, patterns, int64(s.tuning.CandidateCap))
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	ranked := s.Rank(q, candidates)
	if offset < len(ranked) {
		end := min(offset+pageSize, len(ranked))
		res.Rows = ranked[offset:end]
	} else {
		res.Rows = []ScoredCandidate{}
	}

	logging.FromContext(ctx).Debug("search ranked",
		slog.String("term", q.Term),
		slog.Int("variants", len(q.Variants)),
		slog.Int64("total_matches", res.TotalMatches),
		slog.Int("candidates", len(candidates)))

	return res, nil
}

// Rank scores rows and sorts them by descending score. Equal scores keep
// their input order.
func (s *Searcher) Rank(q Query, rows []rolldb.VoterRow) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(rows))
	for i, row := range rows {
		scored[i] = ScoredCandidate{VoterRow: row, Score: s.scorer.Score(q, row)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
