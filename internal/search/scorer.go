package search

import (
	"slices"
	"strings"

	"github.com/canvasstrack/voterroll/rolldb"
)

// Scorer ranks candidates against a query.
type Scorer struct {
	w Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// ScoredCandidate is one matched voter with its relevance.
type ScoredCandidate struct {
	rolldb.VoterRow
	Score int
}

// Score rates row against q. The original term is scored on every rule of
// the ladder; the best Devanagari variant adds what it earns against the
// native name. Missing fields compare as empty strings.
func (s *Scorer) Score(q Query, row rolldb.VoterRow) int {
	native := fold(row.VoterName)
	latin := fold(row.VoterNameEn)
	id := fold(row.VoterID)

	score := s.termScore(q.Lower, native, latin, id)

	best := 0
	for _, v := range q.Variants {
		fv := fold(v)
		if fv == q.Lower {
			continue
		}
		best = max(best, s.nameScore(fv, native))
	}
	return score + best
}

func (s *Scorer) termScore(term, native, latin, id string) int {
	if term == "" {
		return 0
	}
	score := 0
	if term == native || term == latin {
		score += s.w.ExactName
	}
	if sameWords(term, latin) {
		score += s.w.WordSet
	}
	if term == id {
		score += s.w.ExactID
	}
	if strings.HasPrefix(latin, term) || strings.HasPrefix(native, term) {
		score += s.w.Prefix
	}
	if strings.Contains(latin, term) || strings.Contains(native, term) {
		score += s.w.Contains
	}
	if strings.Contains(id, term) {
		score += s.w.IDContains
	}
	return score
}

func (s *Scorer) nameScore(term, name string) int {
	if term == "" {
		return 0
	}
	score := 0
	if term == name {
		score += s.w.ExactName
	}
	if strings.HasPrefix(name, term) {
		score += s.w.Prefix
	}
	if strings.Contains(name, term) {
		score += s.w.Contains
	}
	return score
}

// sameWords reports whether a and b hold the same multiset of words.
func sameWords(a, b string) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wa) != len(wb) {
		return false
	}
	slices.Sort(wa)
	slices.Sort(wb)
	return slices.Equal(wa, wb)
}
