package search

import (
	"strings"

	"github.com/canvasstrack/voterroll/rolldb"
)

var matchedFields = []string{"v.voter_id", "v.voter_name", "v.voter_name_en"}

// PatternSet is the OR of every LIKE pattern generated for a query. It
// implements rolldb.Filter.
type PatternSet struct {
	query Query
}

func NewPatternSet(q Query) PatternSet {
	return PatternSet{query: q}
}

// Patterns lists the (column, pattern) pairs in render order. Patterns are
// already LIKE escaped.
func (p PatternSet) Patterns() [][2]string {
	var out [][2]string
	for _, term := range p.query.Terms() {
		esc := rolldb.EscapeLike(term)
		for _, field := range matchedFields {
			out = append(out,
				[2]string{field, esc + "%"},
				[2]string{field, "%" + esc + "%"},
				[2]string{field, "% " + esc + "%"},
			)
		}
	}

	if len(p.query.Words) > 0 {
		joined := strings.Join(p.query.Words, " ")
		out = append(out, [2]string{"v.voter_name_en", "%" + rolldb.EscapeLike(joined) + "%"})
		if p.query.Reversed != joined {
			out = append(out, [2]string{"v.voter_name_en", "%" + rolldb.EscapeLike(p.query.Reversed) + "%"})
		}
	}
	return out
}

// Render builds the disjunction. Placeholders are numbered from offset+1
// and each is paired with the argument at the same position.
func (p PatternSet) Render(d rolldb.Dialect, offset int) (string, []any) {
	patterns := p.Patterns()
	conds := make([]string, 0, len(patterns))
	args := make([]any, 0, len(patterns))
	for _, pat := range patterns {
		args = append(args, pat[1])
		conds = append(conds, d.Like(pat[0], d.Placeholder(offset+len(args))))
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}
