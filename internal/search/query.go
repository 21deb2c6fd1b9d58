// Package search implements bilingual voter lookup: a Latin or Devanagari
// query is normalised, expanded into likely Devanagari spellings, matched
// loosely in storage and ranked in memory.
package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Query is a normalised search request.
type Query struct {
	Raw      string
	Term     string   // trimmed input
	Lower    string   // NFC, case folded
	Words    []string // whitespace separated words of Term
	Reversed string   // Words in reverse order, single spaced
	IsLatin  bool     // some rune of Term is below 128
	Active   bool     // long enough to filter; otherwise the roll is listed
	Variants []string // Devanagari spellings of a Latin Term
}

// Normalize prepares raw for matching. Queries shorter than minLength runes
// are inactive.
func Normalize(raw string, minLength int) Query {
	term := strings.TrimSpace(raw)
	q := Query{
		Raw:    raw,
		Term:   term,
		Lower:  fold(term),
		Words:  strings.Fields(term),
		Active: utf8.RuneCountInString(term) >= minLength,
	}

	reversed := make([]string, len(q.Words))
	for i, w := range q.Words {
		reversed[len(q.Words)-1-i] = w
	}
	q.Reversed = strings.Join(reversed, " ")

	for _, r := range term {
		if r < utf8.RuneSelf {
			q.IsLatin = true
			break
		}
	}
	return q
}

// Terms returns the original term followed by every distinct variant. The
// original term is always first.
func (q Query) Terms() []string {
	terms := []string{q.Term}
	seen := map[string]bool{q.Term: true}
	for _, v := range q.Variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		terms = append(terms, v)
	}
	return terms
}

// fold returns the comparison form of s. A Caser is stateful, so one is
// made per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
