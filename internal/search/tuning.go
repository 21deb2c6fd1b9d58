package search

// Weights are the score increments of the relevance ladder.
type Weights struct {
	ExactName  int // term equals the native or Latin name
	WordSet    int // same words as the Latin name, any order
	ExactID    int // term equals the voter id
	Prefix     int // a name starts with the term
	Contains   int // a name contains the term
	IDContains int // the voter id contains the term
}

// Tuning holds the search constants that deployments may override.
type Tuning struct {
	MinQueryLength  int
	MaxQueryLength  int // longer terms are rejected with ErrQueryTooLong
	CandidateCap    int
	DefaultPageSize int
	MaxPageSize     int
	Weights         Weights
}

func DefaultWeights() Weights {
	return Weights{
		ExactName:  1000,
		WordSet:    800,
		ExactID:    900,
		Prefix:     500,
		Contains:   300,
		IDContains: 150,
	}
}

func DefaultTuning() Tuning {
	return Tuning{
		MinQueryLength:  3,
		MaxQueryLength:  100,
		CandidateCap:    500,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Weights:         DefaultWeights(),
	}
}

// WithDefaults replaces every zero field with its default.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	if t.MinQueryLength <= 0 {
		t.MinQueryLength = d.MinQueryLength
	}
	if t.MaxQueryLength <= 0 {
		t.MaxQueryLength = d.MaxQueryLength
	}
	if t.MaxQueryLength < t.MinQueryLength {
		t.MaxQueryLength = t.MinQueryLength
	}
	if t.CandidateCap <= 0 {
		t.CandidateCap = d.CandidateCap
	}
	if t.DefaultPageSize <= 0 {
		t.DefaultPageSize = d.DefaultPageSize
	}
	if t.MaxPageSize <= 0 {
		t.MaxPageSize = d.MaxPageSize
	}
	if t.DefaultPageSize > t.MaxPageSize {
		t.DefaultPageSize = t.MaxPageSize
	}

	w, dw := &t.Weights, d.Weights
	if w.ExactName == 0 {
		w.ExactName = dw.ExactName
	}
	if w.WordSet == 0 {
		w.WordSet = dw.WordSet
	}
	if w.ExactID == 0 {
		w.ExactID = dw.ExactID
	}
	if w.Prefix == 0 {
		w.Prefix = dw.Prefix
	}
	if w.Contains == 0 {
		w.Contains = dw.Contains
	}
	if w.IDContains == 0 {
		w.IDContains = dw.IDContains
	}
	return t
}
