package translit

import (
	"fmt"
	"log/slog"
	"strings"
)

// Expander turns one Latin token into the Devanagari spellings a roll is
// likely to store. It favours recall: the caller ranks the matches.
type Expander struct {
	transliterate func(string) (string, error)
	logger        *slog.Logger
}

func NewExpander(logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		transliterate: Transliterate,
		logger:        logger.With(slog.String("component", "translit")),
	}
}

// Expand returns the distinct spellings for token in generation order. It
// never returns an empty slice and never fails: if transliteration breaks,
// the token itself is the only variant.
func (e *Expander) Expand(token string) []string {
	variants, err := e.expand(token)
	if err != nil {
		e.logger.Debug("transliteration failed, using token verbatim",
			slog.String("token", token),
			slog.String("error", err.Error()))
		return []string{token}
	}
	if len(variants) == 0 {
		return []string{token}
	}
	return variants
}

func (e *Expander) expand(token string) (variants []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			variants = nil
			err = fmt.Errorf("translit: panic: %v", r)
		}
	}()

	seen := make(map[string]bool)
	for _, input := range spellings(token) {
		out, err := e.transliterate(input)
		if err != nil {
			return nil, err
		}
		out = StripTrailingVirama(out)
		if out == "" || seen[out] {
			continue
		}
		seen[out] = true
		variants = append(variants, out)
	}
	return variants, nil
}

// spellings lists the Latin inputs to transliterate for token. Marathi
// drops the final inherent vowel that Latin transcription leaves implicit,
// so "token"+"a" is always tried. Canvassers capitalise names while ITRANS
// is case sensitive, so the lower-cased token is tried as well, together
// with the two common sibilant confusions.
func spellings(token string) []string {
	bases := []string{token}
	lower := strings.ToLower(token)
	if lower != token {
		bases = append(bases, lower)
	}

	var out []string
	for _, base := range bases {
		out = append(out, base, base+"a")
	}

	if strings.Contains(lower, "ksh") || strings.Contains(lower, "xh") || strings.Contains(lower, "ksa") {
		alt := strings.NewReplacer("ksh", "kSh", "xh", "kSh", "ksa", "kSha").Replace(lower)
		out = append(out, alt)
	}
	if strings.Contains(lower, "sh") {
		out = append(out, strings.ReplaceAll(lower, "sh", "Sh"))
	}
	return out
}
