// Package translit converts Latin (ITRANS) spellings of Marathi names into
// Devanagari and expands a typed token into the spellings a voter roll is
// likely to contain.
package translit

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyInput     = errors.New("translit: empty input")
	ErrNoLatinLetters = errors.New("translit: input has no latin letters")
)

// Virama suppresses the inherent vowel of the preceding consonant.
const Virama = "्"

type vowel struct {
	independent string
	sign        string // dependent form after a consonant; "" for the inherent a
}

var vowels = map[string]vowel{
	"a":   {"अ", ""},
	"aa":  {"आ", "ा"},
	"A":   {"आ", "ा"},
	"i":   {"इ", "ि"},
	"ii":  {"ई", "ी"},
	"I":   {"ई", "ी"},
	"ee":  {"ई", "ी"},
	"u":   {"उ", "ु"},
	"uu":  {"ऊ", "ू"},
	"U":   {"ऊ", "ू"},
	"oo":  {"ऊ", "ू"},
	"RRi": {"ऋ", "ृ"},
	"R^i": {"ऋ", "ृ"},
	"RRI": {"ॠ", "ॄ"},
	"R^I": {"ॠ", "ॄ"},
	"e":   {"ए", "े"},
	"ai":  {"ऐ", "ै"},
	"o":   {"ओ", "ो"},
	"au":  {"औ", "ौ"},
}

var consonants = map[string]string{
	"k": "क", "kh": "ख", "g": "ग", "gh": "घ", "~N": "ङ",
	"c": "च", "ch": "च", "Ch": "छ", "chh": "छ", "j": "ज", "jh": "झ", "~n": "ञ",
	"T": "ट", "Th": "ठ", "D": "ड", "Dh": "ढ", "N": "ण",
	"t": "त", "th": "थ", "d": "द", "dh": "ध", "n": "न",
	"p": "प", "ph": "फ", "b": "ब", "bh": "भ", "m": "म",
	"y": "य", "r": "र", "l": "ल", "v": "व", "w": "व",
	"sh": "श", "Sh": "ष", "shh": "ष", "s": "स", "h": "ह",
	"L": "ळ",
	"x": "क्ष", "kSh": "क्ष", "j~n": "ज्ञ", "GY": "ज्ञ", "dny": "ज्ञ",
	"q": "क़", "K": "ख़", "G": "ग़", "z": "ज़", "J": "ज़", "f": "फ़",
	".D": "ड़", ".Dh": "ढ़",
}

var modifiers = map[string]string{
	"M":  "ं",
	".n": "ं",
	".m": "ं",
	"H":  "ः",
	".N": "ँ",
	".a": "ऽ",
}

type tokenKind int

const (
	kindVowel tokenKind = iota
	kindConsonant
	kindModifier
)

type token struct {
	latin string
	kind  tokenKind
}

// tokens holds every scheme key, longest first, so that a greedy scan picks
// "kSh" over "k" and "aa" over "a".
var tokens = buildTokens()

func buildTokens() []token {
	var out []token
	for k := range vowels {
		out = append(out, token{k, kindVowel})
	}
	for k := range consonants {
		out = append(out, token{k, kindConsonant})
	}
	for k := range modifiers {
		out = append(out, token{k, kindModifier})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].latin) != len(out[j].latin) {
			return len(out[i].latin) > len(out[j].latin)
		}
		return out[i].latin < out[j].latin
	})
	return out
}

func match(s string) (token, bool) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.latin) {
			return t, true
		}
	}
	return token{}, false
}

// Transliterate renders ITRANS input as Devanagari. The scheme is case
// sensitive ("t" is त, "T" is ट). Characters outside the scheme pass through
// unchanged, except that invalid UTF-8 becomes U+FFFD. A consonant not
// followed by a vowel keeps an explicit virama.
func Transliterate(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if !hasLatinLetter(input) {
		return "", ErrNoLatinLetters
	}

	var b strings.Builder
	pending := false // last emitted glyph is a consonant still carrying its inherent vowel

	closeConsonant := func() {
		if pending {
			b.WriteString(Virama)
			pending = false
		}
	}

	for i := 0; i < len(input); {
		t, ok := match(input[i:])
		if !ok {
			closeConsonant()
			r, size := utf8.DecodeRuneInString(input[i:])
			b.WriteRune(r)
			i += size
			continue
		}

		switch t.kind {
		case kindConsonant:
			closeConsonant()
			b.WriteString(consonants[t.latin])
			pending = true
		case kindVowel:
			v := vowels[t.latin]
			if pending {
				b.WriteString(v.sign)
				pending = false
			} else {
				b.WriteString(v.independent)
			}
		case kindModifier:
			pending = false
			b.WriteString(modifiers[t.latin])
		}
		i += len(t.latin)
	}
	closeConsonant()

	return b.String(), nil
}

// StripTrailingVirama drops a dangling virama from the end of every word.
func StripTrailingVirama(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.TrimSuffix(w, Virama)
	}
	return strings.Join(words, " ")
}

func hasLatinLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
