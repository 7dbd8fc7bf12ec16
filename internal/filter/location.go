package filter

import (
	"strings"
	"unicode"
)

// abbreviations maps common short forms to the place names they stand for.
var abbreviations = map[string][]string{
	"ny":     {"new york"},
	"nyc":    {"new york"},
	"sf":     {"san francisco"},
	"sfo":    {"san francisco"},
	"la":     {"los angeles"},
	"dc":     {"washington"},
	"chi":    {"chicago"},
	"atl":    {"atlanta"},
	"bos":    {"boston"},
	"sea":    {"seattle"},
	"philly": {"philadelphia"},
	"nola":   {"new orleans"},
	"slc":    {"salt lake city"},
	"pdx":    {"portland"},
	"atx":    {"austin"},
	"uk":     {"united kingdom", "england", "london"},
	"us":     {"united states", "usa"},
	"usa":    {"united states"},
}

// reverse maps each place name back to its short forms.
var reverse = func() map[string][]string {
	out := make(map[string][]string)
	for abbr, names := range abbreviations {
		for _, name := range names {
			out[name] = append(out[name], abbr)
		}
	}
	return out
}()

// Terms is the expanded form of a location query. Phrases match as
// case-insensitive substrings; Tokens must match a whole word.
type Terms struct {
	Phrases []string
	Tokens  []string
}

// Empty reports whether the query carried no location.
func (t Terms) Empty() bool {
	return len(t.Phrases) == 0 && len(t.Tokens) == 0
}

// LocationTerms expands a location query. Short forms such as "NY" or
// "SF" add the full place name, and full names add their short forms.
func LocationTerms(query string) Terms {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Terms{}
	}
	var t Terms
	if names, ok := abbreviations[q]; ok {
		t.Tokens = append(t.Tokens, q)
		t.Phrases = append(t.Phrases, names...)
		return t
	}
	t.Phrases = append(t.Phrases, q)
	if abbrs, ok := reverse[q]; ok {
		t.Tokens = append(t.Tokens, abbrs...)
	}
	return t
}

// Matches reports whether location satisfies the terms.
func (t Terms) Matches(location string) bool {
	lower := strings.ToLower(location)
	for _, p := range t.Phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	if len(t.Tokens) == 0 {
		return false
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		for _, tok := range t.Tokens {
			if w == tok {
				return true
			}
		}
	}
	return false
}
