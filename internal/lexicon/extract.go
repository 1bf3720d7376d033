package lexicon

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	propertyIDPattern = regexp.MustCompile(`prop_\w+|property[_\s]\w+`)
)

// Numbers returns every digit run (with optional decimal fraction) in text,
// left to right. "450,000" yields 450 and 0.
func Numbers(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Location returns the first gazetteer entry contained in text, title-cased.
// Containment is plain substring matching, so "houston" inside an unrelated
// word still matches.
func Location(text string, gazetteer []string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, place := range gazetteer {
		if strings.Contains(lowered, place) {
			return titleCase(place), true
		}
	}
	return "", false
}

// PropertyID finds a "prop_<word>" or "property <word>" token in the
// lower-cased text and returns the whole match.
func PropertyID(text string) (string, bool) {
	m := propertyIDPattern.FindString(strings.ToLower(text))
	return m, m != ""
}

// ContainsAny reports whether lowered contains any keyword.
func ContainsAny(lowered string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// CountMatches returns how many keywords lowered contains.
func CountMatches(lowered string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lowered, k) {
			n++
		}
	}
	return n
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
