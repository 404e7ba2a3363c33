package textproc

import (
	"regexp"
	"strings"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the a an and or but if then else to of in on for with
		is are was were be been being this that these those it its
		as at by from into about over under we you i they he she
		my your our their me him her them`) {
		stopwords[w] = struct{}{}
	}
}

var wordRe = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9_+\-./#]{1,}\b`)

// IsStopword reports whether w (lowercase) is a function word ignored by scoring.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Tokens returns the lowercase content words of s in order, stopwords removed.
func Tokens(s string) []string {
	words := wordRe.FindAllString(s, -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if len(w) < 2 || IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Set is a token set.
type Set map[string]struct{}

// NewSet builds a set from tokens.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Jaccard is |a∩b| / |a∪b|, zero when either side is empty.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// TooSimilar reports whether s exceeds threshold against any of the given sets.
func TooSimilar(s Set, others []Set, threshold float64) bool {
	for _, o := range others {
		if Jaccard(s, o) > threshold {
			return true
		}
	}
	return false
}
