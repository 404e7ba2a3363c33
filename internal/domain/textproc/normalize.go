// Package textproc holds the text helpers shared by the summarizer, the
// enhancement engine and the privacy checks: whitespace normalization,
// tokenization, similarity, clipping and line-shape heuristics.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormWS collapses all whitespace runs to single spaces and drops bullet glyphs.
func NormWS(s string) string {
	s = strings.ReplaceAll(s, "•", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Fold lowercases s after compatibility decomposition with combining marks removed,
// so "Confidéntial" and "ｃｏｎｆｉｄｅｎｔｉａｌ" both fold to "confidential".
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Clip normalizes whitespace and truncates to n runes, ending with "..." when cut.
func Clip(s string, n int) string {
	s = NormWS(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	cut := n - 3
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace) + "..."
}

// RuneLen is the character length used by every length threshold.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TitleCase upper-cases the first letter of every letter run and lower-cases the rest.
func TitleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			sb.WriteRune(unicode.ToUpper(r))
		case isLetter:
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return sb.String()
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// HasTerminal reports whether s ends in sentence punctuation.
func HasTerminal(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
