package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minFallbackSentence = 14

// Splitter splits text into sentence-like units.
type Splitter interface {
	Split(text string) []string
}

// RegexSplitter is the deterministic sentence splitter: it breaks after sentence
// punctuation followed by whitespace and at every line break, keeps fragments of at
// least 14 characters and makes sure each ends with terminal punctuation.
type RegexSplitter struct{}

// Split implements ports.SentenceSplitter.
func (RegexSplitter) Split(text string) []string {
	var out []string
	for _, p := range splitBoundaries(strings.TrimSpace(text)) {
		p = NormWS(p)
		if RuneLen(p) < minFallbackSentence {
			continue
		}
		if !HasTerminal(p) {
			p += "."
		}
		out = append(out, p)
	}
	return out
}

// splitBoundaries cuts at whitespace runs that follow . ! ? or contain a newline.
func splitBoundaries(s string) []string {
	var parts []string
	start := 0
	var prev rune
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			prev = r
			i += size
			continue
		}
		j := i
		newline := false
		for j < len(s) {
			rr, sz := utf8.DecodeRuneInString(s[j:])
			if !unicode.IsSpace(rr) {
				break
			}
			if rr == '\n' {
				newline = true
			}
			j += sz
		}
		if newline || prev == '.' || prev == '!' || prev == '?' {
			parts = append(parts, s[start:i])
			start = j
		}
		prev = ' '
		i = j
	}
	return append(parts, s[start:])
}

const (
	cleanMaxChars     = 50_000
	cleanMaxSentences = 20
)

// Clean normalizes whitespace, caps the text length and keeps the first sentences,
// one per line.
func Clean(text string, splitter Splitter) string {
	raw := NormWS(text)
	if raw == "" {
		return ""
	}
	if utf8.RuneCountInString(raw) > cleanMaxChars {
		raw = string([]rune(raw)[:cleanMaxChars])
	}
	var sents []string
	for _, s := range splitter.Split(raw) {
		if s = strings.TrimSpace(s); s != "" {
			sents = append(sents, s)
		}
		if len(sents) == cleanMaxSentences {
			break
		}
	}
	return strings.Join(sents, "\n")
}
