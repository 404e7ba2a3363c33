package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultSection names the text that precedes any heading.
const DefaultSection = "Document"

var (
	lineSplitRe  = regexp.MustCompile(`\r?\n+`)
	bulletRe     = regexp.MustCompile(`^\s*(?:[-*•]|➢|›|»)\s+`)
	headingRe    = regexp.MustCompile(`^\s*([A-Z][A-Z0-9 &/\-]{3,}|[A-Z][a-zA-Z ]{2,})\s*:?\s*$`)
	maxHeadingLn = 70
)

// Lines splits on newline runs and drops blank lines; each line is right-trimmed.
func Lines(s string) []string {
	parts := lineSplitRe.Split(strings.TrimSpace(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.TrimRightFunc(p, unicode.IsSpace))
	}
	return out
}

// IsBullet reports whether the line starts with a bullet glyph followed by space.
func IsBullet(line string) bool {
	return bulletRe.MatchString(line)
}

// StripBullet removes a leading bullet glyph.
func StripBullet(line string) string {
	return bulletRe.ReplaceAllString(line, "")
}

// HeadingShaped reports whether a trimmed line is short, all-caps or title-like and
// carries no trailing sentence punctuation. Bullet detection is left to the caller.
func HeadingShaped(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || RuneLen(s) > maxHeadingLn {
		return false
	}
	return headingRe.MatchString(s)
}

// IsHeading is HeadingShaped for lines that are not bullets.
func IsHeading(line string) bool {
	if IsBullet(strings.TrimSpace(line)) {
		return false
	}
	return HeadingShaped(line)
}

// HeadingName turns a heading line into a section name.
func HeadingName(line string) string {
	return TitleCase(strings.TrimRight(strings.TrimSpace(line), ":"))
}

// Section is one named run of lines.
type Section struct {
	Name  string
	Lines []string
}

// SplitSections groups lines under the most recent heading. Lines before the first
// heading go to DefaultSection. A repeated heading appends to its first section.
// It also returns how many heading lines were seen.
func SplitSections(text string, isHeading func(string) bool) ([]Section, int) {
	sections := []Section{{Name: DefaultSection}}
	index := map[string]int{DefaultSection: 0}
	current := 0
	headings := 0

	for _, line := range Lines(text) {
		if isHeading(line) {
			headings++
			name := HeadingName(line)
			i, ok := index[name]
			if !ok {
				i = len(sections)
				index[name] = i
				sections = append(sections, Section{Name: name})
			}
			current = i
			continue
		}
		sections[current].Lines = append(sections[current].Lines, line)
	}
	return sections, headings
}

// ChunkWords splits text into overlapping windows of size words.
func ChunkWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{strings.Join(words, " ")}
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}
	var out []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
