// Package summarize builds layered extractive summaries: executive bullets,
// per-section bullets and chunk-by-chunk coverage lines, all selected from the
// document's own sentences with no model call.
package summarize

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

// Detail selects how much output is produced.
type Detail string

const (
	DetailFull    Detail = "full"
	DetailReduced Detail = "reduced"
)

// Style is the layout class of a document.
type Style string

const (
	StyleSectioned Style = "sectioned"
	StyleListHeavy Style = "list-heavy"
	StyleGeneric   Style = "generic"
)

// Fixed selection constants.
const (
	execSimilarity     = 0.45
	sectionSimilarity  = 0.55
	coverageSimilarity = 0.60

	execClip     = 220
	sectionClip  = 230
	coverageClip = 260
	synopsisClip = 360
	synopsisPart = 120

	minLineSentence   = 18
	minFallbackBullet = 30
	fallbackPool      = 12
	fallbackMax       = 6

	sectionBoost     = 1.08
	longUnitTokens   = 14
	longUnitPenalty  = 0.90
	coveragePosition = 0.35

	minHeadingsSectioned = 3
	minHeadingsSplit     = 2
	listHeavyRatio       = 0.35

	shortChars = 1200
	shortWords = 200
)

// Warning texts surfaced with the summary.
const (
	WarnEmpty       = "No text to summarize."
	WarnShort       = "Extracted text looks short. If the document is scanned or layout-heavy, OCR may be needed for full coverage."
	WarnNoSentences = "No sentences detected."
	WarnNoCoverage  = "Could not produce chunk coverage lines (document may be very short or extremely list-heavy)."
)

type budget struct {
	execTarget    int
	perSection    int
	windowWords   int
	windowOverlap int
	maxWindows    int
}

func (d Detail) budget() budget {
	if d == DetailReduced {
		return budget{execTarget: 6, perSection: 2, windowWords: 380, windowOverlap: 40, maxWindows: 8}
	}
	return budget{execTarget: 10, perSection: 3, windowWords: 260, windowOverlap: 70, maxWindows: 14}
}

func (d Detail) normalize() Detail {
	if d == DetailReduced {
		return DetailReduced
	}
	return DetailFull
}

// Summarizer produces extractive summaries. The sentence splitter is injected so
// tests can use the deterministic regex splitter.
type Summarizer struct {
	splitter textproc.Splitter
}

// New creates a Summarizer. A nil splitter falls back to textproc.RegexSplitter.
func New(splitter textproc.Splitter) *Summarizer {
	if splitter == nil {
		splitter = textproc.RegexSplitter{}
	}
	return &Summarizer{splitter: splitter}
}

type unit struct {
	section string
	text    string
	tokens  []string
	set     textproc.Set
}

type section struct {
	name string
	text string
}

// Summarize builds the summary of text. Empty input yields a summary carrying only a
// warning, never an error. Output depends only on text and detail.
func (s *Summarizer) Summarize(text string, detail Detail) entities.Summary {
	detail = detail.normalize()
	b := detail.budget()

	raw := strings.TrimSpace(text)
	if raw == "" {
		return entities.Summary{Stats: "empty_text", Warnings: []string{WarnEmpty}}
	}

	totalWords := len(strings.Fields(raw))
	totalChars := textproc.RuneLen(raw)

	var warnings []string
	if totalChars < shortChars || totalWords < shortWords {
		warnings = append(warnings, WarnShort)
	}

	style := DetectStyle(raw)
	sections := splitSections(raw)

	units := s.buildPool(sections, style)
	if len(units) == 0 {
		return entities.Summary{
			Stats:    fmt.Sprintf("words=%d chars=%d", totalWords, totalChars),
			Warnings: append(warnings, WarnNoSentences),
		}
	}

	idf := buildIDF(units)
	order := rank(units, idf, style)

	execBullets, execSets := pickExecutive(units, order, b.execTarget)

	var sectionBullets []entities.SectionHighlights
	var sectionSets []textproc.Set
	if style == StyleSectioned {
		sectionBullets, sectionSets = pickSections(units, order, sections, b.perSection)
	}

	avoid := append(append([]textproc.Set{}, execSets...), sectionSets...)
	coverage, windows := s.cover(raw, style, idf, avoid, b)
	if len(coverage) == 0 {
		warnings = append(warnings, WarnNoCoverage)
	}

	return entities.Summary{
		ExecutiveBullets: execBullets,
		Sections:         sectionBullets,
		Coverage:         coverage,
		Short:            synopsis(execBullets),
		Stats: fmt.Sprintf("words=%d chars=%d style=%s sections=%d chunks=%d detail=%s",
			totalWords, totalChars, style, len(sections), windows, detail),
		Warnings: warnings,
	}
}

// DetectStyle classifies the document layout from line shapes.
func DetectStyle(raw string) Style {
	lines := textproc.Lines(raw)
	if len(lines) == 0 {
		return StyleGeneric
	}
	headings, bullets := 0, 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if textproc.IsHeading(l) {
			headings++
		}
		if textproc.IsBullet(l) {
			bullets++
		}
	}
	switch {
	case headings >= minHeadingsSectioned:
		return StyleSectioned
	case float64(bullets)/float64(len(lines)) >= listHeavyRatio:
		return StyleListHeavy
	}
	return StyleGeneric
}

func splitSections(raw string) []section {
	parts, headings := textproc.SplitSections(raw, textproc.IsHeading)
	whole := []section{{name: textproc.DefaultSection, text: raw}}
	if headings < minHeadingsSplit {
		return whole
	}
	var out []section
	for _, p := range parts {
		body := strings.TrimSpace(strings.Join(p.Lines, "\n"))
		if body == "" {
			continue
		}
		out = append(out, section{name: p.Name, text: body})
	}
	if len(out) == 0 {
		return whole
	}
	return out
}

func (s *Summarizer) sentences(text string) []string {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	return s.splitter.Split(t)
}

// lineSentences treats each line as a candidate; list-heavy documents read better by line.
func lineSentences(text string) []string {
	var out []string
	for _, l := range textproc.Lines(text) {
		l = textproc.NormWS(textproc.StripBullet(strings.TrimSpace(l)))
		if textproc.RuneLen(l) < minLineSentence {
			continue
		}
		if !textproc.HasTerminal(l) {
			l += "."
		}
		out = append(out, l)
	}
	return out
}

func (s *Summarizer) candidates(text string, style Style) []string {
	out := s.sentences(text)
	if style == StyleListHeavy {
		out = append(out, lineSentences(text)...)
	}
	return out
}

func (s *Summarizer) buildPool(sections []section, style Style) []unit {
	seen := map[string]bool{}
	var units []unit
	for _, sec := range sections {
		for _, sent := range s.candidates(sec.text, style) {
			key := strings.ToLower(textproc.NormWS(sent))
			if seen[key] {
				continue
			}
			seen[key] = true
			toks := textproc.Tokens(sent)
			units = append(units, unit{section: sec.name, text: sent, tokens: toks, set: textproc.NewSet(toks)})
		}
	}
	return units
}

type idfTable map[string]float64

func buildIDF(units []unit) idfTable {
	df := map[string]int{}
	for _, u := range units {
		for t := range u.set {
			df[t]++
		}
	}
	n := float64(len(units))
	idf := make(idfTable, len(df))
	for t, c := range df {
		idf[t] = math.Log((n+1)/(float64(c)+1)) + 1
	}
	return idf
}

func (idf idfTable) get(t string) float64 {
	if v, ok := idf[t]; ok {
		return v
	}
	return 1
}

// score is length-normalized log-tf·idf with an early-position boost and a
// penalty for very long units. Terms are summed in first-occurrence order.
func score(tokens []string, idf idfTable, position float64) float64 {
	if len(tokens) == 0 {
		return 0
	}
	tf := map[string]int{}
	var order []string
	for _, t := range tokens {
		if tf[t] == 0 {
			order = append(order, t)
		}
		tf[t]++
	}
	sc := 0.0
	for _, t := range order {
		sc += (1 + math.Log(float64(tf[t]))) * idf.get(t)
	}
	sc /= math.Max(1e-9, math.Sqrt(float64(len(tokens))))
	sc *= 1.10 - 0.25*position
	if len(tokens) > longUnitTokens {
		sc *= longUnitPenalty
	}
	return sc
}

// rank returns unit indices by descending score; ties keep document order.
func rank(units []unit, idf idfTable, style Style) []int {
	scores := make([]float64, len(units))
	denom := float64(len(units) - 1)
	if denom < 1 {
		denom = 1
	}
	for i, u := range units {
		sc := score(u.tokens, idf, float64(i)/denom)
		if style == StyleSectioned && u.section != textproc.DefaultSection {
			sc *= sectionBoost
		}
		scores[i] = sc
	}
	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

func pickExecutive(units []unit, order []int, target int) ([]string, []textproc.Set) {
	var bullets []string
	var used []textproc.Set
	for _, idx := range order {
		if len(bullets) >= target {
			break
		}
		u := units[idx]
		if len(u.set) == 0 || textproc.TooSimilar(u.set, used, execSimilarity) {
			continue
		}
		bullets = append(bullets, "- "+textproc.Clip(u.text, execClip))
		used = append(used, u.set)
	}
	if len(bullets) > 0 {
		return bullets, used
	}

	// Degenerate input: no unit carried content tokens.
	limit := target
	if limit > fallbackMax {
		limit = fallbackMax
	}
	for i := 0; i < len(units) && i < fallbackPool; i++ {
		c := textproc.Clip(units[i].text, execClip)
		if textproc.RuneLen(c) >= minFallbackBullet {
			bullets = append(bullets, "- "+c)
		}
		if len(bullets) >= limit {
			break
		}
	}
	return bullets, used
}

func pickSections(units []unit, order []int, sections []section, perSection int) ([]entities.SectionHighlights, []textproc.Set) {
	bySection := map[string][]int{}
	for _, idx := range order {
		name := units[idx].section
		bySection[name] = append(bySection[name], idx)
	}

	var out []entities.SectionHighlights
	var all []textproc.Set
	for _, sec := range sections {
		var picks []string
		var used []textproc.Set
		for _, idx := range bySection[sec.name] {
			if len(picks) >= perSection {
				break
			}
			u := units[idx]
			if len(u.set) == 0 || textproc.TooSimilar(u.set, used, sectionSimilarity) {
				continue
			}
			picks = append(picks, "- "+textproc.Clip(u.text, sectionClip))
			used = append(used, u.set)
		}
		if len(picks) > 0 {
			out = append(out, entities.SectionHighlights{Name: sec.name, Bullets: picks})
			all = append(all, used...)
		}
	}
	return out, all
}

func synopsis(bullets []string) string {
	var parts []string
	for i, b := range bullets {
		if i == 3 {
			break
		}
		parts = append(parts, textproc.Clip(strings.TrimPrefix(b, "- "), synopsisPart))
	}
	return textproc.Clip(strings.Join(parts, " "), synopsisClip)
}

// windows cuts raw into overlapping word windows and evenly resamples them down to max.
func windows(raw string, b budget) []string {
	chunks := textproc.ChunkWords(raw, b.windowWords, b.windowOverlap)
	if len(chunks) <= b.maxWindows {
		return chunks
	}
	out := make([]string, b.maxWindows)
	last := float64(len(chunks) - 1)
	for i := range out {
		idx := int(math.RoundToEven(float64(i) * last / float64(b.maxWindows-1)))
		out[i] = chunks[idx]
	}
	return out
}

// cover picks one representative sentence per window, steering away from anything
// already emitted. It returns the lines and the number of windows considered.
func (s *Summarizer) cover(raw string, style Style, idf idfTable, avoid []textproc.Set, b budget) ([]string, int) {
	chunks := windows(raw, b)
	var lines []string
	for ci, chunk := range chunks {
		cands := s.candidates(chunk, style)
		best := bestSentence(cands, idf, avoid, true)
		if best == "" {
			best = bestSentence(cands, idf, nil, false)
		}
		if best == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("Chunk %d: %s", ci+1, textproc.Clip(best, coverageClip)))
		avoid = append(avoid, textproc.NewSet(textproc.Tokens(best)))
	}
	return lines, len(chunks)
}

func bestSentence(cands []string, idf idfTable, avoid []textproc.Set, filter bool) string {
	best := ""
	bestScore := -1.0
	for _, c := range cands {
		toks := textproc.Tokens(c)
		if len(toks) == 0 {
			continue
		}
		if filter && textproc.TooSimilar(textproc.NewSet(toks), avoid, coverageSimilarity) {
			continue
		}
		if sc := score(toks, idf, coveragePosition); sc > bestScore {
			bestScore = sc
			best = c
		}
	}
	return best
}
