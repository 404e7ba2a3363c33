// Package enhance rewrites or tailors document content into role-aware bullets.
// Every bullet comes from an existing input line; the engine only reframes wording
// and never adds facts. Externally sourced keywords stay in their own block.
package enhance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

const (
	DocTypeCV       = "cv"
	DocTypeDocument = "document"

	Title         = "Offline enhancement (template-based, local-only)"
	KeywordsTitle = "## Role keywords (general, from Internet Layer)"
	OtherTitle    = "## Other technical items found in the document"
)

const (
	minJunkLen     = 4
	minBulletItem  = 10
	minSentence    = 18
	roleSelected   = 18
	roleFallback   = 12
	tailorSelected = 14
	otherSelected  = 10
	maxKeywordLen  = 60
	maxKeywords    = 24
	maxOtherLen    = 160
	maxOtherItems  = 10
)

var (
	emailRe  = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phoneRe  = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	urlRe    = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|➢|›|»|o)\s+(.*)$`)
	junkRe   = regexp.MustCompile(`(?i)^\s*(?:\[REDACTED_[A-Z_]+\]|(?:linkedin|leetcode)\b.*)\s*$`)
	verbRe   = regexp.MustCompile(`(?i)^(built|developed|implemented|designed|integrated|automated|optimized|tested|secured|maintained)\b`)
	clauseRe = regexp.MustCompile(` \|\s+|;\s+`)
	stopRe   = regexp.MustCompile(`([.!?])\s+`)
	kwPrefix = regexp.MustCompile(`^[#>\-*•]+\s*`)

	noiseLines = map[string]bool{"curriculum vitae": true, "resume": true, "cv": true}
	kwOpeners  = []string{"certainly", "here's", "responsibilities", "skills", "tools"}
)

// Request carries everything one enhancement needs.
type Request struct {
	Intent    entities.Intent
	UserText  string // instruction only, used for role inference
	Context   string // redacted document text, layout preserved
	Knowledge string // optional external knowledge text
}

// Enhance runs the template engine.
func Enhance(req Request) entities.EnhancementResult {
	docType := DetectDocType(req.Context)
	role, hasRole := lookupRole(req.UserText)

	var bullets, sentences []string
	for _, sec := range splitSections(req.Context) {
		b, s := extractItems(sec.Lines)
		bullets = append(bullets, b...)
		sentences = append(sentences, s...)
	}
	pool := append(append([]string{}, bullets...), sentences...)

	selected := selectLines(pool, req.Intent, role, hasRole)
	rewritten := make([]string, 0, len(selected))
	for _, line := range selected {
		rewritten = append(rewritten, rewriteLine(line, role, hasRole))
	}

	keywords := KeywordsFromKnowledge(req.Knowledge)

	var sb strings.Builder
	sb.WriteString(Title + "\n")
	if docType == DocTypeCV {
		fmt.Fprintf(&sb, "\nDetected document type: %s\n", docType)
		if hasRole {
			fmt.Fprintf(&sb, "Target role: %s\n", role.Name)
		}
	}
	fmt.Fprintf(&sb, "\nQuick improvement summary:\n- rewrote %d bullet(s)\n", len(rewritten))
	sb.WriteString(strings.Join(rewritten, "\n"))
	sb.WriteString("\n\n")
	if docType == DocTypeCV {
		if other := otherItems(bullets); len(other) > 0 {
			sb.WriteString(formatBlock(OtherTitle, other) + "\n")
		}
	}
	if len(keywords) > 0 {
		sb.WriteString(formatBlock(KeywordsTitle, keywords))
	}

	res := entities.EnhancementResult{
		Text:     strings.TrimSpace(sb.String()) + "\n",
		DocType:  docType,
		Bullets:  len(rewritten),
		Keywords: len(keywords),
	}
	if hasRole {
		res.Role = role.Name
	}
	return res
}

// DetectDocType is a light CV heuristic.
func DetectDocType(text string) string {
	low := strings.ToLower(text)
	if strings.Contains(low, "education") && strings.Contains(low, "skills") &&
		(strings.Contains(low, "experience") || strings.Contains(low, "projects")) {
		return DocTypeCV
	}
	return DocTypeDocument
}

func isHeading(line string) bool {
	if bulletRe.MatchString(strings.TrimSpace(line)) {
		return false
	}
	return textproc.HeadingShaped(line)
}

// splitSections groups lines by heading. With fewer than two distinct headings the
// whole document is one section.
func splitSections(text string) []textproc.Section {
	sections, _ := textproc.SplitSections(text, isHeading)
	if len(sections)-1 < 2 {
		return []textproc.Section{{Name: textproc.DefaultSection, Lines: textproc.Lines(text)}}
	}
	return sections
}

func looksLikeContact(line string) bool {
	if emailRe.MatchString(line) || phoneRe.MatchString(line) {
		return true
	}
	low := strings.ToLower(line)
	return urlRe.MatchString(line) && (strings.Contains(low, "linkedin") || strings.Contains(low, "leetcode"))
}

func isJunk(line string) bool {
	s := textproc.NormWS(line)
	return s == "" ||
		looksLikeContact(s) ||
		junkRe.MatchString(s) ||
		textproc.RuneLen(s) < minJunkLen ||
		noiseLines[strings.ToLower(s)]
}

// hasContent reports whether the line carries at least one content token.
func hasContent(s string) bool {
	return len(textproc.Tokens(s)) > 0
}

// extractItems splits lines into bullet items and sentence-like clauses.
func extractItems(lines []string) (bullets, sentences []string) {
	for _, line := range lines {
		if isJunk(line) {
			continue
		}
		if m := bulletRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			item := textproc.NormWS(m[1])
			if textproc.RuneLen(item) >= minBulletItem && hasContent(item) {
				bullets = append(bullets, item)
			}
			continue
		}
		for _, p := range splitClauses(textproc.NormWS(line)) {
			p = textproc.NormWS(p)
			if textproc.RuneLen(p) >= minSentence && !looksLikeContact(p) && hasContent(p) {
				sentences = append(sentences, p)
			}
		}
	}
	return bullets, sentences
}

// splitClauses breaks after sentence punctuation, at " | " separators and at semicolons.
func splitClauses(s string) []string {
	s = stopRe.ReplaceAllString(s, "$1\x00")
	s = clauseRe.ReplaceAllString(s, "\x00")
	return strings.Split(s, "\x00")
}

func selectLines(pool []string, intent entities.Intent, role Role, hasRole bool) []string {
	if !intent.IsRewriteFamily() {
		return head(pool, otherSelected)
	}
	if !hasRole {
		return head(pool, tailorSelected)
	}

	type scored struct {
		line  string
		score int
		size  int
	}
	ranked := make([]scored, len(pool))
	for i, l := range pool {
		ranked[i] = scored{line: l, score: role.relevance(l), size: textproc.RuneLen(l)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].size > ranked[b].size
	})

	var out []string
	for _, r := range ranked {
		if r.score > 0 && len(out) < roleSelected {
			out = append(out, r.line)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, r := range head(ranked, roleFallback) {
		out = append(out, r.line)
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// rewriteLine reframes one line. Lines that already open with a strong verb are kept;
// otherwise a role template (picked by length) or a generic frame wraps the text.
func rewriteLine(line string, role Role, hasRole bool) string {
	s := textproc.NormWS(line)
	if s == "" {
		return s
	}
	if verbRe.MatchString(s) {
		return "- " + textproc.UpperFirst(s)
	}
	if hasRole && len(role.Templates) > 0 {
		tpl := role.Templates[textproc.RuneLen(s)%len(role.Templates)]
		x := strings.TrimRight(textproc.LowerFirst(s), ".!?")
		return "- " + strings.Replace(tpl, "{x}", x, 1)
	}
	return "- Contributed to " + textproc.LowerFirst(s)
}

// KeywordsFromKnowledge pulls short, list-like items out of external knowledge text.
func KeywordsFromKnowledge(knowledge string) []string {
	if strings.TrimSpace(knowledge) == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, l := range strings.Split(knowledge, "\n") {
		l = strings.TrimSpace(kwPrefix.ReplaceAllString(strings.TrimSpace(l), ""))
		if l == "" || textproc.RuneLen(l) > maxKeywordLen || hasOpener(l) {
			continue
		}
		key := strings.ToLower(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func hasOpener(l string) bool {
	low := strings.ToLower(l)
	for _, o := range kwOpeners {
		if strings.HasPrefix(low, o) {
			return true
		}
	}
	return false
}

// otherItems keeps comma-separated bullet lines, typically skill lists.
func otherItems(bullets []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range bullets {
		if !strings.Contains(b, ",") || textproc.RuneLen(b) > maxOtherLen {
			continue
		}
		b = textproc.NormWS(b)
		if seen[strings.ToLower(b)] {
			continue
		}
		seen[strings.ToLower(b)] = true
		out = append(out, b)
		if len(out) == maxOtherItems {
			break
		}
	}
	return out
}

func formatBlock(title string, items []string) string {
	var sb strings.Builder
	sb.WriteString(title + "\n")
	for _, it := range items {
		sb.WriteString("- " + it + "\n")
	}
	return sb.String()
}
