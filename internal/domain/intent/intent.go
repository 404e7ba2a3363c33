// Package intent maps free user text to one task label.
package intent

import (
	"regexp"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

var (
	smalltalkRe = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|yo|thanks|thank you|ok|okay|cool|nice|good|great|bye|goodbye)\s*[!.]*\s*$`)
	summarizeRe = regexp.MustCompile(`(?i)\b(summarize|summarise|summary|tl;dr|tldr)\b`)
	rewriteRe   = regexp.MustCompile(`(?i)\b(rewrite|rephrase|improve|polish|correct|enhance|tailor|bulletize|bulletise)\b`)
	searchRe    = regexp.MustCompile(`(?i)\b(find|search|locate|look for)\b`)
	fileHintRe  = regexp.MustCompile(`(?i)\bfile\s*:\s*(?:".+?"|\S+)|\bfile\s*"`)

	tailorRe    = regexp.MustCompile(`(?i)\btailor(?:ed|ing)?\b`)
	bulletizeRe = regexp.MustCompile(`(?i)\bbulleti[sz]e\b`)
	improveRe   = regexp.MustCompile(`(?i)\b(improve|polish|enhance)\b`)
)

// Classify runs the ordered cascade; the first matching rule wins.
// Summarize is checked before search so "summarize and find key points" summarizes.
func Classify(text string) entities.Intent {
	t := strings.TrimSpace(text)
	switch {
	case smalltalkRe.MatchString(t):
		return entities.IntentSmalltalk
	case summarizeRe.MatchString(t):
		return entities.IntentSummarize
	case rewriteRe.MatchString(t):
		return rewriteFamily(t)
	case searchRe.MatchString(t), fileHintRe.MatchString(t):
		return entities.IntentFileSearch
	}
	return entities.IntentGeneralQuestion
}

func rewriteFamily(t string) entities.Intent {
	switch {
	case tailorRe.MatchString(t):
		return entities.IntentTailor
	case bulletizeRe.MatchString(t):
		return entities.IntentBulletize
	case improveRe.MatchString(t):
		return entities.IntentImprove
	}
	return entities.IntentRewrite
}

// HasFileDirective reports whether text names a file explicitly, e.g. file:"cv.pdf".
func HasFileDirective(text string) bool {
	return fileHintRe.MatchString(text)
}
