// Package terms pulls non-personal role and topic terms out of the user's own text.
package terms

import (
	"regexp"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

const (
	maxRoles  = 5
	maxTopics = 12
)

var (
	roleRe  = regexp.MustCompile(`(?i)\b(software engineer|devops|cloud engineer|data scientist|product manager|student|researcher|intern)\b`)
	topicRe = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9\-_]{2,}\b`)
)

// Extract returns recognized roles in first-seen order and word-like topic candidates,
// both deduplicated case-insensitively.
func Extract(text string) entities.PublicTerms {
	pt := entities.PublicTerms{Roles: []string{}, Topics: []string{}}

	seen := map[string]bool{}
	for _, m := range roleRe.FindAllStringSubmatch(text, -1) {
		role := strings.ToLower(m[1])
		if seen[role] {
			continue
		}
		seen[role] = true
		pt.Roles = append(pt.Roles, role)
		if len(pt.Roles) == maxRoles {
			break
		}
	}

	seen = map[string]bool{}
	for _, w := range topicRe.FindAllString(text, -1) {
		key := strings.ToLower(w)
		if seen[key] || textproc.IsStopword(key) {
			continue
		}
		seen[key] = true
		pt.Topics = append(pt.Topics, w)
		if len(pt.Topics) == maxTopics {
			break
		}
	}
	return pt
}
