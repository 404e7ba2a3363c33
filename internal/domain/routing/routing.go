// Package routing decides whether a request may reach the external knowledge
// service and builds the only text that is ever sent there. Queries are composed
// from fixed vocabularies; user and document text never flow into them.
package routing

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// Plan reasons.
const (
	ReasonSensitive     = "sensitive_request"
	ReasonNoConsent     = "no_cloud_consent"
	ReasonSummarizeOnly = "summarize_is_local_only"
	ReasonCloudEligible = "cloud_eligible_sanitized"
)

const (
	defaultRole  = "user"
	defaultTopic = "the topic"
	maxTopicHint = 6

	KnowledgeHeading = "## General role-aligned keywords (from Internet Layer)"
)

// publicTopics is the vocabulary a topic must belong to before it can appear in a query.
var publicTopics = map[string]bool{}

func init() {
	for _, t := range strings.Fields(`security cybersecurity privacy gdpr compliance encryption
		cloud aws azure gcp devops kubernetes docker terraform linux networking network
		python go golang java javascript typescript rust sql database api backend frontend
		data analytics statistics ml ai testing automation monitoring observability
		resume cv cover letter email report reports presentation documentation
		marketing finance accounting design product management leadership agile scrum
		career interview internship research thesis`) {
		publicTopics[t] = true
	}
}

// Plan is a pure decision over the request's own sensitivity, consent and intent.
func Plan(sens entities.SensitivityResult, allowCloud bool, intent entities.Intent, terms entities.PublicTerms) entities.RoutePlan {
	switch {
	case sens.Sensitive:
		return entities.RoutePlan{Route: entities.RouteLocal, Reason: ReasonSensitive}
	case !allowCloud:
		return entities.RoutePlan{Route: entities.RouteLocal, Reason: ReasonNoConsent}
	case intent == entities.IntentSummarize:
		return entities.RoutePlan{Route: entities.RouteLocal, Reason: ReasonSummarizeOnly}
	}
	return entities.RoutePlan{
		Route:          entities.RouteCloud,
		SanitizedQuery: BuildCloudQuery(intent, terms),
		Reason:         ReasonCloudEligible,
	}
}

// WantsEnrichment reports whether one external knowledge call should be attempted.
func WantsEnrichment(plan entities.RoutePlan, intent entities.Intent) bool {
	if plan.Route != entities.RouteCloud || intent == entities.IntentSummarize {
		return false
	}
	return intent.IsRewriteFamily() || intent == entities.IntentGeneralQuestion
}

// BuildCloudQuery synthesizes an intent-templated, role/topic-generic question.
func BuildCloudQuery(intent entities.Intent, terms entities.PublicTerms) string {
	role := defaultRole
	if len(terms.Roles) > 0 {
		role = terms.Roles[0]
	}
	topic := topicHint(terms.Topics)

	switch {
	case intent.IsRewriteFamily():
		return fmt.Sprintf("Give general rewriting guidelines and a generic improved example for a %s about %s.", role, topic)
	case intent == entities.IntentSummarize:
		return fmt.Sprintf("Explain how to summarize documents and provide a generic summary example about %s.", topic)
	}
	return fmt.Sprintf("Answer generally (no personal data) for a %s about %s.", role, topic)
}

func topicHint(topics []string) string {
	var picked []string
	seen := map[string]bool{}
	for _, t := range topics {
		k := strings.ToLower(t)
		if !publicTopics[k] || seen[k] {
			continue
		}
		seen[k] = true
		picked = append(picked, k)
		if len(picked) == maxTopicHint {
			break
		}
	}
	if len(picked) == 0 {
		return defaultTopic
	}
	return strings.Join(picked, ", ")
}

// EnrichmentPrompt is the generic resume-guide prompt for a recognized role.
func EnrichmentPrompt(role string) string {
	return "Provide a concise, general guide for a resume rewrite for the role: " +
		role + ". Include:\n" +
		"- 10–15 role-aligned keywords/skills\n" +
		"- 6–10 responsibilities phrased as resume bullets\n" +
		"- Common tools/tech (if applicable)\n" +
		"Do NOT ask for personal details. Keep output generic."
}

// Merge appends external knowledge under its own heading; local text is not altered.
func Merge(local, knowledge string) string {
	lt := strings.TrimRight(local, " \t\r\n")
	kt := strings.TrimSpace(knowledge)
	if kt == "" {
		return lt
	}
	return lt + "\n\n" + KnowledgeHeading + "\n" + kt + "\n"
}
