package enhance

import (
	"regexp"
	"strings"
)

// Role is a target role the engine can tailor toward.
type Role struct {
	Name      string
	Keywords  []string
	Templates []string // each has one {x} placeholder
	triggers  *regexp.Regexp
}

var roles = []Role{
	{
		Name: "cybersecurity",
		Keywords: []string{
			"security", "secure", "privacy", "gdpr", "encryption", "auth", "authentication",
			"authorization", "iam", "audit", "logging", "monitor", "incident", "vulnerability",
			"pentest", "network", "tcp", "ip", "firewall", "siem", "linux", "hardening",
			"docker", "kubernetes", "devops", "cloud", "aws", "azure", "it-security",
			"verification", "validation",
		},
		Templates: []string{
			"Applied secure engineering practices while {x}.",
			"Supported security and reliability requirements by {x}.",
			"Improved system robustness and operational safety by {x}.",
		},
		triggers: regexp.MustCompile(`(?i)cyber|security|\bsoc\b`),
	},
	{
		Name: "devops engineer",
		Keywords: []string{
			"ci", "cd", "pipeline", "docker", "kubernetes", "terraform", "ansible", "helm",
			"aws", "azure", "gcp", "cloud", "monitor", "logging", "observability",
			"automation", "automated", "deploy", "infrastructure", "linux", "release",
		},
		Templates: []string{
			"Streamlined delivery and operations by {x}.",
			"Increased deployment reliability by {x}.",
			"Reduced operational toil by {x}.",
		},
		triggers: regexp.MustCompile(`(?i)devops|\bsre\b|platform engineer`),
	},
	{
		Name: "backend developer",
		Keywords: []string{
			"api", "rest", "grpc", "database", "sql", "postgres", "mysql", "microservice",
			"service", "server", "cache", "queue", "kafka", "docker", "kubernetes",
			"scalab", "performance", "latency", "go", "java", "python",
		},
		Templates: []string{
			"Strengthened backend reliability by {x}.",
			"Delivered maintainable server-side functionality by {x}.",
			"Improved service performance and scalability by {x}.",
		},
		triggers: regexp.MustCompile(`(?i)back-?end`),
	},
	{
		Name: "data analyst",
		Keywords: []string{
			"sql", "excel", "tableau", "power bi", "dashboard", "report", "analysis",
			"analytics", "python", "pandas", "statistic", "visualization", "etl",
			"data", "kpi", "metric", "insight", "forecast",
		},
		Templates: []string{
			"Turned data into actionable insight by {x}.",
			"Supported data-driven decisions by {x}.",
			"Improved reporting accuracy and clarity by {x}.",
		},
		triggers: regexp.MustCompile(`(?i)data analy|analytics`),
	},
}

// InferRole scans the user's instruction for a known target role.
// The empty string means no role was recognized.
func InferRole(userText string) string {
	if r, ok := lookupRole(userText); ok {
		return r.Name
	}
	return ""
}

func lookupRole(userText string) (Role, bool) {
	for _, r := range roles {
		if r.triggers.MatchString(userText) {
			return r, true
		}
	}
	return Role{}, false
}

// relevance counts role keywords that occur in line.
func (r Role) relevance(line string) int {
	low := strings.ToLower(line)
	n := 0
	for _, k := range r.Keywords {
		if strings.Contains(low, k) {
			n++
		}
	}
	return n
}
