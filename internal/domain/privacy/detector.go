// Package privacy decides whether text carries personal or regulated data and
// masks the recognizable parts of it.
package privacy

import (
	"regexp"
	"strings"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

// Reason codes, reported in detector order.
const (
	ReasonEmail   = "email_detected"
	ReasonPhone   = "phone_detected"
	ReasonIBAN    = "iban_detected"
	ReasonCard    = "card_number_like_detected"
	ReasonSecret  = "secret_or_key_hint_detected"
	ReasonKeyword = "sensitive_keyword"
)

// Detection patterns carry no trailing word boundary: a hit inside a stays a hit
// inside a+b whatever b starts with.
var detectors = []struct {
	reason string
	re     *regexp.Regexp
}{
	{ReasonEmail, regexp.MustCompile(`(?i)\b[\w.-]+@[\w.-]+\.\w`)},
	{ReasonPhone, regexp.MustCompile(`\b(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{2,4}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}`)},
	{ReasonIBAN, regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11}`)},
	{ReasonCard, regexp.MustCompile(`\b(?:\d[ -]*?){13}`)},
	{ReasonSecret, regexp.MustCompile(`(?i)\b(?:sk-[A-Za-z0-9]{10}|api[_-]?key|secret|token)`)},
}

var sensitiveKeywords = []string{
	"passport", "visa", "aadhar", "ssn", "social security",
	"bank", "iban", "credit card", "salary slip",
	"contract", "offer letter", "medical", "diagnosis",
	"address", "private", "confidential",
}

// Detect runs every detector over text and collects all reasons.
func Detect(text string) entities.SensitivityResult {
	var reasons []string
	for _, d := range detectors {
		if d.re.MatchString(text) {
			reasons = append(reasons, d.reason)
		}
	}
	if hasSensitiveKeyword(text) {
		reasons = append(reasons, ReasonKeyword)
	}
	return entities.SensitivityResult{Sensitive: len(reasons) > 0, Reasons: reasons}
}

func hasSensitiveKeyword(text string) bool {
	folded := textproc.Fold(text)
	for _, k := range sensitiveKeywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
