package privacy

import "regexp"

// Replacement tokens, one per entity class.
const (
	TokenEmail = "[REDACTED_EMAIL]"
	TokenPhone = "[REDACTED_PHONE]"
	TokenIBAN  = "[REDACTED_IBAN]"
	TokenCard  = "[REDACTED_CARD]"
)

var redactions = []struct {
	re    *regexp.Regexp
	token string
}{
	{regexp.MustCompile(`(?i)\b[\w.-]+@[\w.-]+\.\w+\b`), TokenEmail},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{2,4}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}\b`), TokenPhone},
	{regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`), TokenIBAN},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), TokenCard},
}

// Redact masks emails, phone numbers, IBANs and card-like digit runs, in that order.
// Passes repeat until nothing changes; every match consumes a digit or '@' and the
// tokens contain neither, so the loop ends and Redact(Redact(x)) == Redact(x).
func Redact(text string) string {
	for {
		next := redactOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func redactOnce(text string) string {
	for _, r := range redactions {
		text = r.re.ReplaceAllLiteralString(text, r.token)
	}
	return text
}
