package privacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Email(t *testing.T) {
	res := Detect("my email is a@b.com")

	require.True(t, res.Sensitive)
	assert.Equal(t, []string{ReasonEmail}, res.Reasons)
}

func TestDetect_ReasonsInDetectorOrder(t *testing.T) {
	res := Detect("secret: reach me at a@b.com or 0176 12345678")

	require.True(t, res.Sensitive)
	assert.Equal(t, []string{ReasonEmail, ReasonPhone, ReasonSecret}, res.Reasons)
}

func TestDetect_Keywords(t *testing.T) {
	for _, text := range []string{
		"This memo is CONFIDENTIAL",
		"my Passport scan",
		"Confidéntial notes",
		"salary slip for march",
	} {
		res := Detect(text)
		assert.True(t, res.Sensitive, text)
		assert.Contains(t, res.Reasons, ReasonKeyword, text)
	}
}

func TestDetect_CleanText(t *testing.T) {
	res := Detect("Summarize the quarterly roadmap")

	assert.False(t, res.Sensitive)
	assert.Empty(t, res.Reasons)
}

func TestDetect_MonotonicUnderConcatenation(t *testing.T) {
	cases := []struct{ a, b string }{
		{"call 1234 5678", "9"},
		{"my token", "s"},
		{"iban DE89370400440532013000", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
		{"card 4111111111111111", "1111"},
		{"mail a@b.co", "m"},
		{"bank", "ing"},
		{"Confid", "ential"},
	}
	for _, c := range cases {
		if !Detect(c.a).Sensitive {
			continue
		}
		assert.True(t, Detect(c.a+c.b).Sensitive, "%q + %q", c.a, c.b)
	}
}

func TestRedact_Classes(t *testing.T) {
	cases := map[string]string{
		"mail jane.doe@example.com now": "mail " + TokenEmail + " now",
		"IBAN DE89370400440532013000":   "IBAN " + TokenIBAN,
		"card 4111111111111111":         "card " + TokenCard,
	}
	for in, want := range cases {
		assert.Equal(t, want, Redact(in), in)
	}

	out := Redact("call +49 170 1234567 please")
	assert.Contains(t, out, TokenPhone)
	assert.NotContains(t, out, "1234567")
}

func TestRedact_EmailBeforePhone(t *testing.T) {
	out := Redact("contact 12345678@example.com")

	assert.Equal(t, "contact "+TokenEmail, out)
}

func TestRedact_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain words only",
		"jane@example.com +49 170 1234567 DE89370400440532013000 4111 1111 1111 1111",
		"[REDACTED_EMAIL] 1234 5678 [REDACTED_PHONE]",
		strings.Repeat("0176 12345678, ", 5),
		"a@b.c@d.e 12-34-56-78-90-12-34",
	}
	for _, in := range inputs {
		once := Redact(in)
		assert.Equal(t, once, Redact(once), in)
	}
}

func TestRedact_NoChangeMeansNoPII(t *testing.T) {
	in := "The roadmap covers three milestones."
	assert.Equal(t, in, Redact(in))
}
