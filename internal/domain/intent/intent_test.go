package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want entities.Intent
	}{
		{"Hi", entities.IntentSmalltalk},
		{"  thank you!! ", entities.IntentSmalltalk},
		{"hello there", entities.IntentGeneralQuestion},
		{"Summarize this file", entities.IntentSummarize},
		{"tl;dr please", entities.IntentSummarize},
		{"summarize and find key points", entities.IntentSummarize},
		{"rewrite my cover letter", entities.IntentRewrite},
		{"rephrase and find typos", entities.IntentRewrite},
		{"please polish the intro", entities.IntentImprove},
		{"tailor my CV for a cybersecurity role", entities.IntentTailor},
		{"bulletize the project notes", entities.IntentBulletize},
		{"find my invoice", entities.IntentFileSearch},
		{`open file:"notes.txt"`, entities.IntentFileSearch},
		{"what does the profile: say", entities.IntentGeneralQuestion},
		{"what is GDPR?", entities.IntentGeneralQuestion},
		{"", entities.IntentGeneralQuestion},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.text), c.text)
	}
}

func TestHasFileDirective(t *testing.T) {
	assert.True(t, HasFileDirective(`file: report.pdf`))
	assert.True(t, HasFileDirective(`FILE:"My Notes.md"`))
	assert.False(t, HasFileDirective("the file is somewhere"))
}
