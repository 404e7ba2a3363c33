// Package nlp provides the linguistic sentence splitter.
// Clean Architecture: Adapter implementing ports.SentenceSplitter.
package nlp

import (
	"fmt"
	"log"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

// Sentence model names.
const (
	ModelPunkt = "punkt"
	ModelRegex = "regex"
)

// PunktSplitter splits with the English Punkt model and falls back to the
// regex splitter when the model finds nothing. Safe for concurrent use once built.
type PunktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	fallback  textproc.RegexSplitter
}

// NewPunktSplitter loads the bundled English model.
func NewPunktSplitter() (*PunktSplitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading punkt model: %w", err)
	}
	return &PunktSplitter{tokenizer: tok}, nil
}

// Split implements ports.SentenceSplitter.
func (p *PunktSplitter) Split(text string) []string {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}

	var out []string
	for _, s := range p.tokenizer.Tokenize(t) {
		if st := strings.TrimSpace(s.Text); st != "" {
			out = append(out, st)
		}
	}
	if len(out) > 0 {
		return out
	}
	return p.fallback.Split(t)
}

// Load returns the splitter for model, built once at startup. Unknown models and
// load failures fall back to the deterministic regex splitter.
func Load(model string) ports.SentenceSplitter {
	switch model {
	case ModelRegex:
		log.Printf("[INFO] sentence splitter: regex")
		return textproc.RegexSplitter{}
	case ModelPunkt, "":
		sp, err := NewPunktSplitter()
		if err != nil {
			log.Printf("[ERROR] %v; using regex splitter", err)
			return textproc.RegexSplitter{}
		}
		log.Printf("[INFO] sentence splitter: punkt")
		return sp
	}
	log.Printf("[WARN] unknown sentence model %q; using regex splitter", model)
	return textproc.RegexSplitter{}
}
