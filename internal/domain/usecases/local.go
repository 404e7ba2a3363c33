// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, NO external dependencies - just pure business logic.
package usecases

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/0xcro3dile/docguard/internal/domain/enhance"
	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/intent"
	"github.com/0xcro3dile/docguard/internal/domain/ports"
	"github.com/0xcro3dile/docguard/internal/domain/privacy"
	"github.com/0xcro3dile/docguard/internal/domain/summarize"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

// Guidance messages returned instead of errors.
const (
	MsgSmalltalk       = "Hi! How can I help you? If you want a document summary, select a file and ask: \"Summarize this file\"."
	MsgGeneral         = "I can answer general questions (and summarize/rewrite files if you select a workspace + file). What do you want to do?"
	MsgNoWorkspace     = "Please choose workspace folders (local permissions) so I can search your files offline."
	MsgOutsideRoots    = "That selected file is outside your approved workspace folders. Please add its folder as a workspace."
	MsgNoFiles         = "I couldn't find relevant files in your approved folders. Try different keywords or add folders."
	MsgNothingReadable = "Files were found, but I couldn't extract readable text. (Try TXT/DOCX or text-based PDFs.)"
)

// Evidence notes.
const (
	NoteSmalltalk       = "smalltalk_no_file"
	NoteGeneral         = "general_no_file"
	NoteNoWorkspace     = "no_workspace_dirs_provided"
	NoteOutsideRoots    = "preferred_file_outside_allowed_roots"
	NoteNoFiles         = "no_files_found"
	NotePIIInDocument   = "pii_found_in_document"
	ReasonPreferredFile = "preferred_file"

	scorePreferredFile = 9999.0
	minCleanContext    = 200
	maxWarnings        = 6
	maxSummarySections = 10
	maxSectionBullets  = 4
)

var querySplitRe = regexp.MustCompile(`[^a-z0-9]+`)

// LocalResult is the offline pipeline's output.
type LocalResult struct {
	Text      string
	Evidence  []entities.Evidence
	Sensitive bool // PII was found in the chosen document
}

// LocalPipeline runs file selection, extraction, redaction and the local engines.
// Single Responsibility: Only offline document work; it never talks to the network.
type LocalPipeline struct {
	guard       ports.WorkspaceGuard
	finder      ports.FileFinder
	extractor   ports.DocumentExtractor
	splitter    ports.SentenceSplitter
	summarizer  *summarize.Summarizer
	searchLimit int
}

// NewLocalPipeline creates a LocalPipeline with injected dependencies.
func NewLocalPipeline(
	guard ports.WorkspaceGuard,
	finder ports.FileFinder,
	extractor ports.DocumentExtractor,
	splitter ports.SentenceSplitter,
	searchLimit int,
) *LocalPipeline {
	if splitter == nil {
		splitter = textproc.RegexSplitter{}
	}
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &LocalPipeline{
		guard:       guard,
		finder:      finder,
		extractor:   extractor,
		splitter:    splitter,
		summarizer:  summarize.New(splitter),
		searchLimit: searchLimit,
	}
}

// candidate is an extracted file competing to be the chosen document.
type candidate struct {
	path     string
	raw      string
	fileType string
	overlap  int
}

// Run executes the local path. knowledge is optional sanitized external text that
// the enhancement engine places in its own keyword block.
func (p *LocalPipeline) Run(ctx context.Context, req entities.Request, in entities.Intent, knowledge string) LocalResult {
	userText := strings.TrimSpace(req.UserText)

	if !needsFiles(in, req, userText) {
		if in == entities.IntentSmalltalk {
			return LocalResult{Text: MsgSmalltalk, Evidence: []entities.Evidence{{Source: "local", Note: NoteSmalltalk}}}
		}
		return LocalResult{Text: MsgGeneral, Evidence: []entities.Evidence{{Source: "local", Note: NoteGeneral}}}
	}

	var ev []entities.Evidence
	roots := p.guard.AllowedRoots(req.WorkspaceDirs)
	if len(roots) == 0 {
		ev = append(ev, entities.Evidence{Source: "permissions", Note: NoteNoWorkspace})
		return LocalResult{Text: MsgNoWorkspace, Evidence: ev}
	}
	ev = append(ev, entities.Evidence{Source: "permissions", Note: fmt.Sprintf("allowed_roots=%d", len(roots))})

	var hits []entities.FileHit
	if len(req.PreferredFiles) > 0 {
		preferred := req.PreferredFiles[0]
		resolved, err := p.guard.Resolve(preferred, roots)
		if err != nil {
			ev = append(ev, entities.Evidence{Source: "permissions", Path: preferred, Note: NoteOutsideRoots})
			return LocalResult{Text: MsgOutsideRoots, Evidence: ev}
		}
		hits = []entities.FileHit{{Path: resolved, Reason: ReasonPreferredFile, Score: scorePreferredFile}}
	} else {
		found, err := p.finder.Find(ctx, req.UserText, roots, p.searchLimit)
		if err != nil {
			log.Printf("[ERROR] file search: %v", err)
		}
		hits = found
	}

	if len(hits) == 0 {
		ev = append(ev, entities.Evidence{Source: "file_search", Note: NoteNoFiles})
		return LocalResult{Text: MsgNoFiles, Evidence: ev}
	}

	best, ev := p.choose(ctx, hits, queryTokens(req.UserText), ev)
	if best == nil {
		return LocalResult{Text: MsgNothingReadable, Evidence: ev}
	}
	ev = append(ev, entities.Evidence{Source: "file_choice", Path: best.path, Note: fmt.Sprintf("content_overlap=%d", best.overlap)})

	// Redact before any document content is used.
	safe := privacy.Redact(best.raw)
	docSensitive := safe != best.raw
	if docSensitive {
		ev = append(ev, entities.Evidence{Source: "sensitivity_detector", Path: best.path, Note: NotePIIInDocument})
	}

	header := fmt.Sprintf("Source file:\n[%s] %s\n", strings.ToUpper(best.fileType), best.path)

	switch {
	case in == entities.IntentSummarize:
		sum := p.summarizer.Summarize(safe, summarize.DetailFull)
		return LocalResult{Text: FormatSummary(header, sum), Evidence: ev, Sensitive: docSensitive}

	case in.IsRewriteFamily():
		res := enhance.Enhance(enhance.Request{
			Intent:    in,
			UserText:  req.UserText,
			Context:   safe,
			Knowledge: knowledge,
		})
		ev = append(ev, enhancementEvidence(best.path, res))
		return LocalResult{Text: header + "\n" + res.Text, Evidence: ev, Sensitive: docSensitive}
	}

	excerpt := safe
	if cleaned := textproc.Clean(safe, p.splitter); utf8.RuneCountInString(cleaned) >= minCleanContext {
		excerpt = cleaned
	}
	res := enhance.Enhance(enhance.Request{Intent: in, UserText: req.UserText, Context: excerpt})
	return LocalResult{Text: header + "\n" + res.Text, Evidence: ev, Sensitive: docSensitive}
}

// choose extracts each hit and keeps the one whose raw text shares the most query
// tokens. A preferred file stops the scan.
func (p *LocalPipeline) choose(ctx context.Context, hits []entities.FileHit, tokens []string, ev []entities.Evidence) (*candidate, []entities.Evidence) {
	var best *candidate
	for _, h := range hits {
		ev = append(ev, entities.Evidence{Source: "file_search", Path: h.Path, Note: fmt.Sprintf("%s score=%.2f", h.Reason, h.Score)})

		ex := p.extractor.Extract(ctx, h.Path)
		raw := strings.TrimSpace(ex.Text)
		ev = append(ev, entities.Evidence{Source: "file_extract", Path: h.Path, Note: fmt.Sprintf("type=%s chars=%d", ex.FileType, utf8.RuneCountInString(raw))})

		if ex.Status == entities.ExtractOK && raw != "" {
			low := strings.ToLower(raw)
			overlap := 0
			for _, t := range tokens {
				if strings.Contains(low, t) {
					overlap++
				}
			}
			if best == nil || overlap > best.overlap {
				best = &candidate{path: h.Path, raw: raw, fileType: ex.FileType, overlap: overlap}
			}
		}

		if h.Reason == ReasonPreferredFile {
			break
		}
	}
	return best, ev
}

// needsFiles reports whether the request can only be answered from a document.
func needsFiles(in entities.Intent, req entities.Request, userText string) bool {
	if in == entities.IntentSummarize || in == entities.IntentFileSearch || in.IsRewriteFamily() {
		return true
	}
	return len(req.PreferredFiles) > 0 || intent.HasFileDirective(userText)
}

// queryTokens lowercases and splits on non-alphanumerics, keeping tokens of 2+ chars.
func queryTokens(q string) []string {
	var out []string
	for _, t := range querySplitRe.Split(strings.ToLower(strings.TrimSpace(q)), -1) {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

func enhancementEvidence(path string, res entities.EnhancementResult) entities.Evidence {
	role := res.Role
	if role == "" {
		role = "none"
	}
	return entities.Evidence{
		Source: "tbe",
		Path:   path,
		Note:   fmt.Sprintf("doc_type=%s role=%s bullets=%d keywords=%d", res.DocType, role, res.Bullets, res.Keywords),
	}
}

// FormatSummary renders a summary as the offline summary report.
func FormatSummary(header string, sum entities.Summary) string {
	parts := []string{"Offline summary (local-only):\n", header}

	if len(sum.Warnings) > 0 {
		parts = append(parts, "Warnings:")
		for _, w := range head(sum.Warnings, maxWarnings) {
			parts = append(parts, "- "+w)
		}
		parts = append(parts, "")
	}

	parts = append(parts, "Executive summary (bullets):")
	if len(sum.ExecutiveBullets) > 0 {
		parts = append(parts, strings.Join(sum.ExecutiveBullets, "\n"))
	} else {
		parts = append(parts, "- (no highlights found)")
	}
	parts = append(parts, "")

	if len(sum.Sections) > 0 {
		parts = append(parts, "Section highlights:")
		for _, sec := range head(sum.Sections, maxSummarySections) {
			parts = append(parts, "## "+sec.Name)
			parts = append(parts, head(sec.Bullets, maxSectionBullets)...)
		}
		parts = append(parts, "")
	}

	parts = append(parts, "Document coverage (chunk-by-chunk):")
	if len(sum.Coverage) > 0 {
		parts = append(parts, strings.Join(sum.Coverage, "\n"))
	} else {
		parts = append(parts, "(no chunk summaries)")
	}
	parts = append(parts, "", "Short summary:", orDefault(sum.Short, "(not enough text)"))
	parts = append(parts, "", "Coverage:", orDefault(sum.Stats, "(no stats)"), "")

	return strings.Join(parts, "\n")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
