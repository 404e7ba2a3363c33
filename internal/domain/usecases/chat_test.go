package usecases

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/0xcro3dile/docguard/internal/domain/enhance"
	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/ports"
	"github.com/0xcro3dile/docguard/internal/domain/routing"
	"github.com/0xcro3dile/docguard/internal/domain/textproc"
)

// mockGuard implements ports.WorkspaceGuard for testing
type mockGuard struct {
	roots []string
	home  string
}

func (m *mockGuard) AllowedRoots(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	return m.roots
}

func (m *mockGuard) Resolve(path string, roots []string) (string, error) {
	if strings.HasPrefix(path, "~/") && m.home != "" {
		path = m.home + path[1:]
	}
	for _, r := range roots {
		if strings.HasPrefix(path, r+"/") {
			return path, nil
		}
	}
	return "", errors.New("outside roots")
}

// mockFinder implements ports.FileFinder for testing
type mockFinder struct {
	hits  []entities.FileHit
	calls int
}

func (m *mockFinder) Find(ctx context.Context, query string, roots []string, limit int) ([]entities.FileHit, error) {
	m.calls++
	return m.hits, nil
}

// mockExtractor implements ports.DocumentExtractor for testing
type mockExtractor struct {
	files map[string]entities.Extraction
	calls []string
}

func (m *mockExtractor) Extract(ctx context.Context, path string) entities.Extraction {
	m.calls = append(m.calls, path)
	if ex, ok := m.files[path]; ok {
		return ex
	}
	return entities.Extraction{FileType: "unknown", Status: entities.ExtractUnsupported}
}

// mockKnowledge implements ports.KnowledgeService for testing
type mockKnowledge struct {
	answer  string
	err     error
	prompts []string
}

func (m *mockKnowledge) Ask(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

// mockAudit implements ports.AuditStore for testing
type mockAudit struct {
	records []entities.AuditRecord
	err     error
}

func (m *mockAudit) Append(ctx context.Context, rec entities.AuditRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func (m *mockAudit) Recent(ctx context.Context, limit int) ([]entities.AuditRecord, error) {
	return m.records, nil
}

func (m *mockAudit) Count(ctx context.Context) (int, error) { return len(m.records), nil }
func (m *mockAudit) Close() error                           { return nil }

const reportText = `Quarterly report for the platform team.
The team shipped the payment service on time and under budget.
Latency dropped by thirty percent after the cache rollout finished.
Hiring remains the main risk for the next quarter of delivery.`

const cvText = `EDUCATION
BSc Computer Science, 2020
SKILLS
- Go, Python, Docker, Kubernetes
- Linux hardening, firewall rules, SIEM tuning
EXPERIENCE
- Implemented encryption for customer data at rest
- developed network monitoring dashboards for incidents
Contact: jane.doe@example.com`

func txt(text string) entities.Extraction {
	return entities.Extraction{Text: text, FileType: "txt", Status: entities.ExtractOK}
}

type fixture struct {
	guard     *mockGuard
	finder    *mockFinder
	extractor *mockExtractor
	knowledge *mockKnowledge
	audit     *mockAudit
	uc        *ChatUseCase
}

func newFixture(hits []entities.FileHit, files map[string]entities.Extraction, knowledge *mockKnowledge) *fixture {
	f := &fixture{
		guard:     &mockGuard{roots: []string{"/docs"}},
		finder:    &mockFinder{hits: hits},
		extractor: &mockExtractor{files: files},
		knowledge: knowledge,
		audit:     &mockAudit{},
	}
	local := NewLocalPipeline(f.guard, f.finder, f.extractor, textproc.RegexSplitter{}, 5)
	var ks ports.KnowledgeService
	if knowledge != nil {
		ks = knowledge
	}
	f.uc = NewChatUseCase(ks, local, f.audit, func() string { return "id-1" })
	f.uc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func notes(ev []entities.Evidence) []string {
	out := make([]string, len(ev))
	for i, e := range ev {
		out[i] = e.Source + ":" + e.Note
	}
	return out
}

func hasNote(ev []entities.Evidence, source, note string) bool {
	for _, e := range ev {
		if e.Source == source && e.Note == note {
			return true
		}
	}
	return false
}

func TestChatUseCase_Smalltalk(t *testing.T) {
	f := newFixture(nil, nil, nil)

	resp, err := f.uc.Process(context.Background(), entities.Request{UserText: "Hi"})

	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if resp.FinalText != MsgSmalltalk {
		t.Errorf("unexpected text: %s", resp.FinalText)
	}
	if resp.SensitiveDetected || resp.UsedCloud || resp.Route != entities.RouteLocal || resp.SanitizedCloudQuery != nil {
		t.Errorf("unexpected flags: %+v", resp)
	}
	want := []string{"orchestrator:intent=smalltalk", "local:smalltalk_no_file"}
	if got := notes(resp.Evidence); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected evidence: %v", got)
	}
	if f.finder.calls != 0 {
		t.Error("smalltalk should not search files")
	}
}

func TestChatUseCase_GeneralQuestionWithoutFile(t *testing.T) {
	f := newFixture(nil, nil, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{UserText: "what can you do"})

	if resp.FinalText != MsgGeneral || !hasNote(resp.Evidence, "local", NoteGeneral) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestChatUseCase_EmptyUserText(t *testing.T) {
	f := newFixture(nil, nil, nil)

	_, err := f.uc.Process(context.Background(), entities.Request{UserText: "  "})

	if !errors.Is(err, ErrEmptyUserText) {
		t.Errorf("expected ErrEmptyUserText, got %v", err)
	}
}

func TestChatUseCase_SensitiveRequestStaysLocal(t *testing.T) {
	k := &mockKnowledge{answer: "should not be used"}
	f := newFixture(nil, nil, k)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:   "my email is a@b.com, what should I write?",
		AllowCloud: true,
	})

	if !resp.SensitiveDetected {
		t.Error("email should be detected")
	}
	if resp.Route != entities.RouteLocal || resp.UsedCloud {
		t.Errorf("sensitive request must stay local: %+v", resp)
	}
	if resp.SanitizedCloudQuery != nil {
		t.Errorf("no query should be reported, got %q", *resp.SanitizedCloudQuery)
	}
	if len(k.prompts) != 0 {
		t.Error("knowledge service must not be called")
	}
	if resp.Evidence[1].Source != "sensitivity_detector" || !strings.Contains(resp.Evidence[1].Note, "email_detected") {
		t.Errorf("expected email reason in evidence, got %v", notes(resp.Evidence))
	}
}

func TestChatUseCase_SummarizeTextFile(t *testing.T) {
	hits := []entities.FileHit{{Path: "/docs/report.txt", Reason: "filename_match", Score: 5}}
	k := &mockKnowledge{answer: "unused"}
	f := newFixture(hits, map[string]entities.Extraction{"/docs/report.txt": txt(reportText)}, k)

	resp, err := f.uc.Process(context.Background(), entities.Request{
		UserText:      "summarize the report",
		AllowCloud:    true,
		WorkspaceDirs: []string{"/docs"},
	})

	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !strings.HasPrefix(resp.FinalText, "Offline summary (local-only):\n\nSource file:\n[TXT] /docs/report.txt\n") {
		t.Errorf("unexpected summary header:\n%s", resp.FinalText)
	}
	for _, section := range []string{"Executive summary (bullets):", "Document coverage (chunk-by-chunk):", "Short summary:", "Coverage:"} {
		if !strings.Contains(resp.FinalText, section) {
			t.Errorf("summary missing %q", section)
		}
	}
	if len(k.prompts) != 0 || resp.UsedCloud || resp.SanitizedCloudQuery != nil {
		t.Error("summarize must never call the knowledge service")
	}
	want := []string{
		"orchestrator:intent=summarize",
		"permissions:allowed_roots=1",
		"file_search:filename_match score=5.00",
		"file_extract:type=txt chars=" + strconv.Itoa(len([]rune(reportText))),
		"file_choice:content_overlap=2",
	}
	if got := notes(resp.Evidence); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected evidence:\n%v\nwant\n%v", got, want)
	}
}

func TestChatUseCase_PreferredFileOutsideRoots(t *testing.T) {
	f := newFixture(nil, map[string]entities.Extraction{"/etc/passwd.txt": txt("root")}, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:       "summarize this",
		WorkspaceDirs:  []string{"/docs"},
		PreferredFiles: []string{"/etc/passwd.txt"},
	})

	if resp.FinalText != MsgOutsideRoots {
		t.Errorf("unexpected text: %s", resp.FinalText)
	}
	last := resp.Evidence[len(resp.Evidence)-1]
	if last.Note != NoteOutsideRoots || last.Path != "/etc/passwd.txt" {
		t.Errorf("unexpected evidence: %+v", last)
	}
	if len(f.extractor.calls) != 0 {
		t.Error("no extraction may happen outside the roots")
	}
}

func TestChatUseCase_PreferredFileBypassesSearch(t *testing.T) {
	f := newFixture(nil, map[string]entities.Extraction{"/docs/cv.txt": txt(cvText)}, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:       "rewrite this",
		WorkspaceDirs:  []string{"/docs"},
		PreferredFiles: []string{"/docs/cv.txt"},
	})

	if f.finder.calls != 0 {
		t.Error("preferred file should bypass search")
	}
	if !hasNote(resp.Evidence, "file_search", "preferred_file score=9999.00") {
		t.Errorf("missing preferred hit evidence: %v", notes(resp.Evidence))
	}
	if !strings.HasPrefix(resp.FinalText, "Source file:\n[TXT] /docs/cv.txt\n\n"+enhance.Title) {
		t.Errorf("unexpected text:\n%s", resp.FinalText)
	}
}

func TestChatUseCase_PreferredFileUsesResolvedPath(t *testing.T) {
	f := newFixture(nil, map[string]entities.Extraction{"/docs/cv.txt": txt(cvText)}, nil)
	f.guard.home = "/docs"

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:       "rewrite this",
		WorkspaceDirs:  []string{"/docs"},
		PreferredFiles: []string{"~/cv.txt"},
	})

	if len(f.extractor.calls) != 1 || f.extractor.calls[0] != "/docs/cv.txt" {
		t.Fatalf("expected extraction of the resolved path, got %v", f.extractor.calls)
	}
	if !strings.HasPrefix(resp.FinalText, "Source file:\n[TXT] /docs/cv.txt\n\n") {
		t.Errorf("unexpected text:\n%s", resp.FinalText)
	}
}

func TestChatUseCase_NoWorkspace(t *testing.T) {
	f := newFixture(nil, nil, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{UserText: "summarize my notes"})

	if resp.FinalText != MsgNoWorkspace || !hasNote(resp.Evidence, "permissions", NoteNoWorkspace) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestChatUseCase_NoFilesFound(t *testing.T) {
	f := newFixture(nil, nil, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:      "find my tax notes",
		WorkspaceDirs: []string{"/docs"},
	})

	if resp.FinalText != MsgNoFiles || !hasNote(resp.Evidence, "file_search", NoteNoFiles) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestChatUseCase_NothingReadable(t *testing.T) {
	hits := []entities.FileHit{
		{Path: "/docs/scan.pdf", Reason: "filename_match", Score: 2},
		{Path: "/docs/image.png", Reason: "filename_match", Score: 2},
	}
	files := map[string]entities.Extraction{
		"/docs/scan.pdf": {FileType: "pdf", Status: entities.ExtractFailed},
	}
	f := newFixture(hits, files, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:      "summarize scan",
		WorkspaceDirs: []string{"/docs"},
	})

	if resp.FinalText != MsgNothingReadable {
		t.Errorf("unexpected text: %s", resp.FinalText)
	}
	if len(f.extractor.calls) != 2 {
		t.Errorf("every candidate should be tried, got %v", f.extractor.calls)
	}
}

func TestChatUseCase_ChoosesHighestOverlap(t *testing.T) {
	hits := []entities.FileHit{
		{Path: "/docs/a.txt", Reason: "filename_match", Score: 5},
		{Path: "/docs/b.txt", Reason: "filename_match", Score: 2},
	}
	files := map[string]entities.Extraction{
		"/docs/a.txt": txt("Unrelated notes about gardening and tomatoes in spring."),
		"/docs/b.txt": txt("Budget plan for marketing with budget lines and marketing goals."),
	}
	f := newFixture(hits, files, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:      "summarize budget marketing",
		WorkspaceDirs: []string{"/docs"},
	})

	if !strings.Contains(resp.FinalText, "[TXT] /docs/b.txt") {
		t.Errorf("expected b.txt to be chosen:\n%s", resp.FinalText)
	}
	if !hasNote(resp.Evidence, "file_choice", "content_overlap=2") {
		t.Errorf("unexpected evidence: %v", notes(resp.Evidence))
	}
}

func TestChatUseCase_DocumentPIIRedacted(t *testing.T) {
	hits := []entities.FileHit{{Path: "/docs/cv.txt", Reason: "filename_match", Score: 5}}
	f := newFixture(hits, map[string]entities.Extraction{"/docs/cv.txt": txt(cvText)}, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:      "summarize cv",
		WorkspaceDirs: []string{"/docs"},
	})

	if !resp.SensitiveDetected {
		t.Error("document PII should set the sensitivity flag")
	}
	if !hasNote(resp.Evidence, "sensitivity_detector", NotePIIInDocument) {
		t.Errorf("missing pii evidence: %v", notes(resp.Evidence))
	}
	if strings.Contains(resp.FinalText, "jane.doe@example.com") {
		t.Error("raw email leaked into output")
	}
}

func TestChatUseCase_KnowledgeEnrichesTailoring(t *testing.T) {
	hits := []entities.FileHit{{Path: "/docs/cv.txt", Reason: "filename_match", Score: 5}}
	k := &mockKnowledge{answer: "- Threat modeling\n- SIEM"}
	f := newFixture(hits, map[string]entities.Extraction{"/docs/cv.txt": txt(cvText)}, k)

	resp, _ := f.uc.Process(context.Background(), entities.Request{
		UserText:      "tailor my resume for a cybersecurity role",
		AllowCloud:    true,
		WorkspaceDirs: []string{"/docs"},
	})

	if len(k.prompts) != 1 {
		t.Fatalf("expected one knowledge call, got %d", len(k.prompts))
	}
	if k.prompts[0] != routing.EnrichmentPrompt("cybersecurity") {
		t.Errorf("unexpected prompt: %s", k.prompts[0])
	}
	if resp.SanitizedCloudQuery == nil || *resp.SanitizedCloudQuery != k.prompts[0] {
		t.Error("response should report the prompt that was sent")
	}
	if !resp.UsedCloud || resp.Route != entities.RouteCloud {
		t.Errorf("expected cloud route: %+v", resp)
	}
	if !hasNote(resp.Evidence, "cloud", NoteKnowledgeUsed) {
		t.Errorf("missing cloud evidence: %v", notes(resp.Evidence))
	}
	if !strings.Contains(resp.FinalText, enhance.KeywordsTitle) || !strings.Contains(resp.FinalText, routing.KnowledgeHeading) {
		t.Errorf("knowledge blocks missing:\n%s", resp.FinalText)
	}
	for _, leak := range []string{"jane", "Kubernetes", "encryption"} {
		if strings.Contains(k.prompts[0], leak) {
			t.Errorf("prompt leaked document text %q", leak)
		}
	}
}

func TestChatUseCase_KnowledgeFailureDegrades(t *testing.T) {
	hits := []entities.FileHit{{Path: "/docs/cv.txt", Reason: "filename_match", Score: 5}}
	k := &mockKnowledge{err: &ports.KnowledgeError{Class: ports.KnowledgeTimeout, Err: context.DeadlineExceeded}}
	f := newFixture(hits, map[string]entities.Extraction{"/docs/cv.txt": txt(cvText)}, k)

	resp, err := f.uc.Process(context.Background(), entities.Request{
		UserText:      "rewrite my resume",
		AllowCloud:    true,
		WorkspaceDirs: []string{"/docs"},
	})

	if err != nil {
		t.Fatalf("knowledge failure must not surface: %v", err)
	}
	if resp.UsedCloud || resp.Route != entities.RouteLocal {
		t.Errorf("failed call must not count as cloud use: %+v", resp)
	}
	if !hasNote(resp.Evidence, "cloud", "knowledge_unavailable:timeout") {
		t.Errorf("missing failure evidence: %v", notes(resp.Evidence))
	}
	if resp.SanitizedCloudQuery == nil || strings.Contains(*resp.SanitizedCloudQuery, "my resume") {
		t.Error("attempted query should be reported and be generic")
	}
	if strings.Contains(resp.FinalText, routing.KnowledgeHeading) {
		t.Error("no knowledge block expected")
	}
	if !strings.Contains(resp.FinalText, enhance.Title) {
		t.Error("local output should still be produced")
	}
}

func TestChatUseCase_KnowledgeEmptyAndUntypedErrors(t *testing.T) {
	cases := map[string]struct {
		k    *mockKnowledge
		note string
	}{
		"empty":    {&mockKnowledge{answer: "  "}, NoteKnowledgeEmpty},
		"untyped":  {&mockKnowledge{err: errors.New("boom")}, "knowledge_unavailable:transport_error"},
		"deadline": {&mockKnowledge{err: context.DeadlineExceeded}, "knowledge_unavailable:timeout"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(nil, nil, tc.k)
			resp, _ := f.uc.Process(context.Background(), entities.Request{UserText: "how do I learn kubernetes", AllowCloud: true})

			if !hasNote(resp.Evidence, "cloud", tc.note) {
				t.Errorf("expected %s, got %v", tc.note, notes(resp.Evidence))
			}
			if resp.UsedCloud {
				t.Error("used_cloud should be false")
			}
		})
	}
}

func TestChatUseCase_NoKnowledgeService(t *testing.T) {
	f := newFixture(nil, nil, nil)

	resp, _ := f.uc.Process(context.Background(), entities.Request{UserText: "how do I learn kubernetes", AllowCloud: true})

	if !hasNote(resp.Evidence, "cloud", "knowledge_unavailable:missing_credential") {
		t.Errorf("unexpected evidence: %v", notes(resp.Evidence))
	}
	if resp.SanitizedCloudQuery != nil {
		t.Error("nothing was sent")
	}
}

func TestChatUseCase_RecordsAudit(t *testing.T) {
	f := newFixture(nil, nil, nil)
	f.audit.err = errors.New("disk full")

	resp, err := f.uc.Process(context.Background(), entities.Request{UserText: "Hi"})

	if err != nil {
		t.Fatalf("audit failure must not fail the request: %v", err)
	}
	if len(f.audit.records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(f.audit.records))
	}
	rec := f.audit.records[0]
	if rec.ID != "id-1" || rec.Intent != entities.IntentSmalltalk || rec.Route != resp.Route || len(rec.Evidence) != len(resp.Evidence) {
		t.Errorf("unexpected record: %+v", rec)
	}

	recent, _ := f.uc.Recent(context.Background(), 10)
	if len(recent) != 1 {
		t.Errorf("expected 1 recent record, got %d", len(recent))
	}
}

func TestChatUseCase_AuditCount(t *testing.T) {
	f := newFixture(nil, nil, nil)
	f.uc.Process(context.Background(), entities.Request{UserText: "hello"})
	f.uc.Process(context.Background(), entities.Request{UserText: "thanks"})

	n, err := f.uc.AuditCount(context.Background())
	if err != nil || n != 2 {
		t.Errorf("AuditCount() = %d, %v; want 2", n, err)
	}

	bare := NewChatUseCase(nil, NewLocalPipeline(f.guard, f.finder, f.extractor, nil, 5), nil, func() string { return "id" })
	if n, err := bare.AuditCount(context.Background()); err != nil || n != 0 {
		t.Errorf("AuditCount() without a store = %d, %v; want 0", n, err)
	}
}
