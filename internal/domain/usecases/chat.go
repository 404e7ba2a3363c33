package usecases

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/0xcro3dile/docguard/internal/domain/enhance"
	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/intent"
	"github.com/0xcro3dile/docguard/internal/domain/ports"
	"github.com/0xcro3dile/docguard/internal/domain/privacy"
	"github.com/0xcro3dile/docguard/internal/domain/routing"
	"github.com/0xcro3dile/docguard/internal/domain/terms"
)

// ErrEmptyUserText is returned for a request without user text.
var ErrEmptyUserText = errors.New("user_text is required")

// Knowledge evidence notes.
const (
	NoteKnowledgeUsed        = "sanitized_enrichment_used"
	NoteKnowledgeEmpty       = "knowledge_empty"
	NoteKnowledgeUnavailable = "knowledge_unavailable"
)

// ChatUseCase is the request orchestrator: it plans the route, optionally asks the
// knowledge service one sanitized question, always runs the local pipeline and
// assembles the response with its evidence trail.
type ChatUseCase struct {
	knowledge ports.KnowledgeService
	local     *LocalPipeline
	audit     ports.AuditStore
	newID     func() string
	now       func() time.Time
}

// NewChatUseCase creates a ChatUseCase with injected dependencies.
// knowledge and audit may be nil; newID generates audit record IDs.
func NewChatUseCase(
	knowledge ports.KnowledgeService,
	local *LocalPipeline,
	audit ports.AuditStore,
	newID func() string,
) *ChatUseCase {
	return &ChatUseCase{
		knowledge: knowledge,
		local:     local,
		audit:     audit,
		newID:     newID,
		now:       time.Now,
	}
}

// Process handles one request. Degradations come back as guidance text and
// evidence; only an empty request is an error.
func (uc *ChatUseCase) Process(ctx context.Context, req entities.Request) (*entities.Response, error) {
	if strings.TrimSpace(req.UserText) == "" {
		return nil, ErrEmptyUserText
	}

	in := intent.Classify(req.UserText)
	sens := privacy.Detect(req.UserText)
	pub := terms.Extract(req.UserText)
	plan := routing.Plan(sens, req.AllowCloud, in, pub)

	evidence := []entities.Evidence{{Source: "orchestrator", Note: "intent=" + string(in)}}
	if len(sens.Reasons) > 0 {
		evidence = append(evidence, entities.Evidence{Source: "sensitivity_detector", Note: strings.Join(sens.Reasons, ",")})
	}

	var (
		sent      *string
		knowledge string
		usedCloud bool
	)
	if routing.WantsEnrichment(plan, in) {
		prompt := enrichmentPrompt(req.UserText, pub, plan)
		var note string
		if uc.knowledge == nil {
			note = NoteKnowledgeUnavailable + ":" + ports.KnowledgeMissingCredential
		} else {
			sent = &prompt
			knowledge, note = uc.ask(ctx, prompt)
			usedCloud = knowledge != ""
		}
		evidence = append(evidence, entities.Evidence{Source: "cloud", Note: note})
	}

	local := uc.local.Run(ctx, req, in, knowledge)
	evidence = append(evidence, local.Evidence...)

	finalText := local.Text
	if knowledge != "" {
		finalText = routing.Merge(finalText, knowledge)
	}

	route := entities.RouteLocal
	if usedCloud {
		route = entities.RouteCloud
	}

	resp := &entities.Response{
		FinalText:            finalText,
		UsedCloud:            usedCloud,
		SensitiveDetected:    sens.Sensitive || local.Sensitive,
		SanitizedCloudQuery:  sent,
		ExtractedPublicTerms: pub,
		Evidence:             evidence,
		Route:                route,
	}

	log.Printf("[INFO] request intent=%s route=%s used_cloud=%t sensitive=%t evidence=%d",
		in, resp.Route, resp.UsedCloud, resp.SensitiveDetected, len(resp.Evidence))
	uc.record(ctx, in, resp)
	return resp, nil
}

// ask performs the single knowledge call and classifies its outcome.
func (uc *ChatUseCase) ask(ctx context.Context, prompt string) (string, string) {
	text, err := uc.knowledge.Ask(ctx, prompt)
	if err != nil {
		class := ports.KnowledgeTransport
		var ke *ports.KnowledgeError
		switch {
		case errors.As(err, &ke):
			class = ke.Class
		case errors.Is(err, context.DeadlineExceeded):
			class = ports.KnowledgeTimeout
		}
		log.Printf("[WARN] knowledge call failed (%s): %v", class, err)
		return "", NoteKnowledgeUnavailable + ":" + class
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NoteKnowledgeEmpty
	}
	return text, NoteKnowledgeUsed
}

// enrichmentPrompt picks the resume-guide prompt when a target role is known,
// otherwise the plan's sanitized query. Neither carries user words.
func enrichmentPrompt(userText string, pub entities.PublicTerms, plan entities.RoutePlan) string {
	role := enhance.InferRole(userText)
	if role == "" && len(pub.Roles) > 0 {
		role = pub.Roles[0]
	}
	if role == "" {
		return plan.SanitizedQuery
	}
	return routing.EnrichmentPrompt(role)
}

// record appends the decision trail to the audit store. Failures are logged only.
func (uc *ChatUseCase) record(ctx context.Context, in entities.Intent, resp *entities.Response) {
	if uc.audit == nil || uc.newID == nil {
		return
	}
	rec := entities.AuditRecord{
		ID:        uc.newID(),
		CreatedAt: uc.now(),
		Intent:    in,
		Route:     resp.Route,
		UsedCloud: resp.UsedCloud,
		Sensitive: resp.SensitiveDetected,
		Evidence:  resp.Evidence,
	}
	if err := uc.audit.Append(ctx, rec); err != nil {
		log.Printf("[ERROR] audit append: %v", err)
	}
}

// Recent lists audit records, newest first.
func (uc *ChatUseCase) Recent(ctx context.Context, limit int) ([]entities.AuditRecord, error) {
	if uc.audit == nil {
		return []entities.AuditRecord{}, nil
	}
	return uc.audit.Recent(ctx, limit)
}

// AuditCount returns the number of stored audit records.
func (uc *ChatUseCase) AuditCount(ctx context.Context) (int, error) {
	if uc.audit == nil {
		return 0, nil
	}
	return uc.audit.Count(ctx)
}
