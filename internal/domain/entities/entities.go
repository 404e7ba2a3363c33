// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Request is one user turn. Immutable once built by the transport layer.
type Request struct {
	UserText       string
	AllowCloud     bool
	WorkspaceDirs  []string
	PreferredFiles []string
}

// Intent is the task classification of a request.
type Intent string

const (
	IntentSmalltalk       Intent = "smalltalk"
	IntentSummarize       Intent = "summarize"
	IntentRewrite         Intent = "rewrite"
	IntentImprove         Intent = "improve"
	IntentTailor          Intent = "tailor"
	IntentBulletize       Intent = "bulletize"
	IntentFileSearch      Intent = "file_search"
	IntentGeneralQuestion Intent = "general_question"
)

// IsRewriteFamily reports whether the intent is handled by the enhancement engine.
func (i Intent) IsRewriteFamily() bool {
	switch i {
	case IntentRewrite, IntentImprove, IntentTailor, IntentBulletize:
		return true
	}
	return false
}

// Route is where a request is allowed to go.
type Route string

const (
	RouteLocal Route = "local"
	RouteCloud Route = "cloud"
)

// SensitivityResult is a privacy verdict on a text span.
type SensitivityResult struct {
	Sensitive bool
	Reasons   []string
}

// RoutePlan is the privacy/routing decision for a request.
// SanitizedQuery is empty when Route is local.
type RoutePlan struct {
	Route          Route
	SanitizedQuery string
	Reason         string
}

// PublicTerms are non-personal terms extracted from the user's own text.
type PublicTerms struct {
	Roles  []string `json:"roles"`
	Topics []string `json:"topics"`
}

// FileHit is a candidate document returned by file discovery.
type FileHit struct {
	Path   string
	Reason string
	Score  float64
}

// ExtractStatus distinguishes extraction outcomes without using errors as control flow.
type ExtractStatus string

const (
	ExtractOK          ExtractStatus = "extracted"
	ExtractUnsupported ExtractStatus = "unsupported"
	ExtractFailed      ExtractStatus = "failed"
)

// Extraction is raw text pulled from a file.
type Extraction struct {
	Text     string
	FileType string // "txt", "docx", "pdf", "xlsx" or "unknown"
	Status   ExtractStatus
}

// SectionHighlights holds bullets for one named document section.
type SectionHighlights struct {
	Name    string
	Bullets []string
}

// Summary is the layered extractive output of the summarizer.
type Summary struct {
	ExecutiveBullets []string
	Sections         []SectionHighlights // document order
	Coverage         []string
	Short            string
	Stats            string
	Warnings         []string
}

// EnhancementResult is rewritten/tailored text plus metadata for the evidence log.
type EnhancementResult struct {
	Text     string
	DocType  string // "cv" or "document"
	Role     string // empty when no role was inferred
	Bullets  int
	Keywords int
}

// Evidence is one audit entry. Notes never carry raw text.
type Evidence struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Response is the final payload returned to the caller.
type Response struct {
	FinalText            string      `json:"final_text"`
	UsedCloud            bool        `json:"used_cloud"`
	SensitiveDetected    bool        `json:"sensitive_detected"`
	SanitizedCloudQuery  *string     `json:"sanitized_cloud_query"`
	ExtractedPublicTerms PublicTerms `json:"extracted_public_terms"`
	Evidence             []Evidence  `json:"evidence"`
	Route                Route       `json:"route"`
}

// AuditRecord is the persisted decision trail of one processed request.
type AuditRecord struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Intent    Intent     `json:"intent"`
	Route     Route      `json:"route"`
	UsedCloud bool       `json:"used_cloud"`
	Sensitive bool       `json:"sensitive"`
	Evidence  []Evidence `json:"evidence"`
}
