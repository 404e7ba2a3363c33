// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// KnowledgeService answers a sanitized, generic prompt with general knowledge.
// It must never be given document content or unredacted user text.
type KnowledgeService interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Knowledge failure classes.
const (
	KnowledgeMissingCredential = "missing_credential"
	KnowledgeEmptyPrompt       = "empty_prompt"
	KnowledgeTimeout           = "timeout"
	KnowledgeHTTPStatus        = "http_status"
	KnowledgeTransport         = "transport_error"
	KnowledgeMalformed         = "malformed_response"
)

// KnowledgeError carries the failure class of a KnowledgeService call.
type KnowledgeError struct {
	Class string
	Err   error
}

func (e *KnowledgeError) Error() string {
	return e.Class + ": " + e.Err.Error()
}

func (e *KnowledgeError) Unwrap() error {
	return e.Err
}

// DocumentExtractor pulls raw text out of a file on disk.
// Unsupported or unreadable files are reported through Extraction.Status, not an error.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) entities.Extraction
}

// DocumentParser extracts text from binary document formats (PDF, DOCX, etc).
// Interface Segregation: Separate from DocumentExtractor for different responsibilities.
type DocumentParser interface {
	// Parse extracts text content from document bytes.
	Parse(ctx context.Context, data []byte, filename string) (string, error)
}

// FileFinder ranks candidate documents under the allowed roots by name.
type FileFinder interface {
	Find(ctx context.Context, query string, roots []string, limit int) ([]entities.FileHit, error)
}

// WorkspaceGuard validates workspace roots and path containment.
type WorkspaceGuard interface {
	// AllowedRoots returns the resolved subset of candidates that exist and are directories.
	AllowedRoots(candidates []string) []string

	// Resolve expands and resolves path and returns it when it lies under
	// one of roots. Callers must read the returned path, not the input.
	Resolve(path string, roots []string) (string, error)
}

// SentenceSplitter splits text into sentence-like units.
type SentenceSplitter interface {
	Split(text string) []string
}

// AuditStore persists request decision trails.
type AuditStore interface {
	Append(ctx context.Context, rec entities.AuditRecord) error
	Recent(ctx context.Context, limit int) ([]entities.AuditRecord, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// FileWatcher monitors directories for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory tree and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
