// Package loader provides document extraction adapters.
// Clean Architecture: Adapter implementing ports.DocumentExtractor.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

// DefaultMaxChars caps extracted text.
const DefaultMaxChars = 200_000

// ErrUnsupportedFormat is returned by format readers for extensions they do not handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FileTypeUnknown tags extractions of unsupported files.
const FileTypeUnknown = "unknown"

// reader pulls text out of one document format.
type reader func(ctx context.Context, path string) (string, error)

// Extractor dispatches to a format reader by extension.
// Unsupported or unreadable files are reported through Extraction.Status.
type Extractor struct {
	maxChars int
	readers  map[string]format
}

type format struct {
	tag  string
	read reader
}

// NewExtractor creates an extractor. pdfFallback is tried when the in-process PDF
// reader yields no text; it may be nil.
func NewExtractor(maxChars int, pdfFallback ports.DocumentParser) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	pdf := &pdfReader{fallback: pdfFallback}
	return &Extractor{
		maxChars: maxChars,
		readers: map[string]format{
			".txt":      {"txt", readText},
			".md":       {"md", readText},
			".markdown": {"md", readText},
			".csv":      {"csv", readText},
			".docx":     {"docx", readDOCX},
			".xlsx":     {"xlsx", readXLSX},
			".pdf":      {"pdf", pdf.read},
		},
	}
}

// Extract implements ports.DocumentExtractor.
func (e *Extractor) Extract(ctx context.Context, path string) entities.Extraction {
	tag, text, err := e.read(ctx, path)
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return entities.Extraction{FileType: FileTypeUnknown, Status: entities.ExtractUnsupported}
	case err != nil:
		log.Printf("[ERROR] extract %s (%s): %v", filepath.Base(path), tag, err)
		return entities.Extraction{FileType: tag, Status: entities.ExtractFailed}
	}

	return entities.Extraction{
		Text:     clip(text, e.maxChars),
		FileType: tag,
		Status:   entities.ExtractOK,
	}
}

func (e *Extractor) read(ctx context.Context, path string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := e.readers[ext]
	if !ok {
		return FileTypeUnknown, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	text, err := f.read(ctx, path)
	return f.tag, text, err
}

// SupportedExtensions returns the handled extensions, sorted. Discovery and
// watching use this list so they never offer a file Extract cannot read.
func (e *Extractor) SupportedExtensions() []string {
	exts := make([]string, 0, len(e.readers))
	for ext := range e.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// readText reads a UTF-8 text file, dropping invalid bytes.
func readText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// clip truncates to n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// cleanPDFContent removes control bytes left over from PDF text streams.
func cleanPDFContent(content string) string {
	var cleaned strings.Builder
	for _, r := range content {
		if r >= 32 && r != utf8.RuneError && r != 127 || r == '\n' || r == '\t' {
			cleaned.WriteRune(r)
		}
	}
	return strings.TrimSpace(cleaned.String())
}
