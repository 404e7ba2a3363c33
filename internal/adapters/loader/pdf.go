package loader

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

// pdfReader extracts PDF text in-process and falls back to the PDF service.
type pdfReader struct {
	fallback ports.DocumentParser
}

func (p *pdfReader) read(ctx context.Context, path string) (string, error) {
	text, err := readPDFPlain(path)
	if err == nil && text != "" {
		return text, nil
	}
	if err != nil {
		log.Printf("[DEBUG] in-process PDF read failed for %s: %v", filepath.Base(path), err)
	}
	if p.fallback == nil {
		return text, err
	}

	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return "", fmt.Errorf("reading pdf: %w", rerr)
	}
	text, err = p.fallback.Parse(ctx, data, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("pdf fallback: %w", err)
	}
	return cleanPDFContent(text), nil
}

func readPDFPlain(path string) (text string, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return cleanPDFContent(buf.String()), nil
}
