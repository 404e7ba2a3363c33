// Package parser talks to the optional PDF text service used when the in-process
// PDF reader finds no text layer.
// Clean Architecture: Adapter implementing ports.DocumentParser.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultServiceURL is where the PDF text service listens by default.
const DefaultServiceURL = "http://localhost:8081"

const (
	parseTimeout     = 60 * time.Second
	pingTimeout      = 2 * time.Second
	maxResponseBytes = 32 << 20
)

// ErrNoText is returned when the service answers but recovers no text.
var ErrNoText = errors.New("pdf service returned no text")

// ServiceError is a failure reported by the service itself, either as a non-2xx
// status or as an error field in an otherwise valid reply.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pdf service: status %d", e.Status)
	}
	return fmt.Sprintf("pdf service: status %d: %s", e.Status, e.Message)
}

// PDFServiceParser sends raw PDF bytes to the service and returns the recovered text.
type PDFServiceParser struct {
	baseURL string
	client  *http.Client
}

// NewPDFServiceParser creates a client for the service at baseURL.
func NewPDFServiceParser(baseURL string) *PDFServiceParser {
	if baseURL == "" {
		baseURL = DefaultServiceURL
	}
	return &PDFServiceParser{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: parseTimeout},
	}
}

type parseReply struct {
	Text    string `json:"text"`
	Pages   int    `json:"pages"`
	Library string `json:"library,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Parse implements ports.DocumentParser. The file name travels as a query
// parameter; only the bytes are uploaded.
func (p *PDFServiceParser) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	endpoint := p.baseURL + "/parse?" + url.Values{"name": {filename}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling pdf service: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(body, 512))
		return "", &ServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var reply parseReply
	if err := json.NewDecoder(body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decoding pdf service reply: %w", err)
	}
	if reply.Error != "" {
		return "", &ServiceError{Status: resp.StatusCode, Message: reply.Error}
	}
	if strings.TrimSpace(reply.Text) == "" {
		return "", ErrNoText
	}

	log.Printf("[DEBUG] pdf service: %s pages=%d library=%s chars=%d", filename, reply.Pages, reply.Library, len(reply.Text))
	return reply.Text, nil
}

// Ping checks that the service answers GET /health with a 2xx status.
// It gives up after a couple of seconds regardless of ctx.
func (p *PDFServiceParser) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pdf service unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{Status: resp.StatusCode}
	}
	return nil
}
