// Package llm provides external knowledge adapters.
// Clean Architecture: Adapters implementing ports.KnowledgeService.
// Only sanitized, generic prompts are ever passed in; the adapters never see document text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// OpenAI defaults.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
	DefaultTimeout       = 30 * time.Second
)

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

// OpenAIConfig configures the OpenAI Responses API client.
type OpenAIConfig struct {
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
}

// OpenAIClient implements ports.KnowledgeService using the OpenAI Responses API.
type OpenAIClient struct {
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenAIClient creates a Responses API client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: newLimiter(cfg.RequestsPerMinute),
	}
}

type inputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

// responsesRequest is the Responses API request.
type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
}

// responsesResponse holds the fields we read from a Responses API reply.
type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	OutputText string `json:"output_text"`
}

// Ask sends one sanitized prompt and returns the text of the reply.
// An empty reply is returned as "" with a nil error.
func (c *OpenAIClient) Ask(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", classify(ErrMissingCredential)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", classify(ErrEmptyPrompt)
	}

	// The fixed timeout covers the limiter queue and the request.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := waitTurn(ctx, c.limiter); err != nil {
		return "", err
	}

	reqBody := responsesRequest{
		Model: c.model,
		Input: []inputMessage{{
			Role:    "user",
			Content: []inputContent{{Type: "input_text", Text: prompt}},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", classify(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(jsonData))
	if err != nil {
		return "", classify(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", classify(fmt.Errorf("calling OpenAI: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Printf("[ERROR] OpenAI status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", classify(&StatusError{Service: "OpenAI", Code: resp.StatusCode})
	}

	var out responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", malformed(fmt.Errorf("decoding response: %w", err))
	}

	text := responseText(out)
	log.Printf("[DEBUG] OpenAI answered in %s: chars=%d", time.Since(start).Round(time.Millisecond), len(text))
	return text, nil
}

// responseText joins the non-blank output parts, falling back to output_text.
func responseText(r responsesResponse) string {
	var chunks []string
	for _, item := range r.Output {
		for _, part := range item.Content {
			if strings.TrimSpace(part.Text) != "" {
				chunks = append(chunks, part.Text)
			}
		}
	}
	if len(chunks) == 0 && strings.TrimSpace(r.OutputText) != "" {
		chunks = append(chunks, r.OutputText)
	}
	return strings.TrimSpace(strings.Join(chunks, "\n"))
}
