package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

func classOf(t *testing.T, err error) string {
	t.Helper()
	var ke *ports.KnowledgeError
	require.True(t, errors.As(err, &ke), "expected KnowledgeError, got %v", err)
	return ke.Class
}

func TestOpenAIClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req responsesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Input, 1)
		assert.Equal(t, "user", req.Input[0].Role)
		assert.Equal(t, []inputContent{{Type: "input_text", Text: "general question"}}, req.Input[0].Content)

		w.Write([]byte(`{"output":[
			{"type":"reasoning","content":[]},
			{"type":"message","content":[{"type":"output_text","text":"- Threat modeling"},{"type":"output_text","text":"  "},{"type":"output_text","text":"- SIEM"}]}
		]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL + "/v1/", Model: "gpt-test", APIKey: "sk-test"})
	text, err := client.Ask(context.Background(), "general question")

	require.NoError(t, err)
	assert.Equal(t, "- Threat modeling\n- SIEM", text)
}

func TestOpenAIClient_OutputTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[],"output_text":"fallback text"}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k"})
	text, err := client.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "fallback text", text)
}

func TestOpenAIClient_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[]}`))
	}))
	defer server.Close()

	text, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}).Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAIClient_MissingCredential(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL}).Ask(context.Background(), "q")

	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, ports.KnowledgeMissingCredential, classOf(t, err))
	assert.False(t, called, "no request without a credential")
}

func TestOpenAIClient_EmptyPrompt(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{APIKey: "k"}).Ask(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, ports.KnowledgeEmptyPrompt, classOf(t, err))
}

func TestOpenAIClient_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}).Ask(context.Background(), "q")

	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, ports.KnowledgeHTTPStatus, classOf(t, err))
}

func TestOpenAIClient_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}).Ask(context.Background(), "q")

	assert.Equal(t, ports.KnowledgeMalformed, classOf(t, err))
}

func TestOpenAIClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := client.Ask(context.Background(), "q")

	assert.Equal(t, ports.KnowledgeTimeout, classOf(t, err))
}

func TestOpenAIClient_Defaults(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{})

	assert.Equal(t, DefaultOpenAIBaseURL, client.baseURL)
	assert.Equal(t, DefaultOpenAIModel, client.model)
	assert.Equal(t, DefaultTimeout, client.client.Timeout)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, 3, newLimiter(30).Burst())
	assert.Equal(t, 1, newLimiter(5).Burst())
	assert.True(t, newLimiter(0).Allow())
}

func TestOpenAIClient_LimiterWaitCountsTowardTimeout(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"output_text":"ok"}`))
	}))
	defer server.Close()

	// One request per minute: the second call would queue for a minute.
	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Timeout: 50 * time.Millisecond, RequestsPerMinute: 1})

	_, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Ask(context.Background(), "q")

	assert.Equal(t, ports.KnowledgeTimeout, classOf(t, err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, calls)
}
