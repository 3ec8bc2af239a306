package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortBackoff(t *testing.T) {
	t.Helper()
	orig := backoffUnit
	backoffUnit = time.Millisecond
	t.Cleanup(func() { backoffUnit = orig })
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("unknown", "model", Options{})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "supported providers")
}

func TestNew_GoogleAlias(t *testing.T) {
	p, err := New("google", "gemini-2.0-flash", Options{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
}

func TestNew_OllamaNeedsNoKey(t *testing.T) {
	p, err := New("ollama", "llama3.2", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestLabelAndDefaults(t *testing.T) {
	assert.Equal(t, "Anthropic", Label("anthropic"))
	assert.Equal(t, "Gemini", Label("google"))
	assert.Equal(t, "custom", Label("custom"))

	assert.Equal(t, "claude-3-haiku-20240307", DefaultModel("anthropic"))
	assert.Equal(t, "gpt-4o-mini", DefaultModel("openai"))

	assert.True(t, NeedsKey("anthropic"))
	assert.False(t, NeedsKey("ollama"))
	assert.Equal(t, []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, KeyEnvVars("gemini"))
}

func TestComplete_NoRetryByDefault(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()

	a := newTestAnthropic(t, server.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	shortBackoff(t)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(503)
			return
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicBlock{{Type: "text", Text: "done"}},
		})
	}))
	defer server.Close()

	a, err := NewAnthropic("m", Options{APIKey: "k", BaseURL: server.URL, Retries: 3})
	require.NoError(t, err)

	resp, err := a.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 3, attempts)
}

func TestComplete_RateLimitExhausted(t *testing.T) {
	shortBackoff(t)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(429)
	}))
	defer server.Close()

	o, err := NewOpenAI("m", Options{APIKey: "k", BaseURL: server.URL, Retries: 2})
	require.NoError(t, err)

	_, err = o.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 3, attempts)
}

func TestComplete_AuthNotRetried(t *testing.T) {
	shortBackoff(t)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(403)
	}))
	defer server.Close()

	a, _ := NewAnthropic("m", Options{APIKey: "k", BaseURL: server.URL, Retries: 3})
	_, err := a.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, errors.FlattenHints(err), "API key")
	assert.Equal(t, 1, attempts)
}

func TestComplete_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	a := newTestAnthropic(t, url)
	_, err := a.Complete(context.Background(), CompletionRequest{Prompt: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending request")
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, 5, func() error {
		calls++
		cancel()
		return &rateLimitError{}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestClassifyStatus(t *testing.T) {
	assert.NoError(t, classifyStatus(200, nil))
	assert.True(t, IsRateLimited(classifyStatus(429, nil)))
	assert.True(t, IsAuthError(classifyStatus(401, []byte("bad key"))))

	var se *serverError
	assert.True(t, errors.As(classifyStatus(502, []byte("gateway")), &se))
	assert.Contains(t, classifyStatus(400, []byte("bad request")).Error(), "status 400")
}
