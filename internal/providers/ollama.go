package providers

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Completer interface for Ollama and LM Studio (OpenAI-compatible API).
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *resty.Client
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(model string, opts Options) *Ollama {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	// Normalize URL: strip trailing /, /v1, /v1/chat/completions
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}

	return &Ollama{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL + "/v1/chat/completions",
		retries: opts.Retries,
		client:  newClient(timeout),
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return chatComplete(ctx, o.client, o.baseURL, o.apiKey, o.model, o.retries, req)
}
