package providers

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// CompletionRequest contains the data sent to an LLM.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse contains the raw response from an LLM.
type CompletionResponse struct {
	Content    string
	TokensUsed int
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Name() string
}

// Options configures a provider client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts made on rate-limit and 5xx
	// responses. Zero means a single call.
	Retries int
}

const defaultMaxTokens = 300

// New creates a provider by name.
func New(provider, model string, opts Options) (Completer, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model, opts)
	case "openai":
		return NewOpenAI(model, opts)
	case "gemini", "google":
		return NewGemini(model, opts)
	case "ollama", "lmstudio":
		return NewOllama(model, opts), nil
	default:
		return nil, errors.WithHint(
			errors.Newf("unknown provider: %s", provider),
			"supported providers: anthropic, openai, gemini, ollama",
		)
	}
}

// Label returns the display name of a provider.
func Label(provider string) string {
	switch provider {
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	case "gemini", "google":
		return "Gemini"
	case "ollama":
		return "Ollama"
	case "lmstudio":
		return "LM Studio"
	default:
		return provider
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini", "google":
		return "gemini-2.0-flash"
	case "ollama", "lmstudio":
		return "llama3.2"
	default:
		return "claude-3-haiku-20240307"
	}
}

// NeedsKey reports whether the provider requires an API key.
func NeedsKey(provider string) bool {
	switch provider {
	case "ollama", "lmstudio":
		return false
	default:
		return true
	}
}

// KeyEnvVars returns the environment variables consulted for a provider's
// API key, in order.
func KeyEnvVars(provider string) []string {
	switch provider {
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "gemini", "google":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "ollama", "lmstudio":
		return []string{"CLIHELPER_OLLAMA_API_KEY"}
	default:
		return nil
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
