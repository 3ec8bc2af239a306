package providers

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Completer interface for OpenAI's API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *resty.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string, opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, errors.WithHint(
			errors.New("no OpenAI API key configured"),
			"set OPENAI_API_KEY or run `clihelper key set`",
		)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("CLIHELPER_OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		retries: opts.Retries,
		client:  newClient(opts.Timeout),
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return chatComplete(ctx, o.client, o.baseURL, o.apiKey, o.model, o.retries, req)
}

// chatComplete sends an OpenAI-compatible chat completion request. It is
// shared by the OpenAI and Ollama providers.
func chatComplete(ctx context.Context, client *resty.Client, url, apiKey, model string, retries int, req CompletionRequest) (CompletionResponse, error) {
	var messages []openaiMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: req.Prompt})

	temperature := req.Temperature
	body := openaiRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
		Temperature: &temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, errors.Wrap(err, "marshaling request")
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, retries, func() error {
		r := client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload)
		if apiKey != "" {
			r.SetAuthToken(apiKey)
		}

		httpResp, err := r.Post(url)
		if err != nil {
			return errors.Wrap(err, "sending request")
		}
		if err := classifyStatus(httpResp.StatusCode(), httpResp.Body()); err != nil {
			return err
		}

		var result openaiResponse
		if err := json.Unmarshal(httpResp.Body(), &result); err != nil {
			return errors.Wrap(err, "parsing response")
		}

		if len(result.Choices) == 0 {
			return errors.New("no choices in response")
		}
		if result.Choices[0].Message.Content == "" {
			return errors.New("empty text content in API response")
		}

		resp = CompletionResponse{
			Content:    result.Choices[0].Message.Content,
			TokensUsed: result.Usage.TotalTokens,
		}
		return nil
	})

	return resp, err
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
