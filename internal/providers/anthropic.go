package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements the Completer interface for Anthropic's API.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *resty.Client
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string, opts Options) (*Anthropic, error) {
	if opts.APIKey == "" {
		return nil, errors.WithHint(
			errors.New("no Anthropic API key configured"),
			"set ANTHROPIC_API_KEY or run `clihelper key set`",
		)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = anthropicAPIURL
	}
	return &Anthropic{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		retries: opts.Retries,
		client:  newClient(opts.Timeout),
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	temperature := req.Temperature
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
		Temperature: &temperature,
		System:      req.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, errors.Wrap(err, "marshaling request")
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, a.retries, func() error {
		httpResp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("x-api-key", a.apiKey).
			SetHeader("anthropic-version", anthropicAPIVersion).
			SetBody(payload).
			Post(a.baseURL)
		if err != nil {
			return errors.Wrap(err, "sending request")
		}
		if err := classifyStatus(httpResp.StatusCode(), httpResp.Body()); err != nil {
			return err
		}

		var result anthropicResponse
		if err := json.Unmarshal(httpResp.Body(), &result); err != nil {
			return errors.Wrap(err, "parsing response")
		}

		var content string
		for _, block := range result.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return errors.New("empty text content in API response")
		}

		resp = CompletionResponse{
			Content:    content,
			TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		}
		return nil
	})

	return resp, err
}

func newClient(timeout time.Duration) *resty.Client {
	c := resty.New().SetDisableWarn(true)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
