package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini implements the Completer interface for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	retries int
	client  *resty.Client
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.WithHint(
			errors.New("no Gemini API key configured"),
			"set GEMINI_API_KEY (or GOOGLE_API_KEY) or run `clihelper key set`",
		)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIURL
	}
	return &Gemini{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		retries: opts.Retries,
		client:  newClient(opts.Timeout),
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)

	temperature := req.Temperature
	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens: maxTokensOrDefault(req.MaxTokens),
			Temperature:     &temperature,
		},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, errors.Wrap(err, "marshaling request")
	}

	var resp CompletionResponse
	err = retryWithBackoff(ctx, g.retries, func() error {
		httpResp, err := g.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetQueryParam("key", g.apiKey).
			SetBody(payload).
			Post(url)
		if err != nil {
			return errors.Wrap(err, "sending request")
		}
		if err := classifyStatus(httpResp.StatusCode(), httpResp.Body()); err != nil {
			return err
		}

		var result geminiResponse
		if err := json.Unmarshal(httpResp.Body(), &result); err != nil {
			return errors.Wrap(err, "parsing response")
		}

		if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
			return errors.New("no content in response")
		}

		var content string
		for _, part := range result.Candidates[0].Content.Parts {
			content += part.Text
		}
		if strings.TrimSpace(content) == "" {
			if reason := result.Candidates[0].FinishReason; reason != "" && reason != "STOP" {
				return errors.Newf("empty text content in API response (finish reason %s)", reason)
			}
			return errors.New("empty text content in API response")
		}

		resp = CompletionResponse{
			Content:    content,
			TokensUsed: result.UsageMetadata.TotalTokenCount,
		}
		return nil
	})

	return resp, err
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
