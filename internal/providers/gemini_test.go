package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGemini_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("Missing key query parameter")
		}
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.SystemInstruction != nil {
			t.Error("SystemInstruction should be omitted when empty")
		}
		if req.GenerationConfig == nil || req.GenerationConfig.MaxOutputTokens != 300 {
			t.Errorf("GenerationConfig = %+v", req.GenerationConfig)
		}

		json.NewEncoder(w).Encode(geminiResponse{
			Candidates:    []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{{Text: "part one, "}, {Text: "part two"}}}}},
			UsageMetadata: geminiUsage{TotalTokenCount: 7},
		})
	}))
	defer server.Close()

	g, err := NewGemini("gemini-2.0-flash", Options{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGemini error: %v", err)
	}

	resp, err := g.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "part one, part two" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 7 {
		t.Errorf("TokensUsed = %d, want 7", resp.TokensUsed)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer server.Close()

	g, _ := NewGemini("gemini-2.0-flash", Options{APIKey: "k", BaseURL: server.URL})
	if _, err := g.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("Expected error for empty candidates")
	}
}

func TestNewGemini_MissingKey(t *testing.T) {
	if _, err := NewGemini("gemini-2.0-flash", Options{}); err == nil {
		t.Error("Expected error when API key is empty")
	}
}

func TestGemini_EmptyText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty part", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, "empty text content"},
		{"whitespace parts", `{"candidates":[{"content":{"parts":[{"text":" "},{"text":"\n"}]}}]}`, "empty text content"},
		{"blocked", `{"candidates":[{"content":{"parts":[{"text":""}]},"finishReason":"SAFETY"}]}`, "finish reason SAFETY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g, _ := NewGemini("gemini-2.0-flash", Options{APIKey: "k", BaseURL: server.URL})
			resp, err := g.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
			if err == nil {
				t.Fatalf("Expected error for empty text, got content %q", resp.Content)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
