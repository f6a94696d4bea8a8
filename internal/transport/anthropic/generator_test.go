package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

func newTestGenerator(url string) *Generator {
	return NewGenerator(Config{APIKey: "test-key", BaseURL: url, Model: "claude-test"}, zap.NewNop())
}

func TestGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("unexpected api key header: %q", r.Header.Get("X-Api-Key"))
		}
		var req struct {
			Model     string `json:"model"`
			System    string `json:"system"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System != "be kind" || req.MaxTokens != defaultMaxTokens || len(req.Messages) != 1 {
			t.Errorf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content":     []map[string]any{{"type": "text", "text": " You are not alone. "}},
			"usage":       map[string]int{"input_tokens": 5, "output_tokens": 4},
		})
	}))
	defer server.Close()

	got, err := newTestGenerator(server.URL).Generate(context.Background(), "be kind", "help")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "You are not alone." {
		t.Errorf("got %q", got)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]string{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "s", "p")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(Config{Model: "claude-test"}, zap.NewNop())
	if g.maxTokens != defaultMaxTokens {
		t.Errorf("maxTokens = %d", g.maxTokens)
	}
	if g.temperature != nil {
		t.Errorf("zero temperature should be left unset")
	}
	if g.ModelName() != "claude-test" {
		t.Errorf("ModelName() = %q", g.ModelName())
	}
}
