package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/provider"
	"quillstream/internal/stream"
)

var prompt = []models.ChatMessage{
	{Role: models.RoleSystem, Content: "You continue text."},
	{Role: models.RoleUser, Content: "The cat sat"},
}

func TestInvokeStreamsDeltas(t *testing.T) {
	var got struct {
		Model       string          `json:"model"`
		Messages    []openAIMessage `json:"messages"`
		Temperature float64         `json:"temperature"`
		MaxTokens   int             `json:"max_tokens"`
		Stream      bool            `json:"stream"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization=%q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\" on\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\" the mat.\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 1000}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	inv, err := p.Invoke(context.Background(), prompt)
	if err != nil {
		t.Fatal(err)
	}
	deltas, err := stream.Collect(context.Background(), stream.New(inv.Body, stream.Normalizer{Provider: "openai", Parse: inv.Parse, Skip: inv.Skip}))
	if err != nil {
		t.Fatal(err)
	}
	if text := models.Join(deltas); text != " on the mat." {
		t.Fatalf("text=%q", text)
	}

	if got.Model != "gpt-4o-mini" || !got.Stream || got.Temperature != 0.7 || got.MaxTokens != 1000 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "You continue text.\n\nThe cat sat" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestInvokeFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{APIKey: "bad", BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Invoke(context.Background(), prompt)
	var reqErr *provider.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusUnauthorized || reqErr.Provider != config.OpenAI {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(config.ProviderConfig{BaseURL: "http://x"}, http.DefaultClient); !errors.Is(err, provider.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
