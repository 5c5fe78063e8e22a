package deepseek

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/stream"
)

func TestInvokeSendsFullMessageList(t *testing.T) {
	var got chatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer ds-key" {
			t.Errorf("authorization=%q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"A\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"B\"},\"finish_reason\":\"length\"}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"\"},\"finish_reason\":\"stop\"}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{APIKey: "ds-key", BaseURL: srv.URL, Model: "deepseek-chat"}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	msgs := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "system prompt"},
		{Role: models.RoleUser, Content: "user prompt"},
	}
	inv, err := p.Invoke(context.Background(), msgs)
	if err != nil {
		t.Fatal(err)
	}
	deltas, err := stream.Collect(context.Background(), stream.New(inv.Body, stream.Normalizer{Parse: inv.Parse, Skip: inv.Skip}))
	if err != nil {
		t.Fatal(err)
	}
	// DeepSeek frames only stop on "stop"; a "length" frame still carries text.
	if text := models.Join(deltas); text != "AB" {
		t.Fatalf("text=%q", text)
	}
	if got.Model != "deepseek-chat" || !got.Stream {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0] != msgs[0] || got.Messages[1] != msgs[1] {
		t.Fatalf("messages=%+v", got.Messages)
	}
}
