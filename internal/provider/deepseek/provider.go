package deepseek

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/provider"
)

// Provider streams chat completions from DeepSeek. Unlike the other adapters
// it forwards the full ordered message list.
type Provider struct {
	apiKey  string
	model   string
	client  *http.Client
	chatURL string
}

// New creates a new DeepSeek provider.
func New(cfg config.ProviderConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, provider.ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  client,
		chatURL: baseURL + "/chat/completions",
	}, nil
}

func (p *Provider) ID() config.ProviderID {
	return config.DeepSeek
}

type chatPayload struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

func (p *Provider) Invoke(ctx context.Context, messages []models.ChatMessage) (*provider.Invocation, error) {
	if err := provider.ValidateMessages(messages); err != nil {
		return nil, err
	}

	payload := chatPayload{
		Model:    p.model,
		Messages: messages,
		Stream:   true,
	}

	body, err := provider.PostStream(ctx, p.client, config.DeepSeek, p.chatURL, payload,
		provider.Header{Key: "Authorization", Value: "Bearer " + p.apiKey},
	)
	if err != nil {
		return nil, err
	}

	return &provider.Invocation{
		Body:  body,
		Parse: provider.ParseChatDelta,
		Skip:  provider.SkipDoneOrStop,
	}, nil
}
