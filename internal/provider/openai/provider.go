package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/provider"
)

// Provider streams chat completions from an OpenAI-compatible API.
type Provider struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	chatURL     string
}

// New creates a new OpenAI provider.
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
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      client,
		chatURL:     baseURL + "/chat/completions",
	}, nil
}

func (p *Provider) ID() config.ProviderID {
	return config.OpenAI
}

type chatPayload struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Invoke sends the prompt flattened into a single user message.
func (p *Provider) Invoke(ctx context.Context, messages []models.ChatMessage) (*provider.Invocation, error) {
	if err := provider.ValidateMessages(messages); err != nil {
		return nil, err
	}

	payload := chatPayload{
		Model:       p.model,
		Messages:    []openAIMessage{{Role: string(models.RoleUser), Content: provider.JoinMessages(messages)}},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      true,
	}

	body, err := provider.PostStream(ctx, p.client, config.OpenAI, p.chatURL, payload,
		provider.Header{Key: "Authorization", Value: "Bearer " + p.apiKey},
	)
	if err != nil {
		return nil, err
	}

	return &provider.Invocation{
		Body:  body,
		Parse: provider.ParseChatDelta,
		Skip:  provider.SkipDoneOrFinish,
	}, nil
}
