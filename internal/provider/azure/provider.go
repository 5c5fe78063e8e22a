package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/provider"
)

// Provider streams chat completions from an Azure OpenAI deployment.
type Provider struct {
	apiKey      string
	temperature float64
	maxTokens   int
	client      *http.Client
	chatURL     string
}

// New creates a provider for the deployment named by cfg.Model.
func New(cfg config.ProviderConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, provider.ErrMissingAPIKey
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/")
	if endpoint == "" {
		return nil, errors.New("endpoint must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("deployment must not be empty")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = config.DefaultAzureAPIVer
	}

	chatURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		endpoint, url.PathEscape(cfg.Model), url.QueryEscape(apiVersion))

	return &Provider{
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      client,
		chatURL:     chatURL,
	}, nil
}

func (p *Provider) ID() config.ProviderID {
	return config.Azure
}

// The deployment in the URL selects the model, so no model field is sent.
type chatPayload struct {
	Messages    []azureMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Stream      bool           `json:"stream"`
}

type azureMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Invoke sends the prompt flattened into a single user message.
func (p *Provider) Invoke(ctx context.Context, messages []models.ChatMessage) (*provider.Invocation, error) {
	if err := provider.ValidateMessages(messages); err != nil {
		return nil, err
	}

	payload := chatPayload{
		Messages:    []azureMessage{{Role: string(models.RoleUser), Content: provider.JoinMessages(messages)}},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      true,
	}

	body, err := provider.PostStream(ctx, p.client, config.Azure, p.chatURL, payload,
		provider.Header{Key: "api-key", Value: p.apiKey},
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
