package gemini

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

// Provider calls the Gemini generateContent endpoint. The API key travels in
// the query string.
type Provider struct {
	apiKey      string
	temperature float64
	maxTokens   int
	client      *http.Client
	generateURL string
}

// New creates a new Gemini provider.
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
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model must not be empty")
	}

	generateURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		baseURL, url.PathEscape(cfg.Model), url.QueryEscape(cfg.APIKey))

	return &Provider{
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      client,
		generateURL: generateURL,
	}, nil
}

func (p *Provider) ID() config.ProviderID {
	return config.Gemini
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Invoke sends the prompt flattened into a single content part.
func (p *Provider) Invoke(ctx context.Context, messages []models.ChatMessage) (*provider.Invocation, error) {
	if err := provider.ValidateMessages(messages); err != nil {
		return nil, err
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: provider.JoinMessages(messages)}}}},
		GenerationConfig: generationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: p.maxTokens,
		},
	}

	body, err := provider.PostStream(ctx, p.client, config.Gemini, p.generateURL, payload)
	if err != nil {
		return nil, err
	}

	return &provider.Invocation{
		Body:  newDocumentLines(body),
		Parse: ParseDocument,
	}, nil
}
