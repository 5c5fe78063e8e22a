package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"quillstream/internal/config"
	"quillstream/internal/provider"
	azureProvider "quillstream/internal/provider/azure"
	deepseekProvider "quillstream/internal/provider/deepseek"
	geminiProvider "quillstream/internal/provider/gemini"
	openaiProvider "quillstream/internal/provider/openai"
)

const (
	defaultDialTimeout           = 10 * time.Second
	defaultKeepAlive             = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultResponseHeaderTimeout = 60 * time.Second
)

// New builds the adapter for id. Every ProviderID has a case; an id outside
// the set is reported as config.ErrUnknownProvider.
func New(id config.ProviderID, cfg config.ProviderConfig, client *http.Client) (provider.Adapter, error) {
	var (
		adapter provider.Adapter
		err     error
	)
	switch id {
	case config.OpenAI:
		adapter, err = adapt(openaiProvider.New(cfg, client))
	case config.Azure:
		adapter, err = adapt(azureProvider.New(cfg, client))
	case config.Gemini:
		adapter, err = adapt(geminiProvider.New(cfg, client))
	case config.DeepSeek:
		adapter, err = adapt(deepseekProvider.New(cfg, client))
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, id)
	}
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// adapt keeps a failed constructor from producing a non-nil interface around a nil pointer.
func adapt[T provider.Adapter](a T, err error) (provider.Adapter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterConfiguredProviders constructs an adapter for every provider that has
// credentials and stores it in the registry. The active provider must succeed.
func RegisterConfiguredProviders(cfg config.Config, registry *provider.Registry) error {
	if registry == nil {
		return errors.New("registry must not be nil")
	}

	active, err := cfg.Active()
	if err != nil {
		return err
	}

	client := NewHTTPClient()
	for _, id := range config.ProviderIDs {
		pc := cfg.Provider(id)
		if strings.TrimSpace(pc.APIKey) == "" {
			continue
		}

		adapter, err := New(id, *pc, client)
		if err != nil {
			if id == active {
				return fmt.Errorf("initialise %s provider: %w", id, err)
			}
			slog.Warn("skipping provider", "provider", id, "err", err)
			continue
		}
		if err := registry.Register(adapter); err != nil {
			return fmt.Errorf("register %s provider: %w", id, err)
		}
	}

	if _, err := registry.Lookup(active); err != nil {
		return fmt.Errorf("active provider %s: %w", active, err)
	}
	return nil
}

// NewHTTPClient returns the outbound client shared by all adapters. Proxy
// settings come from HTTP_PROXY, HTTPS_PROXY and NO_PROXY. There is no overall
// timeout because completions stream for as long as the model writes.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
