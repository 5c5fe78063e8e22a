package gateway

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quillstream/internal/config"
	"quillstream/internal/markup"
	"quillstream/internal/metrics"
	"quillstream/internal/models"
	"quillstream/internal/prompt"
	"quillstream/internal/provider"
	"quillstream/internal/stream"
)

// Options configures a Gateway. ActiveProvider and Language are read once.
type Options struct {
	Registry       *provider.Registry
	ActiveProvider string
	Language       string
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
}

// Gateway validates completion requests, builds prompts and dispatches them
// to the active provider.
type Gateway struct {
	registry *provider.Registry
	active   string
	language prompt.Language
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// New constructs a gateway. A missing registry or provider is reported per request.
func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = provider.NewRegistry()
	}
	return &Gateway{
		registry: registry,
		active:   opts.ActiveProvider,
		language: prompt.ParseLanguage(opts.Language),
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Handle turns req into an open completion stream or a single *Error. Nothing
// is sent upstream unless the command, input and provider are all valid.
func (g *Gateway) Handle(ctx context.Context, req models.CompletionRequest) (*Completion, error) {
	cmd, err := prompt.ParseCommand(req.Command)
	if err != nil {
		return nil, g.reject(&Error{Kind: KindUnsupportedCommand, Message: err.Error(), Status: http.StatusBadRequest, Err: err})
	}

	format, err := markup.ParseFormat(req.Format)
	if err != nil {
		return nil, g.reject(&Error{Kind: KindInvalidRequest, Message: err.Error(), Status: http.StatusBadRequest, Err: err})
	}
	text, err := markup.Normalize(req.InputText, format)
	if err != nil {
		return nil, g.reject(&Error{Kind: KindInvalidRequest, Message: err.Error(), Status: http.StatusBadRequest, Err: err})
	}
	if strings.TrimSpace(text) == "" {
		return nil, g.reject(&Error{Kind: KindInvalidRequest, Message: "prompt must not be empty", Status: http.StatusBadRequest})
	}

	lang := g.language
	if req.Language != "" {
		lang = prompt.ParseLanguage(req.Language)
	}

	messages, err := prompt.Build(cmd, text, req.Instruction, lang)
	if err != nil {
		return nil, g.reject(&Error{Kind: KindUnsupportedCommand, Message: err.Error(), Status: http.StatusBadRequest, Err: err})
	}

	adapter, err := g.selectAdapter()
	if err != nil {
		g.metrics.ObserveRequest(g.active, metrics.OutcomeRejected)
		g.logger.Error("no usable provider", "provider", g.active, "err", err)
		return nil, &Error{
			Kind:     KindConfiguration,
			Message:  err.Error(),
			Provider: g.active,
			Status:   http.StatusInternalServerError,
			Err:      fmt.Errorf("%w: %w", ErrConfiguration, err),
		}
	}
	providerID := string(adapter.ID())

	started := time.Now()
	inv, err := adapter.Invoke(ctx, messages[:])
	if err != nil {
		g.metrics.ObserveRequest(providerID, metrics.OutcomeUpstream)
		gwErr := fromInvokeError(providerID, err)
		g.logger.Error("provider request failed", "provider", providerID, "status", gwErr.Status, "err", err)
		return nil, gwErr
	}

	s := stream.New(inv.Body, stream.Normalizer{
		Provider: providerID,
		Parse:    inv.Parse,
		Skip:     inv.Skip,
		Logger:   g.logger,
		OnParseError: func(error) {
			g.metrics.ObserveParseError(providerID)
		},
	})
	return &Completion{stream: s, started: started, metrics: g.metrics}, nil
}

// reject counts a request refused before any provider call.
func (g *Gateway) reject(gwErr *Error) *Error {
	g.metrics.ObserveRequest(g.active, metrics.OutcomeRejected)
	return gwErr
}

func (g *Gateway) selectAdapter() (provider.Adapter, error) {
	id, err := config.ParseProviderID(g.active)
	if err != nil {
		return nil, err
	}
	return g.registry.Lookup(id)
}

func fromInvokeError(providerID string, err error) *Error {
	var reqErr *provider.RequestError
	if errors.As(err, &reqErr) {
		status := reqErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return &Error{
			Kind:     KindProviderRequest,
			Message:  reqErr.Error(),
			Provider: providerID,
			Status:   status,
			Err:      err,
		}
	}
	return &Error{
		Kind:     KindProviderRequest,
		Message:  fmt.Sprintf("%s request failed: %v", providerID, err),
		Provider: providerID,
		Status:   http.StatusInternalServerError,
		Err:      err,
	}
}

// Completion is an open provider stream rewritten into TextDeltas.
type Completion struct {
	stream  *stream.Stream
	started time.Time
	metrics *metrics.Recorder
}

// Provider reports which backend serves this completion.
func (c *Completion) Provider() string {
	return c.stream.Provider()
}

// Deltas yields TextDeltas in provider order. A non-nil error is a terminal
// *Error; deltas already yielded stand.
func (c *Completion) Deltas(ctx context.Context) iter.Seq2[models.TextDelta, error] {
	return func(yield func(models.TextDelta, error) bool) {
		providerID := c.Provider()
		outcome := metrics.OutcomeOK
		defer func() {
			c.metrics.ObserveRequest(providerID, outcome)
			c.metrics.ObserveUpstream(providerID, time.Since(c.started))
		}()

		for delta, err := range c.stream.Deltas(ctx) {
			if err != nil {
				outcome = metrics.OutcomeStream
				yield(models.TextDelta{}, &Error{
					Kind:     KindNetwork,
					Message:  err.Error(),
					Provider: providerID,
					Err:      err,
				})
				return
			}
			c.metrics.ObserveDelta(providerID)
			if !yield(delta, nil) {
				return
			}
		}
	}
}

// Close releases the upstream response. Safe to call after Deltas finished.
func (c *Completion) Close() error {
	return c.stream.Close()
}
