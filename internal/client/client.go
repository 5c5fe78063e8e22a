package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// RateLimitMessage is shown when the server answers 429.
const RateLimitMessage = "You have reached your request limit for the day."

var (
	// ErrRateLimited matches an *APIError carrying status 429.
	ErrRateLimited = errors.New("request limit reached")
	// ErrSuperseded is returned by a Complete call that was stopped or replaced by a newer one.
	ErrSuperseded = errors.New("completion superseded by a newer request")
)

// APIError is a failure reported by the server, either as a non-2xx response
// or as an error frame after streaming began.
type APIError struct {
	Status   int
	Kind     string
	Provider string
	Message  string
}

func (e *APIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == http.StatusTooManyRequests
}

// Options tune a generate call. Option picks the command; Command is the
// free-form instruction for "zap".
type Options struct {
	Option   string `json:"option"`
	Command  string `json:"command,omitempty"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
}

// Callbacks observe a completion. Each is optional and runs on the goroutine
// that called Complete.
type Callbacks struct {
	OnUpdate func(completion string)
	OnError  func(err error)
	OnFinish func(prompt, completion string)
}

// Completer consumes the /generate stream and accumulates the completion.
// Starting a new request supersedes the previous one; late deltas from a
// superseded request never reach the state or the callbacks.
type Completer struct {
	url    string
	http   *http.Client
	cb     Callbacks
	logger *slog.Logger

	mu         sync.Mutex
	generation uint64
	completion string
	loading    bool
	err        error
	cancel     context.CancelFunc
}

// New returns a Completer posting to url, the full address of the generate endpoint.
func New(url string, httpClient *http.Client, cb Callbacks) *Completer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Completer{url: url, http: httpClient, cb: cb, logger: slog.Default()}
}

func (c *Completer) Completion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completion
}

func (c *Completer) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Completer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stop cancels the in-flight request, if any. Text received so far is kept.
func (c *Completer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.generation++
	c.loading = false
}

// Complete sends prompt and blocks until the stream ends, returning the full
// completion. On failure the partial text stays available via Completion.
func (c *Completer) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen := c.begin(cancel)

	payload, err := json.Marshal(struct {
		Prompt string `json:"prompt"`
		Options
	}{Prompt: prompt, Options: opts})
	if err != nil {
		return "", c.fail(gen, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", c.fail(gen, fmt.Errorf("construct request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		if !c.current(gen) {
			return "", ErrSuperseded
		}
		return "", c.fail(gen, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.fail(gen, decodeAPIError(resp))
	}

	if err := c.consume(gen, resp.Body); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return "", err
		}
		return c.Completion(), c.fail(gen, err)
	}
	return c.finish(gen, prompt)
}

// begin makes a new request current. An older request keeps its connection;
// whatever it still delivers is dropped by the generation check.
func (c *Completer) begin(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cancel = cancel
	c.completion = ""
	c.err = nil
	c.loading = true
	return c.generation
}

func (c *Completer) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

// consume reads SSE frames. A blank line ends a frame; "event: error" marks
// the frame's data as a terminal failure.
func (c *Completer) consume(gen uint64, body io.Reader) error {
	rd := bufio.NewReader(body)
	event := ""
	for {
		line, readErr := rd.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if event == "error" {
				return decodeErrorFrame(data)
			}
			if err := c.applyDelta(gen, data); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if !c.current(gen) {
				return ErrSuperseded
			}
			return fmt.Errorf("read stream: %w", readErr)
		}
	}
}

func (c *Completer) applyDelta(gen uint64, data string) error {
	var delta struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(data), &delta); err != nil {
		c.logger.Warn("skipping malformed frame", "err", err)
		return nil
	}
	if delta.Text == "" {
		return nil
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.completion += delta.Text
	completion := c.completion
	c.mu.Unlock()

	if c.cb.OnUpdate != nil {
		c.cb.OnUpdate(completion)
	}
	return nil
}

func (c *Completer) finish(gen uint64, prompt string) (string, error) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return "", ErrSuperseded
	}
	c.loading = false
	c.cancel = nil
	completion := c.completion
	c.mu.Unlock()

	if c.cb.OnFinish != nil {
		c.cb.OnFinish(prompt, completion)
	}
	return completion, nil
}

func (c *Completer) fail(gen uint64, err error) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.loading = false
	c.cancel = nil
	c.err = err
	c.mu.Unlock()

	if c.cb.OnError != nil {
		c.cb.OnError(err)
	}
	return err
}

type errorPayload struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Provider string `json:"provider"`
	Status   int    `json:"status"`
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &APIError{Status: resp.StatusCode}

	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		apiErr.Kind = payload.Kind
		apiErr.Provider = payload.Provider
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.Message = RateLimitMessage
	}
	return apiErr
}

func decodeErrorFrame(data string) error {
	var payload errorPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil || payload.Error == "" {
		return &APIError{Message: "stream failed"}
	}
	return &APIError{Status: payload.Status, Kind: payload.Kind, Provider: payload.Provider, Message: payload.Error}
}
