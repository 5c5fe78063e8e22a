package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"quillstream/internal/config"
	"quillstream/internal/models"
	"quillstream/internal/stream"
)

// ErrMissingAPIKey indicates an adapter was built without a credential.
var ErrMissingAPIKey = errors.New("api key is not set")

// Adapter sends a prompt to one upstream backend and hands back its raw
// response body together with the strategy to parse it.
type Adapter interface {
	ID() config.ProviderID
	Invoke(ctx context.Context, messages []models.ChatMessage) (*Invocation, error)
}

// Invocation is an open upstream response. Body is owned by the receiver.
type Invocation struct {
	Body  io.ReadCloser
	Parse stream.ParseFunc
	Skip  stream.SkipFunc
}

// RequestError reports a non-success upstream HTTP status or a failed handshake.
type RequestError struct {
	Provider config.ProviderID
	Status   int
	Message  string
	Err      error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s request failed", e.Provider)
	if e.Status != 0 {
		fmt.Fprintf(&b, " with status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// JoinMessages flattens a prompt into one string for providers that take a
// single message. Parts are separated by a blank line.
func JoinMessages(messages []models.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

// ValidateMessages rejects an empty prompt.
func ValidateMessages(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return errors.New("prompt must contain at least one message")
	}
	return nil
}
