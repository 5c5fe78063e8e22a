package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrConfiguration indicates no usable provider is configured.
var ErrConfiguration = errors.New("configuration error")

// Kind classifies a gateway failure.
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindUnsupportedCommand Kind = "unsupported_command"
	KindConfiguration      Kind = "configuration_error"
	KindProviderRequest    Kind = "provider_request_failed"
	KindNetwork            Kind = "network_error"
)

// Error is the single structured failure returned for a request. It ends the stream.
type Error struct {
	Kind     Kind
	Message  string
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status to answer with when the error happens before streaming starts.
func (e *Error) HTTPStatus() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	switch e.Kind {
	case KindInvalidRequest, KindUnsupportedCommand:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
