package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"quillstream/internal/config"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "quillstream/0.1"

	// maxErrorBodySize caps how much of a failed response is read for its message.
	maxErrorBodySize = 64 * 1024
)

// Header is one extra request header.
type Header struct {
	Key   string
	Value string
}

// PostStream sends payload as JSON and returns the response body left open for
// incremental reading. On any failure the body has already been closed and the
// returned error is a *RequestError.
func PostStream(ctx context.Context, client *http.Client, id config.ProviderID, url string, payload any, headers ...Header) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Provider: id, Message: "marshal payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Provider: id, Message: "construct request", Err: err}
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", "text/event-stream, application/json")
	req.Header.Set("User-Agent", userAgent)
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &RequestError{Provider: id, Err: fmt.Errorf("send request: %w", redactURLError(err))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer closeWithLog(resp.Body)
		return nil, &RequestError{
			Provider: id,
			Status:   resp.StatusCode,
			Message:  readErrorMessage(resp.Body),
		}
	}
	return resp.Body, nil
}

// readErrorMessage extracts error.message from an upstream error body. The
// read is capped, so a long body may arrive truncated; it is repaired before
// giving up on structured decoding.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return ""
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil || json.Unmarshal([]byte(repaired), &envelope) != nil {
			return strings.TrimSpace(string(data))
		}
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil && detail.Message != "" {
		return detail.Message
	}
	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil && plain != "" {
		return plain
	}
	return strings.TrimSpace(string(data))
}

func closeWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close response body", "err", err)
	}
}

// redactURLError strips query parameters from the URL embedded in a transport
// error; Gemini carries its API key there.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil && u.RawQuery != "" {
		u.RawQuery = "redacted"
		return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
	}
	return err
}
