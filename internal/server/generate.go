package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"quillstream/internal/gateway"
	"quillstream/internal/models"
)

// generateRequest is the /generate body. Option names the command; Command is
// the free-form instruction used by "zap".
type generateRequest struct {
	Prompt   string `json:"prompt"`
	Option   string `json:"option"`
	Command  string `json:"command,omitempty"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
}

func (r generateRequest) toCompletion() models.CompletionRequest {
	return models.CompletionRequest{
		InputText:   r.Prompt,
		Command:     r.Option,
		Instruction: r.Command,
		Language:    r.Language,
		Format:      r.Format,
	}
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	completion, err := s.gateway.Handle(ctx, req.toCompletion())
	if err != nil {
		return err
	}
	defer completion.Close()

	writer := c.Response().Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		s.logger.Error("http writer does not support flushing")
		return requestError{Status: http.StatusInternalServerError, Message: "server does not support streaming responses"}
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for delta, err := range completion.Deltas(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("client went away", "provider", completion.Provider())
				return nil
			}
			s.logger.Error("stream failed", "provider", completion.Provider(), "err", err)
			var gwErr *gateway.Error
			if !errors.As(err, &gwErr) {
				gwErr = &gateway.Error{Kind: gateway.KindNetwork, Message: err.Error(), Provider: completion.Provider()}
			}
			if werr := writeSSEEvent(writer, "error", errorBodyFor(gwErr)); werr != nil {
				return nil
			}
			flusher.Flush()
			return nil
		}
		if werr := writeSSEData(writer, delta); werr != nil {
			s.logger.Warn("write delta", "err", werr)
			return nil
		}
		flusher.Flush()
	}
	return nil
}

func writeSSEData(w io.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE data: %w", err)
	}
	return nil
}

func writeSSEEvent(w io.Writer, event string, payload any) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write SSE event name: %w", err)
	}
	return writeSSEData(w, payload)
}
