package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quillstream/internal/gateway"
)

type requestError struct {
	Status  int
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

func badRequest(message string) requestError {
	return requestError{Status: http.StatusBadRequest, Message: message}
}

// errorBody is the JSON shape of every failed response and of the mid-stream error frame.
type errorBody struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Provider string `json:"provider,omitempty"`
	Status   int    `json:"status,omitempty"`
}

func errorBodyFor(gwErr *gateway.Error) errorBody {
	body := errorBody{Error: gwErr.Message, Kind: string(gwErr.Kind), Provider: gwErr.Provider}
	if gwErr.Kind == gateway.KindProviderRequest {
		body.Status = gwErr.Status
	}
	return body
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		_ = c.JSON(gwErr.HTTPStatus(), errorBodyFor(gwErr))
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = c.JSON(reqErr.Status, errorBody{Error: reqErr.Message})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		_ = c.JSON(he.Code, errorBody{Error: msg})
		return
	}

	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
