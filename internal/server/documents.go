package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quillstream/internal/document"
)

type documentRequest struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

func (s *Server) handleListDocuments(c echo.Context) error {
	docs, err := s.documents.List(c.Request().Context())
	if err != nil {
		return documentError(err)
	}
	return c.JSON(http.StatusOK, docs)
}

func (s *Server) handleGetDocument(c echo.Context) error {
	doc, err := s.documents.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return documentError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleCreateDocument(c echo.Context) error {
	var req documentRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	doc, err := s.documents.Create(c.Request().Context(), req.Title, req.Content)
	if err != nil {
		return documentError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleSaveDocument(c echo.Context) error {
	var req documentRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	doc, err := s.documents.Save(c.Request().Context(), c.Param("id"), req.Title, req.Content)
	if err != nil {
		return documentError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	if err := s.documents.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return documentError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func documentError(err error) error {
	switch {
	case errors.Is(err, document.ErrNotFound):
		return requestError{Status: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, document.ErrInvalidContent):
		return badRequest(err.Error())
	}
	return err
}
