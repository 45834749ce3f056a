package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/leadnote"
)

// NoteHandler handles lead note endpoints.
type NoteHandler struct {
	noteService *leadnote.Service
	validator   *validator.Validate
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService *leadnote.Service) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		validator:   validator.New(),
	}
}

// Create handles POST /leads/:id/notes.
func (h *NoteHandler) Create(c echo.Context) error {
	leadID, err := parseID(c)
	if err != nil {
		return err
	}

	req, err := h.bindNote(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	note, err := h.noteService.Create(c.Request().Context(), leadID, actor, *req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// List handles GET /leads/:id/notes.
func (h *NoteHandler) List(c echo.Context) error {
	leadID, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	notes, err := h.noteService.List(c.Request().Context(), leadID, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notes": notes})
}

// Update handles PATCH /notes/:id.
func (h *NoteHandler) Update(c echo.Context) error {
	noteID, err := parseID(c)
	if err != nil {
		return err
	}

	req, err := h.bindNote(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	note, err := h.noteService.Update(c.Request().Context(), noteID, actor, *req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /notes/:id.
func (h *NoteHandler) Delete(c echo.Context) error {
	noteID, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	if err := h.noteService.Delete(c.Request().Context(), noteID, actor); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NoteHandler) bindNote(c echo.Context) (*leadnote.NoteRequest, error) {
	var req leadnote.NoteRequest
	if err := c.Bind(&req); err != nil {
		return nil, badRequest(c, "invalid_body", "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return nil, badRequest(c, "validation_error", err.Error())
	}
	return &req, nil
}
