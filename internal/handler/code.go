package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// CodeHandler handles code HTTP requests
type CodeHandler struct {
	codeService codingSvc.CodeService
	logger      *slog.Logger
}

// NewCodeHandler creates a new code handler
func NewCodeHandler(codeService codingSvc.CodeService, logger *slog.Logger) *CodeHandler {
	return &CodeHandler{
		codeService: codeService,
		logger:      logger,
	}
}

// updateCodeBody is the PATCH payload. A null description clears it.
type updateCodeBody struct {
	Name        *string                 `json:"name"`
	Description httputil.OptionalString `json:"description"`
	Color       *string                 `json:"color"`
}

// CreateCode creates a code
// POST /api/codes
// Returns 409 with resource_id of the existing code on a duplicate name
func (h *CodeHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.CreateCodeRequest
	if !parseBody(w, r, &req) {
		return
	}

	code, err := h.codeService.CreateCode(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, code)
}

// UpdateCode renames or recolors a code
// PATCH /api/codes/{id}
func (h *CodeHandler) UpdateCode(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateCodeBody
	if !parseBody(w, r, &body) {
		return
	}

	code, err := h.codeService.UpdateCode(r.Context(), who, id, &codingSvc.UpdateCodeRequest{
		Name:        body.Name,
		Description: body.Description.Patch(),
		Color:       body.Color,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, code)
}

// DeleteCode deletes a code and its assignments
// DELETE /api/codes/{id}
func (h *CodeHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.codeService.DeleteCode(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}
