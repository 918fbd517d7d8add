package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// ThemeHandler handles theme HTTP requests
type ThemeHandler struct {
	themeService codingSvc.ThemeService
	logger       *slog.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themeService codingSvc.ThemeService, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{
		themeService: themeService,
		logger:       logger,
	}
}

// CreateTheme creates an empty theme
// POST /api/themes
func (h *ThemeHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.CreateThemeRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !bodyIDs(w, "project_id", req.ProjectID) {
		return
	}

	theme, err := h.themeService.CreateTheme(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, theme)
}

// UpdateTheme renames a theme or changes its description
// PATCH /api/themes/{id}
func (h *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.UpdateThemeRequest
	if !parseBody(w, r, &req) {
		return
	}

	theme, err := h.themeService.UpdateTheme(r.Context(), who, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, theme)
}

// DeleteTheme deletes a theme that groups no codes
// DELETE /api/themes/{id}
func (h *ThemeHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.themeService.DeleteTheme(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// SetCodeTheme files a code under a theme; a null theme_id clears it
// PUT /api/codes/{id}/theme
func (h *ThemeHandler) SetCodeTheme(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	codeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.SetCodeThemeRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.ThemeID != nil && *req.ThemeID != "" && !bodyIDs(w, "theme_id", *req.ThemeID) {
		return
	}

	code, err := h.themeService.SetCodeTheme(r.Context(), who, codeID, req.ThemeID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, code)
}
