package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService codingSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService codingSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// CreateDocument adds a plain-text document to a project
// POST /api/projects/{id}/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.CreateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.ProjectID = projectID

	doc, err := h.docService.CreateDocument(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// DeleteDocument deletes a document with its assignments and annotations
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}
