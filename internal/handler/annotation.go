package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// AnnotationHandler handles annotation HTTP requests
type AnnotationHandler struct {
	annotationService codingSvc.AnnotationService
	logger            *slog.Logger
}

// NewAnnotationHandler creates a new annotation handler
func NewAnnotationHandler(annotationService codingSvc.AnnotationService, logger *slog.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: annotationService,
		logger:            logger,
	}
}

// CreateAnnotation adds a comment to a project, document span or code
// POST /api/annotations
func (h *AnnotationHandler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.CreateAnnotationRequest
	if !parseBody(w, r, &req) {
		return
	}

	annotation, err := h.annotationService.CreateAnnotation(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, annotation)
}

// DeleteAnnotation deletes an annotation
// DELETE /api/annotations/{id}
func (h *AnnotationHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.annotationService.DeleteAnnotation(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}
