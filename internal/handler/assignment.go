package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// AssignmentHandler handles code assignment HTTP requests
type AssignmentHandler struct {
	assignmentService codingSvc.AssignmentService
	logger            *slog.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService codingSvc.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// AssignCode persists a new assignment of a span to a code, creating the code by name if needed
// POST /api/code-assignments/assign
func (h *AssignmentHandler) AssignCode(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.AssignCodeRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.assignmentService.AssignCode(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// UpdateNote changes an assignment's note
// PATCH /api/code-assignments/{id}
func (h *AssignmentHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.UpdateAssignmentRequest
	if !parseBody(w, r, &req) {
		return
	}

	assignment, err := h.assignmentService.UpdateNote(r.Context(), who, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment
// DELETE /api/code-assignments/{id}
func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}
