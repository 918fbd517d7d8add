package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
	"qualcode/internal/templates"
)

// CodebookHandler handles codebook and codebook template HTTP requests
type CodebookHandler struct {
	codebookService codingSvc.CodebookService
	registry        *templates.Registry
	logger          *slog.Logger
}

// NewCodebookHandler creates a new codebook handler
func NewCodebookHandler(codebookService codingSvc.CodebookService, registry *templates.Registry, logger *slog.Logger) *CodebookHandler {
	return &CodebookHandler{
		codebookService: codebookService,
		registry:        registry,
		logger:          logger,
	}
}

// CreateCodebook creates an empty codebook
// POST /api/codebooks
func (h *CodebookHandler) CreateCodebook(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.CreateCodebookRequest
	if !parseBody(w, r, &req) {
		return
	}

	codebook, err := h.codebookService.CreateCodebook(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, codebook)
}

// FinalizeCodebook marks a codebook read-only
// POST /api/codebooks/{id}/finalize
func (h *CodebookHandler) FinalizeCodebook(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	codebook, err := h.codebookService.FinalizeCodebook(r.Context(), who, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, codebook)
}

// ExportCodebook downloads a codebook as YAML
// GET /api/codebooks/{id}/export
func (h *CodebookHandler) ExportCodebook(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	data, err := h.codebookService.ExportCodebook(r.Context(), who, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondBody(w, http.StatusOK, "application/yaml", "codebook-"+id+".yaml", data)
}

// ListTemplates lists the built-in starter codebooks
// GET /api/codebook-templates
func (h *CodebookHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.List())
}

// ApplyTemplate instantiates a starter codebook in a project
// POST /api/projects/{id}/codebook-templates/{name}
func (h *CodebookHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	codebook, err := h.codebookService.ApplyTemplate(r.Context(), who, projectID, r.PathValue("name"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, codebook)
}

// MergeToDefault moves codes into the caller's default codebook
// POST /api/projects/{id}/codebooks/merge-to-default
func (h *CodebookHandler) MergeToDefault(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.MergeCodesRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !bodyIDs(w, "code_ids", req.CodeIDs...) {
		return
	}

	result, err := h.codebookService.MergeCodesToDefault(r.Context(), who, projectID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// CreateMasterCodebook builds the owner's master codebook from collaborator selections
// POST /api/projects/{id}/codebooks/master
func (h *CodebookHandler) CreateMasterCodebook(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.MasterCodebookRequest
	if !parseBody(w, r, &req) {
		return
	}
	for _, sel := range req.Selections {
		if !bodyIDs(w, "codebook_id", sel.CodebookID) || !bodyIDs(w, "code_ids", sel.CodeIDs...) {
			return
		}
	}

	result, err := h.codebookService.CreateMasterCodebook(r.Context(), who, projectID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// DetectConflicts lists same-name codes across finalized codebooks
// GET /api/projects/{id}/codebooks/conflicts
func (h *CodebookHandler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	conflicts, err := h.codebookService.DetectConflicts(r.Context(), who, projectID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conflicts)
}
