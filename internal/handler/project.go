package handler

import (
	"log/slog"
	"net/http"

	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/httputil"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectService codingSvc.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService codingSvc.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// ListProjects lists projects the caller owns or collaborates on
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(r.Context(), who)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// CreateProject creates a new project
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}

	var req codingSvc.CreateProjectRequest
	if !parseBody(w, r, &req) {
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), who, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject returns the full project snapshot
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	snapshot, err := h.projectService.GetSnapshot(r.Context(), who, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snapshot)
}

// UpdateProject replaces title and description
// PUT /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.UpdateProjectRequest
	if !parseBody(w, r, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), who, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject deletes a project
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), who, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// SaveResearchDetails replaces the research questions and objectives
// PUT /api/projects/{id}/research-details
func (h *ProjectHandler) SaveResearchDetails(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.ResearchDetailsRequest
	if !parseBody(w, r, &req) {
		return
	}

	project, err := h.projectService.SaveResearchDetails(r.Context(), who, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// AddCollaborator grants an email access to the project
// POST /api/projects/{id}/collaborators
func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req codingSvc.CollaboratorRequest
	if !parseBody(w, r, &req) {
		return
	}

	collaborators, err := h.projectService.AddCollaborator(r.Context(), who, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, collaborators)
}

// RemoveCollaborator revokes an email's access
// DELETE /api/projects/{id}/collaborators/{email}
func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	collaborators, err := h.projectService.RemoveCollaborator(r.Context(), who, id, r.PathValue("email"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collaborators)
}
