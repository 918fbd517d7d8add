package handler

import (
	"log/slog"
	"net/http"

	serviceCoding "qualcode/internal/service/coding"
	"qualcode/internal/templates"
)

// NewRouter registers every API route on a fresh ServeMux.
func NewRouter(services *serviceCoding.Services, registry *templates.Registry, health *HealthHandler, logger *slog.Logger) *http.ServeMux {
	projects := NewProjectHandler(services.Projects, logger)
	documents := NewDocumentHandler(services.Documents, logger)
	codes := NewCodeHandler(services.Codes, logger)
	assignments := NewAssignmentHandler(services.Assignments, logger)
	annotations := NewAnnotationHandler(services.Annotations, logger)
	codebooks := NewCodebookHandler(services.Codebooks, registry, logger)
	themes := NewThemeHandler(services.Themes, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.HealthCheck)

	// Projects
	mux.HandleFunc("GET /api/projects", projects.ListProjects)
	mux.HandleFunc("POST /api/projects", projects.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projects.GetProject)
	mux.HandleFunc("PUT /api/projects/{id}", projects.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projects.DeleteProject)
	mux.HandleFunc("PUT /api/projects/{id}/research-details", projects.SaveResearchDetails)
	mux.HandleFunc("POST /api/projects/{id}/collaborators", projects.AddCollaborator)
	mux.HandleFunc("DELETE /api/projects/{id}/collaborators/{email}", projects.RemoveCollaborator)

	// Documents
	mux.HandleFunc("POST /api/projects/{id}/documents", documents.CreateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", documents.DeleteDocument)

	// Codes and assignments
	mux.HandleFunc("POST /api/codes", codes.CreateCode)
	mux.HandleFunc("PATCH /api/codes/{id}", codes.UpdateCode)
	mux.HandleFunc("DELETE /api/codes/{id}", codes.DeleteCode)
	mux.HandleFunc("POST /api/code-assignments/assign", assignments.AssignCode)
	mux.HandleFunc("PATCH /api/code-assignments/{id}", assignments.UpdateNote)
	mux.HandleFunc("DELETE /api/code-assignments/{id}", assignments.DeleteAssignment)

	// Annotations
	mux.HandleFunc("POST /api/annotations", annotations.CreateAnnotation)
	mux.HandleFunc("DELETE /api/annotations/{id}", annotations.DeleteAnnotation)

	// Codebooks
	mux.HandleFunc("POST /api/codebooks", codebooks.CreateCodebook)
	mux.HandleFunc("POST /api/codebooks/{id}/finalize", codebooks.FinalizeCodebook)
	mux.HandleFunc("GET /api/codebooks/{id}/export", codebooks.ExportCodebook)
	mux.HandleFunc("GET /api/codebook-templates", codebooks.ListTemplates)
	mux.HandleFunc("POST /api/projects/{id}/codebook-templates/{name}", codebooks.ApplyTemplate)
	mux.HandleFunc("POST /api/projects/{id}/codebooks/merge-to-default", codebooks.MergeToDefault)
	mux.HandleFunc("POST /api/projects/{id}/codebooks/master", codebooks.CreateMasterCodebook)
	mux.HandleFunc("GET /api/projects/{id}/codebooks/conflicts", codebooks.DetectConflicts)

	// Themes
	mux.HandleFunc("POST /api/themes", themes.CreateTheme)
	mux.HandleFunc("PATCH /api/themes/{id}", themes.UpdateTheme)
	mux.HandleFunc("DELETE /api/themes/{id}", themes.DeleteTheme)
	mux.HandleFunc("PUT /api/codes/{id}/theme", themes.SetCodeTheme)

	return mux
}
