package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// ProjectService handles project business logic
type ProjectService interface {
	CreateProject(ctx context.Context, actor Actor, req *CreateProjectRequest) (*coding.Project, error)

	// ListProjects lists projects the actor owns or collaborates on
	ListProjects(ctx context.Context, actor Actor) ([]coding.ProjectSummary, error)

	// GetSnapshot returns the project with all of its collections (getProjectWithContent)
	GetSnapshot(ctx context.Context, actor Actor, projectID string) (*coding.ProjectSnapshot, error)

	// UpdateProject replaces title and description (owner only)
	UpdateProject(ctx context.Context, actor Actor, projectID string, req *UpdateProjectRequest) (*coding.Project, error)

	// DeleteProject soft-deletes the project (owner only)
	DeleteProject(ctx context.Context, actor Actor, projectID string) error

	SaveResearchDetails(ctx context.Context, actor Actor, projectID string, req *ResearchDetailsRequest) (*coding.Project, error)

	// AddCollaborator returns the updated collaborator list (owner only)
	AddCollaborator(ctx context.Context, actor Actor, projectID string, req *CollaboratorRequest) ([]coding.Collaborator, error)

	// RemoveCollaborator returns the updated collaborator list (owner only)
	RemoveCollaborator(ctx context.Context, actor Actor, projectID, email string) ([]coding.Collaborator, error)
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateProjectRequest represents a project update request; title is required
type UpdateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ResearchDetailsRequest struct {
	ResearchQuestions  []string `json:"research_questions"`
	ResearchObjectives []string `json:"research_objectives"`
}

type CollaboratorRequest struct {
	Email string `json:"email"`
}
