package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create creates a new project and returns it with generated ID and timestamps
	Create(ctx context.Context, project *coding.Project) error

	// GetByID retrieves a non-deleted project by ID (no access check)
	GetByID(ctx context.Context, id string) (*coding.Project, error)

	// ListForUser lists projects the user owns or collaborates on (matched by email), newest first
	ListForUser(ctx context.Context, userID, email string) ([]coding.ProjectSummary, error)

	// Update updates title, description, research details and updated_at
	Update(ctx context.Context, project *coding.Project) error

	// Delete soft-deletes a project by setting deleted_at timestamp
	Delete(ctx context.Context, id string) error
}

// CollaboratorRepository manages project collaborators
type CollaboratorRepository interface {
	// Add returns a ConflictError if the email is already a collaborator
	Add(ctx context.Context, projectID, email string) (*coding.Collaborator, error)

	// Remove returns ErrNotFound if the email is not a collaborator
	Remove(ctx context.Context, projectID, email string) error

	List(ctx context.Context, projectID string) ([]coding.Collaborator, error)

	Exists(ctx context.Context, projectID, email string) (bool, error)
}
