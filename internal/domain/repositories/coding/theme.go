package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// ThemeRepository defines data access operations for themes
type ThemeRepository interface {
	// Create inserts a theme; a name already used in the project yields ErrConflict
	Create(ctx context.Context, theme *coding.Theme) error

	GetByID(ctx context.Context, id string) (*coding.Theme, error)

	// ListByProject returns themes ordered by name, with their code ids in code creation order
	ListByProject(ctx context.Context, projectID string) ([]coding.Theme, error)

	// Update changes name and description; a name already used in the project yields ErrConflict
	Update(ctx context.Context, theme *coding.Theme) error

	Delete(ctx context.Context, id string) error
}
