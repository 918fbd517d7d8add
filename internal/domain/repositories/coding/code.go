package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// CodeRepository defines data access operations for codes
type CodeRepository interface {
	Create(ctx context.Context, code *coding.Code) error

	GetByID(ctx context.Context, id string) (*coding.Code, error)

	// GetByName finds a code by exact name within a project
	GetByName(ctx context.Context, projectID, name string) (*coding.Code, error)

	// ListByProject returns codes in creation order (the order clients display)
	ListByProject(ctx context.Context, projectID string) ([]coding.Code, error)

	Update(ctx context.Context, code *coding.Code) error

	// MoveToCodebook reassigns the codes' codebook and returns how many rows changed
	MoveToCodebook(ctx context.Context, codeIDs []string, codebookID string) (int, error)

	// SetTheme attaches a code to a theme, or detaches it when themeID is nil
	SetTheme(ctx context.Context, codeID string, themeID *string) error

	// Delete removes a code and, by cascade, its assignments
	Delete(ctx context.Context, id string) error
}
