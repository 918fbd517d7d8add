package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// CodebookRepository defines data access operations for codebooks
type CodebookRepository interface {
	Create(ctx context.Context, codebook *coding.Codebook) error

	GetByID(ctx context.Context, id string) (*coding.Codebook, error)

	// GetOrCreateDefault returns the owner's default codebook in a project, creating it if needed
	GetOrCreateDefault(ctx context.Context, projectID, ownerID string) (*coding.Codebook, error)

	// ListByProject returns codebooks with their code ids in code creation order
	ListByProject(ctx context.Context, projectID string) ([]coding.Codebook, error)

	// Finalize marks a codebook read-only; returns ErrConflict if it already is
	Finalize(ctx context.Context, id string) error
}
