package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *coding.Document) error

	GetByID(ctx context.Context, id string) (*coding.Document, error)

	// ListByProject returns documents with content, ordered by created_at
	ListByProject(ctx context.Context, projectID string) ([]coding.Document, error)

	// Delete removes a document and, by cascade, its assignments
	Delete(ctx context.Context, id string) error
}
