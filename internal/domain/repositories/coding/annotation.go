package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// AnnotationRepository defines data access operations for annotations
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *coding.Annotation) error

	GetByID(ctx context.Context, id string) (*coding.Annotation, error)

	// ListByProject returns annotations with document and code names joined in
	ListByProject(ctx context.Context, projectID string) ([]coding.Annotation, error)

	Delete(ctx context.Context, id string) error
}
