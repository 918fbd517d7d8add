package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// AssignmentRepository defines data access operations for code assignments.
// There is deliberately no method that changes an assignment's span or code.
type AssignmentRepository interface {
	// Create always inserts a new row; identical spans are allowed
	Create(ctx context.Context, assignment *coding.CodeAssignment) error

	// GetByID returns the assignment with document/code names joined in
	GetByID(ctx context.Context, id string) (*coding.CodeAssignment, error)

	// ListByProject returns all assignments of the project's documents with names joined in
	ListByProject(ctx context.Context, projectID string) ([]coding.CodeAssignment, error)

	UpdateNote(ctx context.Context, id, note string) error

	Delete(ctx context.Context, id string) error
}
