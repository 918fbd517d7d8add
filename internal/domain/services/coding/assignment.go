package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// AssignmentService handles code assignment business logic.
// Assignments are never deduplicated: every AssignCode call inserts a new record.
type AssignmentService interface {
	// AssignCode finds or creates the code by name in the document's project and
	// persists a new assignment of the given span to it
	AssignCode(ctx context.Context, actor Actor, req *AssignCodeRequest) (*coding.AssignCodeResult, error)

	// UpdateNote changes an assignment's note, the only mutable field
	UpdateNote(ctx context.Context, actor Actor, assignmentID string, req *UpdateAssignmentRequest) (*coding.CodeAssignment, error)

	DeleteAssignment(ctx context.Context, actor Actor, assignmentID string) error
}

// AssignCodeRequest is the assign-code payload: the span plus the code identity by name
type AssignCodeRequest struct {
	DocumentID      string `json:"document_id"`
	CodeName        string `json:"code_name"`
	CodeDescription string `json:"code_description"`
	CodeColor       string `json:"code_color"`
	StartChar       int    `json:"start_char"`
	EndChar         int    `json:"end_char"`
	Text            string `json:"text"`
}

type UpdateAssignmentRequest struct {
	Note string `json:"note"`
}
