package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// AnnotationService handles annotation (comment) business logic
type AnnotationService interface {
	CreateAnnotation(ctx context.Context, actor Actor, req *CreateAnnotationRequest) (*coding.Annotation, error)

	DeleteAnnotation(ctx context.Context, actor Actor, annotationID string) error
}

// CreateAnnotationRequest represents an annotation creation request.
// A span (start/end) requires a document; type defaults to COMMENT.
type CreateAnnotationRequest struct {
	ProjectID      string                `json:"project_id"`
	DocumentID     *string               `json:"document_id,omitempty"`
	CodeID         *string               `json:"code_id,omitempty"`
	StartChar      *int                  `json:"start_char,omitempty"`
	EndChar        *int                  `json:"end_char,omitempty"`
	Content        string                `json:"content"`
	AnnotationType coding.AnnotationType `json:"annotation_type,omitempty"`
}
