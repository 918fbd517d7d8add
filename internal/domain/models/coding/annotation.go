package coding

import (
	"time"
)

type AnnotationType string

const (
	AnnotationTypeComment  AnnotationType = "COMMENT"
	AnnotationTypeMemo     AnnotationType = "MEMO"
	AnnotationTypeQuestion AnnotationType = "QUESTION"
	AnnotationTypeInsight  AnnotationType = "INSIGHT"
	AnnotationTypeTodo     AnnotationType = "TODO"
	AnnotationTypeReview   AnnotationType = "REVIEW"
)

// Valid reports whether t is a known annotation type
func (t AnnotationType) Valid() bool {
	switch t {
	case AnnotationTypeComment, AnnotationTypeMemo, AnnotationTypeQuestion,
		AnnotationTypeInsight, AnnotationTypeTodo, AnnotationTypeReview:
		return true
	}
	return false
}

// Annotation is a free-text comment on a project, optionally anchored to a document span
// or a code. Its lifecycle is independent from code assignments.
type Annotation struct {
	ID             string         `json:"id" db:"id"`
	ProjectID      string         `json:"project_id" db:"project_id"`
	DocumentID     *string        `json:"document_id" db:"document_id"`
	CodeID         *string        `json:"code_id" db:"code_id"`
	StartChar      *int           `json:"start_char" db:"start_char"`
	EndChar        *int           `json:"end_char" db:"end_char"`
	TextSnapshot   *string        `json:"text_snapshot" db:"text_snapshot"`
	Content        string         `json:"content" db:"content"`
	AnnotationType AnnotationType `json:"annotation_type" db:"annotation_type"`
	CreatedByID    string         `json:"created_by_id" db:"created_by_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	DocumentName   *string        `json:"document_name,omitempty"`
	CodeName       *string        `json:"code_name,omitempty"`
}
