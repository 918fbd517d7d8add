package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// DocumentService handles document business logic.
// Documents are immutable once created; there is no update.
type DocumentService interface {
	CreateDocument(ctx context.Context, actor Actor, req *CreateDocumentRequest) (*coding.Document, error)

	DeleteDocument(ctx context.Context, actor Actor, documentID string) error
}

// CreateDocumentRequest represents a plain-text document creation request
type CreateDocumentRequest struct {
	ProjectID    string              `json:"-"` // Set by handler from the path
	Name         string              `json:"name"`
	Content      string              `json:"content"`
	DocumentType coding.DocumentType `json:"document_type,omitempty"` // Defaults to text
}
