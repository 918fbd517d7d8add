package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// CodeService handles code business logic
type CodeService interface {
	// CreateCode creates a code; without a codebook id it lands in the actor's default codebook
	CreateCode(ctx context.Context, actor Actor, req *CreateCodeRequest) (*coding.Code, error)

	UpdateCode(ctx context.Context, actor Actor, codeID string, req *UpdateCodeRequest) (*coding.Code, error)

	// DeleteCode removes the code and all of its assignments
	DeleteCode(ctx context.Context, actor Actor, codeID string) error
}

// CreateCodeRequest represents a code creation request.
// Empty description and color are replaced with display defaults.
type CreateCodeRequest struct {
	ProjectID   string  `json:"project_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	CodebookID  *string `json:"codebook_id,omitempty"`
}

// UpdateCodeRequest represents a partial code update
type UpdateCodeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}
