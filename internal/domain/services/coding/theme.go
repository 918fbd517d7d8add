package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// ThemeService handles theme business logic
type ThemeService interface {
	CreateTheme(ctx context.Context, actor Actor, req *CreateThemeRequest) (*coding.Theme, error)

	UpdateTheme(ctx context.Context, actor Actor, themeID string, req *UpdateThemeRequest) (*coding.Theme, error)

	// DeleteTheme removes a theme that no longer groups any code
	DeleteTheme(ctx context.Context, actor Actor, themeID string) error

	// SetCodeTheme files a code under a theme of the same project; nil removes it from its theme
	SetCodeTheme(ctx context.Context, actor Actor, codeID string, themeID *string) (*coding.Code, error)
}

// CreateThemeRequest represents a theme creation request
type CreateThemeRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateThemeRequest represents a partial theme update
type UpdateThemeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SetCodeThemeRequest carries the theme a code is filed under; null clears it
type SetCodeThemeRequest struct {
	ThemeID *string `json:"theme_id"`
}
