package coding

import (
	"time"
)

// Code is a named, colored analytic category
type Code struct {
	ID               string    `json:"id" db:"id"`
	ProjectID        string    `json:"project_id" db:"project_id"`
	CodebookID       *string   `json:"codebook_id" db:"codebook_id"`
	ThemeID          *string   `json:"theme_id" db:"theme_id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	Color            string    `json:"color" db:"color"`
	CreatedByID      string    `json:"created_by_id" db:"created_by_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
	AssignmentsCount int       `json:"assignments_count"` // Computed for snapshots, not stored
}
