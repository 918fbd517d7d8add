package coding

import (
	"time"
)

// Theme groups related codes into a higher-level pattern. A code belongs to at most one theme.
type Theme struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CodeIDs     []string  `json:"code_ids"`
}
