package coding

import (
	"time"
)

type Project struct {
	ID              string          `json:"id" db:"id"`
	OwnerID         string          `json:"owner_id" db:"owner_id"`
	Title           string          `json:"title" db:"title"`
	Description     string          `json:"description" db:"description"`
	ResearchDetails ResearchDetails `json:"research_details" db:"research_details"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ResearchDetails holds the framing of a project's analysis. Stored as JSONB.
type ResearchDetails struct {
	ResearchQuestions  []string `json:"research_questions"`
	ResearchObjectives []string `json:"research_objectives"`
}

// ProjectSummary is a project list entry (no content)
type ProjectSummary struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	DocumentCount     int       `json:"document_count"`
	CollaboratorCount int       `json:"collaborator_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Collaborator grants a user (matched by email) access to a project
type Collaborator struct {
	Email   string    `json:"email" db:"email"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}
