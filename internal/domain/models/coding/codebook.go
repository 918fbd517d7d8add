package coding

import (
	"time"
)

// Codebook is a named, ordered collection of codes owned by a project.
// A finalized codebook is read-only and is used for deductive coding.
type Codebook struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Finalized   bool      `json:"finalized" db:"finalized"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	CodeIDs     []string  `json:"code_ids"`
}

// DefaultCodebookName names the per-user codebook that collects codes created without one
const DefaultCodebookName = "Default Codebook"

// MasterCodebookName is used when the owner does not name the master codebook
const MasterCodebookName = "Master Codebook"

// MergeResult reports codes moved into the actor's default codebook
type MergeResult struct {
	DefaultCodebookID string `json:"default_codebook_id"`
	MovedCodesCount   int    `json:"moved_codes_count"`
}

// MasterCodebookResult reports a master codebook and how many selected codes it adopted
type MasterCodebookResult struct {
	MasterCodebook Codebook `json:"master_codebook"`
	CodesMoved     int      `json:"codes_moved"`
}

// CodeConflict groups codes in finalized codebooks whose names differ only in case or spacing
type CodeConflict struct {
	ConflictingName string            `json:"conflicting_name"`
	Codes           []ConflictingCode `json:"codes"`
	ConflictCount   int               `json:"conflict_count"`
}

// ConflictingCode is one member of a CodeConflict
type ConflictingCode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CodebookID  string `json:"codebook_id"`
	OwnerID     string `json:"owner_id"`
}
