package coding

import (
	"time"
)

// CodeAssignment ties one span of one document to one code.
// The span fields are copied at creation and never change; code re-assignment
// is a new record plus deletion of the old one.
// DocumentName, CodeName and CodeColor are denormalized for read views.
type CodeAssignment struct {
	ID           string    `json:"id" db:"id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	CodeID       string    `json:"code_id" db:"code_id"`
	StartChar    int       `json:"start_char" db:"start_char"`
	EndChar      int       `json:"end_char" db:"end_char"`
	TextSnapshot string    `json:"text_snapshot" db:"text_snapshot"`
	Note         string    `json:"note" db:"note"`
	CreatedByID  string    `json:"created_by_id,omitempty" db:"created_by_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	DocumentName string    `json:"document_name"`
	CodeName     string    `json:"code_name"`
	CodeColor    string    `json:"code_color"`
}

// Overlaps reports whether two assignments on the same document share at least one character.
func (a *CodeAssignment) Overlaps(other *CodeAssignment) bool {
	if a.DocumentID != other.DocumentID {
		return false
	}
	return a.StartChar < other.EndChar && other.StartChar < a.EndChar
}

// AssignedSpan is the assignment half of an assign-code response.
// CreatedAt is optional on the wire; clients fall back to their own clock.
type AssignedSpan struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Text       string     `json:"text"`
	StartChar  int        `json:"start_char"`
	EndChar    int        `json:"end_char"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// AssignCodeResult is the canonical (assignment, code) pair returned after an assignment is persisted.
type AssignCodeResult struct {
	CodeAssignment AssignedSpan `json:"code_assignment"`
	Code           Code         `json:"code"`
	CodeCreated    bool         `json:"code_created"`
}
