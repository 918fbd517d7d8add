package coding

import (
	"time"
	"unicode/utf8"
)

type DocumentType string

const (
	DocumentTypeText DocumentType = "text"
	DocumentTypeCSV  DocumentType = "csv"
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDOCX DocumentType = "docx"
)

// Document content is immutable once created; spans index into it by rune offset.
type Document struct {
	ID           string       `json:"id" db:"id"`
	ProjectID    string       `json:"project_id" db:"project_id"`
	Name         string       `json:"name" db:"name"`
	Content      string       `json:"content" db:"content"`
	DocumentType DocumentType `json:"document_type" db:"document_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Length returns the content length in characters (runes), the unit of start_char/end_char.
func (d *Document) Length() int {
	return utf8.RuneCountInString(d.Content)
}

// Slice returns content[start:end) in rune offsets. The caller validates bounds.
func (d *Document) Slice(start, end int) string {
	runes := []rune(d.Content)
	return string(runes[start:end])
}
