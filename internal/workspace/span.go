package workspace

import (
	"qualcode/internal/domain/models/coding"
)

// Selection is a raw text selection as reported by a viewer. Anchor is where the
// selection started and Focus where it ended, so Focus may precede Anchor.
type Selection struct {
	AnchorDocumentID string
	FocusDocumentID  string
	Anchor           int
	Focus            int
}

// Span is a validated half-open character range [StartChar, EndChar) of one document.
// Offsets count runes. Text is copied from the document when the span is made.
type Span struct {
	DocumentID string
	StartChar  int
	EndChar    int
	Text       string
}

// NewSpan normalizes a selection against the document it was made in.
// Both ends must lie in doc; a reversed selection is swapped; the result must be
// non-empty and inside the content.
func NewSpan(sel Selection, doc coding.Document) (Span, error) {
	if sel.AnchorDocumentID != doc.ID || sel.FocusDocumentID != doc.ID {
		return Span{}, &InvalidSelectionError{Reason: "selection spans more than one document"}
	}

	start, end := sel.Anchor, sel.Focus
	if end < start {
		start, end = end, start
	}

	if start < 0 || end > doc.Length() {
		return Span{}, &InvalidSelectionError{Reason: "selection is outside the document"}
	}
	if start == end {
		return Span{}, &InvalidSelectionError{Reason: "selection is empty"}
	}

	return Span{
		DocumentID: doc.ID,
		StartChar:  start,
		EndChar:    end,
		Text:       doc.Slice(start, end),
	}, nil
}
