package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
)

// UnknownDocumentName labels assignments whose document is not in the local store.
const UnknownDocumentName = "Unknown Document"

// AssignmentEngine persists (span, code) pairs and folds the confirmed record
// into the store. It never merges or dedupes assignments.
type AssignmentEngine struct {
	api    ProjectAPI
	store  *ProjectStore
	now    func() time.Time
	logger *slog.Logger
}

// NewAssignmentEngine creates an engine appending to store.
func NewAssignmentEngine(api ProjectAPI, store *ProjectStore, logger *slog.Logger) *AssignmentEngine {
	return &AssignmentEngine{api: api, store: store, now: time.Now, logger: logger}
}

// AssignCode persists the assignment and appends the server-confirmed record.
// A nil span or code is a no-op returning (nil, nil). On failure nothing local changes.
func (e *AssignmentEngine) AssignCode(ctx context.Context, span *Span, code *coding.Code) (*coding.CodeAssignment, error) {
	if span == nil || code == nil {
		return nil, nil
	}

	result, err := e.api.AssignCode(ctx, &codingSvc.AssignCodeRequest{
		DocumentID:      span.DocumentID,
		CodeName:        code.Name,
		CodeDescription: code.Description,
		CodeColor:       code.Color,
		StartChar:       span.StartChar,
		EndChar:         span.EndChar,
		Text:            span.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("assign code: %w", err)
	}

	record := e.record(span, result)
	e.store.AppendAssignment(record)

	e.logger.Debug("code assigned",
		"assignment_id", record.ID,
		"code_id", record.CodeID,
		"document_id", record.DocumentID,
		"start_char", record.StartChar,
		"end_char", record.EndChar,
	)

	return &record, nil
}

// record builds the denormalized local row. Code identity comes from the
// server's answer, never from the caller's code.
func (e *AssignmentEngine) record(span *Span, result *coding.AssignCodeResult) coding.CodeAssignment {
	documentName := UnknownDocumentName
	if doc, ok := e.store.View().Document(span.DocumentID); ok {
		documentName = doc.Name
	}

	createdAt := e.now()
	if result.CodeAssignment.CreatedAt != nil {
		createdAt = *result.CodeAssignment.CreatedAt
	}

	text := result.CodeAssignment.Text
	if text == "" {
		text = span.Text
	}

	return coding.CodeAssignment{
		ID:           result.CodeAssignment.ID,
		DocumentID:   span.DocumentID,
		CodeID:       result.Code.ID,
		DocumentName: documentName,
		TextSnapshot: text,
		CodeName:     result.Code.Name,
		CodeColor:    result.Code.Color,
		CreatedAt:    createdAt,
		StartChar:    span.StartChar,
		EndChar:      span.EndChar,
		Note:         "",
	}
}
