package coding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// assignmentService implements the AssignmentService interface
type assignmentService struct {
	factory    *codeFactory
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewAssignmentService creates a new code assignment service
func NewAssignmentService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.AssignmentService {
	return &assignmentService{
		factory:    &codeFactory{repos: repos, authorizer: authorizer},
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// AssignCode persists a new assignment of a span to a code identified by name.
// The span is checked against the stored document and the text snapshot is cut
// from the stored content. Repeated identical requests create separate records.
func (s *assignmentService) AssignCode(ctx context.Context, actor codingSvc.Actor, req *codingSvc.AssignCodeRequest) (*models.AssignCodeResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.CodeName, validation.Required, notBlank, validation.RuneLength(1, config.MaxCodeNameLength)),
		validation.Field(&req.CodeColor, codingSvc.HexColor),
		validation.Field(&req.StartChar, validation.Min(0)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc, err := s.authorizer.CanAccessDocument(ctx, actor, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := validSpan(req.StartChar, req.EndChar, doc.Length()); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	text := doc.Slice(req.StartChar, req.EndChar)
	if req.Text != "" && req.Text != text {
		s.logger.Debug("assign text differs from document content",
			"document_id", doc.ID,
			"start_char", req.StartChar,
			"end_char", req.EndChar,
		)
	}

	spec := newCodeSpec(doc.ProjectID, req.CodeName, req.CodeDescription, req.CodeColor, nil)
	code, created, err := s.factory.findOrCreate(ctx, actor, spec)
	if err != nil {
		return nil, err
	}

	assignment := &models.CodeAssignment{
		DocumentID:   doc.ID,
		CodeID:       code.ID,
		StartChar:    req.StartChar,
		EndChar:      req.EndChar,
		TextSnapshot: text,
		CreatedByID:  actor.UserID,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	code.AssignmentsCount++
	invalidateSnapshot(ctx, s.cache, s.logger, doc.ProjectID)

	s.logger.Info("code assigned",
		"id", assignment.ID,
		"document_id", doc.ID,
		"code_id", code.ID,
		"code_created", created,
		"start_char", assignment.StartChar,
		"end_char", assignment.EndChar,
		"user_id", actor.UserID,
	)

	createdAt := assignment.CreatedAt
	return &models.AssignCodeResult{
		CodeAssignment: models.AssignedSpan{
			ID:         assignment.ID,
			DocumentID: assignment.DocumentID,
			Text:       assignment.TextSnapshot,
			StartChar:  assignment.StartChar,
			EndChar:    assignment.EndChar,
			CreatedAt:  &createdAt,
		},
		Code:        *code,
		CodeCreated: created,
	}, nil
}

// UpdateNote changes an assignment's note
func (s *assignmentService) UpdateNote(ctx context.Context, actor codingSvc.Actor, assignmentID string, req *codingSvc.UpdateAssignmentRequest) (*models.CodeAssignment, error) {
	_, projectID, err := s.authorizer.CanAccessAssignment(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Assignments.UpdateNote(ctx, assignmentID, strings.TrimSpace(req.Note)); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("code assignment note updated",
		"id", assignmentID,
		"user_id", actor.UserID,
	)

	return s.repos.Assignments.GetByID(ctx, assignmentID)
}

// DeleteAssignment removes an assignment
func (s *assignmentService) DeleteAssignment(ctx context.Context, actor codingSvc.Actor, assignmentID string) error {
	assignment, projectID, err := s.authorizer.CanAccessAssignment(ctx, actor, assignmentID)
	if err != nil {
		return err
	}

	if err := s.repos.Assignments.Delete(ctx, assignmentID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("code assignment deleted",
		"id", assignmentID,
		"document_id", assignment.DocumentID,
		"code_id", assignment.CodeID,
		"user_id", actor.UserID,
	)

	return nil
}
