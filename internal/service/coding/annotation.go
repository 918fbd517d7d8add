package coding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// annotationService implements the AnnotationService interface
type annotationService struct {
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewAnnotationService creates a new annotation service
func NewAnnotationService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.AnnotationService {
	return &annotationService{
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateAnnotation creates a comment on a project, optionally anchored to a
// document span and/or a code
func (s *annotationService) CreateAnnotation(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateAnnotationRequest) (*models.Annotation, error) {
	if req.AnnotationType == "" {
		req.AnnotationType = models.AnnotationTypeComment
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Content, validation.Required, notBlank),
		validation.Field(&req.AnnotationType, validation.By(func(value interface{}) error {
			if t, _ := value.(models.AnnotationType); !t.Valid() {
				return fmt.Errorf("unknown annotation type %q", t)
			}
			return nil
		})),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if (req.StartChar == nil) != (req.EndChar == nil) {
		return nil, &domain.ValidationError{Message: "start_char and end_char must be given together"}
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	now := time.Now()
	annotation := &models.Annotation{
		ProjectID:      req.ProjectID,
		Content:        strings.TrimSpace(req.Content),
		AnnotationType: req.AnnotationType,
		CreatedByID:    actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.DocumentID != nil && *req.DocumentID != "" {
		doc, err := s.authorizer.CanAccessDocument(ctx, actor, *req.DocumentID)
		if err != nil {
			return nil, err
		}
		if doc.ProjectID != req.ProjectID {
			return nil, &domain.ValidationError{Message: "document belongs to a different project"}
		}
		annotation.DocumentID = &doc.ID
		annotation.DocumentName = &doc.Name

		if req.StartChar != nil {
			if err := validSpan(*req.StartChar, *req.EndChar, doc.Length()); err != nil {
				return nil, &domain.ValidationError{Message: err.Error()}
			}
			text := doc.Slice(*req.StartChar, *req.EndChar)
			annotation.StartChar = req.StartChar
			annotation.EndChar = req.EndChar
			annotation.TextSnapshot = &text
		}
	} else if req.StartChar != nil {
		return nil, &domain.ValidationError{Message: "a span requires document_id"}
	}

	if req.CodeID != nil && *req.CodeID != "" {
		code, err := s.authorizer.CanAccessCode(ctx, actor, *req.CodeID)
		if err != nil {
			return nil, err
		}
		if code.ProjectID != req.ProjectID {
			return nil, &domain.ValidationError{Message: "code belongs to a different project"}
		}
		annotation.CodeID = &code.ID
		annotation.CodeName = &code.Name
	}

	if err := s.repos.Annotations.Create(ctx, annotation); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, req.ProjectID)

	s.logger.Info("annotation created",
		"id", annotation.ID,
		"project_id", annotation.ProjectID,
		"type", annotation.AnnotationType,
		"user_id", actor.UserID,
	)

	return annotation, nil
}

// DeleteAnnotation removes an annotation. Only its author or the project owner may delete it.
func (s *annotationService) DeleteAnnotation(ctx context.Context, actor codingSvc.Actor, annotationID string) error {
	annotation, err := s.authorizer.CanAccessAnnotation(ctx, actor, annotationID)
	if err != nil {
		return err
	}
	if annotation.CreatedByID != actor.UserID {
		if _, err := s.authorizer.CanManageProject(ctx, actor, annotation.ProjectID); err != nil {
			return &domain.ForbiddenError{Message: "only the author or the project owner can delete this annotation"}
		}
	}

	if err := s.repos.Annotations.Delete(ctx, annotationID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, annotation.ProjectID)

	s.logger.Info("annotation deleted",
		"id", annotationID,
		"project_id", annotation.ProjectID,
		"user_id", actor.UserID,
	)

	return nil
}
