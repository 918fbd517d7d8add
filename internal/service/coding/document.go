package coding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.DocumentService {
	return &documentService{
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateDocument stores a plain-text document. Content is kept verbatim: spans index into it.
func (s *documentService) CreateDocument(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateDocumentRequest) (*models.Document, error) {
	if req.DocumentType == "" {
		req.DocumentType = models.DocumentTypeText
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, notBlank, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&req.Content, validation.Required, validation.By(validContent)),
		validation.Field(&req.DocumentType, validation.In(
			models.DocumentTypeText,
			models.DocumentTypeCSV,
			models.DocumentTypePDF,
			models.DocumentTypeDOCX,
		)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		ProjectID:    req.ProjectID,
		Name:         strings.TrimSpace(req.Name),
		Content:      req.Content,
		DocumentType: req.DocumentType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, doc.ProjectID)

	s.logger.Info("document created",
		"id", doc.ID,
		"name", doc.Name,
		"project_id", doc.ProjectID,
		"length", doc.Length(),
	)

	return doc, nil
}

// DeleteDocument removes a document with its assignments and annotations
func (s *documentService) DeleteDocument(ctx context.Context, actor codingSvc.Actor, documentID string) error {
	doc, err := s.authorizer.CanAccessDocument(ctx, actor, documentID)
	if err != nil {
		return err
	}

	if err := s.repos.Documents.Delete(ctx, documentID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, doc.ProjectID)

	s.logger.Info("document deleted",
		"id", documentID,
		"project_id", doc.ProjectID,
		"user_id", actor.UserID,
	)

	return nil
}

func validContent(value interface{}) error {
	content, _ := value.(string)
	if len(content) > config.MaxDocumentContentBytes {
		return fmt.Errorf("exceeds %d bytes", config.MaxDocumentContentBytes)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("must be valid UTF-8")
	}
	return nil
}
