package coding

import (
	"context"
	"errors"
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

// codeFactory creates codes for the code, assignment and codebook services
type codeFactory struct {
	repos      Repositories
	authorizer codingSvc.ResourceAuthorizer
}

// codeSpec is a validated, normalized code to create
type codeSpec struct {
	projectID   string
	name        string
	description string
	color       string
	codebookID  *string
}

func newCodeSpec(projectID, name, description, color string, codebookID *string) codeSpec {
	spec := codeSpec{
		projectID:   projectID,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		color:       strings.TrimSpace(color),
		codebookID:  codebookID,
	}
	if spec.description == "" {
		spec.description = config.DefaultCodeDescription
	}
	if spec.color == "" {
		spec.color = config.DefaultCodeColor
	}
	return spec
}

// resolveCodebook picks the codebook a new code lands in.
// An explicit codebook must belong to the project and be open; otherwise the
// actor's default codebook is used, or none if that one is finalized.
func (f *codeFactory) resolveCodebook(ctx context.Context, actor codingSvc.Actor, spec codeSpec) (*string, error) {
	if spec.codebookID != nil && *spec.codebookID != "" {
		codebook, err := f.authorizer.CanAccessCodebook(ctx, actor, *spec.codebookID)
		if err != nil {
			return nil, err
		}
		if codebook.ProjectID != spec.projectID {
			return nil, &domain.ValidationError{Message: "codebook belongs to a different project"}
		}
		if codebook.Finalized {
			return nil, &domain.ValidationError{Message: "codebook is finalized; codes cannot be added"}
		}
		return &codebook.ID, nil
	}

	codebook, err := f.repos.Codebooks.GetOrCreateDefault(ctx, spec.projectID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if codebook.Finalized {
		return nil, nil
	}
	return &codebook.ID, nil
}

// create inserts a new code. A duplicate name yields a ConflictError carrying the existing id.
func (f *codeFactory) create(ctx context.Context, actor codingSvc.Actor, spec codeSpec) (*models.Code, error) {
	var code *models.Code
	err := f.repos.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		codebookID, err := f.resolveCodebook(txCtx, actor, spec)
		if err != nil {
			return err
		}
		now := time.Now()
		code = &models.Code{
			ProjectID:   spec.projectID,
			CodebookID:  codebookID,
			Name:        spec.name,
			Description: spec.description,
			Color:       spec.color,
			CreatedByID: actor.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return f.repos.Codes.Create(txCtx, code)
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// findOrCreate returns the project's code with the given name, creating it if missing.
// The bool reports whether the code was created.
func (f *codeFactory) findOrCreate(ctx context.Context, actor codingSvc.Actor, spec codeSpec) (*models.Code, bool, error) {
	existing, err := f.repos.Codes.GetByName(ctx, spec.projectID, spec.name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	code, err := f.create(ctx, actor, spec)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent create of the same name
		existing, getErr := f.repos.Codes.GetByName(ctx, spec.projectID, spec.name)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return code, true, nil
}

// codeService implements the CodeService interface
type codeService struct {
	factory    *codeFactory
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewCodeService creates a new code service
func NewCodeService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.CodeService {
	return &codeService{
		factory:    &codeFactory{repos: repos, authorizer: authorizer},
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateCode creates a code with display defaults applied
func (s *codeService) CreateCode(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateCodeRequest) (*models.Code, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, notBlank, validation.RuneLength(1, config.MaxCodeNameLength)),
		validation.Field(&req.Color, codingSvc.HexColor),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	code, err := s.factory.create(ctx, actor, newCodeSpec(req.ProjectID, req.Name, req.Description, req.Color, req.CodebookID))
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, code.ProjectID)

	s.logger.Info("code created",
		"id", code.ID,
		"name", code.Name,
		"project_id", code.ProjectID,
		"user_id", actor.UserID,
	)

	return code, nil
}

// UpdateCode applies a partial update to name, description or color
func (s *codeService) UpdateCode(ctx context.Context, actor codingSvc.Actor, codeID string, req *codingSvc.UpdateCodeRequest) (*models.Code, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, notBlankPtr, validation.RuneLength(1, config.MaxCodeNameLength)),
		validation.Field(&req.Color, validation.NilOrNotEmpty, codingSvc.HexColor),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	code, err := s.authorizer.CanAccessCode(ctx, actor, codeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		code.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		code.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		code.Color = strings.TrimSpace(*req.Color)
	}
	code.UpdatedAt = time.Now()

	if err := s.repos.Codes.Update(ctx, code); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, code.ProjectID)

	s.logger.Info("code updated",
		"id", code.ID,
		"name", code.Name,
		"user_id", actor.UserID,
	)

	return code, nil
}

// DeleteCode removes a code and its assignments
func (s *codeService) DeleteCode(ctx context.Context, actor codingSvc.Actor, codeID string) error {
	code, err := s.authorizer.CanAccessCode(ctx, actor, codeID)
	if err != nil {
		return err
	}

	if err := s.repos.Codes.Delete(ctx, codeID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, code.ProjectID)

	s.logger.Info("code deleted",
		"id", codeID,
		"name", code.Name,
		"assignments_removed", code.AssignmentsCount,
		"user_id", actor.UserID,
	)

	return nil
}

// notBlankPtr is notBlank for optional fields
var notBlankPtr = validation.By(func(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
})
