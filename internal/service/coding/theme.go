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

// themeService implements the ThemeService interface
type themeService struct {
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewThemeService creates a new theme service
func NewThemeService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.ThemeService {
	return &themeService{
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateTheme creates an empty theme owned by the actor
func (s *themeService) CreateTheme(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateThemeRequest) (*models.Theme, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, notBlank, validation.RuneLength(1, config.MaxThemeNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	theme := &models.Theme{
		ProjectID:   req.ProjectID,
		OwnerID:     actor.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now(),
	}
	if err := s.repos.Themes.Create(ctx, theme); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, req.ProjectID)

	s.logger.Info("theme created",
		"id", theme.ID,
		"name", theme.Name,
		"project_id", theme.ProjectID,
	)

	return theme, nil
}

// UpdateTheme applies a partial update to name or description
func (s *themeService) UpdateTheme(ctx context.Context, actor codingSvc.Actor, themeID string, req *codingSvc.UpdateThemeRequest) (*models.Theme, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, notBlankPtr, validation.RuneLength(1, config.MaxThemeNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	theme, err := s.authorizer.CanAccessTheme(ctx, actor, themeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		theme.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		theme.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repos.Themes.Update(ctx, theme); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, theme.ProjectID)

	return theme, nil
}

// DeleteTheme removes an empty theme; codes must be moved out first
func (s *themeService) DeleteTheme(ctx context.Context, actor codingSvc.Actor, themeID string) error {
	theme, err := s.authorizer.CanAccessTheme(ctx, actor, themeID)
	if err != nil {
		return err
	}
	if len(theme.CodeIDs) > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("theme still groups %d codes", len(theme.CodeIDs)),
			ResourceType: "theme",
			ResourceID:   themeID,
		}
	}

	if err := s.repos.Themes.Delete(ctx, themeID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, theme.ProjectID)

	s.logger.Info("theme deleted",
		"id", themeID,
		"name", theme.Name,
		"user_id", actor.UserID,
	)

	return nil
}

// SetCodeTheme files the code under the theme, or clears its theme when themeID is nil
func (s *themeService) SetCodeTheme(ctx context.Context, actor codingSvc.Actor, codeID string, themeID *string) (*models.Code, error) {
	code, err := s.authorizer.CanAccessCode(ctx, actor, codeID)
	if err != nil {
		return nil, err
	}

	if themeID != nil && *themeID == "" {
		themeID = nil
	}
	if themeID != nil {
		theme, err := s.authorizer.CanAccessTheme(ctx, actor, *themeID)
		if err != nil {
			return nil, err
		}
		if theme.ProjectID != code.ProjectID {
			return nil, &domain.ValidationError{Message: "theme belongs to a different project"}
		}
	}

	if err := s.repos.Codes.SetTheme(ctx, codeID, themeID); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, code.ProjectID)

	code.ThemeID = themeID
	return code, nil
}
