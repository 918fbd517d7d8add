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
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/sync/errgroup"
)

// projectService implements the ProjectService interface
type projectService struct {
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	logger     *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	logger *slog.Logger,
) codingSvc.ProjectService {
	return &projectService{
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateProject creates a new project owned by the actor
func (s *projectService) CreateProject(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, notBlank, validation.Length(1, config.MaxProjectTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	project := &models.Project{
		OwnerID:     actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ResearchDetails: models.ResearchDetails{
			ResearchQuestions:  []string{},
			ResearchObjectives: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repos.Projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"user_id", actor.UserID,
	)

	return project, nil
}

// ListProjects lists owned and shared projects
func (s *projectService) ListProjects(ctx context.Context, actor codingSvc.Actor) ([]models.ProjectSummary, error) {
	return s.repos.Projects.ListForUser(ctx, actor.UserID, strings.ToLower(actor.Email))
}

// GetSnapshot assembles the full project read model, fanning out one query per collection
func (s *projectService) GetSnapshot(ctx context.Context, actor codingSvc.Actor, projectID string) (*models.ProjectSnapshot, error) {
	project, err := s.authorizer.CanAccessProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, projectID)
	if err != nil {
		s.logger.Warn("snapshot cache read failed", "project_id", projectID, "error", err)
	} else if cached != nil {
		cached.Project = *project
		return cached, nil
	}

	// Taken before the tables are read so a mutation committed mid-assembly
	// keeps this snapshot out of the cache
	generation, genErr := s.cache.Generation(ctx, projectID)
	if genErr != nil {
		s.logger.Warn("snapshot cache generation read failed", "project_id", projectID, "error", genErr)
	}

	snapshot := &models.ProjectSnapshot{Project: *project}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snapshot.Collaborators, err = s.repos.Collaborators.List(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Documents, err = s.repos.Documents.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Codes, err = s.repos.Codes.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.CodeAssignments, err = s.repos.Assignments.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Annotations, err = s.repos.Annotations.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Codebooks, err = s.repos.Codebooks.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Themes, err = s.repos.Themes.ListByProject(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble project snapshot: %w", err)
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, snapshot, generation); err != nil {
			s.logger.Warn("snapshot cache write failed", "project_id", projectID, "error", err)
		}
	}

	s.logger.Debug("project snapshot assembled",
		"project_id", projectID,
		"documents", len(snapshot.Documents),
		"codes", len(snapshot.Codes),
		"code_assignments", len(snapshot.CodeAssignments),
	)

	return snapshot, nil
}

// UpdateProject replaces title and description
func (s *projectService) UpdateProject(ctx context.Context, actor codingSvc.Actor, projectID string, req *codingSvc.UpdateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, notBlank, validation.Length(1, config.MaxProjectTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanManageProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	project.Title = strings.TrimSpace(req.Title)
	project.Description = strings.TrimSpace(req.Description)
	project.UpdatedAt = time.Now()

	if err := s.repos.Projects.Update(ctx, project); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("project updated",
		"id", project.ID,
		"title", project.Title,
		"user_id", actor.UserID,
	)

	return project, nil
}

// DeleteProject soft-deletes a project
func (s *projectService) DeleteProject(ctx context.Context, actor codingSvc.Actor, projectID string) error {
	if _, err := s.authorizer.CanManageProject(ctx, actor, projectID); err != nil {
		return err
	}

	if err := s.repos.Projects.Delete(ctx, projectID); err != nil {
		return err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("project deleted",
		"id", projectID,
		"user_id", actor.UserID,
	)

	return nil
}

// SaveResearchDetails replaces the research questions and objectives.
// Items are trimmed and blank items dropped.
func (s *projectService) SaveResearchDetails(ctx context.Context, actor codingSvc.Actor, projectID string, req *codingSvc.ResearchDetailsRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ResearchQuestions, validation.Length(0, config.MaxResearchItems)),
		validation.Field(&req.ResearchObjectives, validation.Length(0, config.MaxResearchItems)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanAccessProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	project.ResearchDetails = models.ResearchDetails{
		ResearchQuestions:  cleanItems(req.ResearchQuestions),
		ResearchObjectives: cleanItems(req.ResearchObjectives),
	}
	project.UpdatedAt = time.Now()

	if err := s.repos.Projects.Update(ctx, project); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("research details saved",
		"project_id", projectID,
		"questions", len(project.ResearchDetails.ResearchQuestions),
		"objectives", len(project.ResearchDetails.ResearchObjectives),
	)

	return project, nil
}

// AddCollaborator grants an email access to the project
func (s *projectService) AddCollaborator(ctx context.Context, actor codingSvc.Actor, projectID string, req *codingSvc.CollaboratorRequest) ([]models.Collaborator, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanManageProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	if strings.EqualFold(req.Email, actor.Email) {
		return nil, &domain.ValidationError{Message: "the project owner cannot be added as a collaborator"}
	}

	if _, err := s.repos.Collaborators.Add(ctx, projectID, req.Email); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("collaborator added",
		"project_id", projectID,
		"email", req.Email,
		"user_id", actor.UserID,
	)

	return s.repos.Collaborators.List(ctx, projectID)
}

// RemoveCollaborator revokes an email's access to the project
func (s *projectService) RemoveCollaborator(ctx context.Context, actor codingSvc.Actor, projectID, email string) ([]models.Collaborator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &domain.ValidationError{Message: "email is required"}
	}

	if _, err := s.authorizer.CanManageProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	if err := s.repos.Collaborators.Remove(ctx, projectID, email); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("collaborator removed",
		"project_id", projectID,
		"email", email,
		"user_id", actor.UserID,
	)

	return s.repos.Collaborators.List(ctx, projectID)
}
