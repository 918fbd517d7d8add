package coding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/templates"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// codebookService implements the CodebookService interface
type codebookService struct {
	repos      Repositories
	cache      codingRepo.SnapshotCache
	authorizer codingSvc.ResourceAuthorizer
	templates  *templates.Registry
	logger     *slog.Logger
}

// NewCodebookService creates a new codebook service
func NewCodebookService(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	registry *templates.Registry,
	logger *slog.Logger,
) codingSvc.CodebookService {
	return &codebookService{
		repos:      repos,
		cache:      cache,
		authorizer: authorizer,
		templates:  registry,
		logger:     logger,
	}
}

// CreateCodebook creates an empty codebook owned by the actor
func (s *codebookService) CreateCodebook(ctx context.Context, actor codingSvc.Actor, req *codingSvc.CreateCodebookRequest) (*models.Codebook, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, notBlank, validation.Length(1, config.MaxCodebookNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	codebook := &models.Codebook{
		ProjectID:   req.ProjectID,
		OwnerID:     actor.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now(),
	}
	if err := s.repos.Codebooks.Create(ctx, codebook); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, req.ProjectID)

	s.logger.Info("codebook created",
		"id", codebook.ID,
		"name", codebook.Name,
		"project_id", codebook.ProjectID,
	)

	return codebook, nil
}

// FinalizeCodebook marks a codebook read-only. Only its owner or the project owner may do so.
func (s *codebookService) FinalizeCodebook(ctx context.Context, actor codingSvc.Actor, codebookID string) (*models.Codebook, error) {
	codebook, err := s.authorizer.CanAccessCodebook(ctx, actor, codebookID)
	if err != nil {
		return nil, err
	}
	if codebook.OwnerID != actor.UserID {
		if _, err := s.authorizer.CanManageProject(ctx, actor, codebook.ProjectID); err != nil {
			return nil, &domain.ForbiddenError{Message: "only the codebook owner or the project owner can finalize it"}
		}
	}

	if err := s.repos.Codebooks.Finalize(ctx, codebookID); err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, codebook.ProjectID)

	s.logger.Info("codebook finalized",
		"id", codebookID,
		"codes", len(codebook.CodeIDs),
		"user_id", actor.UserID,
	)

	codebook.Finalized = true
	return codebook, nil
}

// ExportCodebook renders the codebook as a YAML template document
func (s *codebookService) ExportCodebook(ctx context.Context, actor codingSvc.Actor, codebookID string) ([]byte, error) {
	codebook, err := s.authorizer.CanAccessCodebook(ctx, actor, codebookID)
	if err != nil {
		return nil, err
	}

	codes, err := s.repos.Codes.ListByProject(ctx, codebook.ProjectID)
	if err != nil {
		return nil, err
	}

	return templates.Export(codebook, codes)
}

// ApplyTemplate creates a codebook from a starter template.
// Template codes whose name already exists in the project are left where they are.
func (s *codebookService) ApplyTemplate(ctx context.Context, actor codingSvc.Actor, projectID, templateName string) (*models.Codebook, error) {
	tmpl, err := s.templates.Get(templateName)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	factory := &codeFactory{repos: s.repos, authorizer: s.authorizer}
	codebook := &models.Codebook{
		ProjectID:   projectID,
		OwnerID:     actor.UserID,
		Name:        tmpl.Title,
		Description: tmpl.Description,
		CreatedAt:   time.Now(),
	}

	skipped := 0
	err = s.repos.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Codebooks.Create(txCtx, codebook); err != nil {
			return err
		}
		for _, tc := range tmpl.Codes {
			spec := newCodeSpec(projectID, tc.Name, tc.Description, tc.Color, &codebook.ID)
			_, err := s.repos.Codes.GetByName(txCtx, projectID, spec.name)
			if err == nil {
				skipped++
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if _, err := factory.create(txCtx, actor, spec); err != nil {
				return fmt.Errorf("create template code %s: %w", tc.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("codebook template applied",
		"template", templateName,
		"codebook_id", codebook.ID,
		"project_id", projectID,
		"skipped_codes", skipped,
	)

	return s.repos.Codebooks.GetByID(ctx, codebook.ID)
}

// MergeCodesToDefault moves the listed codes into the actor's default codebook.
// Every code must belong to the project; the default codebook must still be open.
func (s *codebookService) MergeCodesToDefault(ctx context.Context, actor codingSvc.Actor, projectID string, req *codingSvc.MergeCodesRequest) (*models.MergeResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.CodeIDs, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanAccessProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	var result *models.MergeResult
	err := s.repos.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		codeIDs, err := s.projectCodeIDs(txCtx, projectID, req.CodeIDs)
		if err != nil {
			return err
		}
		if len(codeIDs) != len(uniqueIDs(req.CodeIDs)) {
			return &domain.ValidationError{Message: "some codes were not found in this project"}
		}

		codebook, err := s.repos.Codebooks.GetOrCreateDefault(txCtx, projectID, actor.UserID)
		if err != nil {
			return err
		}
		if codebook.Finalized {
			return &domain.ValidationError{Message: "default codebook is finalized; codes cannot be added"}
		}

		moved, err := s.repos.Codes.MoveToCodebook(txCtx, codeIDs, codebook.ID)
		if err != nil {
			return err
		}
		result = &models.MergeResult{DefaultCodebookID: codebook.ID, MovedCodesCount: moved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("codes merged to default codebook",
		"project_id", projectID,
		"codebook_id", result.DefaultCodebookID,
		"moved", result.MovedCodesCount,
		"user_id", actor.UserID,
	)

	return result, nil
}

// CreateMasterCodebook creates an owner codebook and moves the selected codes into it.
// A selected code only counts while it still sits in the codebook it was picked from.
func (s *codebookService) CreateMasterCodebook(ctx context.Context, actor codingSvc.Actor, projectID string, req *codingSvc.MasterCodebookRequest) (*models.MasterCodebookResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, config.MaxCodebookNameLength)),
		validation.Field(&req.Selections, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanManageProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = models.MasterCodebookName
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Master codebook created from collaborator selections"
	}
	master := &models.Codebook{
		ProjectID:   projectID,
		OwnerID:     actor.UserID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	moved := 0
	err := s.repos.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		codes, err := s.repos.Codes.ListByProject(txCtx, projectID)
		if err != nil {
			return err
		}
		inCodebook := make(map[string]string, len(codes))
		for _, c := range codes {
			if c.CodebookID != nil {
				inCodebook[c.ID] = *c.CodebookID
			}
		}

		var picked []string
		for _, sel := range req.Selections {
			for _, id := range sel.CodeIDs {
				if inCodebook[id] == sel.CodebookID && !slices.Contains(picked, id) {
					picked = append(picked, id)
				}
			}
		}

		if err := s.repos.Codebooks.Create(txCtx, master); err != nil {
			return err
		}
		if len(picked) == 0 {
			return nil
		}
		moved, err = s.repos.Codes.MoveToCodebook(txCtx, picked, master.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(ctx, s.cache, s.logger, projectID)

	s.logger.Info("master codebook created",
		"codebook_id", master.ID,
		"project_id", projectID,
		"codes_moved", moved,
	)

	created, err := s.repos.Codebooks.GetByID(ctx, master.ID)
	if err != nil {
		return nil, err
	}
	return &models.MasterCodebookResult{MasterCodebook: *created, CodesMoved: moved}, nil
}

// DetectConflicts groups codes of finalized codebooks by trimmed, lower-cased name.
// Groups keep the order in which their first code was created.
func (s *codebookService) DetectConflicts(ctx context.Context, actor codingSvc.Actor, projectID string) ([]models.CodeConflict, error) {
	if _, err := s.authorizer.CanAccessProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	codebooks, err := s.repos.Codebooks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]string)
	for _, b := range codebooks {
		if b.Finalized {
			owners[b.ID] = b.OwnerID
		}
	}
	if len(owners) == 0 {
		return []models.CodeConflict{}, nil
	}

	codes, err := s.repos.Codes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var keys []string
	groups := make(map[string][]models.ConflictingCode)
	for _, c := range codes {
		if c.CodebookID == nil {
			continue
		}
		owner, ok := owners[*c.CodebookID]
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], models.ConflictingCode{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CodebookID:  *c.CodebookID,
			OwnerID:     owner,
		})
	}

	conflicts := []models.CodeConflict{}
	for _, key := range keys {
		if group := groups[key]; len(group) > 1 {
			conflicts = append(conflicts, models.CodeConflict{
				ConflictingName: key,
				Codes:           group,
				ConflictCount:   len(group),
			})
		}
	}
	return conflicts, nil
}

// projectCodeIDs keeps the ids that name codes of the project, without duplicates
func (s *codebookService) projectCodeIDs(ctx context.Context, projectID string, ids []string) ([]string, error) {
	codes, err := s.repos.Codes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(codes))
	for _, c := range codes {
		known[c.ID] = true
	}
	var out []string
	for _, id := range uniqueIDs(ids) {
		if known[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
