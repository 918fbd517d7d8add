package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"
)

// CollaboratorAuthorizer implements ResourceAuthorizer using ownership and collaborator checks.
// Child resources (documents, codes, assignments, annotations, codebooks, themes) are resolved
// to their project first.
type CollaboratorAuthorizer struct {
	projectRepo      codingRepo.ProjectRepository
	collaboratorRepo codingRepo.CollaboratorRepository
	docRepo          codingRepo.DocumentRepository
	codeRepo         codingRepo.CodeRepository
	assignmentRepo   codingRepo.AssignmentRepository
	annotationRepo   codingRepo.AnnotationRepository
	codebookRepo     codingRepo.CodebookRepository
	themeRepo        codingRepo.ThemeRepository
}

// NewCollaboratorAuthorizer creates a new collaborator-aware authorizer
func NewCollaboratorAuthorizer(
	projectRepo codingRepo.ProjectRepository,
	collaboratorRepo codingRepo.CollaboratorRepository,
	docRepo codingRepo.DocumentRepository,
	codeRepo codingRepo.CodeRepository,
	assignmentRepo codingRepo.AssignmentRepository,
	annotationRepo codingRepo.AnnotationRepository,
	codebookRepo codingRepo.CodebookRepository,
	themeRepo codingRepo.ThemeRepository,
) *CollaboratorAuthorizer {
	return &CollaboratorAuthorizer{
		projectRepo:      projectRepo,
		collaboratorRepo: collaboratorRepo,
		docRepo:          docRepo,
		codeRepo:         codeRepo,
		assignmentRepo:   assignmentRepo,
		annotationRepo:   annotationRepo,
		codebookRepo:     codebookRepo,
		themeRepo:        themeRepo,
	}
}

// CanAccessProject checks if the actor owns or collaborates on the project
func (a *CollaboratorAuthorizer) CanAccessProject(ctx context.Context, actor codingSvc.Actor, projectID string) (*coding.Project, error) {
	project, err := a.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID == actor.UserID {
		return project, nil
	}
	if actor.Email != "" {
		ok, err := a.collaboratorRepo.Exists(ctx, projectID, strings.ToLower(actor.Email))
		if err != nil {
			return nil, fmt.Errorf("check collaborator: %w", err)
		}
		if ok {
			return project, nil
		}
	}
	return nil, fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
}

// CanManageProject checks if the actor owns the project
func (a *CollaboratorAuthorizer) CanManageProject(ctx context.Context, actor codingSvc.Actor, projectID string) (*coding.Project, error) {
	project, err := a.CanAccessProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.UserID {
		return nil, &domain.ForbiddenError{Message: "only the project owner can do this"}
	}
	return project, nil
}

// CanAccessDocument checks access via the document's project
func (a *CollaboratorAuthorizer) CanAccessDocument(ctx context.Context, actor codingSvc.Actor, documentID string) (*coding.Document, error) {
	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document for auth: %w", err)
	}
	if _, err := a.CanAccessProject(ctx, actor, doc.ProjectID); err != nil {
		return nil, err
	}
	return doc, nil
}

// CanAccessCode checks access via the code's project
func (a *CollaboratorAuthorizer) CanAccessCode(ctx context.Context, actor codingSvc.Actor, codeID string) (*coding.Code, error) {
	code, err := a.codeRepo.GetByID(ctx, codeID)
	if err != nil {
		return nil, fmt.Errorf("get code for auth: %w", err)
	}
	if _, err := a.CanAccessProject(ctx, actor, code.ProjectID); err != nil {
		return nil, err
	}
	return code, nil
}

// CanAccessAssignment checks access via the assignment's document
func (a *CollaboratorAuthorizer) CanAccessAssignment(ctx context.Context, actor codingSvc.Actor, assignmentID string) (*coding.CodeAssignment, string, error) {
	assignment, err := a.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, "", fmt.Errorf("get assignment for auth: %w", err)
	}
	doc, err := a.CanAccessDocument(ctx, actor, assignment.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Orphaned by a concurrent document delete
			return nil, "", &domain.NotFoundError{Message: "assignment not found"}
		}
		return nil, "", err
	}
	return assignment, doc.ProjectID, nil
}

// CanAccessAnnotation checks access via the annotation's project
func (a *CollaboratorAuthorizer) CanAccessAnnotation(ctx context.Context, actor codingSvc.Actor, annotationID string) (*coding.Annotation, error) {
	annotation, err := a.annotationRepo.GetByID(ctx, annotationID)
	if err != nil {
		return nil, fmt.Errorf("get annotation for auth: %w", err)
	}
	if _, err := a.CanAccessProject(ctx, actor, annotation.ProjectID); err != nil {
		return nil, err
	}
	return annotation, nil
}

// CanAccessCodebook checks access via the codebook's project
func (a *CollaboratorAuthorizer) CanAccessCodebook(ctx context.Context, actor codingSvc.Actor, codebookID string) (*coding.Codebook, error) {
	codebook, err := a.codebookRepo.GetByID(ctx, codebookID)
	if err != nil {
		return nil, fmt.Errorf("get codebook for auth: %w", err)
	}
	if _, err := a.CanAccessProject(ctx, actor, codebook.ProjectID); err != nil {
		return nil, err
	}
	return codebook, nil
}

// CanAccessTheme checks access via the theme's project
func (a *CollaboratorAuthorizer) CanAccessTheme(ctx context.Context, actor codingSvc.Actor, themeID string) (*coding.Theme, error) {
	theme, err := a.themeRepo.GetByID(ctx, themeID)
	if err != nil {
		return nil, fmt.Errorf("get theme for auth: %w", err)
	}
	if _, err := a.CanAccessProject(ctx, actor, theme.ProjectID); err != nil {
		return nil, err
	}
	return theme, nil
}
