package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// ResourceAuthorizer checks if an actor can access resources.
// The project owner and its collaborators (matched by email) can read and change
// project content; only the owner can manage the project itself.
//
// Each check resolves the resource to its project and returns the resource so
// callers do not load it twice. Missing resources yield ErrNotFound, denied access ErrForbidden.
type ResourceAuthorizer interface {
	CanAccessProject(ctx context.Context, actor Actor, projectID string) (*coding.Project, error)

	// CanManageProject allows only the owner
	CanManageProject(ctx context.Context, actor Actor, projectID string) (*coding.Project, error)

	CanAccessDocument(ctx context.Context, actor Actor, documentID string) (*coding.Document, error)

	CanAccessCode(ctx context.Context, actor Actor, codeID string) (*coding.Code, error)

	// CanAccessAssignment returns the assignment and the project it belongs to
	CanAccessAssignment(ctx context.Context, actor Actor, assignmentID string) (*coding.CodeAssignment, string, error)

	CanAccessAnnotation(ctx context.Context, actor Actor, annotationID string) (*coding.Annotation, error)

	CanAccessCodebook(ctx context.Context, actor Actor, codebookID string) (*coding.Codebook, error)

	CanAccessTheme(ctx context.Context, actor Actor, themeID string) (*coding.Theme, error)
}
