package workspace

import (
	"context"

	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
)

// ProjectAPI is the authoritative project-data backend the workspace talks to.
// Every failure is expected to be a *domain.RemoteError.
type ProjectAPI interface {
	GetProjectWithContent(ctx context.Context, projectID string) (*Snapshot, error)
	CreateCode(ctx context.Context, req *codingSvc.CreateCodeRequest) (*coding.Code, error)
	AssignCode(ctx context.Context, req *codingSvc.AssignCodeRequest) (*coding.AssignCodeResult, error)
	DeleteAssignment(ctx context.Context, assignmentID string) error
	UpdateAssignmentNote(ctx context.Context, assignmentID, note string) (*coding.CodeAssignment, error)
	UpdateProject(ctx context.Context, projectID string, req *codingSvc.UpdateProjectRequest) (*coding.Project, error)
	AddCollaborator(ctx context.Context, projectID, email string) error
	RemoveCollaborator(ctx context.Context, projectID, email string) error
	SaveResearchDetails(ctx context.Context, projectID string, req *codingSvc.ResearchDetailsRequest) error
	CreateAnnotation(ctx context.Context, req *codingSvc.CreateAnnotationRequest) (*coding.Annotation, error)
	DeleteAnnotation(ctx context.Context, annotationID string) error
	CreateTheme(ctx context.Context, req *codingSvc.CreateThemeRequest) (*coding.Theme, error)
	SetCodeTheme(ctx context.Context, codeID string, themeID *string) (*coding.Code, error)
	MergeCodesToDefault(ctx context.Context, projectID string, codeIDs []string) (*coding.MergeResult, error)
}

// Snapshot is a getProjectWithContent response. Project metadata is always
// present; a nil collection was absent or null in the response and leaves the
// local collection untouched when applied.
type Snapshot struct {
	coding.Project
	Collaborators   *[]coding.Collaborator   `json:"collaborators"`
	Documents       *[]coding.Document       `json:"documents"`
	Codes           *[]coding.Code           `json:"codes"`
	CodeAssignments *[]coding.CodeAssignment `json:"code_assignments"`
	Annotations     *[]coding.Annotation     `json:"annotations"`
	Codebooks       *[]coding.Codebook       `json:"codebooks"`
	Themes          *[]coding.Theme          `json:"themes"`
}
