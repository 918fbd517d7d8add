package coding

import (
	"context"

	"qualcode/internal/domain/models/coding"
)

// CodebookService handles codebook business logic
type CodebookService interface {
	CreateCodebook(ctx context.Context, actor Actor, req *CreateCodebookRequest) (*coding.Codebook, error)

	// FinalizeCodebook marks a codebook read-only; new codes can no longer be added to it
	FinalizeCodebook(ctx context.Context, actor Actor, codebookID string) (*coding.Codebook, error)

	// ExportCodebook renders the codebook and its codes as YAML
	ExportCodebook(ctx context.Context, actor Actor, codebookID string) ([]byte, error)

	// ApplyTemplate creates a codebook from a named starter template, with all of its codes
	ApplyTemplate(ctx context.Context, actor Actor, projectID, templateName string) (*coding.Codebook, error)

	// MergeCodesToDefault moves project codes into the actor's default codebook
	MergeCodesToDefault(ctx context.Context, actor Actor, projectID string, req *MergeCodesRequest) (*coding.MergeResult, error)

	// CreateMasterCodebook builds an owner codebook from codes picked out of
	// collaborators' codebooks. The picked codes move into it.
	CreateMasterCodebook(ctx context.Context, actor Actor, projectID string, req *MasterCodebookRequest) (*coding.MasterCodebookResult, error)

	// DetectConflicts groups codes across finalized codebooks whose names match
	// after trimming and case folding
	DetectConflicts(ctx context.Context, actor Actor, projectID string) ([]coding.CodeConflict, error)
}

// CreateCodebookRequest represents a codebook creation request
type CreateCodebookRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MergeCodesRequest lists the codes to merge into the default codebook
type MergeCodesRequest struct {
	CodeIDs []string `json:"code_ids"`
}

// MasterCodebookRequest names the master codebook and the picked codes per source codebook
type MasterCodebookRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Selections  []CodebookSelection `json:"selections"`
}

// CodebookSelection picks codes out of one source codebook
type CodebookSelection struct {
	CodebookID string   `json:"codebook_id"`
	CodeIDs    []string `json:"code_ids"`
}
