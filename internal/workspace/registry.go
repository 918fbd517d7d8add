package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CodeInput is what a user enters to create a code. Empty description and
// color fall back to display defaults.
type CodeInput struct {
	Name        string
	Description string
	Color       string
}

func (in *CodeInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Color = strings.TrimSpace(in.Color)

	err := validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required.Error("code name is required"), validation.RuneLength(1, config.MaxCodeNameLength)),
		validation.Field(&in.Color, codingSvc.HexColor),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// ProjectTracker reports the project currently open, or "".
type ProjectTracker interface {
	ProjectID() string
}

// localCode is a code created in projectID at store stamp.
type localCode struct {
	code      coding.Code
	projectID string
	stamp     uint64
}

// CodeRegistry resolves code choices against the project store and creates
// codes on demand. Codes created locally are listed after the server's until
// a code list fetched after their creation is applied.
type CodeRegistry struct {
	api      ProjectAPI
	store    *ProjectStore
	projects ProjectTracker
	logger   *slog.Logger

	mu       sync.Mutex
	local    []localCode
	selected string
}

// NewCodeRegistry creates a registry over store for the project projects has open.
func NewCodeRegistry(api ProjectAPI, store *ProjectStore, projects ProjectTracker, logger *slog.Logger) *CodeRegistry {
	return &CodeRegistry{api: api, store: store, projects: projects, logger: logger}
}

// ListCodes returns the server's codes in server order, then codes created locally since.
func (r *CodeRegistry) ListCodes() []coding.Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked()
}

func (r *CodeRegistry) listLocked() []coding.Code {
	view := r.store.View()
	projectID := r.projects.ProjectID()

	codes := view.Codes()
	for _, lc := range r.local {
		if lc.projectID != projectID || lc.stamp <= view.codesStamp {
			continue
		}
		if _, ok := view.Code(lc.code.ID); ok {
			continue
		}
		codes = append(codes, lc.code)
	}
	return codes
}

// CreateCode persists a new code in the open project, appends it to the
// registry and selects it. An empty name fails before any API call.
func (r *CodeRegistry) CreateCode(ctx context.Context, in CodeInput) (*coding.Code, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	projectID := r.projects.ProjectID()
	if projectID == "" {
		return nil, ErrNoProject
	}

	req := &codingSvc.CreateCodeRequest{
		ProjectID:   projectID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	}
	if req.Description == "" {
		req.Description = config.DefaultCodeDescription
	}
	if req.Color == "" {
		req.Color = config.DefaultCodeColor
	}

	code, err := r.api.CreateCode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create code: %w", err)
	}

	r.mu.Lock()
	r.local = append(r.local, localCode{code: *code, projectID: projectID, stamp: r.store.Stamp()})
	r.selected = code.ID
	r.mu.Unlock()

	r.logger.Debug("code created", "id", code.ID, "name", code.Name)

	return code, nil
}

// Select makes codeID the code for the pending assignment. An id the registry
// does not know means the caller holds stale state.
func (r *CodeRegistry) Select(codeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.ContainsFunc(r.listLocked(), func(c coding.Code) bool { return c.ID == codeID }) {
		return &domain.NotFoundError{Message: "code not found: " + codeID}
	}
	r.selected = codeID
	return nil
}

// Selected returns the selected code, or nil when none is selected or it has
// disappeared from the registry.
func (r *CodeRegistry) Selected() *coding.Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selected == "" {
		return nil
	}
	for _, c := range r.listLocked() {
		if c.ID == r.selected {
			return &c
		}
	}
	return nil
}

// Lookup resolves a code id against the registry.
func (r *CodeRegistry) Lookup(codeID string) (*coding.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.listLocked() {
		if c.ID == codeID {
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "code not found: " + codeID}
}

// ClearSelection drops the selected code.
func (r *CodeRegistry) ClearSelection() {
	r.mu.Lock()
	r.selected = ""
	r.mu.Unlock()
}

// Reset forgets local codes and the selection.
func (r *CodeRegistry) Reset() {
	r.mu.Lock()
	r.local = nil
	r.selected = ""
	r.mu.Unlock()
}
