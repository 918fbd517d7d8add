package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"qualcode/internal/config"
	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Action names a user-triggered operation. While an action is in flight a
// second trigger of the same action is rejected, like a disabled button.
type Action string

const (
	ActionOpen               Action = "open"
	ActionRefresh            Action = "refresh"
	ActionCreateCode         Action = "create_code"
	ActionAssign             Action = "assign"
	ActionReassign           Action = "reassign"
	ActionDeleteAssignment   Action = "delete_assignment"
	ActionUpdateNote         Action = "update_note"
	ActionUpdateProject      Action = "update_project"
	ActionAddCollaborator    Action = "add_collaborator"
	ActionRemoveCollaborator Action = "remove_collaborator"
	ActionSaveResearch       Action = "save_research"
	ActionAddComment         Action = "add_comment"
	ActionDeleteComment      Action = "delete_comment"
	ActionCreateTheme        Action = "create_theme"
	ActionSetCodeTheme       Action = "set_code_theme"
	ActionMergeCodes         Action = "merge_codes"
)

// Workspace is the controller behind a coding UI. Every mutation follows the
// same order: persist, optionally append locally, then refresh from the server.
// It is safe for concurrent use.
type Workspace struct {
	api       ProjectAPI
	store     *ProjectStore
	registry  *CodeRegistry
	engine    *AssignmentEngine
	refresher *Refresher
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[Action]bool
	pending  *Span
}

// New creates a workspace talking to api.
func New(api ProjectAPI, logger *slog.Logger) *Workspace {
	store := NewProjectStore()
	refresher := NewRefresher(api, store, logger)
	return &Workspace{
		api:       api,
		store:     store,
		registry:  NewCodeRegistry(api, store, refresher, logger),
		engine:    NewAssignmentEngine(api, store, logger),
		refresher: refresher,
		logger:    logger,
		inFlight:  make(map[Action]bool),
	}
}

// View returns a read-only projection of the project.
func (w *Workspace) View() *View { return w.store.View() }

// Codes lists the codes available for assignment.
func (w *Workspace) Codes() []coding.Code { return w.registry.ListCodes() }

// SelectedCode returns the code chosen for the pending assignment, or nil.
func (w *Workspace) SelectedCode() *coding.Code { return w.registry.Selected() }

// RefreshState returns the state of the current refresh cycle.
func (w *Workspace) RefreshState() RefreshState { return w.refresher.State() }

// LastRefreshError returns the last refresh failure, cleared by the next applied refresh.
func (w *Workspace) LastRefreshError() error { return w.refresher.LastError() }

// ObserveRefresh registers a callback for refresh state changes.
func (w *Workspace) ObserveRefresh(fn func(RefreshState)) { w.refresher.Observe(fn) }

// Open loads a project, superseding any refresh of a previously open one.
func (w *Workspace) Open(ctx context.Context, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return &domain.ValidationError{Message: "project id is required"}
	}

	// Open is not guarded: opening another project supersedes the load in flight.
	return w.safely(ActionOpen, func() error {
		if w.refresher.ProjectID() != projectID {
			w.registry.Reset()
			w.setPending(nil)
		}
		_, err := w.refresher.Open(ctx, projectID)
		return err
	})
}

// Close forgets the open project.
func (w *Workspace) Close() {
	w.refresher.Reset()
	w.registry.Reset()
	w.setPending(nil)
}

// Refresh reloads the project. A refresh already in flight makes this a no-op
// returning RefreshSkipped.
func (w *Workspace) Refresh(ctx context.Context) (RefreshOutcome, error) {
	var outcome RefreshOutcome
	err := w.run(ActionRefresh, func() error {
		var err error
		outcome, err = w.refresher.Refresh(ctx)
		return err
	})
	return outcome, err
}

// SelectText turns a viewer selection into the pending span.
// An invalid selection clears nothing and returns *InvalidSelectionError.
func (w *Workspace) SelectText(sel Selection) (Span, error) {
	doc, ok := w.store.View().Document(sel.AnchorDocumentID)
	if !ok {
		return Span{}, &InvalidSelectionError{Reason: "document is not loaded"}
	}
	span, err := NewSpan(sel, doc)
	if err != nil {
		return Span{}, err
	}
	w.setPending(&span)
	return span, nil
}

// PendingSpan returns the span waiting for a code, or nil.
func (w *Workspace) PendingSpan() *Span {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return nil
	}
	span := *w.pending
	return &span
}

// ClearSelection drops the pending span and code.
func (w *Workspace) ClearSelection() {
	w.setPending(nil)
	w.registry.ClearSelection()
}

// SelectCode picks the code for the pending assignment.
func (w *Workspace) SelectCode(codeID string) error {
	return w.registry.Select(codeID)
}

// CreateCode creates a code, selects it and refreshes.
func (w *Workspace) CreateCode(ctx context.Context, in CodeInput) (*coding.Code, error) {
	var code *coding.Code
	err := w.mutate(ctx, ActionCreateCode, func() error {
		var err error
		code, err = w.registry.CreateCode(ctx, in)
		return err
	})
	return code, err
}

// AssignSelected assigns the selected code to the pending span. With either
// missing it does nothing and returns (nil, nil). The pending span is cleared on success.
func (w *Workspace) AssignSelected(ctx context.Context) (*coding.CodeAssignment, error) {
	span := w.PendingSpan()
	code := w.registry.Selected()
	if span == nil || code == nil {
		return nil, nil
	}

	assignment, err := w.Assign(ctx, span, code)
	if assignment != nil {
		w.setPending(nil)
	}
	return assignment, err
}

// Assign persists an assignment of code to span and refreshes.
func (w *Workspace) Assign(ctx context.Context, span *Span, code *coding.Code) (*coding.CodeAssignment, error) {
	if span == nil || code == nil {
		return nil, nil
	}

	var assignment *coding.CodeAssignment
	err := w.mutate(ctx, ActionAssign, func() error {
		var err error
		assignment, err = w.engine.AssignCode(ctx, span, code)
		return err
	})
	return assignment, err
}

// Reassign moves an assignment to another code by creating a new record over
// the same span and deleting the old one. The span is never edited in place.
func (w *Workspace) Reassign(ctx context.Context, assignmentID, codeID string) (*coding.CodeAssignment, error) {
	old, ok := w.store.View().Assignment(assignmentID)
	if !ok {
		return nil, &domain.NotFoundError{Message: "assignment not found: " + assignmentID}
	}
	code, err := w.registry.Lookup(codeID)
	if err != nil {
		return nil, err
	}
	if old.CodeID == code.ID {
		return &old, nil
	}

	span := &Span{
		DocumentID: old.DocumentID,
		StartChar:  old.StartChar,
		EndChar:    old.EndChar,
		Text:       old.TextSnapshot,
	}

	var assignment *coding.CodeAssignment
	err = w.mutate(ctx, ActionReassign, func() error {
		var err error
		assignment, err = w.engine.AssignCode(ctx, span, code)
		if err != nil {
			return err
		}
		if err := w.api.DeleteAssignment(ctx, old.ID); err != nil {
			// The new record is persisted, so reload to show both before reporting.
			w.refresher.Refresh(ctx)
			return fmt.Errorf("remove previous assignment: %w", err)
		}
		return nil
	})
	return assignment, err
}

// DeleteAssignment deletes an assignment and refreshes.
func (w *Workspace) DeleteAssignment(ctx context.Context, assignmentID string) error {
	return w.mutate(ctx, ActionDeleteAssignment, func() error {
		if err := w.api.DeleteAssignment(ctx, assignmentID); err != nil {
			return fmt.Errorf("delete assignment: %w", err)
		}
		return nil
	})
}

// UpdateNote sets an assignment's note and refreshes.
func (w *Workspace) UpdateNote(ctx context.Context, assignmentID, note string) error {
	return w.mutate(ctx, ActionUpdateNote, func() error {
		if _, err := w.api.UpdateAssignmentNote(ctx, assignmentID, note); err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		return nil
	})
}

// UpdateProject changes the title and description. An empty title fails before any API call.
func (w *Workspace) UpdateProject(ctx context.Context, title, description string) error {
	req := &codingSvc.UpdateProjectRequest{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required.Error("project title is required"), validation.RuneLength(1, config.MaxProjectTitleLength)),
	); err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	return w.mutateProject(ctx, ActionUpdateProject, func(projectID string) error {
		if _, err := w.api.UpdateProject(ctx, projectID, req); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		return nil
	})
}

// AddCollaborator grants an email access to the project.
func (w *Workspace) AddCollaborator(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return w.mutateProject(ctx, ActionAddCollaborator, func(projectID string) error {
		if err := w.api.AddCollaborator(ctx, projectID, email); err != nil {
			return fmt.Errorf("add collaborator: %w", err)
		}
		return nil
	})
}

// RemoveCollaborator revokes an email's access.
func (w *Workspace) RemoveCollaborator(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return w.mutateProject(ctx, ActionRemoveCollaborator, func(projectID string) error {
		if err := w.api.RemoveCollaborator(ctx, projectID, email); err != nil {
			return fmt.Errorf("remove collaborator: %w", err)
		}
		return nil
	})
}

// SaveResearchDetails replaces the research questions and objectives.
func (w *Workspace) SaveResearchDetails(ctx context.Context, questions, objectives []string) error {
	if len(questions) > config.MaxResearchItems || len(objectives) > config.MaxResearchItems {
		return &domain.ValidationError{Message: fmt.Sprintf("at most %d research questions and objectives", config.MaxResearchItems)}
	}
	req := &codingSvc.ResearchDetailsRequest{
		ResearchQuestions:  questions,
		ResearchObjectives: objectives,
	}
	return w.mutateProject(ctx, ActionSaveResearch, func(projectID string) error {
		if err := w.api.SaveResearchDetails(ctx, projectID, req); err != nil {
			return fmt.Errorf("save research details: %w", err)
		}
		return nil
	})
}

// CommentInput is a comment to attach to the project, a span, or a code.
type CommentInput struct {
	Content string
	Type    coding.AnnotationType
	Span    *Span
	CodeID  *string
}

// AddComment creates an annotation and refreshes.
func (w *Workspace) AddComment(ctx context.Context, in CommentInput) (*coding.Annotation, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, &domain.ValidationError{Message: "comment is required"}
	}
	if in.Type != "" && !in.Type.Valid() {
		return nil, &domain.ValidationError{Message: "unknown annotation type: " + string(in.Type)}
	}

	var annotation *coding.Annotation
	err := w.mutateProject(ctx, ActionAddComment, func(projectID string) error {
		req := &codingSvc.CreateAnnotationRequest{
			ProjectID:      projectID,
			CodeID:         in.CodeID,
			Content:        content,
			AnnotationType: in.Type,
		}
		if in.Span != nil {
			req.DocumentID = &in.Span.DocumentID
			req.StartChar = &in.Span.StartChar
			req.EndChar = &in.Span.EndChar
		}
		var err error
		annotation, err = w.api.CreateAnnotation(ctx, req)
		if err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		return nil
	})
	return annotation, err
}

// DeleteComment deletes an annotation and refreshes.
func (w *Workspace) DeleteComment(ctx context.Context, annotationID string) error {
	return w.mutate(ctx, ActionDeleteComment, func() error {
		if err := w.api.DeleteAnnotation(ctx, annotationID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
}

// CreateTheme creates a theme in the open project and refreshes.
func (w *Workspace) CreateTheme(ctx context.Context, name, description string) (*coding.Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "theme name is required"}
	}

	var theme *coding.Theme
	err := w.mutateProject(ctx, ActionCreateTheme, func(projectID string) error {
		var err error
		theme, err = w.api.CreateTheme(ctx, &codingSvc.CreateThemeRequest{
			ProjectID:   projectID,
			Name:        name,
			Description: strings.TrimSpace(description),
		})
		if err != nil {
			return fmt.Errorf("create theme: %w", err)
		}
		return nil
	})
	return theme, err
}

// SetCodeTheme files a code under a theme, or clears it when themeID is empty, and refreshes.
func (w *Workspace) SetCodeTheme(ctx context.Context, codeID, themeID string) error {
	var target *string
	if themeID != "" {
		target = &themeID
	}
	return w.mutate(ctx, ActionSetCodeTheme, func() error {
		if _, err := w.api.SetCodeTheme(ctx, codeID, target); err != nil {
			return fmt.Errorf("set code theme: %w", err)
		}
		return nil
	})
}

// MergeCodesToDefault moves codes into the user's default codebook and refreshes.
func (w *Workspace) MergeCodesToDefault(ctx context.Context, codeIDs []string) (*coding.MergeResult, error) {
	if len(codeIDs) == 0 {
		return nil, &domain.ValidationError{Message: "no codes to merge"}
	}

	var result *coding.MergeResult
	err := w.mutateProject(ctx, ActionMergeCodes, func(projectID string) error {
		var err error
		result, err = w.api.MergeCodesToDefault(ctx, projectID, codeIDs)
		if err != nil {
			return fmt.Errorf("merge codes: %w", err)
		}
		return nil
	})
	return result, err
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return "", &domain.ValidationError{Message: "email: " + err.Error()}
	}
	return email, nil
}

func (w *Workspace) mutateProject(ctx context.Context, action Action, fn func(projectID string) error) error {
	return w.mutate(ctx, action, func() error {
		projectID := w.refresher.ProjectID()
		if projectID == "" {
			return ErrNoProject
		}
		return fn(projectID)
	})
}

// mutate runs fn under the action guard and refreshes once it succeeded.
// A failed fn leaves local state untouched and skips the refresh.
func (w *Workspace) mutate(ctx context.Context, action Action, fn func() error) error {
	return w.run(action, func() error {
		if w.refresher.ProjectID() == "" {
			return ErrNoProject
		}
		if err := fn(); err != nil {
			return err
		}
		if _, err := w.refresher.Refresh(ctx); err != nil {
			return &RefreshError{Err: err}
		}
		return nil
	})
}

// run applies the in-flight guard. Panics from collaborators come back as errors.
func (w *Workspace) run(action Action, fn func() error) error {
	w.mu.Lock()
	if w.inFlight[action] {
		w.mu.Unlock()
		return ErrActionInFlight
	}
	w.inFlight[action] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inFlight, action)
		w.mu.Unlock()
	}()

	return w.safely(action, fn)
}

func (w *Workspace) safely(action Action, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			w.logger.Error("workspace action panicked", "action", action, "panic", p)
			err = fmt.Errorf("%s: unexpected failure: %v", action, p)
		}
	}()
	return fn()
}

func (w *Workspace) setPending(span *Span) {
	w.mu.Lock()
	w.pending = span
	w.mu.Unlock()
}
