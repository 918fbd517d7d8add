package workspace

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWorkspace(t *testing.T) (*Workspace, *fakeAPI, coding.Document) {
	t.Helper()
	api := newFakeAPI("p1")
	doc := api.addDocument("D1", "The quick brown fox")
	ws := New(api, discardLogger())
	require.NoError(t, ws.Open(context.Background(), "p1"))
	return ws, api, doc
}

func TestSelectCreateAssignScenario(t *testing.T) {
	ws, api, doc := openWorkspace(t)
	ctx := context.Background()

	span, err := ws.SelectText(sel(doc.ID, 4, 9))
	require.NoError(t, err)
	assert.Equal(t, "quick", span.Text)

	code, err := ws.CreateCode(ctx, CodeInput{Name: "Speed"})
	require.NoError(t, err)
	require.Equal(t, code.ID, ws.SelectedCode().ID)

	record, err := ws.AssignSelected(ctx)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "quick", record.TextSnapshot)
	assert.Equal(t, "Speed", record.CodeName)
	assert.Equal(t, 4, record.StartChar)
	assert.Equal(t, 9, record.EndChar)
	assert.Nil(t, ws.PendingSpan())

	// After the refresh the server's record is the one held locally.
	assignments := ws.View().Assignments()
	require.Len(t, assignments, 1)
	assert.Equal(t, record.ID, assignments[0].ID)
	assert.Equal(t, "quick", assignments[0].TextSnapshot)

	// open + create refresh + assign refresh
	assert.Equal(t, 3, api.callCount("get"))
}

func TestAssignSelectedWithoutInputsDoesNothing(t *testing.T) {
	ws, api, doc := openWorkspace(t)

	got, err := ws.AssignSelected(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = ws.SelectText(sel(doc.ID, 0, 3))
	require.NoError(t, err)
	got, err = ws.AssignSelected(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.Zero(t, api.callCount("assign"))
}

func TestAssigningTwiceCreatesTwoRecords(t *testing.T) {
	ws, api, doc := openWorkspace(t)
	ctx := context.Background()

	span := &Span{DocumentID: doc.ID, StartChar: 4, EndChar: 9, Text: "quick"}
	code := &coding.Code{Name: "Speed"}

	// Straight through the engine, before any refresh lands
	first, err := ws.engine.AssignCode(ctx, span, code)
	require.NoError(t, err)
	second, err := ws.engine.AssignCode(ctx, span, code)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, ws.View().Assignments(), 2)

	// And through the controller
	_, err = ws.Assign(ctx, span, code)
	require.NoError(t, err)
	assert.Len(t, ws.View().Assignments(), 3)
	assert.Equal(t, 3, api.callCount("assign"))
}

func TestSecondTriggerWhileInFlightIsRejected(t *testing.T) {
	ws, api, doc := openWorkspace(t)
	ctx := context.Background()

	api.assignGate = make(chan struct{})
	span := &Span{DocumentID: doc.ID, StartChar: 4, EndChar: 9, Text: "quick"}
	code := &coding.Code{Name: "Speed"}

	done := make(chan error)
	go func() {
		_, err := ws.Assign(ctx, span, code)
		done <- err
	}()
	waitFor(t, func() bool { return api.callCount("assign") == 1 })

	got, err := ws.Assign(ctx, span, code)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrActionInFlight)
	assert.Equal(t, "That action is already in progress.", Describe(err))

	// Other actions are not blocked.
	require.NoError(t, ws.UpdateProject(ctx, "Renamed", ""))

	close(api.assignGate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.callCount("assign"))

	// Released: the action can run again.
	api.assignGate = nil
	_, err = ws.Assign(ctx, span, code)
	assert.NoError(t, err)
}

func TestReassignReplacesRecordKeepingSpan(t *testing.T) {
	ws, api, doc := openWorkspace(t)
	ctx := context.Background()

	original, err := ws.Assign(ctx, &Span{DocumentID: doc.ID, StartChar: 4, EndChar: 9, Text: "quick"}, &coding.Code{Name: "Speed"})
	require.NoError(t, err)
	target, err := ws.CreateCode(ctx, CodeInput{Name: "Pace"})
	require.NoError(t, err)

	moved, err := ws.Reassign(ctx, original.ID, target.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, moved.ID)
	assert.Equal(t, target.ID, moved.CodeID)
	assert.Equal(t, original.DocumentID, moved.DocumentID)
	assert.Equal(t, original.StartChar, moved.StartChar)
	assert.Equal(t, original.EndChar, moved.EndChar)
	assert.Equal(t, original.TextSnapshot, moved.TextSnapshot)

	assignments := ws.View().Assignments()
	require.Len(t, assignments, 1)
	assert.Equal(t, moved.ID, assignments[0].ID)
	assert.Equal(t, 1, api.callCount("delete_assignment"))
}

func TestReassignUnknownReferences(t *testing.T) {
	ws, _, doc := openWorkspace(t)
	ctx := context.Background()

	_, err := ws.Reassign(ctx, "missing", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	original, err := ws.Assign(ctx, &Span{DocumentID: doc.ID, StartChar: 0, EndChar: 3}, &coding.Code{Name: "Article"})
	require.NoError(t, err)
	_, err = ws.Reassign(ctx, original.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutationFailureSkipsRefresh(t *testing.T) {
	ws, api, doc := openWorkspace(t)
	before := ws.View()
	gets := api.callCount("get")

	api.setFailure("assign", &domain.RemoteError{Op: "assign code", StatusCode: http.StatusBadRequest, Detail: "span out of bounds"})
	_, err := ws.Assign(context.Background(), &Span{DocumentID: doc.ID, StartChar: 4, EndChar: 9}, &coding.Code{Name: "Speed"})

	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "The server rejected the request: span out of bounds", Describe(err))
	assert.Equal(t, before, ws.View())
	assert.Equal(t, gets, api.callCount("get"))
}

func TestRefreshFailureAfterMutationIsReported(t *testing.T) {
	ws, api, _ := openWorkspace(t)

	api.setFailure("get", &domain.RemoteError{Op: "get project", Err: errors.New("dial tcp: refused")})
	err := ws.AddCollaborator(context.Background(), "Ana@Example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.Equal(t, "Your change was saved, but the project could not be reloaded. Could not reach the server. Check your connection and try again.", Describe(err))
	assert.Equal(t, 1, api.callCount("add_collaborator"))
	assert.Error(t, ws.LastRefreshError())

	api.setFailure("get", nil)
	_, err = ws.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, ws.View().Collaborators(), 1)
	assert.Equal(t, "ana@example.com", ws.View().Collaborators()[0].Email)
}

func TestProjectActionsValidateBeforeCalling(t *testing.T) {
	ws, api, _ := openWorkspace(t)
	ctx := context.Background()

	assert.ErrorIs(t, ws.UpdateProject(ctx, "   ", "desc"), domain.ErrValidation)
	assert.ErrorIs(t, ws.AddCollaborator(ctx, "not-an-email"), domain.ErrValidation)
	assert.ErrorIs(t, ws.RemoveCollaborator(ctx, ""), domain.ErrValidation)
	_, err := ws.AddComment(ctx, CommentInput{Content: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = ws.AddComment(ctx, CommentInput{Content: "hi", Type: "SHOUT"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	for _, op := range []string{"update_project", "add_collaborator", "remove_collaborator", "create_annotation"} {
		assert.Zero(t, api.callCount(op), op)
	}
}

func TestProjectActionsRefresh(t *testing.T) {
	ws, _, doc := openWorkspace(t)
	ctx := context.Background()

	require.NoError(t, ws.UpdateProject(ctx, " Renamed ", "Second round"))
	assert.Equal(t, "Renamed", ws.View().Project().Title)

	require.NoError(t, ws.SaveResearchDetails(ctx, []string{"Why?"}, []string{"Map themes"}))
	assert.Equal(t, []string{"Why?"}, ws.View().Project().ResearchDetails.ResearchQuestions)

	require.NoError(t, ws.AddCollaborator(ctx, "ana@example.com"))
	require.Len(t, ws.View().Collaborators(), 1)
	require.NoError(t, ws.RemoveCollaborator(ctx, "ana@example.com"))
	assert.Empty(t, ws.View().Collaborators())

	span, err := ws.SelectText(sel(doc.ID, 10, 15))
	require.NoError(t, err)
	comment, err := ws.AddComment(ctx, CommentInput{Content: "colour?", Span: &span})
	require.NoError(t, err)
	assert.Equal(t, coding.AnnotationTypeComment, comment.AnnotationType)
	require.Len(t, ws.View().Annotations(), 1)

	require.NoError(t, ws.DeleteComment(ctx, comment.ID))
	assert.Empty(t, ws.View().Annotations())
}

func TestAssignmentNoteAndDelete(t *testing.T) {
	ws, _, doc := openWorkspace(t)
	ctx := context.Background()

	record, err := ws.Assign(ctx, &Span{DocumentID: doc.ID, StartChar: 4, EndChar: 9}, &coding.Code{Name: "Speed"})
	require.NoError(t, err)

	require.NoError(t, ws.UpdateNote(ctx, record.ID, "fast"))
	got, ok := ws.View().Assignment(record.ID)
	require.True(t, ok)
	assert.Equal(t, "fast", got.Note)

	require.NoError(t, ws.DeleteAssignment(ctx, record.ID))
	assert.Empty(t, ws.View().Assignments())

	err = ws.DeleteAssignment(ctx, record.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActionsNeedOpenProject(t *testing.T) {
	ws := New(newFakeAPI("p1"), discardLogger())
	ctx := context.Background()

	_, err := ws.Assign(ctx, &Span{DocumentID: "d1", StartChar: 0, EndChar: 1}, &coding.Code{Name: "x"})
	assert.ErrorIs(t, err, ErrNoProject)
	assert.ErrorIs(t, ws.UpdateProject(ctx, "t", ""), ErrNoProject)
	_, err = ws.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNoProject)
	assert.Equal(t, "Open a project first.", Describe(err))
}

func TestSelectTextInvalid(t *testing.T) {
	ws, api, doc := openWorkspace(t)

	_, err := ws.SelectText(sel(doc.ID, 3, 3))
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Nil(t, ws.PendingSpan())

	_, err = ws.SelectText(sel("unknown", 0, 3))
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Contains(t, Describe(err), "Select some text")
	assert.Zero(t, api.callCount("assign"))
}

func TestOpenAnotherProjectResetsState(t *testing.T) {
	ws, _, doc := openWorkspace(t)
	ctx := context.Background()

	_, err := ws.SelectText(sel(doc.ID, 4, 9))
	require.NoError(t, err)

	require.NoError(t, ws.Open(ctx, "p2"))
	assert.Equal(t, "p2", ws.View().Project().ID)
	assert.Nil(t, ws.PendingSpan())

	ws.Close()
	assert.False(t, ws.View().Loaded())
}

func TestOpenAnotherProjectDropsInFlightRefresh(t *testing.T) {
	ws, api, _ := openWorkspace(t)
	ctx := context.Background()

	gate := api.gate("p1")
	done := make(chan RefreshOutcome, 1)
	go func() {
		outcome, _ := ws.Refresh(ctx)
		done <- outcome
	}()
	require.Equal(t, "p1", <-api.getStarted)

	// p2 fails to load, then the p1 response arrives
	api.setFailure("get", &domain.RemoteError{Op: "get project", StatusCode: http.StatusBadGateway})
	require.Error(t, ws.Open(ctx, "p2"))
	close(gate)
	assert.Equal(t, RefreshDiscarded, <-done)

	assert.False(t, ws.View().Loaded())
	assert.Empty(t, ws.View().Documents())

	// Mutations go to the project that is open, not the one last shown
	api.setFailure("get", nil)
	code, err := ws.CreateCode(ctx, CodeInput{Name: "Speed"})
	require.NoError(t, err)
	assert.Equal(t, "p2", code.ProjectID)
	assert.Equal(t, "p2", ws.View().Project().ID)
}

type panickingAPI struct {
	*fakeAPI
}

func (panickingAPI) DeleteAnnotation(context.Context, string) error {
	panic("boom")
}

func TestThemesGroupCodes(t *testing.T) {
	ws, api, _ := openWorkspace(t)
	ctx := context.Background()

	trust, err := ws.CreateCode(ctx, CodeInput{Name: "Trust"})
	require.NoError(t, err)
	_, err = ws.CreateCode(ctx, CodeInput{Name: "Doubt"})
	require.NoError(t, err)

	_, err = ws.CreateTheme(ctx, "  ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, api.callCount("create_theme"))

	theme, err := ws.CreateTheme(ctx, " Relationships ", "")
	require.NoError(t, err)
	assert.Equal(t, "Relationships", theme.Name)
	require.NoError(t, ws.SetCodeTheme(ctx, trust.ID, theme.ID))

	view := ws.View()
	require.Len(t, view.Themes(), 1)
	assert.Equal(t, []string{trust.ID}, view.Themes()[0].CodeIDs)
	filed := view.CodesByTheme(theme.ID)
	require.Len(t, filed, 1)
	assert.Equal(t, "Trust", filed[0].Name)
	unfiled := view.CodesByTheme("")
	require.Len(t, unfiled, 1)
	assert.Equal(t, "Doubt", unfiled[0].Name)

	api.setFailure("set_code_theme", remoteStatus("set code theme", http.StatusNotFound, "code not found"))
	before := api.callCount("get")
	err = ws.SetCodeTheme(ctx, trust.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, api.callCount("get"))
}

func TestMergeCodesToDefault(t *testing.T) {
	ws, api, _ := openWorkspace(t)
	ctx := context.Background()

	code, err := ws.CreateCode(ctx, CodeInput{Name: "Trust"})
	require.NoError(t, err)

	_, err = ws.MergeCodesToDefault(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, api.callCount("merge_codes"))

	result, err := ws.MergeCodesToDefault(ctx, []string{code.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MovedCodesCount)

	merged, ok := ws.View().Code(code.ID)
	require.True(t, ok)
	require.NotNil(t, merged.CodebookID)
	assert.Equal(t, result.DefaultCodebookID, *merged.CodebookID)
}

func TestPanicsBecomeErrors(t *testing.T) {
	api := panickingAPI{fakeAPI: newFakeAPI("p1")}
	ws := New(api, discardLogger())
	require.NoError(t, ws.Open(context.Background(), "p1"))

	err := ws.DeleteComment(context.Background(), "n1")
	require.Error(t, err)
	assert.Contains(t, Describe(err), "Something went wrong")

	// The guard was released despite the panic.
	err = ws.DeleteComment(context.Background(), "n1")
	assert.NotErrorIs(t, err, ErrActionInFlight)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &domain.ValidationError{Message: "code name is required"}, "code name is required"},
		{"local not found", &domain.NotFoundError{Message: "code not found"}, "That item no longer exists. Reload the project and try again."},
		{"forbidden", &domain.RemoteError{Op: "get", StatusCode: http.StatusForbidden}, "You do not have access to this project."},
		{"unauthorized", &domain.RemoteError{Op: "get", StatusCode: http.StatusUnauthorized}, "Your session has expired. Sign in again."},
		{"status only", &domain.RemoteError{Op: "get", StatusCode: http.StatusBadGateway}, "The server answered with status 502."},
		{"cancelled", context.Canceled, "The request was cancelled or timed out."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}
