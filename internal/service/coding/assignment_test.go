package coding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualcode/internal/domain"
	codingSvc "qualcode/internal/domain/services/coding"
)

func TestAssignCode_FindOrCreateCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, doc := env.seedProject(t)

	first, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID,
		CodeName:   "Speed",
		StartChar:  4,
		EndChar:    9,
		Text:       "quick",
	})
	require.NoError(t, err)
	assert.True(t, first.CodeCreated)
	assert.Equal(t, "Speed", first.Code.Name)
	assert.Equal(t, "#3B82F6", first.Code.Color)
	assert.Equal(t, "No description", first.Code.Description)
	assert.Equal(t, "quick", first.CodeAssignment.Text)
	assert.Equal(t, 4, first.CodeAssignment.StartChar)
	assert.Equal(t, 9, first.CodeAssignment.EndChar)
	assert.NotNil(t, first.CodeAssignment.CreatedAt)

	second, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID,
		CodeName:   " Speed ",
		StartChar:  10,
		EndChar:    15,
	})
	require.NoError(t, err)
	assert.False(t, second.CodeCreated)
	assert.Equal(t, first.Code.ID, second.Code.ID)
	assert.Equal(t, "brown", second.CodeAssignment.Text)
}

func TestAssignCode_NoDeduplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, doc := env.seedProject(t)

	req := &codingSvc.AssignCodeRequest{DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9}
	a, err := env.assignments.AssignCode(ctx, owner, req)
	require.NoError(t, err)
	b, err := env.assignments.AssignCode(ctx, owner, req)
	require.NoError(t, err)
	assert.NotEqual(t, a.CodeAssignment.ID, b.CodeAssignment.ID)

	// Identical span, different code: also retained
	_, err = env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Animal", StartChar: 4, EndChar: 9,
	})
	require.NoError(t, err)

	snapshot, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.CodeAssignments, 3)
}

func TestAssignCode_SpanValidation(t *testing.T) {
	env := newTestEnv(t)
	_, doc := env.seedProject(t)

	tests := []struct {
		name       string
		start, end int
	}{
		{"empty", 4, 4},
		{"inverted", 9, 4},
		{"negative start", -1, 3},
		{"past end", 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.assignments.AssignCode(context.Background(), owner, &codingSvc.AssignCodeRequest{
				DocumentID: doc.ID, CodeName: "Speed", StartChar: tt.start, EndChar: tt.end,
			})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	// Ending exactly at the document length is valid
	res, err := env.assignments.AssignCode(context.Background(), owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 16, EndChar: 19,
	})
	require.NoError(t, err)
	assert.Equal(t, "fox", res.CodeAssignment.Text)
}

func TestAssignCode_RuneOffsets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	doc, err := env.documents.CreateDocument(ctx, owner, &codingSvc.CreateDocumentRequest{
		ProjectID: project.ID, Name: "Accents", Content: "naïve café",
	})
	require.NoError(t, err)

	res, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Food", StartChar: 6, EndChar: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "café", res.CodeAssignment.Text)
}

func TestAssignCode_Access(t *testing.T) {
	env := newTestEnv(t)
	_, doc := env.seedProject(t)

	_, err := env.assignments.AssignCode(context.Background(), stranger, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.assignments.AssignCode(context.Background(), owner, &codingSvc.AssignCodeRequest{
		DocumentID: "missing", CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateNoteAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, doc := env.seedProject(t)

	res, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	require.NoError(t, err)
	id := res.CodeAssignment.ID

	updated, err := env.assignments.UpdateNote(ctx, owner, id, &codingSvc.UpdateAssignmentRequest{Note: " fast "})
	require.NoError(t, err)
	assert.Equal(t, "fast", updated.Note)
	assert.Equal(t, 4, updated.StartChar)
	assert.Equal(t, "Speed", updated.CodeName)

	require.NoError(t, env.assignments.DeleteAssignment(ctx, owner, id))
	assert.ErrorIs(t, env.assignments.DeleteAssignment(ctx, owner, id), domain.ErrNotFound)
}
