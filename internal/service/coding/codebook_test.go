package coding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualcode/internal/domain"
	codingSvc "qualcode/internal/domain/services/coding"
)

func TestApplyTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	// An existing code with a template name stays where it is
	_, err := env.codes.CreateCode(ctx, owner, &codingSvc.CreateCodeRequest{ProjectID: project.ID, Name: "Positive"})
	require.NoError(t, err)

	codebook, err := env.codebooks.ApplyTemplate(ctx, owner, project.ID, "sentiment")
	require.NoError(t, err)
	assert.Equal(t, "Sentiment", codebook.Name)
	assert.Len(t, codebook.CodeIDs, 3)

	_, err = env.codebooks.ApplyTemplate(ctx, owner, project.ID, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeAndExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	codebook, err := env.codebooks.CreateCodebook(ctx, owner, &codingSvc.CreateCodebookRequest{ProjectID: project.ID, Name: "Interview Codes"})
	require.NoError(t, err)
	_, err = env.codes.CreateCode(ctx, owner, &codingSvc.CreateCodeRequest{
		ProjectID: project.ID, Name: "Trust", Color: "#10B981", CodebookID: &codebook.ID,
	})
	require.NoError(t, err)

	final, err := env.codebooks.FinalizeCodebook(ctx, owner, codebook.ID)
	require.NoError(t, err)
	assert.True(t, final.Finalized)

	_, err = env.codebooks.FinalizeCodebook(ctx, owner, codebook.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := env.codebooks.ExportCodebook(ctx, owner, codebook.ID)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: interview-codes")
	assert.Contains(t, string(out), "Trust")

	_, err = env.codebooks.ExportCodebook(ctx, stranger, codebook.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMergeCodesToDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	codebook, err := env.codebooks.ApplyTemplate(ctx, owner, project.ID, "sentiment")
	require.NoError(t, err)
	require.NotEmpty(t, codebook.CodeIDs)

	before := env.cache.invalidations()
	result, err := env.codebooks.MergeCodesToDefault(ctx, owner, project.ID, &codingSvc.MergeCodesRequest{
		CodeIDs: []string{codebook.CodeIDs[0], codebook.CodeIDs[0]},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MovedCodesCount)
	assert.Greater(t, env.cache.invalidations(), before)

	def, err := env.repos.Codebooks.GetOrCreateDefault(ctx, project.ID, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, result.DefaultCodebookID, def.ID)
	assert.Contains(t, def.CodeIDs, codebook.CodeIDs[0])

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.codebooks.MergeCodesToDefault(ctx, owner, project.ID, &codingSvc.MergeCodesRequest{
			CodeIDs: []string{codebook.CodeIDs[1], "missing"},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		moved, err := env.repos.Codes.GetByID(ctx, codebook.CodeIDs[1])
		require.NoError(t, err)
		assert.Equal(t, codebook.ID, *moved.CodebookID)
	})

	t.Run("code of another project", func(t *testing.T) {
		other, err := env.projects.CreateProject(ctx, owner, &codingSvc.CreateProjectRequest{Title: "Other"})
		require.NoError(t, err)
		_, err = env.codebooks.MergeCodesToDefault(ctx, owner, other.ID, &codingSvc.MergeCodesRequest{
			CodeIDs: []string{codebook.CodeIDs[1]},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("finalized default", func(t *testing.T) {
		_, err := env.codebooks.FinalizeCodebook(ctx, owner, def.ID)
		require.NoError(t, err)
		_, err = env.codebooks.MergeCodesToDefault(ctx, owner, project.ID, &codingSvc.MergeCodesRequest{
			CodeIDs: []string{codebook.CodeIDs[1]},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty request", func(t *testing.T) {
		_, err := env.codebooks.MergeCodesToDefault(ctx, owner, project.ID, &codingSvc.MergeCodesRequest{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCreateMasterCodebook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	_, err := env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: collab.Email})
	require.NoError(t, err)

	trust, err := env.codes.CreateCode(ctx, collab, &codingSvc.CreateCodeRequest{ProjectID: project.ID, Name: "Trust"})
	require.NoError(t, err)
	doubt, err := env.codes.CreateCode(ctx, collab, &codingSvc.CreateCodeRequest{ProjectID: project.ID, Name: "Doubt"})
	require.NoError(t, err)
	mine, err := env.codes.CreateCode(ctx, owner, &codingSvc.CreateCodeRequest{ProjectID: project.ID, Name: "Hope"})
	require.NoError(t, err)

	req := &codingSvc.MasterCodebookRequest{
		Selections: []codingSvc.CodebookSelection{
			// The owner's code is listed under the collaborator's codebook, so it does not count
			{CodebookID: *trust.CodebookID, CodeIDs: []string{trust.ID, mine.ID}},
		},
	}

	_, err = env.codebooks.CreateMasterCodebook(ctx, collab, project.ID, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	result, err := env.codebooks.CreateMasterCodebook(ctx, owner, project.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CodesMoved)
	assert.Equal(t, "Master Codebook", result.MasterCodebook.Name)
	assert.Equal(t, owner.UserID, result.MasterCodebook.OwnerID)
	assert.Equal(t, []string{trust.ID}, result.MasterCodebook.CodeIDs)

	left, err := env.repos.Codes.GetByID(ctx, doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, *trust.CodebookID, *left.CodebookID)

	snapshot, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Codebooks, 3)

	_, err = env.codebooks.CreateMasterCodebook(ctx, owner, project.ID, &codingSvc.MasterCodebookRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDetectConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	first, err := env.codebooks.CreateCodebook(ctx, owner, &codingSvc.CreateCodebookRequest{ProjectID: project.ID, Name: "A"})
	require.NoError(t, err)
	second, err := env.codebooks.CreateCodebook(ctx, owner, &codingSvc.CreateCodebookRequest{ProjectID: project.ID, Name: "B"})
	require.NoError(t, err)
	open, err := env.codebooks.CreateCodebook(ctx, owner, &codingSvc.CreateCodebookRequest{ProjectID: project.ID, Name: "C"})
	require.NoError(t, err)

	create := func(name string, codebookID string) {
		_, err := env.codes.CreateCode(ctx, owner, &codingSvc.CreateCodeRequest{ProjectID: project.ID, Name: name, CodebookID: &codebookID})
		require.NoError(t, err)
	}
	create("Trust", first.ID)
	create("trust ", second.ID)
	create("TRUST", open.ID)
	create("Doubt", first.ID)

	conflicts, err := env.codebooks.DetectConflicts(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = env.codebooks.FinalizeCodebook(ctx, owner, first.ID)
	require.NoError(t, err)
	_, err = env.codebooks.FinalizeCodebook(ctx, owner, second.ID)
	require.NoError(t, err)

	conflicts, err = env.codebooks.DetectConflicts(ctx, owner, project.ID)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "trust", conflicts[0].ConflictingName)
	assert.Equal(t, 2, conflicts[0].ConflictCount)
	assert.ElementsMatch(t, []string{first.ID, second.ID},
		[]string{conflicts[0].Codes[0].CodebookID, conflicts[0].Codes[1].CodebookID})
	assert.Equal(t, owner.UserID, conflicts[0].Codes[0].OwnerID)

	_, err = env.codebooks.DetectConflicts(ctx, stranger, project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
