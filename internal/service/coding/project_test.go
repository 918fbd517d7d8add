package coding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"
)

func TestCreateProject_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.projects.CreateProject(context.Background(), owner, &codingSvc.CreateProjectRequest{Title: tt.title})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateProject_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	_, err := env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: collab.Email})
	require.NoError(t, err)

	_, err = env.projects.UpdateProject(ctx, collab, project.ID, &codingSvc.UpdateProjectRequest{Title: "Mine now"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.projects.UpdateProject(ctx, owner, project.ID, &codingSvc.UpdateProjectRequest{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := env.projects.UpdateProject(ctx, owner, project.ID, &codingSvc.UpdateProjectRequest{
		Title:       " Renamed ",
		Description: "Round two",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Round two", updated.Description)
}

func TestSaveResearchDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	saved, err := env.projects.SaveResearchDetails(ctx, owner, project.ID, &codingSvc.ResearchDetailsRequest{
		ResearchQuestions:  []string{" How do users cope? ", "", "  "},
		ResearchObjectives: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"How do users cope?"}, saved.ResearchDetails.ResearchQuestions)
	assert.Empty(t, saved.ResearchDetails.ResearchObjectives)

	snapshot, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"How do users cope?"}, snapshot.ResearchDetails.ResearchQuestions)
}

func TestCollaborators(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	_, err := env.projects.GetSnapshot(ctx, collab, project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: " Collab@Example.com "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "collab@example.com", list[0].Email)

	// Email matching is case-insensitive
	snapshot, err := env.projects.GetSnapshot(ctx, collab, project.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Collaborators, 1)

	shared, err := env.projects.ListProjects(ctx, collab)
	require.NoError(t, err)
	assert.Len(t, shared, 1)

	_, err = env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: "collab@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.projects.AddCollaborator(ctx, owner, project.ID, &codingSvc.CollaboratorRequest{Email: owner.Email})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.projects.AddCollaborator(ctx, collab, project.ID, &codingSvc.CollaboratorRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err = env.projects.RemoveCollaborator(ctx, owner, project.ID, "COLLAB@example.com")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.projects.RemoveCollaborator(ctx, owner, project.ID, "collab@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.projects.GetSnapshot(ctx, collab, project.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	require.NoError(t, env.projects.DeleteProject(ctx, owner, project.ID))

	_, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSnapshot_AssemblesAndCaches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, doc := env.seedProject(t)

	_, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	require.NoError(t, err)
	_, err = env.annotations.CreateAnnotation(ctx, owner, &codingSvc.CreateAnnotationRequest{
		ProjectID: project.ID, Content: "Check this",
	})
	require.NoError(t, err)

	snapshot, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Interviews", snapshot.Title)
	assert.Len(t, snapshot.Documents, 1)
	assert.Len(t, snapshot.Codes, 1)
	assert.Len(t, snapshot.CodeAssignments, 1)
	assert.Len(t, snapshot.Annotations, 1)
	require.Len(t, snapshot.Codebooks, 1)
	assert.Equal(t, []string{snapshot.Codes[0].ID}, snapshot.Codebooks[0].CodeIDs)
	assert.Equal(t, 1, snapshot.Codes[0].AssignmentsCount)

	cached, err := env.cache.Get(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)

	// A mutation drops the cached entry
	before := env.cache.invalidations()
	_, err = env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, env.cache.invalidations())

	snapshot, err = env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.CodeAssignments, 2)
}

// gatedAssignments holds the first ListByProject after it has read the rows
// until release is closed
type gatedAssignments struct {
	codingRepo.AssignmentRepository
	listed  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedAssignments) ListByProject(ctx context.Context, projectID string) ([]models.CodeAssignment, error) {
	list, err := g.AssignmentRepository.ListByProject(ctx, projectID)
	g.once.Do(func() {
		close(g.listed)
		<-g.release
	})
	return list, err
}

func TestGetSnapshot_AssemblyOverlappingMutationIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, doc := env.seedProject(t)

	gated := &gatedAssignments{
		AssignmentRepository: env.repos.Assignments,
		listed:               make(chan struct{}),
		release:              make(chan struct{}),
	}
	repos := env.repos
	repos.Assignments = gated
	reader := NewProjectService(repos, env.cache, env.authorizer, env.logger)

	done := make(chan error, 1)
	go func() {
		_, err := reader.GetSnapshot(ctx, owner, project.ID)
		done <- err
	}()

	// The reader has listed zero assignments; an assign commits before it finishes
	<-gated.listed
	_, err := env.assignments.AssignCode(ctx, owner, &codingSvc.AssignCodeRequest{
		DocumentID: doc.ID, CodeName: "Speed", StartChar: 4, EndChar: 9,
	})
	require.NoError(t, err)
	close(gated.release)
	require.NoError(t, <-done)

	snapshot, err := env.projects.GetSnapshot(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.CodeAssignments, 1)
}

func TestInvalidateSnapshot_IgnoresCancellation(t *testing.T) {
	env := newTestEnv(t)
	project, _ := env.seedProject(t)

	_, err := env.projects.GetSnapshot(context.Background(), owner, project.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	invalidateSnapshot(ctx, cancelAwareCache{env.cache}, env.logger, project.ID)

	cached, err := env.cache.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

// cancelAwareCache refuses to invalidate under a cancelled context, like a network cache would
type cancelAwareCache struct {
	*recordingCache
}

func (c cancelAwareCache) Invalidate(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.recordingCache.Invalidate(ctx, projectID)
}
