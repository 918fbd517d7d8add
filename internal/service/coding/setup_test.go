package coding

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	models "qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/repository/memory"
	"qualcode/internal/service/auth"
	"qualcode/internal/templates"
)

var (
	owner    = codingSvc.Actor{UserID: "owner-1", Email: "owner@example.com"}
	collab   = codingSvc.Actor{UserID: "collab-1", Email: "Collab@Example.com"}
	stranger = codingSvc.Actor{UserID: "stranger-1", Email: "stranger@example.com"}
)

// recordingCache is an in-process SnapshotCache that records invalidations
type recordingCache struct {
	mu          sync.Mutex
	entries     map[string]*models.ProjectSnapshot
	generations map[string]int64
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries:     map[string]*models.ProjectSnapshot{},
		generations: map[string]int64{},
	}
}

func (c *recordingCache) Get(_ context.Context, projectID string) (*models.ProjectSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[projectID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (c *recordingCache) Generation(_ context.Context, projectID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[projectID], nil
}

func (c *recordingCache) Set(_ context.Context, s *models.ProjectSnapshot, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[s.ID] != generation {
		return nil
	}
	cp := *s
	c.entries[s.ID] = &cp
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, projectID)
	c.generations[projectID]++
	c.invalidated = append(c.invalidated, projectID)
	return nil
}

func (c *recordingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidated)
}

type testEnv struct {
	store       *memory.Store
	repos       Repositories
	authorizer  codingSvc.ResourceAuthorizer
	logger      *slog.Logger
	cache       *recordingCache
	projects    codingSvc.ProjectService
	documents   codingSvc.DocumentService
	codes       codingSvc.CodeService
	assignments codingSvc.AssignmentService
	annotations codingSvc.AnnotationService
	codebooks   codingSvc.CodebookService
	themes      codingSvc.ThemeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	repos := Repositories{
		Projects:      store.Projects(),
		Collaborators: store.Collaborators(),
		Documents:     store.Documents(),
		Codes:         store.Codes(),
		Assignments:   store.Assignments(),
		Annotations:   store.Annotations(),
		Codebooks:     store.Codebooks(),
		Themes:        store.Themes(),
		TxManager:     store.TransactionManager(),
	}
	authorizer := auth.NewCollaboratorAuthorizer(
		repos.Projects, repos.Collaborators, repos.Documents, repos.Codes,
		repos.Assignments, repos.Annotations, repos.Codebooks, repos.Themes,
	)
	registry, err := templates.NewRegistry()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := newRecordingCache()

	return &testEnv{
		store:       store,
		repos:       repos,
		authorizer:  authorizer,
		logger:      logger,
		cache:       cache,
		projects:    NewProjectService(repos, cache, authorizer, logger),
		documents:   NewDocumentService(repos, cache, authorizer, logger),
		codes:       NewCodeService(repos, cache, authorizer, logger),
		assignments: NewAssignmentService(repos, cache, authorizer, logger),
		annotations: NewAnnotationService(repos, cache, authorizer, logger),
		codebooks:   NewCodebookService(repos, cache, authorizer, registry, logger),
		themes:      NewThemeService(repos, cache, authorizer, logger),
	}
}

// seedProject creates a project owned by owner with one document "The quick brown fox"
func (e *testEnv) seedProject(t *testing.T) (*models.Project, *models.Document) {
	t.Helper()
	ctx := context.Background()

	project, err := e.projects.CreateProject(ctx, owner, &codingSvc.CreateProjectRequest{Title: "Interviews"})
	require.NoError(t, err)

	doc, err := e.documents.CreateDocument(ctx, owner, &codingSvc.CreateDocumentRequest{
		ProjectID: project.ID,
		Name:      "D1",
		Content:   "The quick brown fox",
	})
	require.NoError(t, err)

	return project, doc
}
