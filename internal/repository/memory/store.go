// Package memory provides in-memory implementations of the coding repositories.
// It backs tests and the server's no-database development mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"qualcode/internal/domain/models/coding"
	"qualcode/internal/domain/repositories"
	codingRepo "qualcode/internal/domain/repositories/coding"
)

type collaboratorKey struct {
	projectID string
	email     string
}

type codebookRecord struct {
	coding.Codebook
	isDefault bool
}

// Store holds all entities behind one lock. Slices of ids keep insertion order,
// which stands in for ORDER BY created_at.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	projects      map[string]*coding.Project
	projectOrder  []string
	collaborators map[collaboratorKey]time.Time
	collabOrder   []collaboratorKey
	documents     map[string]*coding.Document
	docOrder      []string
	codes         map[string]*coding.Code
	codeOrder     []string
	assignments   map[string]*coding.CodeAssignment
	assignOrder   []string
	annotations   map[string]*coding.Annotation
	annotOrder    []string
	codebooks     map[string]*codebookRecord
	codebookOrder []string
	themes        map[string]*coding.Theme
	themeOrder    []string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:           time.Now,
		projects:      make(map[string]*coding.Project),
		collaborators: make(map[collaboratorKey]time.Time),
		documents:     make(map[string]*coding.Document),
		codes:         make(map[string]*coding.Code),
		assignments:   make(map[string]*coding.CodeAssignment),
		annotations:   make(map[string]*coding.Annotation),
		codebooks:     make(map[string]*codebookRecord),
		themes:        make(map[string]*coding.Theme),
	}
}

func (s *Store) Projects() codingRepo.ProjectRepository           { return projectRepo{s} }
func (s *Store) Collaborators() codingRepo.CollaboratorRepository { return collaboratorRepo{s} }
func (s *Store) Documents() codingRepo.DocumentRepository         { return documentRepo{s} }
func (s *Store) Codes() codingRepo.CodeRepository                 { return codeRepo{s} }
func (s *Store) Assignments() codingRepo.AssignmentRepository     { return assignmentRepo{s} }
func (s *Store) Annotations() codingRepo.AnnotationRepository     { return annotationRepo{s} }
func (s *Store) Codebooks() codingRepo.CodebookRepository         { return codebookRepo{s} }
func (s *Store) Themes() codingRepo.ThemeRepository               { return themeRepo{s} }

// TransactionManager runs fn directly. There is no rollback: a failing fn
// leaves earlier writes in place.
func (s *Store) TransactionManager() repositories.TransactionManager { return txManager{} }

type txManager struct{}

func (txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t
}

func newID() string { return uuid.NewString() }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
