package workspace

import (
	"slices"
	"sync"

	"qualcode/internal/domain/models/coding"
)

// ProjectStore holds the one local copy of a project. Its only mutators are
// ApplySnapshot, which replaces collections wholesale, and AppendAssignment.
// Readers get immutable View projections.
type ProjectStore struct {
	mu         sync.RWMutex
	loaded     bool
	generation uint64
	project    coding.Project

	// stamp orders fetches against local edits; codesStamp is the stamp of
	// the newest applied snapshot that carried codes
	stamp      uint64
	codesStamp uint64

	collaborators []coding.Collaborator
	documents     []coding.Document
	codes         []coding.Code
	assignments   []coding.CodeAssignment
	annotations   []coding.Annotation
	codebooks     []coding.Codebook
	themes        []coding.Theme
}

// NewProjectStore returns an empty store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

// ApplySnapshot replaces project metadata and every collection present in snap.
// Nil collections keep their current contents. The snapshot counts as newer
// than everything stamped so far.
func (s *ProjectStore) ApplySnapshot(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp++
	s.applyLocked(snap, s.stamp)
}

// applyFetched applies a snapshot whose fetch began at stamp.
func (s *ProjectStore) applyFetched(snap *Snapshot, stamp uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(snap, stamp)
}

func (s *ProjectStore) applyLocked(snap *Snapshot, stamp uint64) {
	if snap.Codes != nil && stamp > s.codesStamp {
		s.codesStamp = stamp
	}

	s.project = snap.Project
	replace(&s.collaborators, snap.Collaborators)
	replace(&s.documents, snap.Documents)
	replace(&s.codes, snap.Codes)
	replace(&s.assignments, snap.CodeAssignments)
	replace(&s.annotations, snap.Annotations)
	replace(&s.codebooks, snap.Codebooks)
	replace(&s.themes, snap.Themes)

	s.loaded = true
	s.generation++
}

func replace[T any](dst *[]T, src *[]T) {
	if src == nil {
		return
	}
	*dst = slices.Clone(*src)
}

// AppendAssignment adds a confirmed assignment ahead of the next refresh.
func (s *ProjectStore) AppendAssignment(a coding.CodeAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clip forces a fresh backing array; earlier Views keep sharing the old one.
	s.assignments = append(slices.Clip(s.assignments), a)
}

// Reset empties the store.
func (s *ProjectStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.project = coding.Project{}
	s.collaborators = nil
	s.documents = nil
	s.codes = nil
	s.assignments = nil
	s.annotations = nil
	s.codebooks = nil
	s.themes = nil
	s.generation++
	s.stamp++
	s.codesStamp = s.stamp
}

// Stamp returns a new mark in the store's timeline. A fetch that begins
// after the mark applies with a later stamp.
func (s *ProjectStore) Stamp() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp++
	return s.stamp
}

// View returns a read-only projection of the current state. The store never
// writes into a slice after publishing it, so views share backing arrays.
func (s *ProjectStore) View() *View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &View{
		loaded:        s.loaded,
		generation:    s.generation,
		codesStamp:    s.codesStamp,
		project:       s.project,
		collaborators: s.collaborators,
		documents:     s.documents,
		codes:         s.codes,
		assignments:   s.assignments,
		annotations:   s.annotations,
		codebooks:     s.codebooks,
		themes:        s.themes,
	}
}
