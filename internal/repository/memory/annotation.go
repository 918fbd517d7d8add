package memory

import (
	"context"
	"fmt"
	"slices"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type annotationRepo struct{ s *Store }

func (r annotationRepo) joined(n *coding.Annotation) coding.Annotation {
	cp := *n
	cp.DocumentID = clonePtr(n.DocumentID)
	cp.CodeID = clonePtr(n.CodeID)
	cp.StartChar = clonePtr(n.StartChar)
	cp.EndChar = clonePtr(n.EndChar)
	cp.TextSnapshot = clonePtr(n.TextSnapshot)
	cp.DocumentName, cp.CodeName = nil, nil
	if n.DocumentID != nil {
		if d, ok := r.s.documents[*n.DocumentID]; ok {
			name := d.Name
			cp.DocumentName = &name
		}
	}
	if n.CodeID != nil {
		if c, ok := r.s.codes[*n.CodeID]; ok {
			name := c.Name
			cp.CodeName = &name
		}
	}
	return cp
}

func (r annotationRepo) Create(_ context.Context, n *coding.Annotation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[n.ProjectID]; !ok {
		return fmt.Errorf("annotation target: %w", domain.ErrNotFound)
	}
	n.ID = newID()
	n.CreatedAt = r.s.stamp(n.CreatedAt)
	n.UpdatedAt = r.s.stamp(n.UpdatedAt)
	cp := r.joined(n)
	cp.DocumentName, cp.CodeName = nil, nil
	r.s.annotations[cp.ID] = &cp
	r.s.annotOrder = append(r.s.annotOrder, cp.ID)
	return nil
}

func (r annotationRepo) GetByID(_ context.Context, id string) (*coding.Annotation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.annotations[id]
	if !ok {
		return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}
	cp := r.joined(n)
	return &cp, nil
}

// ListByProject returns annotations newest first
func (r annotationRepo) ListByProject(_ context.Context, projectID string) ([]coding.Annotation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Annotation{}
	for _, id := range slices.Backward(r.s.annotOrder) {
		if n := r.s.annotations[id]; n.ProjectID == projectID {
			list = append(list, r.joined(n))
		}
	}
	return list, nil
}

func (r annotationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.annotations[id]; !ok {
		return fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.annotations, id)
	r.s.annotOrder = removeID(r.s.annotOrder, id)
	return nil
}
