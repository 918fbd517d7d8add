package memory

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type documentRepo struct{ s *Store }

func (r documentRepo) Create(_ context.Context, doc *coding.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[doc.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", doc.ProjectID, domain.ErrNotFound)
	}
	doc.ID = newID()
	doc.CreatedAt = r.s.stamp(doc.CreatedAt)
	doc.UpdatedAt = r.s.stamp(doc.UpdatedAt)
	cp := *doc
	r.s.documents[cp.ID] = &cp
	r.s.docOrder = append(r.s.docOrder, cp.ID)
	return nil
}

func (r documentRepo) GetByID(_ context.Context, id string) (*coding.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r documentRepo) ListByProject(_ context.Context, projectID string) ([]coding.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Document{}
	for _, id := range r.s.docOrder {
		if d := r.s.documents[id]; d.ProjectID == projectID {
			list = append(list, *d)
		}
	}
	return list, nil
}

// Delete cascades to the document's assignments and annotations
func (r documentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.documents, id)
	r.s.docOrder = removeID(r.s.docOrder, id)

	for aid, a := range r.s.assignments {
		if a.DocumentID == id {
			delete(r.s.assignments, aid)
			r.s.assignOrder = removeID(r.s.assignOrder, aid)
		}
	}
	for nid, n := range r.s.annotations {
		if n.DocumentID != nil && *n.DocumentID == id {
			delete(r.s.annotations, nid)
			r.s.annotOrder = removeID(r.s.annotOrder, nid)
		}
	}
	return nil
}
