package memory

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type assignmentRepo struct{ s *Store }

// joined copies an assignment with document and code names. Caller holds the lock.
func (r assignmentRepo) joined(a *coding.CodeAssignment) coding.CodeAssignment {
	cp := *a
	if d, ok := r.s.documents[a.DocumentID]; ok {
		cp.DocumentName = d.Name
	}
	if c, ok := r.s.codes[a.CodeID]; ok {
		cp.CodeName = c.Name
		cp.CodeColor = c.Color
	}
	return cp
}

func (r assignmentRepo) Create(_ context.Context, a *coding.CodeAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[a.DocumentID]; !ok {
		return fmt.Errorf("document or code for assignment: %w", domain.ErrNotFound)
	}
	if _, ok := r.s.codes[a.CodeID]; !ok {
		return fmt.Errorf("document or code for assignment: %w", domain.ErrNotFound)
	}
	a.ID = newID()
	a.CreatedAt = r.s.stamp(a.CreatedAt)
	cp := *a
	r.s.assignments[cp.ID] = &cp
	r.s.assignOrder = append(r.s.assignOrder, cp.ID)
	return nil
}

func (r assignmentRepo) GetByID(_ context.Context, id string) (*coding.CodeAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
	}
	cp := r.joined(a)
	return &cp, nil
}

func (r assignmentRepo) ListByProject(_ context.Context, projectID string) ([]coding.CodeAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.CodeAssignment{}
	for _, id := range r.s.assignOrder {
		a := r.s.assignments[id]
		if d, ok := r.s.documents[a.DocumentID]; ok && d.ProjectID == projectID {
			list = append(list, r.joined(a))
		}
	}
	return list, nil
}

func (r assignmentRepo) UpdateNote(_ context.Context, id, note string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
	}
	a.Note = note
	return nil
}

func (r assignmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assignments[id]; !ok {
		return fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.assignments, id)
	r.s.assignOrder = removeID(r.s.assignOrder, id)
	return nil
}
