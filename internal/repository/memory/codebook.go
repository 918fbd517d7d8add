package memory

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type codebookRepo struct{ s *Store }

// withCodes copies a codebook and fills in its code ids in code order. Caller holds the lock.
func (r codebookRepo) withCodes(b *codebookRecord) coding.Codebook {
	cp := b.Codebook
	cp.CodeIDs = []string{}
	for _, id := range r.s.codeOrder {
		if c := r.s.codes[id]; c.CodebookID != nil && *c.CodebookID == b.ID {
			cp.CodeIDs = append(cp.CodeIDs, id)
		}
	}
	return cp
}

func (r codebookRepo) insert(b *coding.Codebook, isDefault bool) {
	b.ID = newID()
	b.CreatedAt = r.s.stamp(b.CreatedAt)
	if b.CodeIDs == nil {
		b.CodeIDs = []string{}
	}
	rec := &codebookRecord{Codebook: *b, isDefault: isDefault}
	rec.CodeIDs = nil
	r.s.codebooks[b.ID] = rec
	r.s.codebookOrder = append(r.s.codebookOrder, b.ID)
}

func (r codebookRepo) Create(_ context.Context, b *coding.Codebook) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[b.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", b.ProjectID, domain.ErrNotFound)
	}
	r.insert(b, false)
	return nil
}

func (r codebookRepo) GetByID(_ context.Context, id string) (*coding.Codebook, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.codebooks[id]
	if !ok {
		return nil, fmt.Errorf("codebook %s: %w", id, domain.ErrNotFound)
	}
	cp := r.withCodes(b)
	return &cp, nil
}

func (r codebookRepo) GetOrCreateDefault(_ context.Context, projectID, ownerID string) (*coding.Codebook, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range r.s.codebookOrder {
		b := r.s.codebooks[id]
		if b.isDefault && b.ProjectID == projectID && b.OwnerID == ownerID {
			cp := r.withCodes(b)
			return &cp, nil
		}
	}
	if _, ok := r.s.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	b := &coding.Codebook{ProjectID: projectID, OwnerID: ownerID, Name: coding.DefaultCodebookName}
	r.insert(b, true)
	return b, nil
}

func (r codebookRepo) ListByProject(_ context.Context, projectID string) ([]coding.Codebook, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Codebook{}
	for _, id := range r.s.codebookOrder {
		if b := r.s.codebooks[id]; b.ProjectID == projectID {
			list = append(list, r.withCodes(b))
		}
	}
	return list, nil
}

func (r codebookRepo) Finalize(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.codebooks[id]
	if !ok {
		return fmt.Errorf("codebook %s: %w", id, domain.ErrNotFound)
	}
	if b.Finalized {
		return &domain.ConflictError{
			Message:      "codebook is already finalized",
			ResourceType: "codebook",
			ResourceID:   id,
		}
	}
	b.Finalized = true
	return nil
}
