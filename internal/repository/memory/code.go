package memory

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type codeRepo struct{ s *Store }

// withCount copies a code and fills in its assignment count. Caller holds the lock.
func (r codeRepo) withCount(c *coding.Code) coding.Code {
	cp := *c
	cp.CodebookID = clonePtr(c.CodebookID)
	cp.ThemeID = clonePtr(c.ThemeID)
	cp.AssignmentsCount = 0
	for _, a := range r.s.assignments {
		if a.CodeID == c.ID {
			cp.AssignmentsCount++
		}
	}
	return cp
}

func (r codeRepo) findByName(projectID, name string) *coding.Code {
	for _, id := range r.s.codeOrder {
		if c := r.s.codes[id]; c.ProjectID == projectID && c.Name == name {
			return c
		}
	}
	return nil
}

func (r codeRepo) Create(_ context.Context, code *coding.Code) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[code.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", code.ProjectID, domain.ErrNotFound)
	}
	if existing := r.findByName(code.ProjectID, code.Name); existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("code '%s' already exists", code.Name),
			ResourceType: "code",
			ResourceID:   existing.ID,
		}
	}
	code.ID = newID()
	code.CreatedAt = r.s.stamp(code.CreatedAt)
	code.UpdatedAt = r.s.stamp(code.UpdatedAt)
	cp := *code
	cp.CodebookID = clonePtr(code.CodebookID)
	cp.ThemeID = clonePtr(code.ThemeID)
	r.s.codes[cp.ID] = &cp
	r.s.codeOrder = append(r.s.codeOrder, cp.ID)
	return nil
}

func (r codeRepo) GetByID(_ context.Context, id string) (*coding.Code, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.codes[id]
	if !ok {
		return nil, fmt.Errorf("code %s: %w", id, domain.ErrNotFound)
	}
	cp := r.withCount(c)
	return &cp, nil
}

func (r codeRepo) GetByName(_ context.Context, projectID, name string) (*coding.Code, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.findByName(projectID, name)
	if c == nil {
		return nil, fmt.Errorf("code '%s': %w", name, domain.ErrNotFound)
	}
	cp := r.withCount(c)
	return &cp, nil
}

func (r codeRepo) ListByProject(_ context.Context, projectID string) ([]coding.Code, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Code{}
	for _, id := range r.s.codeOrder {
		if c := r.s.codes[id]; c.ProjectID == projectID {
			list = append(list, r.withCount(c))
		}
	}
	return list, nil
}

func (r codeRepo) Update(_ context.Context, code *coding.Code) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[code.ID]
	if !ok {
		return fmt.Errorf("code %s: %w", code.ID, domain.ErrNotFound)
	}
	if other := r.findByName(c.ProjectID, code.Name); other != nil && other.ID != c.ID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("code '%s' already exists", code.Name),
			ResourceType: "code",
			ResourceID:   other.ID,
		}
	}
	c.Name = code.Name
	c.Description = code.Description
	c.Color = code.Color
	c.UpdatedAt = r.s.stamp(code.UpdatedAt)
	return nil
}

func (r codeRepo) MoveToCodebook(_ context.Context, codeIDs []string, codebookID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.codebooks[codebookID]; !ok {
		return 0, fmt.Errorf("codebook %s: %w", codebookID, domain.ErrNotFound)
	}
	moved := 0
	for _, id := range codeIDs {
		c, ok := r.s.codes[id]
		if !ok {
			continue
		}
		target := codebookID
		c.CodebookID = &target
		c.UpdatedAt = r.s.now().UTC()
		moved++
	}
	return moved, nil
}

func (r codeRepo) SetTheme(_ context.Context, codeID string, themeID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[codeID]
	if !ok {
		return fmt.Errorf("code %s: %w", codeID, domain.ErrNotFound)
	}
	if themeID != nil {
		if _, ok := r.s.themes[*themeID]; !ok {
			return fmt.Errorf("theme %s: %w", *themeID, domain.ErrNotFound)
		}
	}
	c.ThemeID = clonePtr(themeID)
	c.UpdatedAt = r.s.now().UTC()
	return nil
}

// Delete cascades to assignments and detaches annotations
func (r codeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.codes[id]; !ok {
		return fmt.Errorf("code %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.codes, id)
	r.s.codeOrder = removeID(r.s.codeOrder, id)

	for aid, a := range r.s.assignments {
		if a.CodeID == id {
			delete(r.s.assignments, aid)
			r.s.assignOrder = removeID(r.s.assignOrder, aid)
		}
	}
	for _, n := range r.s.annotations {
		if n.CodeID != nil && *n.CodeID == id {
			n.CodeID = nil
		}
	}
	return nil
}
