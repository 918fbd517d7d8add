package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type themeRepo struct{ s *Store }

// withCodes copies a theme and fills in its code ids in code order. Caller holds the lock.
func (r themeRepo) withCodes(t *coding.Theme) coding.Theme {
	cp := *t
	cp.CodeIDs = []string{}
	for _, id := range r.s.codeOrder {
		if c := r.s.codes[id]; c.ThemeID != nil && *c.ThemeID == t.ID {
			cp.CodeIDs = append(cp.CodeIDs, id)
		}
	}
	return cp
}

func (r themeRepo) nameTaken(projectID, name, exceptID string) *coding.Theme {
	for _, id := range r.s.themeOrder {
		if t := r.s.themes[id]; t.ProjectID == projectID && t.Name == name && t.ID != exceptID {
			return t
		}
	}
	return nil
}

func themeConflict(name, id string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("theme '%s' already exists", name),
		ResourceType: "theme",
		ResourceID:   id,
	}
}

func (r themeRepo) Create(_ context.Context, theme *coding.Theme) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[theme.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", theme.ProjectID, domain.ErrNotFound)
	}
	if existing := r.nameTaken(theme.ProjectID, theme.Name, ""); existing != nil {
		return themeConflict(theme.Name, existing.ID)
	}
	theme.ID = newID()
	theme.CreatedAt = r.s.stamp(theme.CreatedAt)
	theme.CodeIDs = []string{}
	cp := *theme
	cp.CodeIDs = nil
	r.s.themes[cp.ID] = &cp
	r.s.themeOrder = append(r.s.themeOrder, cp.ID)
	return nil
}

func (r themeRepo) GetByID(_ context.Context, id string) (*coding.Theme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.themes[id]
	if !ok {
		return nil, fmt.Errorf("theme %s: %w", id, domain.ErrNotFound)
	}
	cp := r.withCodes(t)
	return &cp, nil
}

func (r themeRepo) ListByProject(_ context.Context, projectID string) ([]coding.Theme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Theme{}
	for _, id := range r.s.themeOrder {
		if t := r.s.themes[id]; t.ProjectID == projectID {
			list = append(list, r.withCodes(t))
		}
	}
	slices.SortStableFunc(list, func(a, b coding.Theme) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list, nil
}

func (r themeRepo) Update(_ context.Context, theme *coding.Theme) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.themes[theme.ID]
	if !ok {
		return fmt.Errorf("theme %s: %w", theme.ID, domain.ErrNotFound)
	}
	if other := r.nameTaken(t.ProjectID, theme.Name, t.ID); other != nil {
		return themeConflict(theme.Name, other.ID)
	}
	t.Name = theme.Name
	t.Description = theme.Description
	return nil
}

// Delete detaches the theme's codes
func (r themeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.themes[id]; !ok {
		return fmt.Errorf("theme %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.themes, id)
	r.s.themeOrder = removeID(r.s.themeOrder, id)
	for _, c := range r.s.codes {
		if c.ThemeID != nil && *c.ThemeID == id {
			c.ThemeID = nil
		}
	}
	return nil
}
