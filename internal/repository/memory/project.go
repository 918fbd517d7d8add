package memory

import (
	"context"
	"fmt"
	"slices"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
)

type projectRepo struct{ s *Store }

func (r projectRepo) Create(_ context.Context, project *coding.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	project.ID = newID()
	project.CreatedAt = r.s.stamp(project.CreatedAt)
	project.UpdatedAt = r.s.stamp(project.UpdatedAt)
	cp := *project
	r.s.projects[cp.ID] = &cp
	r.s.projectOrder = append(r.s.projectOrder, cp.ID)
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id string) (*coding.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok || p.DeletedAt != nil {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r projectRepo) ListForUser(_ context.Context, userID, email string) ([]coding.ProjectSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.ProjectSummary{}
	for _, id := range r.s.projectOrder {
		p := r.s.projects[id]
		if p.DeletedAt != nil {
			continue
		}
		_, shared := r.s.collaborators[collaboratorKey{id, email}]
		if p.OwnerID != userID && !shared {
			continue
		}
		summary := coding.ProjectSummary{
			ID:          p.ID,
			OwnerID:     p.OwnerID,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
		for _, d := range r.s.documents {
			if d.ProjectID == id {
				summary.DocumentCount++
			}
		}
		for k := range r.s.collaborators {
			if k.projectID == id {
				summary.CollaboratorCount++
			}
		}
		list = append(list, summary)
	}
	slices.SortStableFunc(list, func(a, b coding.ProjectSummary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return list, nil
}

func (r projectRepo) Update(_ context.Context, project *coding.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[project.ID]
	if !ok || p.DeletedAt != nil {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}
	p.Title = project.Title
	p.Description = project.Description
	p.ResearchDetails = project.ResearchDetails
	p.UpdatedAt = r.s.stamp(project.UpdatedAt)
	return nil
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok || p.DeletedAt != nil {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	now := r.s.now().UTC()
	p.DeletedAt = &now
	return nil
}

type collaboratorRepo struct{ s *Store }

func (r collaboratorRepo) Add(_ context.Context, projectID, email string) (*coding.Collaborator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	key := collaboratorKey{projectID, email}
	if _, ok := r.s.collaborators[key]; ok {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("%s is already a collaborator", email),
			ResourceType: "collaborator",
			ResourceID:   email,
		}
	}
	added := r.s.now().UTC()
	r.s.collaborators[key] = added
	r.s.collabOrder = append(r.s.collabOrder, key)
	return &coding.Collaborator{Email: email, AddedAt: added}, nil
}

func (r collaboratorRepo) Remove(_ context.Context, projectID, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := collaboratorKey{projectID, email}
	if _, ok := r.s.collaborators[key]; !ok {
		return fmt.Errorf("collaborator %s: %w", email, domain.ErrNotFound)
	}
	delete(r.s.collaborators, key)
	r.s.collabOrder = slices.DeleteFunc(r.s.collabOrder, func(k collaboratorKey) bool { return k == key })
	return nil
}

func (r collaboratorRepo) List(_ context.Context, projectID string) ([]coding.Collaborator, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []coding.Collaborator{}
	for _, k := range r.s.collabOrder {
		if k.projectID == projectID {
			list = append(list, coding.Collaborator{Email: k.email, AddedAt: r.s.collaborators[k]})
		}
	}
	return list, nil
}

func (r collaboratorRepo) Exists(_ context.Context, projectID, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.collaborators[collaboratorKey{projectID, email}]
	return ok, nil
}
