package coding

import (
	"context"
	"log/slog"

	"qualcode/internal/domain/repositories"
	codingRepo "qualcode/internal/domain/repositories/coding"
)

// Repositories groups the data access dependencies shared by the coding services
type Repositories struct {
	Projects      codingRepo.ProjectRepository
	Collaborators codingRepo.CollaboratorRepository
	Documents     codingRepo.DocumentRepository
	Codes         codingRepo.CodeRepository
	Assignments   codingRepo.AssignmentRepository
	Annotations   codingRepo.AnnotationRepository
	Codebooks     codingRepo.CodebookRepository
	Themes        codingRepo.ThemeRepository
	TxManager     repositories.TransactionManager
}

// invalidateSnapshot drops the cached snapshot after a committed mutation.
// It runs detached from request cancellation: the mutation is already committed.
// A cache failure does not fail the mutation; the entry still expires by TTL.
func invalidateSnapshot(ctx context.Context, cache codingRepo.SnapshotCache, logger *slog.Logger, projectID string) {
	if err := cache.Invalidate(context.WithoutCancel(ctx), projectID); err != nil {
		logger.Warn("snapshot cache invalidation failed",
			"project_id", projectID,
			"error", err,
		)
	}
}
