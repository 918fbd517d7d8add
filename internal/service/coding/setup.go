package coding

import (
	"fmt"
	"log/slog"

	codingRepo "qualcode/internal/domain/repositories/coding"
	"qualcode/internal/service/auth"
	"qualcode/internal/templates"
)

// SetupServices builds the collaborator authorizer and template registry and
// wires every coding service over repos. The registry is returned for the
// handlers that list templates.
func SetupServices(repos Repositories, cache codingRepo.SnapshotCache, logger *slog.Logger) (*Services, *templates.Registry, error) {
	authorizer := auth.NewCollaboratorAuthorizer(
		repos.Projects,
		repos.Collaborators,
		repos.Documents,
		repos.Codes,
		repos.Assignments,
		repos.Annotations,
		repos.Codebooks,
		repos.Themes,
	)

	registry, err := templates.NewRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("load codebook templates: %w", err)
	}
	logger.Info("codebook templates loaded", "count", len(registry.List()))

	return NewServices(repos, cache, authorizer, registry, logger), registry, nil
}
