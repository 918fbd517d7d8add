package coding

import (
	"log/slog"

	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/templates"
)

// Services bundles every coding service over one set of repositories.
type Services struct {
	Projects    codingSvc.ProjectService
	Documents   codingSvc.DocumentService
	Codes       codingSvc.CodeService
	Assignments codingSvc.AssignmentService
	Annotations codingSvc.AnnotationService
	Codebooks   codingSvc.CodebookService
	Themes      codingSvc.ThemeService
}

// NewServices wires all coding services against shared repositories, cache and authorizer.
func NewServices(
	repos Repositories,
	cache codingRepo.SnapshotCache,
	authorizer codingSvc.ResourceAuthorizer,
	registry *templates.Registry,
	logger *slog.Logger,
) *Services {
	return &Services{
		Projects:    NewProjectService(repos, cache, authorizer, logger),
		Documents:   NewDocumentService(repos, cache, authorizer, logger),
		Codes:       NewCodeService(repos, cache, authorizer, logger),
		Assignments: NewAssignmentService(repos, cache, authorizer, logger),
		Annotations: NewAnnotationService(repos, cache, authorizer, logger),
		Codebooks:   NewCodebookService(repos, cache, authorizer, registry, logger),
		Themes:      NewThemeService(repos, cache, authorizer, logger),
	}
}
