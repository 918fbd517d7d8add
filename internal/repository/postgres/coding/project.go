package coding

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	"qualcode/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) codingRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, title, description, research_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.OwnerID,
		project.Title,
		project.Description,
		project.ResearchDetails,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, research_details, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Projects)

	var project models.Project
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.Description,
		&project.ResearchDetails,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

// ListForUser retrieves owned and shared projects, ordered by updated_at DESC
func (r *PostgresProjectRepository) ListForUser(ctx context.Context, userID, email string) ([]models.ProjectSummary, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.owner_id, p.title, p.description, p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM %[2]s d WHERE d.project_id = p.id),
			(SELECT COUNT(*) FROM %[3]s c WHERE c.project_id = p.id)
		FROM %[1]s p
		WHERE p.deleted_at IS NULL
			AND (p.owner_id = $1 OR EXISTS (
				SELECT 1 FROM %[3]s c WHERE c.project_id = p.id AND c.email = $2
			))
		ORDER BY p.updated_at DESC
	`, r.tables.Projects, r.tables.Documents, r.tables.Collaborators)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, email)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.ProjectSummary{}
	for rows.Next() {
		var p models.ProjectSummary
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Title,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.DocumentCount,
			&p.CollaboratorCount,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Update updates a project's title, description, research details and updated_at
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, research_details = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		project.Title,
		project.Description,
		project.ResearchDetails,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete soft-deletes a project by setting deleted_at timestamp
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
