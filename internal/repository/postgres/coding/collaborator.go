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

// PostgresCollaboratorRepository implements the CollaboratorRepository interface
type PostgresCollaboratorRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCollaboratorRepository creates a new collaborator repository
func NewCollaboratorRepository(config *postgres.RepositoryConfig) codingRepo.CollaboratorRepository {
	return &PostgresCollaboratorRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Add adds a collaborator email to a project
func (r *PostgresCollaboratorRepository) Add(ctx context.Context, projectID, email string) (*models.Collaborator, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, email)
		VALUES ($1, $2)
		RETURNING email, added_at
	`, r.tables.Collaborators)

	var c models.Collaborator
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, email).Scan(&c.Email, &c.AddedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("%s is already a collaborator", email),
				ResourceType: "collaborator",
				ResourceID:   email,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("add collaborator: %w", err)
	}

	return &c, nil
}

// Remove removes a collaborator email from a project
func (r *PostgresCollaboratorRepository) Remove(ctx context.Context, projectID, email string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1 AND email = $2`, r.tables.Collaborators)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, email)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("collaborator %s: %w", email, domain.ErrNotFound)
	}
	return nil
}

// List returns collaborators in the order they were added
func (r *PostgresCollaboratorRepository) List(ctx context.Context, projectID string) ([]models.Collaborator, error) {
	query := fmt.Sprintf(`
		SELECT email, added_at
		FROM %s
		WHERE project_id = $1
		ORDER BY added_at, email
	`, r.tables.Collaborators)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	collaborators := []models.Collaborator{}
	for rows.Next() {
		var c models.Collaborator
		if err := rows.Scan(&c.Email, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborators: %w", err)
	}

	return collaborators, nil
}

// Exists reports whether email collaborates on the project
func (r *PostgresCollaboratorRepository) Exists(ctx context.Context, projectID, email string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE project_id = $1 AND email = $2)`, r.tables.Collaborators)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check collaborator: %w", err)
	}
	return exists, nil
}
