package coding

import (
	"context"
	"fmt"

	"qualcode/internal/domain"
	models "qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"
	"qualcode/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCodebookRepository implements the CodebookRepository interface
type PostgresCodebookRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCodebookRepository creates a new codebook repository
func NewCodebookRepository(config *postgres.RepositoryConfig) codingRepo.CodebookRepository {
	return &PostgresCodebookRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectWithCodes selects codebooks with their code ids aggregated in code creation order
func (r *PostgresCodebookRepository) selectWithCodes() string {
	return fmt.Sprintf(`
		SELECT b.id, b.project_id, b.owner_id, b.name, b.description, b.finalized, b.created_at,
			COALESCE(
				(SELECT array_agg(c.id::text ORDER BY c.created_at, c.id) FROM %s c WHERE c.codebook_id = b.id),
				'{}'::text[]
			)
		FROM %s b
	`, r.tables.Codes, r.tables.Codebooks)
}

func scanCodebook(row pgx.Row, b *models.Codebook) error {
	return row.Scan(
		&b.ID,
		&b.ProjectID,
		&b.OwnerID,
		&b.Name,
		&b.Description,
		&b.Finalized,
		&b.CreatedAt,
		&b.CodeIDs,
	)
}

// Create creates a new (non-default) codebook
func (r *PostgresCodebookRepository) Create(ctx context.Context, b *models.Codebook) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, owner_id, name, description, finalized, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Codebooks)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.ProjectID,
		b.OwnerID,
		b.Name,
		b.Description,
		b.Finalized,
		b.CreatedAt,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", b.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create codebook: %w", err)
	}
	if b.CodeIDs == nil {
		b.CodeIDs = []string{}
	}

	return nil
}

// GetByID retrieves a codebook by ID
func (r *PostgresCodebookRepository) GetByID(ctx context.Context, id string) (*models.Codebook, error) {
	query := r.selectWithCodes() + ` WHERE b.id = $1`

	var b models.Codebook
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanCodebook(executor.QueryRow(ctx, query, id), &b); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("codebook %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get codebook: %w", err)
	}
	return &b, nil
}

// GetOrCreateDefault returns the owner's default codebook, creating it on first use.
// Concurrent callers converge on one row through the partial unique index.
func (r *PostgresCodebookRepository) GetOrCreateDefault(ctx context.Context, projectID, ownerID string) (*models.Codebook, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (project_id, owner_id, name, description, is_default)
		VALUES ($1, $2, $3, '', TRUE)
		ON CONFLICT (project_id, owner_id) WHERE is_default DO NOTHING
	`, r.tables.Codebooks)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, insert, projectID, ownerID, models.DefaultCodebookName); err != nil {
		return nil, fmt.Errorf("ensure default codebook: %w", err)
	}

	query := r.selectWithCodes() + ` WHERE b.project_id = $1 AND b.owner_id = $2 AND b.is_default`

	var b models.Codebook
	if err := scanCodebook(executor.QueryRow(ctx, query, projectID, ownerID), &b); err != nil {
		return nil, fmt.Errorf("get default codebook: %w", err)
	}
	return &b, nil
}

// ListByProject retrieves all codebooks of a project in creation order
func (r *PostgresCodebookRepository) ListByProject(ctx context.Context, projectID string) ([]models.Codebook, error) {
	query := r.selectWithCodes() + ` WHERE b.project_id = $1 ORDER BY b.created_at, b.id`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list codebooks: %w", err)
	}
	defer rows.Close()

	codebooks := []models.Codebook{}
	for rows.Next() {
		var b models.Codebook
		if err := scanCodebook(rows, &b); err != nil {
			return nil, fmt.Errorf("scan codebook: %w", err)
		}
		codebooks = append(codebooks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codebooks: %w", err)
	}

	return codebooks, nil
}

// Finalize marks a codebook read-only
func (r *PostgresCodebookRepository) Finalize(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET finalized = TRUE WHERE id = $1 AND NOT finalized`, r.tables.Codebooks)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("finalize codebook: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{
			Message:      "codebook is already finalized",
			ResourceType: "codebook",
			ResourceID:   id,
		}
	}
	return nil
}
