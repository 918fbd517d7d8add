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

// PostgresCodeRepository implements the CodeRepository interface
type PostgresCodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCodeRepository creates a new code repository
func NewCodeRepository(config *postgres.RepositoryConfig) codingRepo.CodeRepository {
	return &PostgresCodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// codeColumns selects a code plus its live assignment count
func (r *PostgresCodeRepository) codeColumns() string {
	return fmt.Sprintf(`c.id, c.project_id, c.codebook_id, c.theme_id, c.name, c.description, c.color,
		c.created_by_id, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM %s a WHERE a.code_id = c.id)`, r.tables.CodeAssignments)
}

func scanCode(row pgx.Row, code *models.Code) error {
	return row.Scan(
		&code.ID,
		&code.ProjectID,
		&code.CodebookID,
		&code.ThemeID,
		&code.Name,
		&code.Description,
		&code.Color,
		&code.CreatedByID,
		&code.CreatedAt,
		&code.UpdatedAt,
		&code.AssignmentsCount,
	)
}

// Create creates a new code
func (r *PostgresCodeRepository) Create(ctx context.Context, code *models.Code) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, codebook_id, theme_id, name, description, color, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		code.ProjectID,
		code.CodebookID,
		code.ThemeID,
		code.Name,
		code.Description,
		code.Color,
		code.CreatedByID,
		code.CreatedAt,
		code.UpdatedAt,
	).Scan(&code.ID, &code.CreatedAt, &code.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existing, queryErr := r.GetByName(ctx, code.ProjectID, code.Name)
			if queryErr != nil {
				return fmt.Errorf("code '%s' already exists: %w", code.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("code '%s' already exists", code.Name),
				ResourceType: "code",
				ResourceID:   existing.ID,
			}
		}
		return fmt.Errorf("create code: %w", err)
	}

	return nil
}

// GetByID retrieves a code by ID
func (r *PostgresCodeRepository) GetByID(ctx context.Context, id string) (*models.Code, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.id = $1`, r.codeColumns(), r.tables.Codes)

	var code models.Code
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanCode(executor.QueryRow(ctx, query, id), &code); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("code %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	return &code, nil
}

// GetByName retrieves a code by exact name within a project
func (r *PostgresCodeRepository) GetByName(ctx context.Context, projectID, name string) (*models.Code, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.project_id = $1 AND c.name = $2`, r.codeColumns(), r.tables.Codes)

	var code models.Code
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanCode(executor.QueryRow(ctx, query, projectID, name), &code); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("code '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get code by name: %w", err)
	}
	return &code, nil
}

// ListByProject retrieves all codes of a project in creation order
func (r *PostgresCodeRepository) ListByProject(ctx context.Context, projectID string) ([]models.Code, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s c
		WHERE c.project_id = $1
		ORDER BY c.created_at, c.id
	`, r.codeColumns(), r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	codes := []models.Code{}
	for rows.Next() {
		var code models.Code
		if err := scanCode(rows, &code); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}

	return codes, nil
}

// Update updates a code's name, description, color and updated_at
func (r *PostgresCodeRepository) Update(ctx context.Context, code *models.Code) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, color = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, code.Name, code.Description, code.Color, code.UpdatedAt, code.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("code '%s' already exists", code.Name),
				ResourceType: "code",
			}
		}
		return fmt.Errorf("update code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("code %s: %w", code.ID, domain.ErrNotFound)
	}
	return nil
}

// MoveToCodebook reassigns the codebook of the given codes
func (r *PostgresCodeRepository) MoveToCodebook(ctx context.Context, codeIDs []string, codebookID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET codebook_id = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])
	`, r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, codebookID, codeIDs)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("codebook %s: %w", codebookID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("move codes: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// SetTheme attaches a code to a theme, or detaches it when themeID is nil
func (r *PostgresCodeRepository) SetTheme(ctx context.Context, codeID string, themeID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET theme_id = $1, updated_at = NOW() WHERE id = $2`, r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, themeID, codeID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("theme %s: %w", *themeID, domain.ErrNotFound)
		}
		return fmt.Errorf("set code theme: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("code %s: %w", codeID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a code; its assignments go with it
func (r *PostgresCodeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Codes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("code %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
