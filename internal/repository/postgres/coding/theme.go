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

// PostgresThemeRepository implements the ThemeRepository interface
type PostgresThemeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(config *postgres.RepositoryConfig) codingRepo.ThemeRepository {
	return &PostgresThemeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresThemeRepository) selectWithCodes() string {
	return fmt.Sprintf(`
		SELECT t.id, t.project_id, t.owner_id, t.name, t.description, t.created_at,
			COALESCE(
				(SELECT array_agg(c.id::text ORDER BY c.created_at, c.id) FROM %s c WHERE c.theme_id = t.id),
				'{}'::text[]
			)
		FROM %s t
	`, r.tables.Codes, r.tables.Themes)
}

func scanTheme(row pgx.Row, t *models.Theme) error {
	return row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.OwnerID,
		&t.Name,
		&t.Description,
		&t.CreatedAt,
		&t.CodeIDs,
	)
}

// conflict resolves the theme holding a duplicate name
func (r *PostgresThemeRepository) conflict(ctx context.Context, projectID, name string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE project_id = $1 AND name = $2`, r.tables.Themes)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, name).Scan(&id); err != nil {
		return fmt.Errorf("theme '%s' already exists: %w", name, domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("theme '%s' already exists", name),
		ResourceType: "theme",
		ResourceID:   id,
	}
}

// Create creates a new theme
func (r *PostgresThemeRepository) Create(ctx context.Context, t *models.Theme) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, owner_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Themes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		t.ProjectID,
		t.OwnerID,
		t.Name,
		t.Description,
		t.CreatedAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, t.ProjectID, t.Name)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", t.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create theme: %w", err)
	}
	t.CodeIDs = []string{}

	return nil
}

// GetByID retrieves a theme by ID
func (r *PostgresThemeRepository) GetByID(ctx context.Context, id string) (*models.Theme, error) {
	query := r.selectWithCodes() + ` WHERE t.id = $1`

	var t models.Theme
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanTheme(executor.QueryRow(ctx, query, id), &t); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("theme %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return &t, nil
}

// ListByProject retrieves the themes of a project ordered by name
func (r *PostgresThemeRepository) ListByProject(ctx context.Context, projectID string) ([]models.Theme, error) {
	query := r.selectWithCodes() + ` WHERE t.project_id = $1 ORDER BY t.name, t.id`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	themes := []models.Theme{}
	for rows.Next() {
		var t models.Theme
		if err := scanTheme(rows, &t); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate themes: %w", err)
	}

	return themes, nil
}

// Update updates a theme's name and description
func (r *PostgresThemeRepository) Update(ctx context.Context, t *models.Theme) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1, description = $2 WHERE id = $3`, r.tables.Themes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, t.Name, t.Description, t.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, t.ProjectID, t.Name)
		}
		return fmt.Errorf("update theme: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("theme %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a theme; its codes are detached by the foreign key
func (r *PostgresThemeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Themes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("theme %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
