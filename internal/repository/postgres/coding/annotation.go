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

// PostgresAnnotationRepository implements the AnnotationRepository interface
type PostgresAnnotationRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAnnotationRepository creates a new annotation repository
func NewAnnotationRepository(config *postgres.RepositoryConfig) codingRepo.AnnotationRepository {
	return &PostgresAnnotationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresAnnotationRepository) selectJoined() string {
	return fmt.Sprintf(`
		SELECT n.id, n.project_id, n.document_id, n.code_id, n.start_char, n.end_char,
			n.text_snapshot, n.content, n.annotation_type, n.created_by_id, n.created_at,
			n.updated_at, d.name, c.name
		FROM %s n
		LEFT JOIN %s d ON d.id = n.document_id
		LEFT JOIN %s c ON c.id = n.code_id
	`, r.tables.Annotations, r.tables.Documents, r.tables.Codes)
}

func scanAnnotation(row pgx.Row, n *models.Annotation) error {
	return row.Scan(
		&n.ID,
		&n.ProjectID,
		&n.DocumentID,
		&n.CodeID,
		&n.StartChar,
		&n.EndChar,
		&n.TextSnapshot,
		&n.Content,
		&n.AnnotationType,
		&n.CreatedByID,
		&n.CreatedAt,
		&n.UpdatedAt,
		&n.DocumentName,
		&n.CodeName,
	)
}

// Create creates a new annotation
func (r *PostgresAnnotationRepository) Create(ctx context.Context, n *models.Annotation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, document_id, code_id, start_char, end_char, text_snapshot,
			content, annotation_type, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Annotations)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.ProjectID,
		n.DocumentID,
		n.CodeID,
		n.StartChar,
		n.EndChar,
		n.TextSnapshot,
		n.Content,
		n.AnnotationType,
		n.CreatedByID,
		n.CreatedAt,
		n.UpdatedAt,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("annotation target: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create annotation: %w", err)
	}

	return nil
}

// GetByID retrieves an annotation by ID
func (r *PostgresAnnotationRepository) GetByID(ctx context.Context, id string) (*models.Annotation, error) {
	query := r.selectJoined() + ` WHERE n.id = $1`

	var n models.Annotation
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanAnnotation(executor.QueryRow(ctx, query, id), &n); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return &n, nil
}

// ListByProject retrieves all annotations of a project, newest first
func (r *PostgresAnnotationRepository) ListByProject(ctx context.Context, projectID string) ([]models.Annotation, error) {
	query := r.selectJoined() + ` WHERE n.project_id = $1 ORDER BY n.created_at DESC, n.id`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	annotations := []models.Annotation{}
	for rows.Next() {
		var n models.Annotation
		if err := scanAnnotation(rows, &n); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations = append(annotations, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}

	return annotations, nil
}

// Delete removes an annotation
func (r *PostgresAnnotationRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Annotations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
