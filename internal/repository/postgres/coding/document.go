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

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) codingRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, name, content, document_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ProjectID,
		doc.Name,
		doc.Content,
		doc.DocumentType,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", doc.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, content, document_type, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.Name,
		&doc.Content,
		&doc.DocumentType,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByProject retrieves all documents of a project with content
func (r *PostgresDocumentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, content, document_type, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at, id
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.ProjectID,
			&doc.Name,
			&doc.Content,
			&doc.DocumentType,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document; its assignments and annotations go with it
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
