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

// PostgresAssignmentRepository implements the AssignmentRepository interface
type PostgresAssignmentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAssignmentRepository creates a new code assignment repository
func NewAssignmentRepository(config *postgres.RepositoryConfig) codingRepo.AssignmentRepository {
	return &PostgresAssignmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectJoined selects assignments with document and code names denormalized in
func (r *PostgresAssignmentRepository) selectJoined() string {
	return fmt.Sprintf(`
		SELECT a.id, a.document_id, a.code_id, a.start_char, a.end_char, a.text_snapshot,
			a.note, a.created_by_id, a.created_at, d.name, c.name, c.color
		FROM %s a
		JOIN %s d ON d.id = a.document_id
		JOIN %s c ON c.id = a.code_id
	`, r.tables.CodeAssignments, r.tables.Documents, r.tables.Codes)
}

func scanAssignment(row pgx.Row, a *models.CodeAssignment) error {
	return row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.CodeID,
		&a.StartChar,
		&a.EndChar,
		&a.TextSnapshot,
		&a.Note,
		&a.CreatedByID,
		&a.CreatedAt,
		&a.DocumentName,
		&a.CodeName,
		&a.CodeColor,
	)
}

// Create inserts a new assignment. Identical spans are never merged.
func (r *PostgresAssignmentRepository) Create(ctx context.Context, a *models.CodeAssignment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, code_id, start_char, end_char, text_snapshot, note, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.CodeAssignments)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		a.DocumentID,
		a.CodeID,
		a.StartChar,
		a.EndChar,
		a.TextSnapshot,
		a.Note,
		a.CreatedByID,
		a.CreatedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document or code for assignment: %w", domain.ErrNotFound)
		}
		if postgres.IsPgCheckError(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid span [%d,%d)", a.StartChar, a.EndChar)}
		}
		return fmt.Errorf("create code assignment: %w", err)
	}

	return nil
}

// GetByID retrieves an assignment by ID
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id string) (*models.CodeAssignment, error) {
	query := r.selectJoined() + ` WHERE a.id = $1`

	var a models.CodeAssignment
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanAssignment(executor.QueryRow(ctx, query, id), &a); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get code assignment: %w", err)
	}
	return &a, nil
}

// ListByProject retrieves all assignments across the project's documents in creation order
func (r *PostgresAssignmentRepository) ListByProject(ctx context.Context, projectID string) ([]models.CodeAssignment, error) {
	query := r.selectJoined() + ` WHERE d.project_id = $1 ORDER BY a.created_at, a.id`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list code assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.CodeAssignment{}
	for rows.Next() {
		var a models.CodeAssignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, fmt.Errorf("scan code assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code assignments: %w", err)
	}

	return assignments, nil
}

// UpdateNote changes only the note; the span is immutable
func (r *PostgresAssignmentRepository) UpdateNote(ctx context.Context, id, note string) error {
	query := fmt.Sprintf(`UPDATE %s SET note = $1 WHERE id = $2`, r.tables.CodeAssignments)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, note, id)
	if err != nil {
		return fmt.Errorf("update code assignment note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an assignment
func (r *PostgresAssignmentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.CodeAssignments)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete code assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("code assignment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
