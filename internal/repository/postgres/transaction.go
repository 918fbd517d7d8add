package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"qualcode/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a transaction.
// When ctx already carries a transaction, fn joins it instead of starting a new one.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	// Store transaction in context so repositories can access it
	txCtx := repositories.SetTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
