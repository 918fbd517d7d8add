// Package repositories holds the persistence contracts shared by every store.
package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFn is the unit of work run by ExecTx
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically.
// Repositories called with the ctx passed to fn participate in the transaction;
// a nested ExecTx joins the outer transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so one
// repository method serves both pooled and transactional callers.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// SetTx returns a context carrying tx
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx returns the transaction carried by ctx, or nil
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}
