package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"qualcode/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Projects        string
	Collaborators   string
	Documents       string
	Codebooks       string
	Themes          string
	Codes           string
	CodeAssignments string
	Annotations     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Projects:        fmt.Sprintf("%sprojects", prefix),
		Collaborators:   fmt.Sprintf("%sproject_collaborators", prefix),
		Documents:       fmt.Sprintf("%sdocuments", prefix),
		Codebooks:       fmt.Sprintf("%scodebooks", prefix),
		Themes:          fmt.Sprintf("%sthemes", prefix),
		Codes:           fmt.Sprintf("%scodes", prefix),
		CodeAssignments: fmt.Sprintf("%scode_assignments", prefix),
		Annotations:     fmt.Sprintf("%sannotations", prefix),
	}
}

// All returns every table, children before parents (safe drop order)
func (t *TableNames) All() []string {
	return []string{
		t.Annotations,
		t.CodeAssignments,
		t.Codes,
		t.Themes,
		t.Codebooks,
		t.Documents,
		t.Collaborators,
		t.Projects,
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 (Supabase transaction pooler / PgBouncer) does not support prepared
// statements, so QueryExecModeCacheDescribe is used there unless the connection
// string sets default_query_exec_mode explicitly. Table prefixes are interpolated
// before the SQL reaches the server, so each environment gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// Repositories use it so they participate in ExecTx transactions automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
