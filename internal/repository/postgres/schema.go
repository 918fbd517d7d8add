package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunSchema creates all tables and indexes if they do not exist.
// Statements are idempotent so it is safe to run on every deploy.
func RunSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			research_details JSONB NOT NULL DEFAULT '{"research_questions":[],"research_objectives":[]}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_projects_owner ON %s(owner_id) WHERE deleted_at IS NULL`,
			prefix, tables.Projects),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			email TEXT NOT NULL,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (project_id, email)
		)`, tables.Collaborators, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_collaborators_email ON %s(email)`,
			prefix, tables.Collaborators),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			document_type TEXT NOT NULL DEFAULT 'text',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Documents, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_documents_project ON %s(project_id)`,
			prefix, tables.Documents),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			finalized BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Codebooks, tables.Projects),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %sidx_codebooks_default ON %s(project_id, owner_id) WHERE is_default`,
			prefix, tables.Codebooks),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Themes, tables.Projects),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %sidx_themes_project_name ON %s(project_id, name)`,
			prefix, tables.Themes),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			codebook_id REFERENCES %s(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL,
			created_by_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Codes, tables.Projects, tables.Codebooks),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %sidx_codes_project_name ON %s(project_id, name)`,
			prefix, tables.Codes),
		// Databases created before themes existed get the column here
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS theme_id UUID REFERENCES %s(id) ON DELETE SET NULL`,
			tables.Codes, tables.Themes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_codes_theme ON %s(theme_id)`,
			prefix, tables.Codes),

		// No uniqueness on spans: identical and overlapping assignments are legal
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			code_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			start_char INTEGER NOT NULL,
			end_char INTEGER NOT NULL,
			text_snapshot TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_by_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (start_char >= 0 AND start_char < end_char)
		)`, tables.CodeAssignments, tables.Documents, tables.Codes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_code_assignments_document ON %s(document_id)`,
			prefix, tables.CodeAssignments),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_code_assignments_code ON %s(code_id)`,
			prefix, tables.CodeAssignments),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			document_id UUID REFERENCES %s(id) ON DELETE CASCADE,
			code_id UUID REFERENCES %s(id) ON DELETE SET NULL,
			start_char INTEGER,
			end_char INTEGER,
			text_snapshot TEXT,
			content TEXT NOT NULL,
			annotation_type TEXT NOT NULL DEFAULT 'COMMENT',
			created_by_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, tables.Annotations, tables.Projects, tables.Documents, tables.Codes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sidx_annotations_project ON %s(project_id)`,
			prefix, tables.Annotations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// DropTables drops every table (children first)
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
