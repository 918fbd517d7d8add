package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsPgDuplicateError(wrap("23505")))
	assert.True(t, IsPgForeignKeyError(wrap("23503")))
	assert.True(t, IsPgCheckError(wrap("23514")))

	assert.False(t, IsPgDuplicateError(wrap("23503")))
	assert.False(t, IsPgCheckError(errors.New("plain")))

	assert.True(t, IsPgNoRowsError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsPgNoRowsError(wrap("23505")))
}
