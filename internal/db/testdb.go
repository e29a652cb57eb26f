package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(db), "creating test database schema")
	return db
}
