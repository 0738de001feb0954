package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrationsWithDB(db, "migrations"))
	return db
}

func countSessions(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n))
	return n
}

func TestWithTxCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMigrated(t)

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, created_at) VALUES (?, ?, ?)`,
			"s1", "u1", Now())
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countSessions(t, db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMigrated(t)

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, created_at) VALUES (?, ?, ?)`,
			"s1", "u1", Now()); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countSessions(t, db))
}

func TestRunMigrationsWithDBKeepsHandleUsable(t *testing.T) {
	t.Parallel()

	db := openMigrated(t)
	// Re-running against an up-to-date schema is a no-op.
	require.NoError(t, RunMigrationsWithDB(db, "migrations"))
	require.NoError(t, db.Ping())
	require.Equal(t, 0, countSessions(t, db))
}
