package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "001_create_things.sql"),
		[]byte("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT);"),
		0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "002_add_color.sql"),
		[]byte("ALTER TABLE things ADD COLUMN color TEXT;"),
		0644))

	migrator := NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(dir))

	// Both migrations recorded
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	// Schema usable
	_, err := db.Exec("INSERT INTO things (name, color) VALUES (?, ?)", "cone", "orange")
	require.NoError(t, err)

	// Re-running is a no-op
	require.NoError(t, migrator.RunMigrations(dir))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRunMigrations_BadFilename(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "not-versioned.sql"),
		[]byte("SELECT 1;"),
		0644))

	err := NewMigrator(db, zap.NewNop()).RunMigrations(dir)
	require.Error(t, err)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	err = db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (id) VALUES (1)"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 0, count)
}
