package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- comment\nPRAGMA a = 1;\n\nCREATE INDEX x\n  ON t (c);\n")
	assert.Equal(t, []string{"PRAGMA a = 1", "CREATE INDEX x\n  ON t (c)"}, got)
}

func TestRunMigrationsRejectsUnknownDriver(t *testing.T) {
	err := RunMigrations(nil, "mysql")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, RunMigrations(db, "sqlite"))
	// Running again is a no-op.
	require.NoError(t, RunMigrations(db, "sqlite"))

	version, dirty, err := GetMigrationVersion(db, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	for _, table := range []string{
		"cached_notion_databases",
		"cached_notion_documents",
		"cached_notion_users",
		"cached_files",
	} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}
}
