package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "foodgram.db"),
	}

	db, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, ""))
	assert.NoError(t, HealthCheck(context.Background(), db))

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_b.sql",
		"000001_a.sql",
		"000001_a_rollback.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.sql"), 0o700))

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a.sql", "000002_b.sql"}, files)

	_, err = MigrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsHaveRollbacks(t *testing.T) {
	files, err := MigrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, name := range files {
		rollback := filepath.Join("..", "..", "migrations", name[:len(name)-len(".sql")]+"_rollback.sql")
		_, err := os.Stat(rollback)
		assert.NoError(t, err, "missing rollback for %s", name)
	}
}
