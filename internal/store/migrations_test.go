package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UpgradesLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO kv (key, value) VALUES ('google_api_key', 'old')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	kv, err := Open("sqlite", path)
	require.NoError(t, err)
	defer kv.Close()

	assert.True(t, columnExists(kv.db, "kv", "updated_at"))
	assert.Equal(t, CurrentSchemaVersion, SchemaVersion(kv.db))

	ctx := context.Background()
	v, err := kv.Get(ctx, "google_api_key")
	require.NoError(t, err)
	assert.Equal(t, "old", v)
	require.NoError(t, kv.Set(ctx, "google_api_key", "new"))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	kv := openTestKV(t, "sqlite")
	require.NoError(t, RunMigrations(kv.db))
	require.NoError(t, RunMigrations(kv.db))
	assert.Equal(t, CurrentSchemaVersion, SchemaVersion(kv.db))
	assert.False(t, tableExists(kv.db, "missing"))
}
