package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew(t *testing.T) {
	t.Run("creates the directory", func(t *testing.T) {
		db := openTestDB(t)
		assert.DirExists(t, filepath.Dir(db.Path()))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := New(Config{}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := New(Config{Path: ":memory:"}, zap.NewNop())
		require.NoError(t, err)
		defer db.Close()
		v, err := db.SchemaVersion()
		require.NoError(t, err)
		assert.Zero(t, v)
	})
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Migrate(Migrations))
	// running twice applies nothing new
	require.NoError(t, db.Migrate(Migrations))

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = db.Exec("INSERT INTO deliveries (invoice_number, recipient, subject) VALUES ('20250001', 'a@example.ch', 's')")
	assert.NoError(t, err)
	_, err = db.Exec("INSERT INTO generation_runs (run_id, kind, started_at) VALUES ('r1', 'SPORTS', CURRENT_TIMESTAMP)")
	assert.NoError(t, err)
}

func TestMigrateFailedStepKeepsVersion(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER); INSERT INTO missing VALUES (1);")},
	}

	err := db.Migrate(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_b")

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'b'").Scan(&n))
	assert.Zero(t, n, "step rolled back")
}

func TestMigrateRefusesNewerSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec("PRAGMA user_version = 7")
	require.NoError(t, err)

	err = db.Migrate(Migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema 7")
}

func TestLoadMigrations(t *testing.T) {
	t.Run("ordered by version", func(t *testing.T) {
		steps, err := LoadMigrations(fstest.MapFS{
			"002_second.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
			"001_first.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"README.md":      {Data: []byte("ignored")},
		})
		require.NoError(t, err)
		require.Len(t, steps, 2)
		assert.Equal(t, Migration{Version: 1, Name: "first", SQL: "CREATE TABLE a (id INTEGER);"}, steps[0])
		assert.Equal(t, "second", steps[1].Name)
	})

	t.Run("embedded schema", func(t *testing.T) {
		steps, err := LoadMigrations(Migrations)
		require.NoError(t, err)
		require.Len(t, steps, 2)
		assert.Equal(t, "deliveries", steps[0].Name)
		assert.Equal(t, "generation_runs", steps[1].Name)
	})

	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"gap", fstest.MapFS{"001_a.sql": {}, "003_c.sql": {}}},
		{"repeat", fstest.MapFS{"001_a.sql": {}, "001_b.sql": {}}},
		{"bad name", fstest.MapFS{"init.sql": {}}},
		{"zero", fstest.MapFS{"000_a.sql": {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys)
			assert.Error(t, err)
		})
	}
}
