package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore opens a fresh database in a temp directory
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return createTestStore(t) })
}

func TestSQLiteDeleteRemovesHistoryRows(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	row := testRow("cv-1", "user-1", "doomed", time.Now())
	require.NoError(t, store.InsertCV(ctx, row))
	require.NoError(t, store.UpdateCV(ctx, row))

	require.NoError(t, store.DeleteCV(ctx, "user-1", "cv-1"))

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM cv_history WHERE cv_id = ?`, "cv-1").Scan(&count))
	assert.Zero(t, count)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.InsertCV(context.Background(), testRow("cv-1", "user-1", "kept", time.Now())))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetCV(context.Background(), "user-1", "cv-1")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)

	var version int
	require.NoError(t, second.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestMigrationBackfillsObjectiveColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE cvs (
		id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, title TEXT NOT NULL,
		personal_data TEXT NOT NULL DEFAULT '{}', experiences TEXT NOT NULL DEFAULT '[]',
		education TEXT NOT NULL DEFAULT '[]', skills TEXT NOT NULL DEFAULT '',
		languages TEXT NOT NULL DEFAULT '[]', selected_design TEXT NOT NULL DEFAULT 'modern',
		created_at TEXT NOT NULL, updated_at TEXT NOT NULL)`)
	require.NoError(t, err)
	stamp := formatTime(time.Now())
	_, err = legacy.Exec(`INSERT INTO cvs (id, owner_id, title, created_at, updated_at) VALUES ('cv-1', 'user-1', 'old', ?, ?)`, stamp, stamp)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetCV(context.Background(), "user-1", "cv-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got.Objective))
}

func TestMigrationFromVersionOneReplacesHistoryTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)

	// Rewind to the version 1 layout: no profiles table, hex history ids.
	_, err = store.DB().Exec(`
DROP TABLE profiles;
DROP TRIGGER trg_cvs_history;
CREATE TRIGGER trg_cvs_history AFTER UPDATE ON cvs
BEGIN
	INSERT INTO cv_history (id, cv_id, version_number, title, personal_data, objective, experiences,
		education, skills, languages, selected_design, change_description, created_at)
	VALUES (lower(hex(randomblob(16))), OLD.id,
		(SELECT COALESCE(MAX(version_number), 0) + 1 FROM cv_history WHERE cv_id = OLD.id),
		OLD.title, OLD.personal_data, OLD.objective, OLD.experiences, OLD.education, OLD.skills,
		OLD.languages, OLD.selected_design, NULL, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'));
END;
PRAGMA user_version = 1;`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	row := testRow("cv-1", "user-1", "v0", time.Now())
	require.NoError(t, store.InsertCV(ctx, row))
	require.NoError(t, store.UpdateCV(ctx, row))

	history, err := store.ListHistory(ctx, "user-1", "cv-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	_, err = uuid.Parse(history[0].ID)
	assert.NoError(t, err)

	_, err = store.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoRows)
}
