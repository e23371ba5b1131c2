package cli

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recollect/internal/journal"
	"github.com/runnerr0/recollect/internal/memory"
)

func openTestStore(t *testing.T) (*memory.SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	runner := memory.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := memory.NewSQLiteStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
		db.Close()
	})
	return store, db
}

func TestStatusJSON(t *testing.T) {
	cfg := testConfig(t)
	store, db := openTestStore(t)

	// One pending snapshot and one daily note.
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	writeSnapshot(t, cfg, now)
	_, err := journal.WriteDaily(cfg.Journal.Dir, "2026-03-02", "narrative", nil)
	require.NoError(t, err)

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "0.1.0-test"}
	out, err := captureStdout(t, func() error {
		return cmd.executeWithStore(cfg, store, db)
	})
	require.NoError(t, err)

	var decoded statusJSON
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "0.1.0-test", decoded.Version)
	assert.Equal(t, 1, decoded.PendingSnapshots)
	assert.Equal(t, 1, decoded.DailyNotes)
	assert.Equal(t, 0, decoded.WeeklyNotes)
	assert.Equal(t, int64(0), decoded.StoredMemories)
}

func TestStatusHuman(t *testing.T) {
	cfg := testConfig(t)
	store, db := openTestStore(t)

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "0.1.0-test"}
	out, err := captureStdout(t, func() error {
		return cmd.executeWithStore(cfg, store, db)
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Recollect Status")
	assert.Contains(t, out, "Version:            0.1.0-test")
	assert.Contains(t, out, "Pending snapshots:  0")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
