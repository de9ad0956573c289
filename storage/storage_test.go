package storage

import (
	"context"
	"testing"
	"time"

	"orderbot/order"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE orders (
		item     TEXT PRIMARY KEY,
		quantity REAL NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE action_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ts         TEXT NOT NULL,
		actor_id   INTEGER NOT NULL,
		actor_name TEXT NOT NULL DEFAULT '',
		action     TEXT NOT NULL,
		details    TEXT NOT NULL DEFAULT ''
	)`)
	require.NoError(t, err)
	return db
}

func TestOrderRepoSaveLoadRoundTrip(t *testing.T) {
	repo := NewOrderRepo(newTestDB(t))
	ctx := context.Background()

	items := map[string]float64{"молоко": 2, "сыр": 0.3, "сметана": 0.5}
	require.NoError(t, repo.SaveAll(ctx, items))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestOrderRepoSaveAllRewritesSnapshot(t *testing.T) {
	repo := NewOrderRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, map[string]float64{"молоко": 2, "сыр": 0.3, "хлеб": 1}))
	require.NoError(t, repo.SaveAll(ctx, map[string]float64{"сыр": 1}))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"сыр": 1}, loaded,
		"a smaller save leaves no rows from the previous snapshot behind")
}

func TestOrderRepoSaveAllEmpty(t *testing.T) {
	repo := NewOrderRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, map[string]float64{"молоко": 2}))
	require.NoError(t, repo.SaveAll(ctx, map[string]float64{}))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestOrderRepoLoadAllEmptyTable(t *testing.T) {
	repo := NewOrderRepo(newTestDB(t))

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAuditRepoAppendRecent(t *testing.T) {
	repo := NewAuditRepo(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	actions := []order.Action{order.ActionAdd, order.ActionEdit, order.ActionClear}
	for i, action := range actions {
		require.NoError(t, repo.Append(ctx, order.AuditEntry{
			Time:      base.Add(time.Duration(i) * time.Minute),
			ActorID:   7,
			ActorName: "alice",
			Action:    action,
			Details:   "запись",
		}))
	}

	entries, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, order.ActionClear, entries[0].Action, "newest entry comes first")
	assert.Equal(t, order.ActionEdit, entries[1].Action)

	assert.Equal(t, base.Add(2*time.Minute), entries[0].Time,
		"stored timestamps parse back to the original instant")
	assert.Equal(t, int64(7), entries[0].ActorID)
	assert.Equal(t, "alice", entries[0].ActorName)
	assert.Equal(t, "запись", entries[0].Details)
}

func TestAuditRepoRecentDefaultLimit(t *testing.T) {
	repo := NewAuditRepo(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, order.AuditEntry{
			Time:    time.Date(2026, 8, 28, 12, i, 0, 0, time.UTC),
			ActorID: 7,
			Action:  order.ActionShow,
		}))
	}

	entries, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "a non-positive limit falls back to the default")
}

func TestAuditRepoRecentEmpty(t *testing.T) {
	repo := NewAuditRepo(newTestDB(t))

	entries, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
