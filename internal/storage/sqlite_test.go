package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerescrow/internal/reputation"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	s := New(db)
	require.NoError(t, s.InitSchema())
	return s, db
}

func TestStoreUnknownActorScoresZero(t *testing.T) {
	s, _ := newTestStore(t)
	score, err := s.Get(context.Background(), "0xnobody")
	require.NoError(t, err)
	assert.Zero(t, score)

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreApplyAccumulates(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, []reputation.Delta{{Actor: "a", Change: 1}, {Actor: "b", Change: 3}, {Actor: "c", Change: 0}}))
	require.NoError(t, s.Apply(ctx, []reputation.Delta{{Actor: "a", Change: -2}, {Actor: "b", Change: 1}}))

	a, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), a)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []reputation.Entry{{Actor: "b", Score: 4}, {Actor: "a", Score: -1}}, entries)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM reputation`).Scan(&rows))
	assert.Equal(t, 2, rows, "zero deltas do not create rows")
}

func TestStoreApplyIsAtomic(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, []reputation.Delta{{Actor: "a", Change: 5}}))

	// A trigger that rejects one actor makes the second insert fail mid-transaction.
	_, err := db.Exec(`CREATE TRIGGER reject_mallory BEFORE INSERT ON reputation
		WHEN NEW.actor = 'mallory' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	err = s.Apply(ctx, []reputation.Delta{{Actor: "a", Change: 1}, {Actor: "mallory", Change: 1}})
	require.Error(t, err)

	a, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), a)
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escrow.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Apply(context.Background(), []reputation.Delta{{Actor: "a", Change: 2}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	score, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), score)
}
