package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// database/sql keeps a connection opener goroutine until Close
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": sq,
	}
}

func TestTxnStagesUntilCommit(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tx := Begin(ctx, b)
			tx.Set("a", "1")
			tx.Set("b\x00\x01", "binary key")

			got := tx.Get("a")
			require.NotNil(t, got)
			assert.Equal(t, "1", *got)

			committed, err := b.Load(ctx, "a")
			require.NoError(t, err)
			assert.Nil(t, committed, "nothing may reach the backend before commit")

			require.NoError(t, tx.Commit())

			committed, err = b.Load(ctx, "b\x00\x01")
			require.NoError(t, err)
			require.NotNil(t, committed)
			assert.Equal(t, "binary key", *committed)
		})
	}
}

func TestTxnDiscardLeavesBackendUntouched(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed := Begin(ctx, b)
			seed.Set("k", "old")
			require.NoError(t, seed.Commit())

			tx := Begin(ctx, b)
			tx.Set("k", "new")
			tx.Delete("k")
			assert.Nil(t, tx.Get("k"))
			tx.Discard()

			v, err := b.Load(ctx, "k")
			require.NoError(t, err)
			require.NotNil(t, v)
			assert.Equal(t, "old", *v)
		})
	}
}

func TestTxnDeleteCommits(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed := Begin(ctx, b)
			seed.Set("k", "v")
			require.NoError(t, seed.Commit())

			tx := Begin(ctx, b)
			tx.Delete("k")
			require.NoError(t, tx.Commit())

			v, err := b.Load(ctx, "k")
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestTxnPendingKeepsFirstTouchOrder(t *testing.T) {
	tx := Begin(context.Background(), NewMemoryBackend())
	tx.Set("z", "1")
	tx.Set("a", "2")
	tx.Set("z", "3")

	pending := tx.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "z", pending[0].Key)
	assert.Equal(t, "3", *pending[0].Value)
	assert.Equal(t, "a", pending[1].Key)
}

type failingBackend struct{ *MemoryBackend }

var errBoom = errors.New("boom")

func (failingBackend) Load(context.Context, string) (*string, error) { return nil, errBoom }

func TestTxnRefusesCommitAfterLoadFailure(t *testing.T) {
	b := failingBackend{NewMemoryBackend()}
	tx := Begin(context.Background(), b)
	tx.Set("k", "v")
	assert.Nil(t, tx.Get("other"))
	require.ErrorIs(t, tx.Err(), errBoom)
	require.ErrorIs(t, tx.Commit(), errBoom)
	assert.Equal(t, 0, b.Len())
}

func TestTxnClosedAfterCommit(t *testing.T) {
	tx := Begin(context.Background(), NewMemoryBackend())
	require.NoError(t, tx.Commit())
	assert.ErrorIs(t, tx.Commit(), ErrTxnClosed)
}

func TestSQLiteReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	tx := Begin(ctx, b)
	tx.Set("auction", "record")
	require.NoError(t, tx.Commit())
	require.NoError(t, b.Close())

	b, err = OpenSQLite(path)
	require.NoError(t, err)
	defer b.Close()
	v, err := b.Load(ctx, "auction")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "record", *v)
	assert.Equal(t, path, b.Path())
}
