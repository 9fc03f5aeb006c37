package stores

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/graft/internal/core/ledger"
)

func TestLedgerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewLedgerStore(t.TempDir())

		state := ledger.State{
			SessionID: "default",
			Groups: []ledger.TodoGroup{{
				ID:    "g1",
				Title: "Add Login",
				Todos: []ledger.Todo{{
					ID:       "t1",
					Title:    "login handler",
					Status:   ledger.StatusPending,
					Priority: ledger.PriorityHigh,
				}},
			}},
			UpdatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.Save(ctx, state))

		got, err := store.Load(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("missing session", func(t *testing.T) {
		store := NewLedgerStore(t.TempDir())

		_, err := store.Load(ctx, "nope")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "ledgers"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ledgers", "bad.json"), []byte("{not json"), 0o644))

		store := NewLedgerStore(dir)
		_, err := store.Load(ctx, "bad")
		assert.ErrorIs(t, err, ledger.ErrCorrupt)
	})

	t.Run("save is human readable", func(t *testing.T) {
		dir := t.TempDir()
		store := NewLedgerStore(dir)

		require.NoError(t, store.Save(ctx, ledger.State{SessionID: "default"}))

		raw, err := os.ReadFile(filepath.Join(dir, "ledgers", "default.json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "\n  \"session_id\": \"default\"")
	})

	t.Run("save replaces previous state", func(t *testing.T) {
		store := NewLedgerStore(t.TempDir())

		require.NoError(t, store.Save(ctx, ledger.State{SessionID: "s", Groups: []ledger.TodoGroup{{ID: "g1"}}}))
		require.NoError(t, store.Save(ctx, ledger.State{SessionID: "s"}))

		got, err := store.Load(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, got.Groups)
	})
}

func TestCheckpointStore(t *testing.T) {
	ctx := context.Background()

	cp := func(id string, created time.Time) ledger.Checkpoint {
		return ledger.Checkpoint{
			ID:        id,
			SessionID: "default",
			CreatedAt: created,
			Title:     "snapshot " + id,
		}
	}

	t.Run("round trip and delete", func(t *testing.T) {
		store := NewCheckpointStore(t.TempDir())

		want := cp("20260801-100000-ab12", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.NoError(t, store.Delete(ctx, want.ID))
		_, err = store.Load(ctx, want.ID)
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		err = store.Delete(ctx, want.ID)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := NewCheckpointStore(t.TempDir())

		older := cp("older", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
		newer := cp("newer", time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC))
		require.NoError(t, store.Save(ctx, older))
		require.NoError(t, store.Save(ctx, newer))

		got, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newer", got[0].ID)
		assert.Equal(t, "older", got[1].ID)
	})

	t.Run("list skips unreadable entries", func(t *testing.T) {
		dir := t.TempDir()
		store := NewCheckpointStore(dir)

		require.NoError(t, store.Save(ctx, cp("good", time.Now())))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "checkpoints", "junk.json"), []byte("??"), 0o644))

		got, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "good", got[0].ID)
	})

	t.Run("list on empty data dir", func(t *testing.T) {
		store := NewCheckpointStore(t.TempDir())

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
