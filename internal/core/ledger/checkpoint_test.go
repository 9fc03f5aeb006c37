package ledger

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCheckpointStore is an in-memory CheckpointStore for tests.
type memCheckpointStore struct {
	cps map[string]Checkpoint
}

func newMemCheckpointStore() *memCheckpointStore {
	return &memCheckpointStore{cps: map[string]Checkpoint{}}
}

func (m *memCheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	m.cps[cp.ID] = cp
	return nil
}

func (m *memCheckpointStore) Load(ctx context.Context, id string) (Checkpoint, error) {
	cp, ok := m.cps[id]
	if !ok {
		return Checkpoint{}, ErrNotFound
	}
	return cp, nil
}

func (m *memCheckpointStore) List(ctx context.Context) ([]Checkpoint, error) {
	out := make([]Checkpoint, 0, len(m.cps))
	for _, cp := range m.cps {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memCheckpointStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.cps[id]; !ok {
		return ErrNotFound
	}
	delete(m.cps, id)
	return nil
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()
	l := mustOpen(t, newMemStore())
	cpStore := newMemCheckpointStore()

	todo, err := l.Add(ctx, Todo{Title: "step one"})
	require.NoError(t, err)

	cp, err := l.Checkpoint(ctx, cpStore, "before refactor", "/work/repo", "graft gen")
	require.NoError(t, err)

	assert.NotEmpty(t, cp.ID)
	assert.Equal(t, "test-session", cp.SessionID)
	assert.Equal(t, "/work/repo", cp.WorkingDir)
	require.Len(t, cp.Groups, 1)
	assert.Equal(t, StatusPending, cp.Groups[0].Todos[0].Status)

	// The snapshot is isolated from later ledger mutations.
	require.NoError(t, l.Start(ctx, todo.ID))
	require.NoError(t, l.Complete(ctx, todo.ID))

	stored, err := cpStore.Load(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Groups[0].Todos[0].Status)

	_, err = l.Checkpoint(ctx, cpStore, "  ", "/work/repo", "")
	assert.Error(t, err, "blank title rejected")
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	l := mustOpen(t, newMemStore())
	cpStore := newMemCheckpointStore()

	todo, err := l.Add(ctx, Todo{Title: "step one"})
	require.NoError(t, err)

	cp, err := l.Checkpoint(ctx, cpStore, "clean state", "/work/repo", "")
	require.NoError(t, err)

	require.NoError(t, l.Start(ctx, todo.ID))
	require.NoError(t, l.Complete(ctx, todo.ID))

	require.NoError(t, l.Restore(ctx, cp))

	got, err := l.Get(todo.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
