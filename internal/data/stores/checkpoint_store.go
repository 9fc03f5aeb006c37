package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/ledger"
	"github.com/colonyops/graft/internal/core/logging"
)

// CheckpointStore persists checkpoint snapshots as checkpoints/<id>.json.
type CheckpointStore struct {
	dir string
	log zerolog.Logger
}

// NewCheckpointStore creates a store rooted at the data directory.
func NewCheckpointStore(dataDir string) *CheckpointStore {
	return &CheckpointStore{
		dir: filepath.Join(dataDir, "checkpoints"),
		log: logging.Component("checkpoint-store"),
	}
}

func (s *CheckpointStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save implements ledger.CheckpointStore.
func (s *CheckpointStore) Save(ctx context.Context, cp ledger.Checkpoint) error {
	raw, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return writeFileAtomic(s.dir, s.path(cp.ID), raw)
}

// Load implements ledger.CheckpointStore.
func (s *CheckpointStore) Load(ctx context.Context, id string) (ledger.Checkpoint, error) {
	raw, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return ledger.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return ledger.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp ledger.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return ledger.Checkpoint{}, fmt.Errorf("decode %s: %v: %w", s.path(id), err, ledger.ErrCorrupt)
	}
	return cp, nil
}

// List implements ledger.CheckpointStore. Unreadable entries are logged
// and skipped rather than failing the whole listing.
func (s *CheckpointStore) List(ctx context.Context) ([]ledger.Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint dir: %w", err)
	}

	var out []ledger.Checkpoint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		cp, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable checkpoint")
			continue
		}
		out = append(out, cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete implements ledger.CheckpointStore.
func (s *CheckpointStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("checkpoint %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}
