// Package stores provides JSON file-backed persistence for ledger and
// checkpoint state under the data directory. Records are indented JSON
// so operators can read and repair them by hand.
package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/graft/internal/core/ledger"
)

// LedgerStore persists ledger state as ledgers/<session>.json.
type LedgerStore struct {
	dir string
}

// NewLedgerStore creates a store rooted at the data directory.
func NewLedgerStore(dataDir string) *LedgerStore {
	return &LedgerStore{dir: filepath.Join(dataDir, "ledgers")}
}

func (s *LedgerStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

// Load implements ledger.Store.
func (s *LedgerStore) Load(ctx context.Context, sessionID string) (ledger.State, error) {
	raw, err := os.ReadFile(s.path(sessionID))
	if os.IsNotExist(err) {
		return ledger.State{}, fmt.Errorf("session %s: %w", sessionID, ledger.ErrNotFound)
	}
	if err != nil {
		return ledger.State{}, fmt.Errorf("read ledger: %w", err)
	}

	var state ledger.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return ledger.State{}, fmt.Errorf("decode %s: %v: %w", s.path(sessionID), err, ledger.ErrCorrupt)
	}
	return state, nil
}

// Save implements ledger.Store. The file is replaced atomically via a
// temp file rename in the same directory.
func (s *LedgerStore) Save(ctx context.Context, state ledger.State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return writeFileAtomic(s.dir, s.path(state.SessionID), raw)
}

func writeFileAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
