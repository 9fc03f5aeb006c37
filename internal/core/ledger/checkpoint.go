package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/graft/internal/core/validate"
	"github.com/colonyops/graft/pkg/randid"
)

// Checkpoint is an immutable point-in-time snapshot of ledger state.
// Checkpoints are created or deleted, never mutated.
type Checkpoint struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"session_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Title       string      `json:"title"`
	Groups      []TodoGroup `json:"groups"`
	WorkingDir  string      `json:"working_dir"`
	LastCommand string      `json:"last_command,omitempty"`
}

// Checkpoint snapshots the ledger's current groups into a new
// checkpoint keyed by a timestamp-derived id and writes it to the
// store. The snapshot copies group and todo slices so later ledger
// mutations cannot reach into it.
func (l *Ledger) Checkpoint(ctx context.Context, store CheckpointStore, title, workingDir, lastCommand string) (Checkpoint, error) {
	if err := validate.Title(title); err != nil {
		return Checkpoint{}, err
	}

	now := l.now()
	cp := Checkpoint{
		ID:          fmt.Sprintf("%s-%s", now.Format("20060102-150405"), randid.Generate(4)),
		SessionID:   l.state.SessionID,
		CreatedAt:   now,
		Title:       title,
		Groups:      copyGroups(l.state.Groups),
		WorkingDir:  workingDir,
		LastCommand: lastCommand,
	}

	if err := store.Save(ctx, cp); err != nil {
		return Checkpoint{}, fmt.Errorf("save checkpoint: %w", err)
	}

	l.log.Info().Str("checkpoint", cp.ID).Msg("checkpoint created")
	return cp, nil
}

// Restore replaces the ledger's groups with the checkpoint's snapshot
// and persists. The checkpoint itself is left untouched.
func (l *Ledger) Restore(ctx context.Context, cp Checkpoint) error {
	l.state.Groups = copyGroups(cp.Groups)
	return l.persist(ctx)
}

func copyGroups(groups []TodoGroup) []TodoGroup {
	out := make([]TodoGroup, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Todos = append([]Todo(nil), g.Todos...)
	}
	return out
}
