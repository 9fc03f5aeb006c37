package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a todo, session, or checkpoint does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned by stores when persisted state cannot be
	// decoded. The ledger recovers by resetting to empty state.
	ErrCorrupt = errors.New("persisted state is corrupt")
	// ErrAlreadyInProgress is returned by Start when another todo is
	// already in progress.
	ErrAlreadyInProgress = errors.New("another todo is already in progress")
	// ErrTerminalState is returned when transitioning a todo out of a
	// terminal state.
	ErrTerminalState = errors.New("todo is in a terminal state")
)

// State is the persisted form of a session's ledger.
type State struct {
	SessionID string      `json:"session_id"`
	Groups    []TodoGroup `json:"groups"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store persists ledger state per session. Every ledger mutation is
// written through immediately.
type Store interface {
	// Load returns the state for a session.
	// Returns ErrNotFound when no state exists and ErrCorrupt (possibly
	// wrapped) when the state cannot be decoded.
	Load(ctx context.Context, sessionID string) (State, error)

	// Save persists the state, replacing any previous version.
	Save(ctx context.Context, state State) error
}

// CheckpointStore persists immutable checkpoint snapshots.
type CheckpointStore interface {
	// Save writes a checkpoint. Checkpoints are never updated in place.
	Save(ctx context.Context, cp Checkpoint) error

	// Load returns a checkpoint by id.
	// Returns ErrNotFound if it does not exist.
	Load(ctx context.Context, id string) (Checkpoint, error)

	// List returns all checkpoints ordered by creation time descending.
	List(ctx context.Context) ([]Checkpoint, error)

	// Delete removes a checkpoint. Deletion is irreversible.
	// Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
