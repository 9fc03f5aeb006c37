package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/internal/core/validate"
	"github.com/colonyops/graft/pkg/randid"
)

const todoIDLength = 8

var validPriority = validate.OneOf(
	string(PriorityLow),
	string(PriorityMedium),
	string(PriorityHigh),
)

// Ledger owns the todos and groups for one session. All mutations are
// persisted write-through: a crash loses at most the in-flight
// mutation, never prior state. Not safe for concurrent use; a session
// is assumed to have a single live ledger instance.
type Ledger struct {
	store Store
	state State
	log   zerolog.Logger
	now   func() time.Time
}

// Open loads the ledger for a session, creating an empty one when no
// state exists. Corrupt state is recovered by resetting to an empty
// ledger with a logged warning.
func Open(ctx context.Context, store Store, sessionID string) (*Ledger, error) {
	if err := validate.SessionID(sessionID); err != nil {
		return nil, err
	}

	log := logging.Component("ledger").With().Str("session", sessionID).Logger()

	state, err := store.Load(ctx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		state = State{SessionID: sessionID}
	case errors.Is(err, ErrCorrupt):
		log.Warn().Err(err).Msg("ledger state corrupt; resetting to empty")
		state = State{SessionID: sessionID}
	default:
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	return &Ledger{store: store, state: state, log: log, now: time.Now}, nil
}

// SessionID returns the session this ledger belongs to.
func (l *Ledger) SessionID() string { return l.state.SessionID }

// Groups returns the groups in insertion order.
func (l *Ledger) Groups() []TodoGroup { return l.state.Groups }

// Todos returns all todos across groups in insertion order.
func (l *Ledger) Todos() []Todo {
	var out []Todo
	for _, g := range l.state.Groups {
		out = append(out, g.Todos...)
	}
	return out
}

// Get returns a todo by id.
func (l *Ledger) Get(id string) (Todo, error) {
	t := l.find(id)
	if t == nil {
		return Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return *t, nil
}

// StartGroup creates a new group and makes it the active one. Add
// appends to the most recently created group.
func (l *Ledger) StartGroup(ctx context.Context, title string) (TodoGroup, error) {
	if err := validate.Title(title); err != nil {
		return TodoGroup{}, err
	}

	g := TodoGroup{
		ID:    randid.Generate(todoIDLength),
		Title: title,
	}
	l.state.Groups = append(l.state.Groups, g)

	if err := l.persist(ctx); err != nil {
		return TodoGroup{}, err
	}
	return g, nil
}

// Add appends a todo to the active group, creating a default group if
// none exists, and persists immediately. ID, status, priority, and
// timestamps are populated when unset; a priority outside the known
// set is rejected.
func (l *Ledger) Add(ctx context.Context, t Todo) (Todo, error) {
	if err := validate.Title(t.Title); err != nil {
		return Todo{}, err
	}

	if t.ID == "" {
		t.ID = randid.Generate(todoIDLength)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if err := validPriority(string(t.Priority)); err != nil {
		return Todo{}, fmt.Errorf("priority: %w", err)
	}
	now := l.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if len(l.state.Groups) == 0 {
		l.state.Groups = append(l.state.Groups, TodoGroup{
			ID:    randid.Generate(todoIDLength),
			Title: "default",
		})
	}
	g := &l.state.Groups[len(l.state.Groups)-1]
	g.Todos = append(g.Todos, t)

	if err := l.persist(ctx); err != nil {
		return Todo{}, err
	}

	l.log.Debug().Str("todo", t.ID).Str("title", t.Title).Msg("todo added")
	return t, nil
}

// Next returns the next eligible pending todo: among pending todos
// whose every dependency resolves to a completed todo, the highest
// priority wins, ties broken by earliest creation time and then
// insertion order. The second return is false when nothing is eligible.
func (l *Ledger) Next() (Todo, bool) {
	var best *Todo
	for _, g := range l.state.Groups {
		for i := range g.Todos {
			t := &g.Todos[i]
			if t.Status != StatusPending || !l.depsCompleted(t) {
				continue
			}
			if best == nil || betterCandidate(t, best) {
				best = t
			}
		}
	}
	if best == nil {
		return Todo{}, false
	}
	return *best, true
}

// betterCandidate reports whether t should be scheduled before cur.
// Strictly-better only, so the earlier insertion wins all remaining ties.
func betterCandidate(t, cur *Todo) bool {
	if t.Priority.rank() != cur.Priority.rank() {
		return t.Priority.rank() > cur.Priority.rank()
	}
	return t.CreatedAt.Before(cur.CreatedAt)
}

func (l *Ledger) depsCompleted(t *Todo) bool {
	for _, dep := range t.DependsOn {
		d := l.find(dep)
		if d == nil || d.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Start marks a pending todo in progress. At most one todo may be in
// progress at a time; Start fails with ErrAlreadyInProgress otherwise.
func (l *Ledger) Start(ctx context.Context, id string) error {
	if cur := l.inProgress(); cur != nil && cur.ID != id {
		return fmt.Errorf("todo %s: %w", cur.ID, ErrAlreadyInProgress)
	}

	t := l.find(id)
	if t == nil {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if t.Status == StatusInProgress {
		return nil
	}
	if t.Status != StatusPending {
		return fmt.Errorf("todo %s (%s): %w", id, t.Status, ErrTerminalState)
	}

	t.Status = StatusInProgress
	t.UpdatedAt = l.now()
	return l.persist(ctx)
}

// Transition moves a todo to an outcome state. Terminal states are
// final: no transition is permitted out of completed, skipped, or
// blocked. Use Start to enter in_progress.
func (l *Ledger) Transition(ctx context.Context, id string, status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("transition target %q must be an outcome state", status)
	}

	t := l.find(id)
	if t == nil {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if t.Status.Terminal() {
		return fmt.Errorf("todo %s (%s): %w", id, t.Status, ErrTerminalState)
	}

	t.Status = status
	t.UpdatedAt = l.now()
	if err := l.persist(ctx); err != nil {
		return err
	}

	l.log.Debug().Str("todo", id).Str("status", string(status)).Msg("todo transitioned")
	return nil
}

// Complete marks a todo completed.
func (l *Ledger) Complete(ctx context.Context, id string) error {
	return l.Transition(ctx, id, StatusCompleted)
}

// Skip marks a todo skipped.
func (l *Ledger) Skip(ctx context.Context, id string) error {
	return l.Transition(ctx, id, StatusSkipped)
}

// Block marks a todo blocked.
func (l *Ledger) Block(ctx context.Context, id string) error {
	return l.Transition(ctx, id, StatusBlocked)
}

// Continue resumes work: the in-progress todo when one exists,
// otherwise the next eligible pending todo is promoted to in_progress
// and returned. The second return is false when nothing remains.
func (l *Ledger) Continue(ctx context.Context) (Todo, bool, error) {
	if cur := l.inProgress(); cur != nil {
		return *cur, true, nil
	}

	next, ok := l.Next()
	if !ok {
		return Todo{}, false, nil
	}
	if err := l.Start(ctx, next.ID); err != nil {
		return Todo{}, false, err
	}
	started, err := l.Get(next.ID)
	if err != nil {
		return Todo{}, false, err
	}
	return started, true, nil
}

func (l *Ledger) inProgress() *Todo {
	for _, g := range l.state.Groups {
		for i := range g.Todos {
			if g.Todos[i].Status == StatusInProgress {
				return &g.Todos[i]
			}
		}
	}
	return nil
}

func (l *Ledger) find(id string) *Todo {
	for _, g := range l.state.Groups {
		for i := range g.Todos {
			if g.Todos[i].ID == id {
				return &g.Todos[i]
			}
		}
	}
	return nil
}

func (l *Ledger) persist(ctx context.Context) error {
	l.state.UpdatedAt = l.now()
	if err := l.store.Save(ctx, l.state); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}
