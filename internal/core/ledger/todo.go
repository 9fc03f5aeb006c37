// Package ledger defines the todo domain model and the session ledger
// that tracks logical implementation steps with dependency-aware
// scheduling and durable checkpointing.
package ledger

import "time"

// Status represents the lifecycle state of a Todo.
//
// pending → in_progress → {completed, skipped, blocked}. The three
// outcome states are terminal and never auto-resumed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusBlocked    Status = "blocked"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusSkipped, StatusBlocked:
		return true
	}
	return false
}

// Priority orders todos for scheduling.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// rank maps priorities to a sortable weight. Unknown values rank lowest.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Todo is a single logical implementation step.
type Todo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TokenEstimate int       `json:"token_estimate,omitempty"`
	DependsOn     []string  `json:"depends_on,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
}

// TodoGroup is an ordered collection of todos sharing a theme, usually
// one generation plan.
type TodoGroup struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Todos []Todo `json:"todos"`
}

// Status derives the group's aggregate status from its members:
// completed iff all members are completed, in_progress iff any member
// is in_progress or completed without all being completed, pending
// otherwise.
func (g *TodoGroup) Status() Status {
	if len(g.Todos) == 0 {
		return StatusPending
	}

	allCompleted := true
	anyActive := false
	for _, t := range g.Todos {
		if t.Status != StatusCompleted {
			allCompleted = false
		}
		if t.Status == StatusInProgress || t.Status == StatusCompleted {
			anyActive = true
		}
	}

	if allCompleted {
		return StatusCompleted
	}
	if anyActive {
		return StatusInProgress
	}
	return StatusPending
}
