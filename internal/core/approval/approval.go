// Package approval drives the per-operation decision cycle for plan
// execution. The decision capability is injected, keeping the state
// machine independent of any input/output channel so both interactive and
// scripted callers can drive it.
package approval

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/graft/internal/core/logging"
	"github.com/colonyops/graft/internal/core/plan"
)

// Decision is supplied per operation by the approval channel.
type Decision string

const (
	DecisionApprove Decision = "approve"
	// DecisionEdit is currently a stub: it degrades to skip with a
	// diagnostic. The value is kept in the vocabulary so callers and
	// persisted records stay stable if a real edit flow lands.
	DecisionEdit Decision = "edit"
	DecisionSkip Decision = "skip"
	DecisionAuto Decision = "auto"
)

// State is the machine's position in the decision cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingDecision
	// StateAutoApprove is monotonic: once entered, no later operation in
	// the same plan execution returns to StateAwaitingDecision.
	StateAutoApprove
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDecision:
		return "awaiting-decision"
	case StateAutoApprove:
		return "auto-approve"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// DecideFunc supplies one decision for the operation at index (0-based)
// out of total.
type DecideFunc func(op plan.FileOperation, index, total int) (Decision, error)

// ApplyFunc applies one approved operation.
type ApplyFunc func(op plan.FileOperation) error

// Machine drives the approve/edit/skip/auto cycle over a plan's
// operations in order.
type Machine struct {
	decide DecideFunc
	state  State
	log    zerolog.Logger
}

// NewMachine creates a Machine with the injected decision capability.
func NewMachine(decide DecideFunc) *Machine {
	return &Machine{
		decide: decide,
		state:  StateIdle,
		log:    logging.Component("approval"),
	}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.state
}

// Run drives the decision cycle over ops, invoking apply for approved
// operations and recording every outcome into result. An I/O failure while
// applying is recorded and the machine advances: one failing file must not
// abort the remainder of the plan.
func (m *Machine) Run(ops []plan.FileOperation, apply ApplyFunc, result *plan.GenerationResult) {
	total := len(ops)

	for i, op := range ops {
		if m.state != StateAutoApprove {
			m.state = StateAwaitingDecision
		}

		decision := DecisionApprove
		if m.state == StateAwaitingDecision {
			var err error
			decision, err = m.decide(op, i, total)
			if err != nil {
				result.AddError(fmt.Sprintf("%s: decision failed: %v", op.Path, err))
				m.state = StateIdle
				continue
			}
		}

		switch decision {
		case DecisionAuto:
			m.state = StateAutoApprove
			m.apply(op, apply, result)
		case DecisionApprove:
			m.apply(op, apply, result)
			if m.state != StateAutoApprove {
				m.state = StateIdle
			}
		case DecisionSkip:
			result.AddSkipped(op.Path)
			m.state = StateIdle
		case DecisionEdit:
			// Stubbed: see package docs.
			m.log.Warn().Str("path", op.Path).Msg("edit is not implemented; treating as skip")
			result.AddSkipped(op.Path)
			m.state = StateIdle
		default:
			result.AddError(fmt.Sprintf("%s: unknown decision %q", op.Path, decision))
			m.state = StateIdle
		}
	}

	m.state = StateTerminated
}

func (m *Machine) apply(op plan.FileOperation, apply ApplyFunc, result *plan.GenerationResult) {
	if err := apply(op); err != nil {
		result.AddError(fmt.Sprintf("%s: %v", op.Path, err))
		return
	}

	switch op.Kind {
	case plan.OpCreate:
		result.AddCreated(op.Path)
	default:
		result.AddModified(op.Path)
	}
}

// AutoDecider returns auto for every operation, for non-interactive runs.
func AutoDecider() DecideFunc {
	return func(plan.FileOperation, int, int) (Decision, error) {
		return DecisionAuto, nil
	}
}
