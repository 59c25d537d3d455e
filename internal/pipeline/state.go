package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a pipeline run.
type State int

const (
	// StateLoaded - transcript read and validated, nothing processed yet.
	StateLoaded State = iota
	// StateClassifying - segments are being labeled by the reasoner.
	StateClassifying
	// StateRedacting - the redaction policy is being applied to a copy.
	StateRedacting
	// StateReporting - the summary report and artifacts are being produced.
	StateReporting
	// StateDone - all artifacts exist under the shared run identifier.
	StateDone
	// StateFailed - fatal condition before classification; no artifacts
	// were written. Only reachable from StateLoaded: per-segment
	// classification failures never fail a run.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "LOADED"
	case StateClassifying:
		return "CLASSIFYING"
	case StateRedacting:
		return "REDACTING"
	case StateReporting:
		return "REPORTING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (DONE or FAILED).
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// ErrInvalidTransition is returned for moves outside the run lifecycle.
var ErrInvalidTransition = errors.New("invalid run state transition")

// transitions lists the legal lifecycle moves:
//
//	LOADED → CLASSIFYING → REDACTING → REPORTING → DONE
//	  │
//	  └──→ FAILED
var transitions = map[State][]State{
	StateLoaded:      {StateClassifying, StateFailed},
	StateClassifying: {StateRedacting},
	StateRedacting:   {StateReporting},
	StateReporting:   {StateDone},
}

// Lifecycle tracks the state machine for a single run.
// Thread-safe for concurrent access.
type Lifecycle struct {
	mu    sync.Mutex
	state State
}

// NewLifecycle creates a run lifecycle in LOADED state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateLoaded}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// To transitions to next, or returns ErrInvalidTransition if the move is
// outside the lifecycle.
func (l *Lifecycle) To(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, allowed := range transitions[l.state] {
		if next == allowed {
			l.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.state, next)
}
