package pipeline

import (
	"errors"
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateLoaded, "LOADED"},
		{StateClassifying, "CLASSIFYING"},
		{StateRedacting, "REDACTING"},
		{StateReporting, "REPORTING"},
		{StateDone, "DONE"},
		{StateFailed, "FAILED"},
		{State(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.expected)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	if !StateDone.IsTerminal() || !StateFailed.IsTerminal() {
		t.Error("DONE and FAILED must be terminal")
	}
	for _, s := range []State{StateLoaded, StateClassifying, StateRedacting, StateReporting} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	lc := NewLifecycle()

	for _, next := range []State{StateClassifying, StateRedacting, StateReporting, StateDone} {
		if err := lc.To(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if lc.State() != next {
			t.Fatalf("expected state %s, got %s", next, lc.State())
		}
	}
}

func TestLifecycle_FailedOnlyFromLoaded(t *testing.T) {
	lc := NewLifecycle()
	if err := lc.To(StateFailed); err != nil {
		t.Fatalf("LOADED -> FAILED should be legal: %v", err)
	}

	lc = NewLifecycle()
	lc.To(StateClassifying)
	if err := lc.To(StateFailed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("CLASSIFYING -> FAILED must be illegal, got %v", err)
	}
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []State
		next State
	}{
		{"skip classifying", nil, StateRedacting},
		{"skip redacting", []State{StateClassifying}, StateReporting},
		{"done from classifying", []State{StateClassifying}, StateDone},
		{"leave done", []State{StateClassifying, StateRedacting, StateReporting, StateDone}, StateClassifying},
		{"leave failed", []State{StateFailed}, StateClassifying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := NewLifecycle()
			for _, s := range tt.path {
				if err := lc.To(s); err != nil {
					t.Fatalf("setup transition to %s: %v", s, err)
				}
			}
			if err := lc.To(tt.next); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition for %s -> %s, got %v", lc.State(), tt.next, err)
			}
		})
	}
}
