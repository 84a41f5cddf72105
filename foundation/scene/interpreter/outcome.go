// File: outcome.go
// Title: Command Outcomes and Execution States
// Description: The result of executing one command and the lifecycle
//              states of a resumable execution.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial outcome and state definitions

package interpreter

// OutcomeKind classifies the result of ExecuteOne
type OutcomeKind int

const (
	// Advanced means the command finished and the cursor may move on
	Advanced OutcomeKind = iota
	// Suspended means a read needs a value; the cursor must stay
	Suspended
	// Failed means the execution cannot continue
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Advanced:
		return "advanced"
	case Suspended:
		return "suspended"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is returned by ExecuteOne. Awaiting is set for Suspended,
// Err for Failed.
type Outcome struct {
	Kind     OutcomeKind
	Awaiting string
	Err      error
}

// State is the lifecycle state of an Execution
type State int

const (
	StateInitial State = iota
	StateRunning
	StateSuspended
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseState maps a state name back to a State
func ParseState(s string) (State, bool) {
	for st := StateInitial; st <= StateFailed; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Terminal reports whether no further command can run
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
