// File: execution.go
// Title: Resumable Execution
// Description: Drives ExecuteOne over a program with a cursor so an
//              interactive run can stop at a read and continue later.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial execution state machine

package interpreter

import (
	"fmt"

	"github.com/msto63/dramatica/foundation/scene/ast"
)

// Status is a snapshot of an execution after Start or Resume
type Status struct {
	State     State      `json:"state"`
	Output    string     `json:"output"`
	Awaiting  string     `json:"awaiting,omitempty"`
	Variables []Variable `json:"variables,omitempty"`
	Err       error      `json:"-"`
}

// Execution is a program paired with an interpreter and a command cursor.
//
//	Initial -> Running -> Suspended -> Running -> Completed | Failed
type Execution struct {
	interp   *Interpreter
	program  *ast.Program
	cursor   int
	awaiting string
	state    State
}

// NewExecution creates an execution in the Initial state. Interactive
// mode is forced so reads without input suspend.
func NewExecution(program *ast.Program, opts Options) *Execution {
	opts.Mode = ModeInteractive
	return &Execution{
		interp:  New(opts),
		program: program,
		state:   StateInitial,
	}
}

// Snapshot is the persistable part of an execution
type Snapshot struct {
	Cursor     int
	Awaiting   string
	State      State
	Transcript []string
	Variables  []Variable
}

// Snapshot captures the cursor, transcript and variables
func (e *Execution) Snapshot() Snapshot {
	return Snapshot{
		Cursor:     e.cursor,
		Awaiting:   e.awaiting,
		State:      e.state,
		Transcript: e.interp.Transcript(),
		Variables:  e.interp.store.Variables(),
	}
}

// RestoreExecution rebuilds an execution from a snapshot of the same
// program. Declared types come from the program, values from the snapshot.
func RestoreExecution(program *ast.Program, snap Snapshot, opts Options) (*Execution, error) {
	if snap.Cursor < 0 || snap.Cursor > len(program.Commands) {
		return nil, fmt.Errorf("restore: cursor %d outside program of %d commands", snap.Cursor, len(program.Commands))
	}

	e := NewExecution(program, opts)
	e.interp.Declare(program.Character)
	for _, v := range snap.Variables {
		e.interp.store.Set(v.Name, v.Value)
	}
	e.interp.transcript = append([]string(nil), snap.Transcript...)
	e.cursor = snap.Cursor
	e.awaiting = snap.Awaiting
	e.state = snap.State
	return e, nil
}

// State returns the current lifecycle state
func (e *Execution) State() State { return e.state }

// Program returns the program being executed
func (e *Execution) Program() *ast.Program { return e.program }

// Awaiting returns the variable a suspended execution waits for
func (e *Execution) Awaiting() string { return e.awaiting }

// Start seeds the declarations and runs until the first suspension or
// the end of the program.
func (e *Execution) Start() Status {
	if e.state != StateInitial {
		return e.status(fmt.Errorf("execution already started (state %s)", e.state))
	}

	e.interp.Declare(e.program.Character)
	e.state = StateRunning
	return e.run()
}

// Resume supplies the awaited value and continues from the suspended
// read. A value that fails validation fails the execution.
func (e *Execution) Resume(value string) Status {
	if e.state != StateSuspended {
		return e.status(fmt.Errorf("execution is not suspended (state %s)", e.state))
	}

	e.state = StateRunning
	if err := e.interp.Supply(e.awaiting, value); err != nil {
		e.state = StateFailed
		e.awaiting = ""
		return e.status(err)
	}
	e.awaiting = ""
	e.cursor++
	return e.run()
}

func (e *Execution) run() Status {
	for e.cursor < len(e.program.Commands) {
		outcome := e.interp.ExecuteOne(e.program.Commands[e.cursor])
		switch outcome.Kind {
		case Advanced:
			e.cursor++
		case Suspended:
			e.state = StateSuspended
			e.awaiting = outcome.Awaiting
			return e.status(nil)
		case Failed:
			e.state = StateFailed
			return e.status(outcome.Err)
		}
	}

	e.state = StateCompleted
	return e.status(nil)
}

func (e *Execution) status(err error) Status {
	st := Status{
		State:    e.state,
		Output:   e.interp.Output(),
		Awaiting: e.awaiting,
		Err:      err,
	}
	if e.state.Terminal() {
		st.Variables = e.interp.store.Variables()
	}
	return st
}
