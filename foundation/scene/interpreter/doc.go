// File: doc.go
// Title: Scene Interpreter Package Documentation
// Description: Overview of values, outcomes and resumable executions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial documentation

/*
Package interpreter evaluates parsed scenes.

Values are a closed union of TEXT, INTEGER and REAL. Each Interpreter owns
a private Store seeded from the character's memory block.

ExecuteOne runs one command and reports an Outcome instead of blocking:

	outcome := interp.ExecuteOne(cmd)
	switch outcome.Kind {
	case interpreter.Advanced:  // move to the next command
	case interpreter.Suspended: // outcome.Awaiting needs a value
	case interpreter.Failed:    // outcome.Err ends the execution
	}

In ModeBatch a read without queued input stores the type default; in
ModeInteractive it suspends. Execution wraps an interpreter with a
command cursor so a suspended run can continue later with Resume, and
Snapshot / RestoreExecution let the cursor outlive the process.

Say and assignment errors never stop a run; they become transcript lines.
A read value that fails validation is a *TypeError and fails the run.
*/
package interpreter
