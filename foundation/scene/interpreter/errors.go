// File: errors.go
// Title: Runtime Errors
// Description: Type errors raised by READ validation and evaluation errors
//              raised by expressions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial error types

package interpreter

import (
	"errors"
	"fmt"

	"github.com/msto63/dramatica/foundation/scene/ast"
)

// ErrSuspended is returned by Run when an interactive read has no input
var ErrSuspended = errors.New("execution suspended awaiting input")

// TypeError reports a read value that does not match the declared type.
// It terminates the execution that raised it.
type TypeError struct {
	Variable string   `json:"variable"`
	Type     ast.Type `json:"type"`
	Value    string   `json:"value"`
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: variable '%s' is %s but received '%s'", e.Variable, e.Type, e.Value)
}

// EvalError reports a failed expression evaluation. Say and assignment
// commands render it into the transcript instead of failing.
type EvalError struct {
	Message string       `json:"message"`
	Pos     ast.Position `json:"position"`
}

func (e *EvalError) Error() string {
	return e.Message
}
