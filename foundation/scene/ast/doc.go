// File: doc.go
// Title: Scene Abstract Syntax Tree Package Documentation
// Description: Node definitions for parsed scenes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial AST implementation

/*
Package ast defines the Abstract Syntax Tree of a scene.

A Program holds the scene name, exactly one Character with its memory
declarations, and an ordered list of commands (read, say, assign).
Expressions use four precedence levels, each stored as a flat list of
(operator, operand) pairs whose first operator is empty:

	Expression  -> Term    (('+' | '-') Term)*
	Term        -> Factor  (('*' | '/') Factor)*
	Factor      -> Element ('^' Element)*
	Element     -> Identifier | IntegerLiteral | RealLiteral | TextLiteral | Group

Associativity is left to the evaluator; the tree only records the order.

Every node renders canonical source text through String(), so a
Program printed and parsed again yields the same text.
*/
package ast
