// File: errors.go
// Title: Scene Parser Errors
// Description: Syntax and semantic error types returned by the parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial error types

package parser

import (
	"fmt"

	"github.com/msto63/dramatica/foundation/scene/lexer"
)

// SyntaxError represents a grammar violation at an exact token position
type SyntaxError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Lexeme  string `json:"lexeme"`
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}

// SemanticError represents a rule violation in a structurally valid program.
// Line and Column are only meaningful when HasPosition is set.
type SemanticError struct {
	Message     string `json:"message"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	HasPosition bool   `json:"has_position"`
}

func (e *SemanticError) Error() string {
	if !e.HasPosition {
		return "semantic error: " + e.Message
	}
	return fmt.Sprintf("semantic error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func newSyntaxError(tok lexer.Token, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Lexeme:  describe(tok),
	}
}

func newSemanticError(line, column int, format string, args ...interface{}) *SemanticError {
	return &SemanticError{
		Message:     fmt.Sprintf(format, args...),
		Line:        line,
		Column:      column,
		HasPosition: line > 0,
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of input"
	}
	return tok.Lexeme
}
