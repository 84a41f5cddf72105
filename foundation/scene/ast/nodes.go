// File: nodes.go
// Title: Scene AST Node Definitions
// Description: Program, Character, Declaration, the three command kinds and
//              the four-level expression hierarchy, with canonical printing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial AST node definitions

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns canonical source text for the node
	String() string

	// Position returns the source position of the node
	Position() Position
}

// Position represents a position in the source code
type Position struct {
	Line   int `json:"line"`   // Line number (1-based)
	Column int `json:"column"` // Column number (1-based)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type is the declared type of a memory variable
type Type int

const (
	TypeText Type = iota
	TypeInteger
	TypeReal
)

// String returns the keyword spelling of the type
func (t Type) String() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the keyword spelling in JSON output
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseType maps a type keyword to a Type
func ParseType(s string) (Type, bool) {
	switch s {
	case "TEXT":
		return TypeText, true
	case "INTEGER":
		return TypeInteger, true
	case "REAL":
		return TypeReal, true
	default:
		return 0, false
	}
}

// Program is the root of a parsed scene
type Program struct {
	Scene     string
	Character *Character
	Commands  []Command
	Pos       Position
}

func (p *Program) Position() Position { return p.Pos }

func (p *Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SCENE %s:\n", p.Scene)
	if p.Character != nil {
		b.WriteString(p.Character.String())
	}
	for _, cmd := range p.Commands {
		fmt.Fprintf(&b, "  %s\n", cmd.String())
	}
	b.WriteString("END_SCENE\n")
	return b.String()
}

// Character is the single actor of a scene and owns its memory block
type Character struct {
	Name         string
	Declarations []*Declaration
	HasMemory    bool
	Pos          Position
}

func (c *Character) Position() Position { return c.Pos }

func (c *Character) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  CHARACTER %s:\n", c.Name)
	if c.HasMemory || len(c.Declarations) > 0 {
		b.WriteString("    MEMORY:\n")
		for _, decl := range c.Declarations {
			fmt.Fprintf(&b, "      %s\n", decl.String())
		}
		b.WriteString("    END_MEMORY\n")
	}
	return b.String()
}

// Lookup finds the declaration of a variable
func (c *Character) Lookup(name string) (*Declaration, bool) {
	for _, decl := range c.Declarations {
		if decl.Name == name {
			return decl, true
		}
	}
	return nil, false
}

// Declaration declares one typed memory variable
type Declaration struct {
	Name string
	Type Type
	Pos  Position
}

func (d *Declaration) Position() Position { return d.Pos }

func (d *Declaration) String() string {
	return fmt.Sprintf("%s: %s;", d.Name, d.Type)
}

// Command is one of *ReadCommand, *SayCommand or *AssignCommand
type Command interface {
	Node
	commandNode()
}

// ReadCommand stores one external value into a variable
type ReadCommand struct {
	Variable    string
	VariablePos Position
	Pos         Position
}

func (r *ReadCommand) Position() Position { return r.Pos }
func (r *ReadCommand) String() string     { return fmt.Sprintf("READ %s;", r.Variable) }
func (r *ReadCommand) commandNode()       {}

// SayCommand produces output attributed to the scene's character
type SayCommand struct {
	Character string
	Expr      *Expression
	Pos       Position
}

func (s *SayCommand) Position() Position { return s.Pos }
func (s *SayCommand) String() string {
	return fmt.Sprintf("%s SAYS %s;", s.Character, s.Expr)
}
func (s *SayCommand) commandNode() {}

// AssignCommand stores the value of an expression into a variable
type AssignCommand struct {
	Variable string
	Expr     *Expression
	Pos      Position
}

func (a *AssignCommand) Position() Position { return a.Pos }
func (a *AssignCommand) String() string {
	return fmt.Sprintf("%s = %s;", a.Variable, a.Expr)
}
func (a *AssignCommand) commandNode() {}

// Expression is a '+'/'-' chain of terms
type Expression struct {
	Terms []TermOp
	Pos   Position
}

// TermOp pairs an operator with the term on its right; Op is empty for the first term
type TermOp struct {
	Op   string
	Term *Term
}

func (e *Expression) Position() Position { return e.Pos }
func (e *Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", t.Op)
		}
		b.WriteString(t.Term.String())
	}
	return b.String()
}

// Term is a '*'/'/' chain of factors
type Term struct {
	Factors []FactorOp
	Pos     Position
}

// FactorOp pairs an operator with the factor on its right
type FactorOp struct {
	Op     string
	Factor *Factor
}

func (t *Term) Position() Position { return t.Pos }
func (t *Term) String() string {
	var b strings.Builder
	for i, f := range t.Factors {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", f.Op)
		}
		b.WriteString(f.Factor.String())
	}
	return b.String()
}

// Factor is a '^' chain of elements, right-associative when evaluated
type Factor struct {
	Elements []ElementOp
	Pos      Position
}

// ElementOp pairs an operator with the element on its right
type ElementOp struct {
	Op      string
	Element Element
}

func (f *Factor) Position() Position { return f.Pos }
func (f *Factor) String() string {
	var b strings.Builder
	for i, el := range f.Elements {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", el.Op)
		}
		b.WriteString(el.Element.String())
	}
	return b.String()
}

// Element is an identifier, a literal or a parenthesized expression
type Element interface {
	Node
	elementNode()
}

// Identifier references a variable
type Identifier struct {
	Name string
	Pos  Position
}

func (i *Identifier) Position() Position { return i.Pos }
func (i *Identifier) String() string     { return i.Name }
func (i *Identifier) elementNode()       {}

// IntegerLiteral is a decimal integer constant
type IntegerLiteral struct {
	Value int64
	Pos   Position
}

func (l *IntegerLiteral) Position() Position { return l.Pos }
func (l *IntegerLiteral) String() string     { return strconv.FormatInt(l.Value, 10) }
func (l *IntegerLiteral) elementNode()       {}

// RealLiteral is a decimal constant with a fractional part
type RealLiteral struct {
	Value float64
	Raw   string
	Pos   Position
}

func (l *RealLiteral) Position() Position { return l.Pos }
func (l *RealLiteral) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	s := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
func (l *RealLiteral) elementNode() {}

// TextLiteral is a double-quoted constant; Value excludes the quotes
type TextLiteral struct {
	Value string
	Pos   Position
}

func (l *TextLiteral) Position() Position { return l.Pos }
func (l *TextLiteral) String() string     { return `"` + l.Value + `"` }
func (l *TextLiteral) elementNode()       {}

// Group is a parenthesized sub-expression
type Group struct {
	Expr *Expression
	Pos  Position
}

func (g *Group) Position() Position { return g.Pos }
func (g *Group) String() string     { return "(" + g.Expr.String() + ")" }
func (g *Group) elementNode()       {}
