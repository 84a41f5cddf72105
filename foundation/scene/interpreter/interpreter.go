// File: interpreter.go
// Title: Tree-Walking Interpreter
// Description: Executes scene commands against a private variable store.
//              ExecuteOne is the resumable primitive: a read without input
//              yields a Suspended outcome in interactive mode and the type
//              default in batch mode.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial interpreter implementation

package interpreter

import (
	"context"
	"fmt"
	"strings"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene/ast"
)

// Mode selects what a read does when no input is queued
type Mode int

const (
	// ModeBatch substitutes the type default and never suspends
	ModeBatch Mode = iota
	// ModeInteractive suspends until a value is supplied
	ModeInteractive
)

func (m Mode) String() string {
	if m == ModeInteractive {
		return "interactive"
	}
	return "batch"
}

// Options configures an interpreter
type Options struct {
	Mode   Mode
	Inputs []string
	Logger *mdwlog.Logger
}

// Result is the outcome of a batch run
type Result struct {
	Scene     string     `json:"scene"`
	Output    string     `json:"output"`
	Variables []Variable `json:"variables"`
}

// Interpreter executes commands of one program. It is not safe for
// concurrent use.
type Interpreter struct {
	mode       Mode
	inputs     []string
	next       int
	store      *Store
	character  string
	transcript []string
	logger     *mdwlog.Logger
}

// New creates an interpreter with an empty store
func New(opts Options) *Interpreter {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Interpreter{
		mode:   opts.Mode,
		inputs: append([]string(nil), opts.Inputs...),
		store:  NewStore(),
		logger: opts.Logger.WithField("component", "scene-interpreter"),
	}
}

// Declare seeds the store from a character's memory block
func (i *Interpreter) Declare(c *ast.Character) {
	i.character = c.Name
	for _, decl := range c.Declarations {
		i.store.Declare(decl.Name, decl.Type)
	}
}

// Store returns the variable store
func (i *Interpreter) Store() *Store { return i.store }

// Mode returns the read mode of the interpreter
func (i *Interpreter) Mode() Mode { return i.mode }

// Transcript returns the lines produced so far
func (i *Interpreter) Transcript() []string {
	return append([]string(nil), i.transcript...)
}

// Output returns the transcript as newline-separated text
func (i *Interpreter) Output() string {
	return strings.Join(i.transcript, "\n")
}

func (i *Interpreter) emit(format string, args ...interface{}) {
	i.transcript = append(i.transcript, fmt.Sprintf(format, args...))
}

// Run executes a whole program in order against a fresh store and
// renders the batch transcript with header and final variable state.
// A type error stops the run and is returned with the partial result.
func (i *Interpreter) Run(program *ast.Program) (*Result, error) {
	return i.RunContext(context.Background(), program)
}

// RunContext is Run with cancellation checked before every command. A
// cancelled run returns the partial result and ctx.Err().
func (i *Interpreter) RunContext(ctx context.Context, program *ast.Program) (*Result, error) {
	timer := i.logger.StartTimer("scene run").WithField("scene", program.Scene)

	i.store = NewStore()
	i.transcript = nil
	i.next = 0

	i.emit("=== EXECUTION OF SCENE: %s ===", program.Scene)
	i.emit("Character: %s", program.Character.Name)
	i.Declare(program.Character)
	for _, decl := range program.Character.Declarations {
		i.emit("Declared: %s: %s", decl.Name, decl.Type)
	}

	result := &Result{Scene: program.Scene}
	for _, cmd := range program.Commands {
		if err := ctx.Err(); err != nil {
			result.Output = i.Output()
			result.Variables = i.store.Variables()
			timer.StopWithError(err)
			return result, err
		}
		outcome := i.ExecuteOne(cmd)
		switch outcome.Kind {
		case Advanced:
			continue
		case Suspended:
			result.Output = i.Output()
			result.Variables = i.store.Variables()
			timer.Stop()
			return result, fmt.Errorf("%w: variable '%s'", ErrSuspended, outcome.Awaiting)
		case Failed:
			result.Output = i.Output()
			result.Variables = i.store.Variables()
			timer.StopWithError(outcome.Err)
			return result, outcome.Err
		}
	}

	i.emit("")
	i.emit("=== FINAL VARIABLE STATE ===")
	for _, v := range i.store.Variables() {
		i.emit("%s = %s", v.Name, v.Value)
	}

	result.Output = i.Output() + "\n"
	result.Variables = i.store.Variables()
	timer.Stop()
	return result, nil
}

// ExecuteOne executes a single command against the current store
func (i *Interpreter) ExecuteOne(cmd ast.Command) Outcome {
	switch c := cmd.(type) {
	case *ast.ReadCommand:
		return i.executeRead(c)
	case *ast.SayCommand:
		i.executeSay(c)
	case *ast.AssignCommand:
		i.executeAssign(c)
	default:
		return Outcome{Kind: Failed, Err: fmt.Errorf("unsupported command %T", cmd)}
	}
	return Outcome{Kind: Advanced}
}

func (i *Interpreter) executeRead(c *ast.ReadCommand) Outcome {
	if i.next < len(i.inputs) {
		raw := i.inputs[i.next]
		i.next++
		if err := i.Supply(c.Variable, raw); err != nil {
			return Outcome{Kind: Failed, Err: err}
		}
		return Outcome{Kind: Advanced}
	}

	if i.mode == ModeInteractive {
		i.logger.Debug("Read suspended", mdwlog.Fields{"variable": c.Variable})
		return Outcome{Kind: Suspended, Awaiting: c.Variable}
	}

	value := Text("")
	if t, ok := i.store.Type(c.Variable); ok {
		value = Default(t)
	}
	i.store.Set(c.Variable, value)
	i.emit("READ %s -> %s (no input, using default)", c.Variable, value)
	return Outcome{Kind: Advanced}
}

// Supply validates raw against the declared type of variable and stores
// it, the same way a read with queued input does.
func (i *Interpreter) Supply(variable, raw string) error {
	i.emit("READ %s -> %s", variable, raw)

	var declared *ast.Type
	if t, ok := i.store.Type(variable); ok {
		declared = &t
	}
	value, err := Convert(variable, raw, declared)
	if err != nil {
		i.logger.Debug("Read rejected", mdwlog.Fields{"variable": variable, "error": err.Error()})
		return err
	}
	i.store.Set(variable, value)
	return nil
}

func (i *Interpreter) executeSay(c *ast.SayCommand) {
	value, err := i.Evaluate(c.Expr)
	if err != nil {
		i.emit("error in SAYS: %s", err)
		return
	}
	i.emit("%s says: %s", c.Character, value)
}

func (i *Interpreter) executeAssign(c *ast.AssignCommand) {
	value, err := i.Evaluate(c.Expr)
	if err != nil {
		i.emit("error in assignment to '%s': %s", c.Variable, err)
		return
	}
	i.store.Set(c.Variable, value)
	i.emit("%s = %s", c.Variable, value)
}

// Evaluate computes the value of an expression. '+' and '-' fold left,
// '*' and '/' fold left, '^' folds from the rightmost operand.
func (i *Interpreter) Evaluate(expr *ast.Expression) (Value, error) {
	var result Value
	for n, t := range expr.Terms {
		v, err := i.evalTerm(t.Term)
		if err != nil {
			return Value{}, err
		}
		switch {
		case n == 0:
			result = v
		case t.Op == "+":
			result, err = Add(result, v)
		default:
			result, err = Arithmetic(t.Op, result, v)
		}
		if err != nil {
			return Value{}, positioned(err, t.Term.Pos)
		}
	}
	return result, nil
}

func (i *Interpreter) evalTerm(term *ast.Term) (Value, error) {
	var result Value
	for n, f := range term.Factors {
		v, err := i.evalFactor(f.Factor)
		if err != nil {
			return Value{}, err
		}
		if n == 0 {
			result = v
			continue
		}
		if result, err = Arithmetic(f.Op, result, v); err != nil {
			return Value{}, positioned(err, f.Factor.Pos)
		}
	}
	return result, nil
}

func (i *Interpreter) evalFactor(factor *ast.Factor) (Value, error) {
	last := len(factor.Elements) - 1
	if last < 0 {
		return Value{}, &EvalError{Message: "empty factor", Pos: factor.Pos}
	}
	result, err := i.evalElement(factor.Elements[last].Element)
	if err != nil {
		return Value{}, err
	}
	for n := last - 1; n >= 0; n-- {
		base, err := i.evalElement(factor.Elements[n].Element)
		if err != nil {
			return Value{}, err
		}
		if result, err = Arithmetic(factor.Elements[n+1].Op, base, result); err != nil {
			return Value{}, positioned(err, factor.Elements[n].Element.Position())
		}
	}
	return result, nil
}

func (i *Interpreter) evalElement(el ast.Element) (Value, error) {
	switch e := el.(type) {
	case *ast.Identifier:
		v, ok := i.store.Get(e.Name)
		if !ok {
			return Value{}, &EvalError{Message: fmt.Sprintf("variable '%s' is not initialized", e.Name), Pos: e.Pos}
		}
		return v, nil
	case *ast.IntegerLiteral:
		return Integer(e.Value), nil
	case *ast.RealLiteral:
		return Real(e.Value), nil
	case *ast.TextLiteral:
		return Text(e.Value), nil
	case *ast.Group:
		return i.Evaluate(e.Expr)
	default:
		return Value{}, &EvalError{Message: fmt.Sprintf("unsupported element %T", el)}
	}
}

func positioned(err error, pos ast.Position) error {
	if e, ok := err.(*EvalError); ok && e.Pos == (ast.Position{}) {
		e.Pos = pos
	}
	return err
}
