// File: scene.go
// Title: Scene Pipeline Engine
// Description: Facade over tokenizing, parsing, analysis and batch
//              execution of scene programs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial engine implementation

package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene/ast"
	"github.com/msto63/dramatica/foundation/scene/interpreter"
	"github.com/msto63/dramatica/foundation/scene/lexer"
	"github.com/msto63/dramatica/foundation/scene/parser"
)

// Options configures an Engine
type Options struct {
	Logger    *mdwlog.Logger
	MaxTokens int
}

// Engine runs the scene pipeline. It holds no per-program state and is
// safe for concurrent use.
type Engine struct {
	logger *mdwlog.Logger
	parser *parser.Parser
}

// New creates a new engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Engine{
		logger: opts.Logger.WithField("component", "scene-engine"),
		parser: parser.New(parser.Options{Logger: opts.Logger, MaxTokens: opts.MaxTokens}),
	}
}

// Logger returns the engine logger
func (e *Engine) Logger() *mdwlog.Logger { return e.logger }

// TokenizeResult holds the tokens and lexical errors of a source text
type TokenizeResult struct {
	Tokens        []lexer.Token  `json:"tokens"`
	LexicalErrors []*lexer.Error `json:"lexical_errors"`
}

// Tokenize scans source text. It always terminates with an EOF token.
func (e *Engine) Tokenize(source string) *TokenizeResult {
	tokens, errs := lexer.Tokenize(source)
	if errs == nil {
		errs = []*lexer.Error{}
	}
	return &TokenizeResult{Tokens: tokens, LexicalErrors: errs}
}

// Parse builds a program from tokens
func (e *Engine) Parse(tokens []lexer.Token) (*ast.Program, error) {
	return e.parser.Parse(tokens)
}

// Compile tokenizes and parses source text. Lexical errors are reported
// together as one LEXICAL error.
func (e *Engine) Compile(source string) (*ast.Program, error) {
	res := e.Tokenize(source)
	if len(res.LexicalErrors) > 0 {
		return nil, lexicalError(res.LexicalErrors)
	}
	return e.Parse(res.Tokens)
}

// Format returns the canonical text of a valid program
func (e *Engine) Format(source string) (string, error) {
	program, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return program.String(), nil
}

func lexicalError(errs []*lexer.Error) *mdwerror.Error {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return mdwerror.New(strings.Join(messages, "\n")).
		WithCode(mdwerror.CodeLexical).
		WithDetail("errors", errs).
		WithOperation("scene.Compile")
}

// Analysis status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Analysis categories
const (
	CategoryLexical  = "lexical"
	CategorySyntax   = "syntax"
	CategorySemantic = "semantic"
	CategoryUnknown  = "unknown"
)

// Analysis is the result of checking a source text without running it
type Analysis struct {
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Analyze reports the first problem of a source text, if any
func (e *Engine) Analyze(source string) *Analysis {
	if strings.TrimSpace(source) == "" {
		return &Analysis{Status: StatusSuccess, Message: "Write a scene to get started."}
	}

	res := e.Tokenize(source)
	if len(res.LexicalErrors) > 0 {
		first := res.LexicalErrors[0]
		return &Analysis{
			Status:   StatusError,
			Category: CategoryLexical,
			Message:  first.Error(),
			Line:     first.Line,
			Column:   first.Column,
		}
	}

	if _, err := e.Parse(res.Tokens); err != nil {
		var syntaxErr *parser.SyntaxError
		var semErr *parser.SemanticError
		switch {
		case errors.As(err, &syntaxErr):
			return &Analysis{
				Status:   StatusError,
				Category: CategorySyntax,
				Message:  syntaxErr.Message,
				Line:     syntaxErr.Line,
				Column:   syntaxErr.Column,
			}
		case errors.As(err, &semErr):
			return &Analysis{
				Status:   StatusError,
				Category: CategorySemantic,
				Message:  semErr.Message,
				Line:     semErr.Line,
				Column:   semErr.Column,
			}
		default:
			return &Analysis{Status: StatusError, Category: CategoryUnknown, Message: err.Error()}
		}
	}

	return &Analysis{Status: StatusSuccess, Message: "Syntax is valid."}
}

// RunToCompletion executes a program in batch mode with preset inputs.
// Reads beyond the inputs use type defaults. The run stops between
// commands once ctx is done.
func (e *Engine) RunToCompletion(ctx context.Context, program *ast.Program, inputs []string) (*interpreter.Result, error) {
	interp := interpreter.New(interpreter.Options{
		Mode:   interpreter.ModeBatch,
		Inputs: inputs,
		Logger: e.logger,
	})
	return interp.RunContext(ctx, program)
}

// RunReport is the result of compiling and running a source text
type RunReport struct {
	Status    string                 `json:"status"`
	Output    string                 `json:"output"`
	Variables []interpreter.Variable `json:"variables,omitempty"`
	Code      mdwerror.Code          `json:"code,omitempty"`
}

// Run compiles and executes source text in batch mode. Every failure is
// rendered into Output; no partial state is reported for failed runs.
func (e *Engine) Run(ctx context.Context, source string, inputs []string) *RunReport {
	res := e.Tokenize(source)
	if len(res.LexicalErrors) > 0 {
		messages := make([]string, len(res.LexicalErrors))
		for i, err := range res.LexicalErrors {
			messages[i] = err.Error()
		}
		return &RunReport{Status: StatusError, Output: strings.Join(messages, "\n"), Code: mdwerror.CodeLexical}
	}

	program, err := e.Parse(res.Tokens)
	if err != nil {
		return &RunReport{Status: StatusError, Output: describeParseError(err), Code: Classify(err)}
	}

	result, err := e.RunToCompletion(ctx, program, inputs)
	if err != nil {
		e.logger.Debug("Scene run failed", mdwlog.Fields{"scene": program.Scene, "error": err.Error()})
		return &RunReport{Status: StatusError, Output: "Runtime error:\n" + err.Error(), Code: Classify(err)}
	}

	return &RunReport{Status: StatusSuccess, Output: result.Output, Variables: result.Variables}
}

func describeParseError(err error) string {
	var syntaxErr *parser.SyntaxError
	var semErr *parser.SemanticError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Syntax error at line %d, column %d:\n%s", syntaxErr.Line, syntaxErr.Column, syntaxErr.Message)
	case errors.As(err, &semErr) && semErr.HasPosition:
		return fmt.Sprintf("Semantic error at line %d, column %d:\n%s", semErr.Line, semErr.Column, semErr.Message)
	case errors.As(err, &semErr):
		return "Semantic error:\n" + semErr.Message
	default:
		return "Error:\n" + err.Error()
	}
}

// Classify maps an error from any pipeline stage to an error code
func Classify(err error) mdwerror.Code {
	if err == nil {
		return ""
	}

	var (
		lexErr    *lexer.Error
		syntaxErr *parser.SyntaxError
		semErr    *parser.SemanticError
		typeErr   *interpreter.TypeError
		evalErr   *interpreter.EvalError
	)
	switch {
	case errors.As(err, &lexErr):
		return mdwerror.CodeLexical
	case errors.As(err, &syntaxErr):
		return mdwerror.CodeSyntax
	case errors.As(err, &semErr):
		return mdwerror.CodeSemantic
	case errors.As(err, &typeErr):
		return mdwerror.CodeRuntimeType
	case errors.As(err, &evalErr):
		return mdwerror.CodeRuntimeEval
	case errors.Is(err, context.DeadlineExceeded):
		return mdwerror.CodeTimeout
	}
	return mdwerror.GetCode(err)
}
