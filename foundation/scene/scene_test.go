// File: scene_test.go
// Title: Scene Engine Tests
// Description: End-to-end tests of the pipeline facade.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial tests

package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene/interpreter"
	"github.com/msto63/dramatica/foundation/scene/lexer"
	"github.com/msto63/dramatica/foundation/scene/parser"
)

const monologue = `// a short scene
SCENE Monologue:
  CHARACTER Hamlet:
    MEMORY:
      name: TEXT;
      count: INTEGER;
    END_MEMORY
  READ name;
  READ count;
  Hamlet SAYS "To be, " + name;
  count = 2 ^ 3 ^ 2;
END_SCENE
`

func newEngine() *Engine {
	return New(Options{Logger: mdwlog.NewNop()})
}

func TestTokenize(t *testing.T) {
	res := newEngine().Tokenize("SCENE @ x")
	if len(res.LexicalErrors) != 1 {
		t.Fatalf("got %d lexical errors, want 1", len(res.LexicalErrors))
	}
	if last := res.Tokens[len(res.Tokens)-1]; last.Type != lexer.TokenEOF {
		t.Errorf("last token = %s, want EOF", last.Type)
	}

	clean := newEngine().Tokenize("SCENE")
	if clean.LexicalErrors == nil {
		t.Error("LexicalErrors should be an empty slice, not nil")
	}
}

func TestCompile(t *testing.T) {
	engine := newEngine()

	program, err := engine.Compile(monologue)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if program.Scene != "Monologue" || len(program.Commands) != 4 {
		t.Errorf("unexpected program: %s", program)
	}

	_, err = engine.Compile("SCENE S: # $ END_SCENE")
	if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
		t.Fatalf("expected LEXICAL error, got %v", err)
	}
	if got := strings.Count(err.Error(), "invalid character"); got != 2 {
		t.Errorf("lexical error should list both characters: %v", err)
	}
}

func TestFormat(t *testing.T) {
	formatted, err := newEngine().Format("SCENE S: CHARACTER C: MEMORY: x: REAL; END_MEMORY x = (1+2)*3.50; C SAYS x; END_SCENE")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "SCENE S:\n  CHARACTER C:\n    MEMORY:\n      x: REAL;\n    END_MEMORY\n  x = (1 + 2) * 3.50;\n  C SAYS x;\nEND_SCENE\n"
	if formatted != want {
		t.Errorf("Format() =\n%s\nwant\n%s", formatted, want)
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		status   string
		category string
		message  string
		line     int
	}{
		{"empty", "  \n ", StatusSuccess, "", "Write a scene to get started.", 0},
		{"valid", monologue, StatusSuccess, "", "Syntax is valid.", 0},
		{"lexical", "SCENE S:\n  \"open", StatusError, CategoryLexical,
			"lexical error at line 2, column 3: unterminated text literal", 2},
		{"syntax", "SCENE S:\nCHARACTER C:\nREAD;\nEND_SCENE", StatusError, CategorySyntax,
			"expected variable name after READ", 3},
		{"semantic", "SCENE S:\nCHARACTER C:\nD SAYS 1;\nEND_SCENE", StatusError, CategorySemantic,
			"character 'D' is not the scene's character 'C'", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newEngine().Analyze(tt.source)
			if a.Status != tt.status || a.Category != tt.category || a.Message != tt.message || a.Line != tt.line {
				t.Errorf("Analyze() = %+v", a)
			}
		})
	}

	big := New(Options{Logger: mdwlog.NewNop(), MaxTokens: 3})
	if a := big.Analyze(monologue); a.Category != CategoryUnknown {
		t.Errorf("oversized program should be unknown, got %+v", a)
	}
}

func TestRun(t *testing.T) {
	report := newEngine().Run(context.Background(), monologue, []string{"Horatio"})
	if report.Status != StatusSuccess {
		t.Fatalf("Run() = %+v", report)
	}

	for _, line := range []string{
		"READ name -> Horatio",
		"READ count -> 0 (no input, using default)",
		"Hamlet says: To be, Horatio",
		"count = 512",
		"=== FINAL VARIABLE STATE ===",
	} {
		if !strings.Contains(report.Output, line+"\n") {
			t.Errorf("output missing %q:\n%s", line, report.Output)
		}
	}
	if len(report.Variables) != 2 || report.Variables[1].Value != interpreter.Integer(512) {
		t.Errorf("Variables = %+v", report.Variables)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		inputs []string
		output string
		code   mdwerror.Code
	}{
		{
			name:   "lexical",
			source: "SCENE S: ? END_SCENE",
			output: "lexical error at line 1, column 10: invalid character '?'",
			code:   mdwerror.CodeLexical,
		},
		{
			name:   "syntax",
			source: "SCENE S:\nCHARACTER C:\nx = 1\nEND_SCENE",
			output: "Syntax error at line 4, column 1:\nexpected ';' after assignment",
			code:   mdwerror.CodeSyntax,
		},
		{
			name:   "semantic",
			source: "SCENE S:\nCHARACTER C:\nREAD x;\nEND_SCENE",
			output: "Semantic error at line 3, column 6:\nvariable 'x' is not declared",
			code:   mdwerror.CodeSemantic,
		},
		{
			name:   "runtime type",
			source: monologue,
			inputs: []string{"Horatio", "many"},
			output: "Runtime error:\ntype error: variable 'count' is INTEGER but received 'many'",
			code:   mdwerror.CodeRuntimeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := newEngine().Run(context.Background(), tt.source, tt.inputs)
			if report.Status != StatusError || report.Output != tt.output || report.Code != tt.code {
				t.Errorf("Run() = %+v", report)
			}
			if report.Variables != nil {
				t.Error("failed runs must not report variables")
			}
		})
	}
}

func TestRunToCompletionCancelled(t *testing.T) {
	engine := newEngine()
	program, err := engine.Compile(monologue)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.RunToCompletion(ctx, program, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want mdwerror.Code
	}{
		{nil, ""},
		{&lexer.Error{Message: "x"}, mdwerror.CodeLexical},
		{&parser.SyntaxError{Message: "x"}, mdwerror.CodeSyntax},
		{fmt.Errorf("wrapped: %w", &parser.SemanticError{Message: "x"}), mdwerror.CodeSemantic},
		{&interpreter.TypeError{Variable: "x"}, mdwerror.CodeRuntimeType},
		{&interpreter.EvalError{Message: "x"}, mdwerror.CodeRuntimeEval},
		{context.DeadlineExceeded, mdwerror.CodeTimeout},
		{mdwerror.New("gone").WithCode(mdwerror.CodeSessionNotFound), mdwerror.CodeSessionNotFound},
		{errors.New("boom"), mdwerror.CodeUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
