// File: parser.go
// Title: Scene Recursive Descent Parser
// Description: Converts a token list into a Program. Structural rules
//              (exactly one scene, character and memory block) and the
//              say-command character check are enforced while parsing;
//              undeclared variables are found by a post-pass.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial parser implementation

package parser

import (
	"strconv"
	"strings"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene/ast"
	"github.com/msto63/dramatica/foundation/scene/lexer"
)

// DefaultMaxTokens bounds the size of a single program
const DefaultMaxTokens = 100000

// Parser implements recursive descent parsing for scenes.
// A Parser holds no per-parse state and may be shared between goroutines.
type Parser struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger    *mdwlog.Logger
	MaxTokens int
}

// New creates a new scene parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "scene-parser"),
		options: opts,
	}
}

// Parse parses tokens with a default parser
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(Options{}).Parse(tokens)
}

// Parse builds a Program from tokens. The result is either a Program or
// a *SyntaxError / *SemanticError; parsing the same tokens again always
// yields the same error.
func (p *Parser) Parse(tokens []lexer.Token) (*ast.Program, error) {
	if len(tokens) > p.options.MaxTokens {
		return nil, mdwerror.Newf("program exceeds maximum of %d tokens", p.options.MaxTokens).
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("tokens", len(tokens)).
			WithOperation("parser.Parse")
	}

	p.logger.Debug("Starting scene parsing", mdwlog.Fields{
		"tokens": len(tokens),
	})

	st := &state{tokens: tokens}
	program, err := st.parseProgram()
	if err == nil {
		err = checkDeclared(program)
	}
	if err != nil {
		p.logger.Debug("Scene parsing failed", mdwlog.Fields{
			"error": err.Error(),
		})
		return nil, err
	}

	p.logger.Debug("Scene parsing completed successfully", mdwlog.Fields{
		"scene":     program.Scene,
		"character": program.Character.Name,
		"commands":  len(program.Commands),
	})

	return program, nil
}

// state is the cursor of a single parse
type state struct {
	tokens []lexer.Token
	pos    int

	scene     string
	character *ast.Character
}

func (s *state) current() lexer.Token {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return s.eof()
}

func (s *state) peek() lexer.Token {
	if s.pos+1 < len(s.tokens) {
		return s.tokens[s.pos+1]
	}
	return s.eof()
}

// eof synthesizes an end marker for token lists that lack one
func (s *state) eof() lexer.Token {
	tok := lexer.Token{Type: lexer.TokenEOF, Line: 1, Column: 1}
	if n := len(s.tokens); n > 0 {
		last := s.tokens[n-1]
		tok.Line = last.Line
		tok.Column = last.Column + len([]rune(last.Lexeme))
	}
	return tok
}

func (s *state) advance() lexer.Token {
	tok := s.current()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *state) check(tt lexer.TokenType) bool {
	return s.current().Type == tt
}

func (s *state) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	tok := s.current()
	if tok.Type != tt {
		return tok, newSyntaxError(tok, "expected %s", what)
	}
	s.advance()
	return tok, nil
}

func position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// parseProgram parses: SCENE IDENT ':' character command* END_SCENE EOF
func (s *state) parseProgram() (*ast.Program, error) {
	start, err := s.expect(lexer.TokenScene, "SCENE at start of program")
	if err != nil {
		return nil, err
	}
	name, err := s.expect(lexer.TokenIdentifier, "scene name after SCENE")
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenColon, "':' after scene name"); err != nil {
		return nil, err
	}
	s.scene = name.Lexeme

	if err := s.checkStructure(); err != nil {
		return nil, err
	}
	character, err := s.parseCharacter()
	if err != nil {
		return nil, err
	}

	program := &ast.Program{
		Scene:     s.scene,
		Character: character,
		Pos:       position(start),
	}

	for !s.check(lexer.TokenEndScene) {
		if s.check(lexer.TokenEOF) {
			return nil, newSyntaxError(s.current(), "expected END_SCENE before end of input")
		}
		cmd, err := s.parseCommand()
		if err != nil {
			return nil, err
		}
		program.Commands = append(program.Commands, cmd)
	}
	s.advance() // END_SCENE

	if tok := s.current(); tok.Type != lexer.TokenEOF {
		return nil, newSyntaxError(tok, "unexpected token after END_SCENE")
	}

	return program, nil
}

// checkStructure reports the "exactly one" violations that are
// structurally parseable: a second SCENE or a second CHARACTER.
func (s *state) checkStructure() error {
	tok := s.current()
	switch tok.Type {
	case lexer.TokenScene:
		return newSemanticError(tok.Line, tok.Column, "nested SCENE block inside '%s'", s.scene)
	case lexer.TokenCharacter:
		if s.character != nil {
			return newSemanticError(tok.Line, tok.Column, "scene '%s' already has character '%s'",
				s.scene, s.character.Name)
		}
	}
	return nil
}

// parseCharacter parses: CHARACTER IDENT ':' memory?
func (s *state) parseCharacter() (*ast.Character, error) {
	start, err := s.expect(lexer.TokenCharacter, "CHARACTER block after scene header")
	if err != nil {
		return nil, err
	}
	name, err := s.expect(lexer.TokenIdentifier, "character name after CHARACTER")
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenColon, "':' after character name"); err != nil {
		return nil, err
	}

	s.character = &ast.Character{Name: name.Lexeme, Pos: position(start)}
	if s.check(lexer.TokenMemory) {
		if err := s.parseMemory(); err != nil {
			return nil, err
		}
	}
	return s.character, nil
}

// parseMemory parses: MEMORY ':' (IDENT ':' type ';')* END_MEMORY
func (s *state) parseMemory() error {
	s.advance() // MEMORY
	if _, err := s.expect(lexer.TokenColon, "':' after MEMORY"); err != nil {
		return err
	}
	s.character.HasMemory = true

	for !s.check(lexer.TokenEndMemory) {
		tok := s.current()
		switch tok.Type {
		case lexer.TokenEOF:
			return newSyntaxError(tok, "expected END_MEMORY before end of input")
		case lexer.TokenMemory:
			return newSemanticError(tok.Line, tok.Column, "nested MEMORY block")
		case lexer.TokenScene, lexer.TokenCharacter:
			if err := s.checkStructure(); err != nil {
				return err
			}
		}

		decl, err := s.parseDeclaration()
		if err != nil {
			return err
		}
		if prev, ok := s.character.Lookup(decl.Name); ok {
			return newSemanticError(decl.Pos.Line, decl.Pos.Column,
				"variable '%s' already declared at line %d", decl.Name, prev.Pos.Line)
		}
		s.character.Declarations = append(s.character.Declarations, decl)
	}
	s.advance() // END_MEMORY

	return nil
}

// parseDeclaration parses: IDENT ':' type ';'
func (s *state) parseDeclaration() (*ast.Declaration, error) {
	name, err := s.expect(lexer.TokenIdentifier, "variable name or END_MEMORY")
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenColon, "':' after variable name"); err != nil {
		return nil, err
	}

	tok := s.current()
	typ, ok := ast.ParseType(tok.Lexeme)
	if !tok.Type.IsTypeKeyword() || !ok {
		return nil, newSyntaxError(tok, "expected type TEXT, INTEGER or REAL")
	}
	s.advance()

	if _, err := s.expect(lexer.TokenSemicolon, "';' after declaration"); err != nil {
		return nil, err
	}

	return &ast.Declaration{Name: name.Lexeme, Type: typ, Pos: position(name)}, nil
}

// parseCommand dispatches on the first token; an identifier followed by
// SAYS is a say-command, any other identifier starts an assignment.
func (s *state) parseCommand() (ast.Command, error) {
	tok := s.current()
	switch tok.Type {
	case lexer.TokenRead:
		return s.parseRead()
	case lexer.TokenIdentifier:
		if s.peek().Type == lexer.TokenSays {
			return s.parseSay()
		}
		return s.parseAssign()
	case lexer.TokenMemory:
		return nil, newSemanticError(tok.Line, tok.Column, "character '%s' already has a MEMORY block",
			s.character.Name)
	case lexer.TokenScene, lexer.TokenCharacter:
		return nil, s.checkStructure()
	default:
		return nil, newSyntaxError(tok, "expected READ, SAYS or assignment command")
	}
}

func (s *state) parseRead() (ast.Command, error) {
	start := s.advance() // READ
	name, err := s.expect(lexer.TokenIdentifier, "variable name after READ")
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenSemicolon, "';' after READ command"); err != nil {
		return nil, err
	}

	return &ast.ReadCommand{
		Variable:    name.Lexeme,
		VariablePos: position(name),
		Pos:         position(start),
	}, nil
}

func (s *state) parseSay() (ast.Command, error) {
	name := s.advance()
	if name.Lexeme != s.character.Name {
		return nil, newSemanticError(name.Line, name.Column, "character '%s' is not the scene's character '%s'",
			name.Lexeme, s.character.Name)
	}
	s.advance() // SAYS

	expr, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenSemicolon, "';' after SAYS command"); err != nil {
		return nil, err
	}

	return &ast.SayCommand{Character: name.Lexeme, Expr: expr, Pos: position(name)}, nil
}

func (s *state) parseAssign() (ast.Command, error) {
	target := s.advance()
	if _, err := s.expect(lexer.TokenAssign, "'=' or SAYS after identifier"); err != nil {
		return nil, err
	}

	expr, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(lexer.TokenSemicolon, "';' after assignment"); err != nil {
		return nil, err
	}

	return &ast.AssignCommand{Variable: target.Lexeme, Expr: expr, Pos: position(target)}, nil
}

// parseExpression parses: term (('+' | '-') term)*
func (s *state) parseExpression() (*ast.Expression, error) {
	expr := &ast.Expression{Pos: position(s.current())}
	op := ""
	for {
		term, err := s.parseTerm()
		if err != nil {
			return nil, err
		}
		expr.Terms = append(expr.Terms, ast.TermOp{Op: op, Term: term})

		if !s.check(lexer.TokenPlus) && !s.check(lexer.TokenMinus) {
			return expr, nil
		}
		op = s.advance().Lexeme
	}
}

// parseTerm parses: factor (('*' | '/') factor)*
func (s *state) parseTerm() (*ast.Term, error) {
	term := &ast.Term{Pos: position(s.current())}
	op := ""
	for {
		factor, err := s.parseFactor()
		if err != nil {
			return nil, err
		}
		term.Factors = append(term.Factors, ast.FactorOp{Op: op, Factor: factor})

		if !s.check(lexer.TokenStar) && !s.check(lexer.TokenSlash) {
			return term, nil
		}
		op = s.advance().Lexeme
	}
}

// parseFactor parses: element ('^' element)*
// The list is kept flat; right associativity is applied on evaluation.
func (s *state) parseFactor() (*ast.Factor, error) {
	factor := &ast.Factor{Pos: position(s.current())}
	op := ""
	for {
		element, err := s.parseElement()
		if err != nil {
			return nil, err
		}
		factor.Elements = append(factor.Elements, ast.ElementOp{Op: op, Element: element})

		if !s.check(lexer.TokenCaret) {
			return factor, nil
		}
		op = s.advance().Lexeme
	}
}

// parseElement parses: IDENT | INT_LIT | REAL_LIT | TEXT_LIT | '(' expression ')'
func (s *state) parseElement() (ast.Element, error) {
	tok := s.current()
	pos := position(tok)

	switch tok.Type {
	case lexer.TokenIdentifier:
		s.advance()
		return &ast.Identifier{Name: tok.Lexeme, Pos: pos}, nil

	case lexer.TokenInteger:
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, newSyntaxError(tok, "integer literal out of range")
		}
		s.advance()
		return &ast.IntegerLiteral{Value: value, Pos: pos}, nil

	case lexer.TokenReal:
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, newSyntaxError(tok, "real literal out of range")
		}
		s.advance()
		return &ast.RealLiteral{Value: value, Raw: tok.Lexeme, Pos: pos}, nil

	case lexer.TokenText:
		s.advance()
		return &ast.TextLiteral{Value: strings.Trim(tok.Lexeme, `"`), Pos: pos}, nil

	case lexer.TokenLeftParen:
		s.advance()
		expr, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(lexer.TokenRightParen, "')' to close group"); err != nil {
			return nil, err
		}
		return &ast.Group{Expr: expr, Pos: pos}, nil

	default:
		return nil, newSyntaxError(tok, "expected identifier, literal or '('")
	}
}

// checkDeclared verifies that every variable named by a command or an
// expression is declared, reporting the first violation in source order.
func checkDeclared(program *ast.Program) error {
	declared := func(name string) bool {
		_, ok := program.Character.Lookup(name)
		return ok
	}
	undeclared := func(name string, pos ast.Position) error {
		return newSemanticError(pos.Line, pos.Column, "variable '%s' is not declared", name)
	}

	var err error
	ast.Inspect(program, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.ReadCommand:
			if !declared(n.Variable) {
				err = undeclared(n.Variable, n.VariablePos)
			}
		case *ast.AssignCommand:
			if !declared(n.Variable) {
				err = undeclared(n.Variable, n.Pos)
			}
		case *ast.Identifier:
			if !declared(n.Name) {
				err = undeclared(n.Name, n.Pos)
			}
		}
		return err == nil
	})
	return err
}
