// File: lexer.go
// Title: Scene Lexical Analyzer
// Description: Character-by-character state machine turning scene source
//              into tokens with line/column positions. Lexical errors are
//              collected rather than fatal, and the token list always ends
//              with an EOF token.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial lexer implementation

package lexer

import (
	"fmt"
	"unicode"
)

// Error is a lexical error: an invalid character or an unterminated
// text literal.
type Error struct {
	Message string `json:"message"`
	Lexeme  string `json:"lexeme"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexical error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Lexer tokenizes scene source text
type Lexer struct {
	input    []rune
	position int  // index of ch in input
	readPos  int  // index after ch
	ch       rune // current rune, 0 at end of input
	line     int  // line of ch (1-based)
	column   int  // column of ch in runes (1-based)
	errors   []*Error
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: []rune(input),
		line:  1,
	}
	l.readChar()
	return l
}

// NextToken returns the next token from the input. Invalid input yields a
// TokenIllegal token and records an error; the lexer always advances.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		if l.ch == '/' && l.peekChar() == '/' {
			l.skipComment()
			continue
		}
		break
	}

	line, column := l.line, l.column

	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Line: line, Column: column}
	case l.ch == '"':
		return l.readText()
	case isLetter(l.ch):
		word := l.readIdentifier()
		return Token{Type: lookupIdent(word), Lexeme: word, Line: line, Column: column}
	case isDigit(l.ch):
		return l.readNumber()
	}

	if tt, ok := punctuation[l.ch]; ok {
		tok := Token{Type: tt, Lexeme: string(l.ch), Line: line, Column: column}
		l.readChar()
		return tok
	}

	tok := Token{Type: TokenIllegal, Lexeme: string(l.ch), Line: line, Column: column}
	l.errorf(tok, "invalid character '%s'", tok.Lexeme)
	l.readChar()
	return tok
}

// Tokenize scans the whole input. Illegal tokens are left out of the
// returned list; their errors are returned in source order.
func (l *Lexer) Tokenize() ([]Token, []*Error) {
	var tokens []Token

	for {
		tok := l.NextToken()
		if tok.Type == TokenIllegal {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, l.Errors()
}

// Errors returns the lexical errors collected so far
func (l *Lexer) Errors() []*Error {
	out := make([]*Error, len(l.errors))
	copy(out, l.errors)
	return out
}

// Tokenize is a convenience wrapper around NewLexer(source).Tokenize()
func Tokenize(source string) ([]Token, []*Error) {
	return NewLexer(source).Tokenize()
}

func (l *Lexer) errorf(tok Token, format string, args ...interface{}) {
	l.errors = append(l.errors, &Error{
		Message: fmt.Sprintf(format, args...),
		Lexeme:  tok.Lexeme,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}

	l.position = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.readChar()
	}
}

// skipComment consumes a // comment up to, not including, the newline
func (l *Lexer) skipComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return string(l.input[start:l.position])
}

// readNumber reads an integer or real literal. A '.' joins the literal only
// when a digit follows it; otherwise it is left for the next token.
func (l *Lexer) readNumber() Token {
	tok := Token{Type: TokenInteger, Line: l.line, Column: l.column}
	start := l.position

	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		tok.Type = TokenReal
		l.readChar()
		for !l.atEOF() && isDigit(l.ch) {
			l.readChar()
		}
	}

	tok.Lexeme = string(l.input[start:l.position])
	return tok
}

// readText reads a double-quoted literal. The lexeme keeps both quotes.
// A literal still open at a newline or end of input is one error at the
// opening quote; the newline itself is not consumed.
func (l *Lexer) readText() Token {
	tok := Token{Type: TokenText, Line: l.line, Column: l.column}
	start := l.position
	l.readChar()

	for !l.atEOF() && l.ch != '"' && l.ch != '\n' {
		l.readChar()
	}

	if l.atEOF() || l.ch == '\n' {
		tok.Type = TokenIllegal
		tok.Lexeme = string(l.input[start:l.position])
		l.errorf(tok, "unterminated text literal")
		return tok
	}

	l.readChar()
	tok.Lexeme = string(l.input[start:l.position])
	return tok
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
