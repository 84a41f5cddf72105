// File: token.go
// Title: Scene Token Definitions
// Description: Token types, the Token value and the keyword table of the
//              scene language. Keywords are case-sensitive.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial token set

package lexer

import (
	"fmt"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Identifiers and literals
	TokenIdentifier // name, _x1 after a letter
	TokenInteger    // 42
	TokenReal       // 3.14
	TokenText       // "text literal"

	// Structure keywords
	TokenScene     // SCENE
	TokenCharacter // CHARACTER
	TokenMemory    // MEMORY
	TokenEndMemory // END_MEMORY
	TokenEndScene  // END_SCENE

	// Command keywords
	TokenRead // READ
	TokenSays // SAYS

	// Type keywords
	TokenTypeText    // TEXT
	TokenTypeInteger // INTEGER
	TokenTypeReal    // REAL

	// Operators
	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenCaret  // ^
	TokenAssign // =

	// Delimiters
	TokenColon        // :
	TokenSemicolon    // ;
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenComma        // ,
	TokenDot          // .
	TokenBang         // !
	TokenGreater      // >
	TokenQuote        // '
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenIllegal:      "ILLEGAL",
	TokenIdentifier:   "IDENTIFIER",
	TokenInteger:      "INTEGER_LITERAL",
	TokenReal:         "REAL_LITERAL",
	TokenText:         "TEXT_LITERAL",
	TokenScene:        "SCENE",
	TokenCharacter:    "CHARACTER",
	TokenMemory:       "MEMORY",
	TokenEndMemory:    "END_MEMORY",
	TokenEndScene:     "END_SCENE",
	TokenRead:         "READ",
	TokenSays:         "SAYS",
	TokenTypeText:     "TEXT",
	TokenTypeInteger:  "INTEGER",
	TokenTypeReal:     "REAL",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenCaret:        "CARET",
	TokenAssign:       "ASSIGN",
	TokenColon:        "COLON",
	TokenSemicolon:    "SEMICOLON",
	TokenLeftParen:    "LEFT_PAREN",
	TokenRightParen:   "RIGHT_PAREN",
	TokenLeftBracket:  "LEFT_BRACKET",
	TokenRightBracket: "RIGHT_BRACKET",
	TokenLeftBrace:    "LEFT_BRACE",
	TokenRightBrace:   "RIGHT_BRACE",
	TokenComma:        "COMMA",
	TokenDot:          "DOT",
	TokenBang:         "BANG",
	TokenGreater:      "GREATER",
	TokenQuote:        "QUOTE",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// MarshalText renders the type name in JSON output
func (tt TokenType) MarshalText() ([]byte, error) {
	return []byte(tt.String()), nil
}

// IsKeyword reports whether the token type is a reserved word
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenScene && tt <= TokenTypeReal
}

// IsTypeKeyword reports whether the token type names a variable type
func (tt TokenType) IsTypeKeyword() bool {
	return tt == TokenTypeText || tt == TokenTypeInteger || tt == TokenTypeReal
}

// Token represents a lexical token with position information.
// Tokens are immutable once produced.
type Token struct {
	Type   TokenType `json:"type"`
	Lexeme string    `json:"lexeme"`
	Line   int       `json:"line"`
	Column int       `json:"column"`
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF at %d:%d", t.Line, t.Column)
	default:
		return fmt.Sprintf("%s(%s) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
	}
}

var keywords = map[string]TokenType{
	"SCENE":      TokenScene,
	"CHARACTER":  TokenCharacter,
	"MEMORY":     TokenMemory,
	"END_MEMORY": TokenEndMemory,
	"END_SCENE":  TokenEndScene,
	"READ":       TokenRead,
	"SAYS":       TokenSays,
	"TEXT":       TokenTypeText,
	"INTEGER":    TokenTypeInteger,
	"REAL":       TokenTypeReal,
}

// lookupIdent classifies a word as keyword or identifier
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// IsKeyword reports whether s is a reserved word
func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

var punctuation = map[rune]TokenType{
	'+':  TokenPlus,
	'-':  TokenMinus,
	'*':  TokenStar,
	'/':  TokenSlash,
	'^':  TokenCaret,
	'=':  TokenAssign,
	':':  TokenColon,
	';':  TokenSemicolon,
	'(':  TokenLeftParen,
	')':  TokenRightParen,
	'[':  TokenLeftBracket,
	']':  TokenRightBracket,
	'{':  TokenLeftBrace,
	'}':  TokenRightBrace,
	',':  TokenComma,
	'.':  TokenDot,
	'!':  TokenBang,
	'>':  TokenGreater,
	'\'': TokenQuote,
}
