// File: codes.go
// Title: Error Codes
// Description: Structured error codes for the scene language pipeline and
//              the services around it, with category and HTTP mappings.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-16 v0.2.0: Replaced platform codes with scene language codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Scene language pipeline
	CodeLexical     Code = "LEXICAL"
	CodeSyntax      Code = "SYNTAX"
	CodeSemantic    Code = "SEMANTIC"
	CodeRuntimeType Code = "RUNTIME_TYPE"
	CodeRuntimeEval Code = "RUNTIME_EVAL"

	// Sessions and storage
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeDatabaseError   Code = "DATABASE_ERROR"

	// Configuration and validation
	CodeConfigError      Code = "CONFIG_ERROR"
	CodeValidationFailed Code = "VALIDATION_FAILED"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput, CodeTimeout,
		CodeLexical, CodeSyntax, CodeSemantic, CodeRuntimeType, CodeRuntimeEval,
		CodeSessionNotFound, CodeDatabaseError,
		CodeConfigError, CodeValidationFailed:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code.
// Language categories match the labels reported by the analyze endpoint.
func (c Code) Category() string {
	switch c {
	case CodeLexical:
		return "lexical"
	case CodeSyntax:
		return "syntax"
	case CodeSemantic:
		return "semantic"
	case CodeRuntimeType, CodeRuntimeEval:
		return "runtime"
	case CodeSessionNotFound, CodeDatabaseError:
		return "session"
	case CodeConfigError:
		return "configuration"
	case CodeInvalidInput, CodeValidationFailed:
		return "validation"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSessionNotFound:
		return 404
	case CodeInvalidInput, CodeValidationFailed, CodeLexical, CodeSyntax, CodeSemantic:
		return 400
	case CodeRuntimeType, CodeRuntimeEval:
		return 422
	case CodeTimeout:
		return 408
	case CodeDatabaseError:
		return 503
	default:
		return 500
	}
}
