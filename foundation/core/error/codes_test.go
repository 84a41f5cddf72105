// File: codes_test.go
// Title: Error Code Tests
// Description: Tests for code validation, categories and HTTP mapping.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-16 v0.2.0: Scene language codes

package error

import (
	"testing"
)

func TestCodeIsValid(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want bool
	}{
		{"lexical", CodeLexical, true},
		{"session", CodeSessionNotFound, true},
		{"unknown string", Code("NOPE"), false},
		{"empty", Code(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsValid(); got != tt.want {
				t.Errorf("Code.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeCategory(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeLexical, "lexical"},
		{CodeSyntax, "syntax"},
		{CodeSemantic, "semantic"},
		{CodeRuntimeType, "runtime"},
		{CodeRuntimeEval, "runtime"},
		{CodeSessionNotFound, "session"},
		{CodeValidationFailed, "validation"},
		{CodeInternal, "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.want {
				t.Errorf("Code.Category() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeSessionNotFound, 404},
		{CodeSyntax, 400},
		{CodeValidationFailed, 400},
		{CodeRuntimeType, 422},
		{CodeDatabaseError, 503},
		{CodeUnknown, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("Code.HTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	if GetSeverityFromCode(CodeSyntax) != SeverityLow {
		t.Error("syntax errors should be low severity")
	}
	if !GetSeverityFromCode(CodeDatabaseError).ShouldAlert() {
		t.Error("database errors should alert")
	}
	if SeverityCritical.String() != "critical" {
		t.Errorf("String() = %q", SeverityCritical.String())
	}
	if Severity(42).String() != "unknown" {
		t.Errorf("String() = %q", Severity(42).String())
	}
}
