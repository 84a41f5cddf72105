// File: read.go
// Title: Read Validation
// Description: Converts raw input text into a value of the declared type.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial read validation

package interpreter

import (
	"strconv"
	"strings"

	"github.com/msto63/dramatica/foundation/scene/ast"
)

// Convert validates raw input for a variable. Surrounding quote
// characters are stripped first. A nil type accepts anything and yields a
// number when the text looks like one, otherwise text.
func Convert(variable, raw string, declared *ast.Type) (Value, error) {
	clean := strings.Trim(raw, `"'`)

	if declared == nil {
		switch {
		case isInteger(clean):
			if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
				return Integer(i), nil
			}
		case isReal(clean):
			if f, err := strconv.ParseFloat(clean, 64); err == nil {
				return Real(f), nil
			}
		}
		return Text(clean), nil
	}

	mismatch := &TypeError{Variable: variable, Type: *declared, Value: clean}
	switch *declared {
	case ast.TypeInteger:
		if !isInteger(clean) {
			return Value{}, mismatch
		}
		i, err := strconv.ParseInt(clean, 10, 64)
		if err != nil {
			return Value{}, mismatch
		}
		return Integer(i), nil
	case ast.TypeReal:
		if !isInteger(clean) && !isReal(clean) {
			return Value{}, mismatch
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return Value{}, mismatch
		}
		return Real(f), nil
	default:
		return Text(clean), nil
	}
}

// isInteger matches an optional leading '-' followed by digits
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isReal matches an optional leading '-' followed by digits with exactly
// one '.' and at least one digit
func isReal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots == 1
}
