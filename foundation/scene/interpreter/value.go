// File: value.go
// Title: Runtime Values
// Description: Tagged union of TEXT, INTEGER and REAL values and the
//              arithmetic defined on them.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial value type

package interpreter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/msto63/dramatica/foundation/scene/ast"
)

// Kind identifies which member of the Value union is set
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
)

// String returns the type keyword of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind name in JSON output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf maps a declared type to the kind of its values
func KindOf(t ast.Type) Kind {
	switch t {
	case ast.TypeInteger:
		return KindInteger
	case ast.TypeReal:
		return KindReal
	default:
		return KindText
	}
}

// ParseKind maps a type keyword to a Kind
func ParseKind(s string) (Kind, bool) {
	t, ok := ast.ParseType(s)
	if !ok {
		return 0, false
	}
	return KindOf(t), true
}

// Value is an immutable runtime value. The zero Value is empty text.
type Value struct {
	kind    Kind
	text    string
	integer int64
	real    float64
}

// Text creates a TEXT value
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Integer creates an INTEGER value
func Integer(i int64) Value { return Value{kind: KindInteger, integer: i} }

// Real creates a REAL value
func Real(f float64) Value { return Value{kind: KindReal, real: f} }

// Default returns the initial value of a declared type
func Default(t ast.Type) Value {
	switch KindOf(t) {
	case KindInteger:
		return Integer(0)
	case KindReal:
		return Real(0)
	default:
		return Text("")
	}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether the value is INTEGER or REAL
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindInteger, KindReal:
		return true
	default:
		return false
	}
}

// Float returns the numeric value as float64; text yields 0
func (v Value) Float() float64 {
	switch v.kind {
	case KindInteger:
		return float64(v.integer)
	case KindReal:
		return v.real
	default:
		return 0
	}
}

// String renders the value: integers in decimal, reals always with a
// fractional part, text verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindReal:
		return formatReal(v.real)
	default:
		return v.text
	}
}

// Interface returns the value as string, int64 or float64
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInteger:
		return v.integer
	case KindReal:
		return v.real
	default:
		return v.text
	}
}

// MarshalJSON encodes text as a JSON string and numbers as JSON numbers.
// Reals keep their fractional part so 2.0 stays distinguishable from 2.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return []byte(strconv.FormatInt(v.integer, 10)), nil
	case KindReal:
		if math.IsInf(v.real, 0) || math.IsNaN(v.real) {
			return json.Marshal(formatReal(v.real))
		}
		return []byte(formatReal(v.real)), nil
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON reverses MarshalJSON: strings are TEXT, numbers with a
// fraction or exponent are REAL, other numbers INTEGER.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case !strings.ContainsAny(raw, ".eE"):
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			*v = Integer(i)
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("decode value %s: %w", raw, err)
	}
	*v = Real(f)
	return nil
}

// Restore rebuilds a value from its kind and rendered form
func Restore(kind Kind, rendered string) (Value, error) {
	switch kind {
	case KindText:
		return Text(rendered), nil
	case KindInteger:
		i, err := strconv.ParseInt(rendered, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("restore INTEGER %q: %w", rendered, err)
		}
		return Integer(i), nil
	case KindReal:
		f, err := strconv.ParseFloat(rendered, 64)
		if err != nil {
			return Value{}, fmt.Errorf("restore REAL %q: %w", rendered, err)
		}
		return Real(f), nil
	default:
		return Value{}, fmt.Errorf("restore: unknown kind %d", int(kind))
	}
}

func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// Add concatenates when either operand is text, otherwise adds
func Add(a, b Value) (Value, error) {
	if a.kind == KindText || b.kind == KindText {
		return Text(a.String() + b.String()), nil
	}
	return Arithmetic("+", a, b)
}

// Arithmetic applies a numeric operator: '+', '-', '*', '/' or '^'.
// INTEGER op REAL promotes to REAL, '/' always yields REAL, and '^'
// stays INTEGER only for a non-negative INTEGER exponent.
func Arithmetic(op string, a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, &EvalError{Message: fmt.Sprintf("operator '%s' cannot be applied to text", op)}
	}
	bothInt := a.kind == KindInteger && b.kind == KindInteger

	switch op {
	case "+":
		if bothInt {
			return checked(addInt(a.integer, b.integer))
		}
		return Real(a.Float() + b.Float()), nil
	case "-":
		if bothInt {
			return checked(subInt(a.integer, b.integer))
		}
		return Real(a.Float() - b.Float()), nil
	case "*":
		if bothInt {
			return checked(mulInt(a.integer, b.integer))
		}
		return Real(a.Float() * b.Float()), nil
	case "/":
		if b.Float() == 0 {
			return Value{}, &EvalError{Message: "division by zero"}
		}
		return Real(a.Float() / b.Float()), nil
	case "^":
		if bothInt && b.integer >= 0 {
			return checked(intPow(a.integer, b.integer))
		}
		if a.Float() == 0 && b.Float() < 0 {
			return Value{}, &EvalError{Message: "division by zero"}
		}
		return Real(math.Pow(a.Float(), b.Float())), nil
	default:
		return Value{}, &EvalError{Message: fmt.Sprintf("unsupported operator '%s'", op)}
	}
}

// errIntegerOverflow is reported when an INTEGER result leaves the int64 range
var errIntegerOverflow = &EvalError{Message: "integer overflow"}

func checked(n int64, ok bool) (Value, error) {
	if !ok {
		return Value{}, errIntegerOverflow
	}
	return Integer(n), nil
}

func addInt(a, b int64) (int64, bool) {
	s := a + b
	return s, (b >= 0) == (s >= a)
}

func subInt(a, b int64) (int64, bool) {
	d := a - b
	return d, (b >= 0) == (d <= a)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return p, false
	}
	return p, p/b == a
}

func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}
