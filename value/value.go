// Package value defines the tagged runtime value union: Nil, Number,
// String, List, and Function.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the runtime datum. Its methods are exported (unlike the
// teacher's unexported Atom.SkimAtom marker) so that interp.Function, which
// lives in a different package, can satisfy the interface too.
type Value interface {
	// Stringify renders v the way print/to_string render it: strings are
	// quoted except when topLevel is set, matching the "strings inside
	// lists are quoted, strings at top level via print are not" rule.
	Stringify(topLevel bool) string
	// Truthy implements the language's boolean-coercion rule.
	Truthy() bool
}

type Nil struct{}

func (Nil) Truthy() bool          { return false }
func (Nil) Stringify(bool) string { return "nil" }

type Number float64

func (n Number) Truthy() bool { return float64(n) != 0 }
func (n Number) Stringify(bool) string {
	return FormatNumber(float64(n))
}

// FormatNumber implements the canonical stringify rule for numbers:
// integer-valued numbers print without a decimal point (via a signed
// 64-bit cast, matching the original implementation's conversion), anything
// else uses the platform's default double formatting.
func FormatNumber(f float64) string {
	if math.Floor(f) == f && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String is a reference to a shared, mutable byte buffer. Operators treat
// strings as value-semantic (they allocate a new *String), except
// capitalize, which mutates the referenced buffer in place -- the one
// documented aliasing hazard in the language (see SPEC_FULL.md).
type String struct {
	Value string
}

func NewString(s string) *String { return &String{Value: s} }

func (s *String) Truthy() bool { return len(s.Value) > 0 }
func (s *String) Stringify(topLevel bool) string {
	if topLevel {
		return s.Value
	}
	return `"` + s.Value + `"`
}

// List is a growable, reference-shared sequence of Values.
type List struct {
	Elements []Value
}

func NewList(elems ...Value) *List { return &List{Elements: elems} }

func (l *List) Truthy() bool { return len(l.Elements) > 0 }
func (l *List) Stringify(bool) string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Stringify(false)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Function is declared in package interp (it carries the function's AST
// parameter list and body, which only the evaluator runs, and interp already
// imports value). interp.Function implements Value and FunctionValue the
// same way Nil/Number/*String/*List implement Value.

// FunctionValue is implemented by interp.Function; it lets package value
// recognize a function-kind Value without importing interp.
type FunctionValue interface {
	Value
	IsFunction()
}

// Kind returns a short, lowercase name for v's dynamic type, used in error
// messages.
func Kind(v Value) string {
	switch v.(type) {
	case Nil:
		return "nil"
	case Number:
		return "number"
	case *String:
		return "string"
	case *List:
		return "list"
	case FunctionValue:
		return "function"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal reports whether a and b are the same kind and value: numbers and
// strings by value, lists by size (as the language's "==" compares them).
// Unlike the language's "==" operator (interp's applyBinaryOp), Equal also
// treats two nils as equal and any two function values as equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case Nil:
		_, ok := b.(Nil)
		return ok
	case *List:
		bv, ok := b.(*List)
		return ok && len(av.Elements) == len(bv.Elements)
	}
	if _, ok := a.(FunctionValue); ok {
		_, ok := b.(FunctionValue)
		return ok
	}
	return false
}
