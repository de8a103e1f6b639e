package interp

import (
	"math"
	"strings"

	"github.com/dimbo4ka/interpreter/token"
	"github.com/dimbo4ka/interpreter/value"
)

// applyBinaryOp implements the arithmetic, comparison, and concatenation
// matrix for every pairing of kinds the language defines an operation for.
// Comparisons between mismatched kinds (other than the string/string and
// list/list specializations) fall through to Number(0), matching the
// literal text of the comparison rule -- including "!=", which is not
// special-cased into "true" despite the kinds genuinely differing.
func applyBinaryOp(op token.Kind, l, r value.Value) (value.Value, error) {
	switch lv := l.(type) {
	case value.Number:
		if rv, ok := r.(value.Number); ok {
			return numberOp(op, lv, rv)
		}
	case *value.String:
		if rv, ok := r.(*value.String); ok {
			return stringOp(op, lv, rv)
		}
		if rv, ok := r.(value.Number); ok {
			return stringNumberOp(op, lv, rv)
		}
	case *value.List:
		if rv, ok := r.(*value.List); ok {
			return listListOp(op, lv, rv)
		}
		if rv, ok := r.(value.Number); ok {
			return listNumberOp(op, lv, rv)
		}
	}

	if isComparisonOp(op) {
		return value.Number(0), nil
	}

	return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
}

func isComparisonOp(op token.Kind) bool {
	switch op {
	case token.Eq, token.NotEq, token.Lt, token.Gt, token.LtEq, token.GtEq:
		return true
	}
	return false
}

func tokenSymbol(op token.Kind) string {
	return op.String()
}

func numberOp(op token.Kind, l, r value.Number) (value.Value, error) {
	switch op {
	case token.Plus:
		return l + r, nil
	case token.Minus:
		return l - r, nil
	case token.Star:
		return l * r, nil
	case token.Slash:
		// IEEE-754 double division: x/0 yields +/-Inf or NaN, never an error.
		return l / r, nil
	case token.Percent:
		return value.Number(math.Mod(float64(l), float64(r))), nil
	case token.Caret:
		return value.Number(math.Pow(float64(l), float64(r))), nil
	case token.Eq:
		return boolNumber(l == r), nil
	case token.NotEq:
		return boolNumber(l != r), nil
	case token.Lt:
		return boolNumber(l < r), nil
	case token.Gt:
		return boolNumber(l > r), nil
	case token.LtEq:
		return boolNumber(l <= r), nil
	case token.GtEq:
		return boolNumber(l >= r), nil
	}
	return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
}

func stringOp(op token.Kind, l, r *value.String) (value.Value, error) {
	switch op {
	case token.Plus:
		return value.NewString(l.Value + r.Value), nil
	case token.Minus:
		// Removes a trailing suffix if rhs is a suffix of lhs, otherwise a
		// no-op -- not a per-character set difference.
		if strings.HasSuffix(l.Value, r.Value) {
			return value.NewString(l.Value[:len(l.Value)-len(r.Value)]), nil
		}
		return value.NewString(l.Value), nil
	case token.Eq:
		return boolNumber(l.Value == r.Value), nil
	case token.NotEq:
		return boolNumber(l.Value != r.Value), nil
	case token.Lt:
		return boolNumber(l.Value < r.Value), nil
	case token.Gt:
		return boolNumber(l.Value > r.Value), nil
	case token.LtEq:
		return boolNumber(l.Value <= r.Value), nil
	case token.GtEq:
		return boolNumber(l.Value >= r.Value), nil
	}
	return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
}

// stringNumberOp implements string repetition: s * n produces
// floor(n*len(s)) bytes, cycling s[i mod len(s)] -- n need not be an
// integer ("ab" * 1.5 == "aba"), but must be non-negative.
func stringNumberOp(op token.Kind, l *value.String, r value.Number) (value.Value, error) {
	if op != token.Star {
		return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
	}
	if r < 0 {
		return nil, newRuntimeError("String repetition count must be non-negative")
	}
	if len(l.Value) == 0 {
		return value.NewString(""), nil
	}
	count := int(math.Floor(float64(r) * float64(len(l.Value))))
	out := make([]byte, count)
	for i := 0; i < count; i++ {
		out[i] = l.Value[i%len(l.Value)]
	}
	return value.NewString(string(out)), nil
}

func listListOp(op token.Kind, l, r *value.List) (value.Value, error) {
	switch op {
	case token.Plus:
		elems := make([]value.Value, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return value.NewList(elems...), nil
	case token.Eq:
		return boolNumber(len(l.Elements) == len(r.Elements)), nil
	case token.NotEq:
		return boolNumber(len(l.Elements) != len(r.Elements)), nil
	case token.Lt:
		return boolNumber(len(l.Elements) < len(r.Elements)), nil
	case token.Gt:
		return boolNumber(len(l.Elements) > len(r.Elements)), nil
	case token.LtEq:
		return boolNumber(len(l.Elements) <= len(r.Elements)), nil
	case token.GtEq:
		return boolNumber(len(l.Elements) >= len(r.Elements)), nil
	}
	return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
}

// listNumberOp implements list repetition, the list analogue of string
// repetition: l * n produces floor(n*len(l)) elements, cycling
// l[i mod len(l)].
func listNumberOp(op token.Kind, l *value.List, r value.Number) (value.Value, error) {
	if op != token.Star {
		return nil, newRuntimeError("Incorrect operands in binary expression: A %s B", tokenSymbol(op))
	}
	if r < 0 {
		return nil, newRuntimeError("List repetition count must be non-negative")
	}
	if len(l.Elements) == 0 {
		return value.NewList(), nil
	}
	count := int(math.Floor(float64(r) * float64(len(l.Elements))))
	elems := make([]value.Value, count)
	for i := 0; i < count; i++ {
		elems[i] = l.Elements[i%len(l.Elements)]
	}
	return value.NewList(elems...), nil
}
