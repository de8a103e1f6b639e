package interp

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dimbo4ka/interpreter/ast"
	"github.com/dimbo4ka/interpreter/value"
)

// evalBuiltin evaluates a call to one of the fixed built-in names the
// parser resolved at parse time. Each built-in enforces its own arity and
// argument-type contract from SPEC_FULL.md's built-in table.
func (e *Evaluator) evalBuiltin(n *ast.GlobalFunctionCall) (value.Value, error) {
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case ast.GlobalPrint:
		return e.builtinPrint(args, false)
	case ast.GlobalPrintln:
		return e.builtinPrint(args, true)
	case ast.GlobalLen:
		return e.builtinLen(args)
	case ast.GlobalRead:
		return e.builtinRead(args)
	case ast.GlobalStackTrace:
		return e.builtinStackTrace(args)
	case ast.GlobalLower:
		return stringBuiltin(args, "lower", strings.ToLower)
	case ast.GlobalUpper:
		return stringBuiltin(args, "upper", strings.ToUpper)
	case ast.GlobalSplit:
		return builtinSplit(args)
	case ast.GlobalJoin:
		return builtinJoin(args)
	case ast.GlobalReplace:
		return builtinReplace(args)
	case ast.GlobalCapitalize:
		return builtinCapitalize(args)
	case ast.GlobalAbs:
		return numericBuiltin(args, "abs", math.Abs)
	case ast.GlobalSqrt:
		return numericBuiltin(args, "sqrt", math.Sqrt)
	case ast.GlobalCeil:
		return numericBuiltin(args, "ceil", math.Ceil)
	case ast.GlobalFloor:
		return numericBuiltin(args, "floor", math.Floor)
	case ast.GlobalRound:
		return numericBuiltin(args, "round", math.Round)
	case ast.GlobalRnd:
		return e.builtinRnd(args)
	case ast.GlobalParseNum:
		return builtinParseNum(args)
	case ast.GlobalToString:
		return builtinToString(args)
	case ast.GlobalRange:
		return builtinRange(args)
	case ast.GlobalPush:
		return builtinPush(args)
	case ast.GlobalPop:
		return builtinPop(args)
	case ast.GlobalInsert:
		return builtinInsert(args)
	case ast.GlobalRemove:
		return builtinRemove(args)
	case ast.GlobalSort:
		return builtinSort(args)
	case ast.GlobalSlice:
		return builtinSlice(args)
	}
	return nil, newRuntimeError("unimplemented built-in %q", n.Name)
}

func checkArity(name string, args []value.Value, want int) error {
	if len(args) != want {
		return newRuntimeError("%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func asNumber(name string, v value.Value) (value.Number, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, newRuntimeError("%s expects a number, got %s", name, value.Kind(v))
	}
	return n, nil
}

func asString(name string, v value.Value) (*value.String, error) {
	s, ok := v.(*value.String)
	if !ok {
		return nil, newRuntimeError("%s expects a string, got %s", name, value.Kind(v))
	}
	return s, nil
}

func asList(name string, v value.Value) (*value.List, error) {
	l, ok := v.(*value.List)
	if !ok {
		return nil, newRuntimeError("%s expects a list, got %s", name, value.Kind(v))
	}
	return l, nil
}

func (e *Evaluator) builtinPrint(args []value.Value, newline bool) (value.Value, error) {
	if err := checkArity("print", args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(e.out, args[0].Stringify(true))
	if newline {
		fmt.Fprintln(e.out)
	}
	return value.Nil{}, nil
}

func (e *Evaluator) builtinRead(args []value.Value) (value.Value, error) {
	if err := checkArity("read", args, 0); err != nil {
		return nil, err
	}
	line, err := e.in.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if err != nil && line == "" {
		return value.Nil{}, nil
	}
	return value.NewString(line), nil
}

func (e *Evaluator) builtinStackTrace(args []value.Value) (value.Value, error) {
	if err := checkArity("stacktrace", args, 0); err != nil {
		return nil, err
	}
	top := e.scopes[len(e.scopes)-1]
	names := make([]string, 0, len(top.vars))
	for name := range top.vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, top.vars[name].Stringify(false))
	}
	return value.NewString(b.String()), nil
}

func builtinLenOf(v value.Value) (int, error) {
	switch x := v.(type) {
	case *value.String:
		return len(x.Value), nil
	case *value.List:
		return len(x.Elements), nil
	}
	return 0, newRuntimeError("len expects a string or list, got %s", value.Kind(v))
}

func (e *Evaluator) builtinLen(args []value.Value) (value.Value, error) {
	if err := checkArity("len", args, 1); err != nil {
		return nil, err
	}
	n, err := builtinLenOf(args[0])
	if err != nil {
		return nil, err
	}
	return value.Number(n), nil
}

func stringBuiltin(args []value.Value, name string, f func(string) string) (value.Value, error) {
	if err := checkArity(name, args, 1); err != nil {
		return nil, err
	}
	s, err := asString(name, args[0])
	if err != nil {
		return nil, err
	}
	return value.NewString(f(s.Value)), nil
}

// builtinCapitalize upper-cases only the first byte of the shared string
// and mutates it in place -- not a full-string case change.
func builtinCapitalize(args []value.Value) (value.Value, error) {
	if err := checkArity("capitalize", args, 1); err != nil {
		return nil, err
	}
	s, err := asString("capitalize", args[0])
	if err != nil {
		return nil, err
	}
	if len(s.Value) > 0 {
		b := []byte(s.Value)
		b[0] = byte(strings.ToUpper(string(b[0]))[0])
		s.Value = string(b)
	}
	return s, nil
}

func builtinSplit(args []value.Value) (value.Value, error) {
	if err := checkArity("split", args, 2); err != nil {
		return nil, err
	}
	s, err := asString("split", args[0])
	if err != nil {
		return nil, err
	}
	sep, err := asString("split", args[1])
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s.Value, sep.Value)
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.NewString(p)
	}
	return value.NewList(elems...), nil
}

func builtinJoin(args []value.Value) (value.Value, error) {
	if err := checkArity("join", args, 2); err != nil {
		return nil, err
	}
	list, err := asList("join", args[0])
	if err != nil {
		return nil, err
	}
	sep, err := asString("join", args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(list.Elements))
	for i, el := range list.Elements {
		parts[i] = el.Stringify(true)
	}
	return value.NewString(strings.Join(parts, sep.Value)), nil
}

func builtinReplace(args []value.Value) (value.Value, error) {
	if err := checkArity("replace", args, 3); err != nil {
		return nil, err
	}
	s, err := asString("replace", args[0])
	if err != nil {
		return nil, err
	}
	old, err := asString("replace", args[1])
	if err != nil {
		return nil, err
	}
	newS, err := asString("replace", args[2])
	if err != nil {
		return nil, err
	}
	return value.NewString(strings.ReplaceAll(s.Value, old.Value, newS.Value)), nil
}

func numericBuiltin(args []value.Value, name string, f func(float64) float64) (value.Value, error) {
	if err := checkArity(name, args, 1); err != nil {
		return nil, err
	}
	n, err := asNumber(name, args[0])
	if err != nil {
		return nil, err
	}
	return value.Number(f(float64(n))), nil
}

// builtinRnd type-checks its argument but ignores its value, matching the
// original's ExecuteOperationForNumber contract applied to a PRNG.
func (e *Evaluator) builtinRnd(args []value.Value) (value.Value, error) {
	if err := checkArity("rnd", args, 1); err != nil {
		return nil, err
	}
	if _, err := asNumber("rnd", args[0]); err != nil {
		return nil, err
	}
	return value.Number(e.rng.Int63()), nil
}

func builtinParseNum(args []value.Value) (value.Value, error) {
	if err := checkArity("parse_num", args, 1); err != nil {
		return nil, err
	}
	s, err := asString("parse_num", args[0])
	if err != nil {
		return nil, err
	}
	f, parseErr := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
	if parseErr != nil || strings.TrimSpace(s.Value) != s.Value {
		return value.Nil{}, nil
	}
	return value.Number(f), nil
}

func builtinToString(args []value.Value) (value.Value, error) {
	if err := checkArity("to_string", args, 1); err != nil {
		return nil, err
	}
	return value.NewString(args[0].Stringify(false)), nil
}

func builtinRange(args []value.Value) (value.Value, error) {
	if err := checkArity("range", args, 3); err != nil {
		return nil, err
	}
	a, err := asNumber("range", args[0])
	if err != nil {
		return nil, err
	}
	b, err := asNumber("range", args[1])
	if err != nil {
		return nil, err
	}
	step, err := asNumber("range", args[2])
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, newRuntimeError("range step must not be zero")
	}
	if (step > 0 && a > b) || (step < 0 && a < b) {
		return nil, newRuntimeError("range step sign must match the direction from start to end")
	}

	var elems []value.Value
	if step > 0 {
		for x := a; x < b; x += step {
			elems = append(elems, value.Number(x))
		}
	} else {
		for x := a; x > b; x += step {
			elems = append(elems, value.Number(x))
		}
	}
	return value.NewList(elems...), nil
}

func builtinPush(args []value.Value) (value.Value, error) {
	if err := checkArity("push", args, 2); err != nil {
		return nil, err
	}
	list, err := asList("push", args[0])
	if err != nil {
		return nil, err
	}
	list.Elements = append(list.Elements, args[1])
	return list, nil
}

func builtinPop(args []value.Value) (value.Value, error) {
	if err := checkArity("pop", args, 1); err != nil {
		return nil, err
	}
	list, err := asList("pop", args[0])
	if err != nil {
		return nil, err
	}
	if len(list.Elements) == 0 {
		return nil, newRuntimeError("pop from an empty list")
	}
	list.Elements = list.Elements[:len(list.Elements)-1]
	return list, nil
}

// normalizeIndex converts a possibly-negative, possibly-fractional index
// argument to an integer list index. Negative indices count from the end;
// only slice/index expressions get this treatment.
func normalizeIndex(name string, v value.Value, length int) (int, error) {
	n, err := asNumber(name, v)
	if err != nil {
		return 0, err
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	return i, nil
}

// rawIndex converts an index argument literally, without wrapping
// negatives: insert/remove and string indexing/slicing take the index as-is,
// matching the original's size_t cast (a negative index becomes a huge
// out-of-range value rather than counting from the end).
func rawIndex(name string, v value.Value) (int, error) {
	n, err := asNumber(name, v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func builtinInsert(args []value.Value) (value.Value, error) {
	if err := checkArity("insert", args, 3); err != nil {
		return nil, err
	}
	list, err := asList("insert", args[0])
	if err != nil {
		return nil, err
	}
	i, err := rawIndex("insert", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i > len(list.Elements) {
		return nil, newRuntimeError("insert index out of range")
	}
	list.Elements = append(list.Elements, nil)
	copy(list.Elements[i+1:], list.Elements[i:])
	list.Elements[i] = args[2]
	return list, nil
}

func builtinRemove(args []value.Value) (value.Value, error) {
	if err := checkArity("remove", args, 2); err != nil {
		return nil, err
	}
	list, err := asList("remove", args[0])
	if err != nil {
		return nil, err
	}
	i, err := rawIndex("remove", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(list.Elements) {
		return nil, newRuntimeError("remove index out of range")
	}
	list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
	return list, nil
}

func builtinSort(args []value.Value) (value.Value, error) {
	if err := checkArity("sort", args, 1); err != nil {
		return nil, err
	}
	list, err := asList("sort", args[0])
	if err != nil {
		return nil, err
	}
	if len(list.Elements) == 0 {
		return list, nil
	}

	var sortErr error
	switch list.Elements[0].(type) {
	case value.Number:
		sortErr = sortBy(list, func(a, b value.Value) bool {
			return a.(value.Number) < b.(value.Number)
		}, func(v value.Value) bool { _, ok := v.(value.Number); return ok })
	case *value.String:
		sortErr = sortBy(list, func(a, b value.Value) bool {
			return a.(*value.String).Value < b.(*value.String).Value
		}, func(v value.Value) bool { _, ok := v.(*value.String); return ok })
	case *value.List:
		sortErr = sortBy(list, func(a, b value.Value) bool {
			return len(a.(*value.List).Elements) < len(b.(*value.List).Elements)
		}, func(v value.Value) bool { _, ok := v.(*value.List); return ok })
	default:
		return nil, newRuntimeError("sort cannot order elements of kind %s", value.Kind(list.Elements[0]))
	}
	if sortErr != nil {
		return nil, sortErr
	}
	return list, nil
}

func sortBy(list *value.List, less func(a, b value.Value) bool, isKind func(value.Value) bool) error {
	for _, el := range list.Elements {
		if !isKind(el) {
			return newRuntimeError("sort requires homogeneous elements")
		}
	}
	sort.SliceStable(list.Elements, func(i, j int) bool {
		return less(list.Elements[i], list.Elements[j])
	})
	return nil
}

// builtinSlice backs both index and slice postfix expressions, lowered by
// the parser into a 2-4 argument call: target, plus 1-3 colon-separated
// components (the sentinel marks an omitted component).
func builtinSlice(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, newRuntimeError("slice expects 2 to 4 arguments, got %d", len(args))
	}

	switch target := args[0].(type) {
	case *value.List:
		return sliceList(target, args[1:])
	case *value.String:
		return sliceString(target, args[1:])
	}
	return nil, newRuntimeError("slice expects a list or string, got %s", value.Kind(args[0]))
}

func isSentinel(v value.Value) bool {
	n, ok := v.(value.Number)
	return ok && float64(n) == sliceSentinelValue
}

// sliceSentinelValue mirrors parser.sliceSentinel; duplicated here rather
// than exported across packages, since both sides must agree on one fixed
// bit pattern, not on a shared symbol.
const sliceSentinelValue = 2.2250738585072014e-308

func sliceList(l *value.List, components []value.Value) (value.Value, error) {
	n := len(l.Elements)
	if len(components) == 1 {
		i, err := normalizeIndex("slice", components[0], n)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= n {
			return nil, newRuntimeError("list index out of range")
		}
		return l.Elements[i], nil
	}

	// start is inclusive, stop is exclusive (the spec's "[i, j-1] inclusive"
	// phrasing for the 2-arg form is the same range as a python-style
	// a[i:j]).
	if empty, err := listMixedSignEmpty(components); err != nil {
		return nil, err
	} else if empty {
		return value.NewList(), nil
	}

	start, stop, step, err := sliceBounds(components, n)
	if err != nil {
		return nil, err
	}

	var elems []value.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			if i >= 0 && i < n {
				elems = append(elems, l.Elements[i])
			}
		}
	} else {
		for i := start; i > stop; i += step {
			if i >= 0 && i < n {
				elems = append(elems, l.Elements[i])
			}
		}
	}
	return value.NewList(elems...), nil
}

// listMixedSignEmpty reports whether a 2- or 3-component list slice has
// endpoints of opposite sign (checked on the raw, pre-normalization index
// values, with the stop endpoint read as j-1 per the list slice's inclusive
// convention): such a slice yields an empty list rather than wrapping one
// side around the list's length. An omitted (sentinel) endpoint has no sign
// and never makes the slice empty.
func listMixedSignEmpty(components []value.Value) (bool, error) {
	if isSentinel(components[0]) || isSentinel(components[1]) {
		return false, nil
	}
	start, err := asNumber("slice", components[0])
	if err != nil {
		return false, err
	}
	stop, err := asNumber("slice", components[1])
	if err != nil {
		return false, err
	}
	end := stop - 1
	if start > 0 && end < 0 {
		return true, nil
	}
	if start < 0 && end > 0 {
		return true, nil
	}
	return false, nil
}

// sliceString indexes/slices a string literally: unlike lists, strings do
// not support negative indices (the original slices via substr(size_t),
// which throws on a negative position rather than counting from the end).
func sliceString(s *value.String, components []value.Value) (value.Value, error) {
	n := len(s.Value)
	if len(components) == 1 {
		i, err := rawIndex("slice", components[0])
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= n {
			return nil, newRuntimeError("string index out of range")
		}
		return value.NewString(string(s.Value[i])), nil
	}

	i, err := rawIndex("slice", components[0])
	if err != nil {
		return nil, err
	}
	if i < 0 || i > n {
		return nil, newRuntimeError("string index out of range")
	}
	var j int
	if isSentinel(components[1]) {
		j = n
	} else {
		j, err = rawIndex("slice", components[1])
		if err != nil {
			return nil, err
		}
	}
	if j > n {
		j = n
	}
	if i >= j {
		return value.NewString(""), nil
	}
	return value.NewString(s.Value[i:j]), nil
}

// sliceBounds resolves a 2- or 3-component list slice (start inclusive,
// stop exclusive, optional step) honoring the sentinel for omitted
// endpoints.
func sliceBounds(components []value.Value, n int) (start, stop, step int, err error) {
	step = 1
	if len(components) == 3 && !isSentinel(components[2]) {
		stepNum, err := asNumber("slice", components[2])
		if err != nil {
			return 0, 0, 0, err
		}
		step = int(stepNum)
		if step == 0 {
			return 0, 0, 0, newRuntimeError("slice step must not be zero")
		}
	}

	if isSentinel(components[0]) {
		start = 0
	} else {
		start, err = normalizeIndex("slice", components[0], n)
		if err != nil {
			return 0, 0, 0, err
		}
	}

	if isSentinel(components[1]) {
		if step < 0 {
			stop = -1
		} else {
			stop = n
		}
	} else {
		stop, err = normalizeIndex("slice", components[1], n)
		if err != nil {
			return 0, 0, 0, err
		}
	}

	return start, stop, step, nil
}
