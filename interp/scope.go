package interp

import "github.com/dimbo4ka/interpreter/value"

// Scope is one level of the evaluator's scope stack: a mapping from
// identifier to Value. The stack grows on every if/while/for/function entry
// and shrinks on every exit, including error paths (see Evaluator.exec*).
type Scope struct {
	vars map[string]value.Value
}

func newScope() *Scope {
	return &Scope{vars: make(map[string]value.Value)}
}

// pushScope and popScope maintain the invariant that scope stack depth
// equals the number of currently entered lexical blocks.
func (e *Evaluator) pushScope() {
	e.scopes = append(e.scopes, newScope())
}

func (e *Evaluator) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// lookup walks the scope stack top-down; first match wins.
func (e *Evaluator) lookup(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// setVariable updates the nearest enclosing binding for name, or creates it
// in the top (innermost) scope if no binding exists yet.
func (e *Evaluator) setVariable(name string, v value.Value) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i].vars[name]; ok {
			e.scopes[i].vars[name] = v
			return
		}
	}
	e.scopes[len(e.scopes)-1].vars[name] = v
}

// bindLocal binds name directly in the current top scope, bypassing the
// nearest-enclosing-scope search; used for function parameter binding and
// for-loop iteration variables, which always shadow in a fresh scope.
func (e *Evaluator) bindLocal(name string, v value.Value) {
	e.scopes[len(e.scopes)-1].vars[name] = v
}
