package interp

import "github.com/dimbo4ka/interpreter/ast"

// Function is the runtime Function value: a shared reference to a
// FunctionDefinition's parameter list and body. It lives in this package
// (rather than package value) because value.Value's methods are exported,
// letting any package's type satisfy it -- see value.Value's doc comment.
type Function struct {
	Name     string
	ArgNames []string
	Body     []ast.Node
}

func (*Function) Truthy() bool          { return false }
func (*Function) Stringify(bool) string { return "function" }

// IsFunction satisfies value.FunctionValue, letting package value classify
// a Function's Kind() as "function" without importing this package.
func (*Function) IsFunction() {}
