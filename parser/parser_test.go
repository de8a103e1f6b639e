package parser

import (
	"testing"

	"github.com/dimbo4ka/interpreter/ast"
)

func TestParseAssignment(t *testing.T) {
	root, err := Parse([]byte("a = 1 + 2"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Statements) != 1 {
		t.Fatalf("got %d statements; want 1", len(root.Statements))
	}
	stmt, ok := root.Statements[0].(*ast.ExprStatement)
	if !ok {
		t.Fatalf("statement is %T; want *ast.ExprStatement", root.Statements[0])
	}
	bin, ok := stmt.Expr.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expr is %T; want *ast.BinaryOp", stmt.Expr)
	}
	if _, ok := bin.Lhs.(*ast.Variable); !ok {
		t.Fatalf("lhs is %T; want *ast.Variable", bin.Lhs)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the outer node is '+'.
	root, err := Parse([]byte("x = 1 + 2 * 3"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := root.Statements[0].(*ast.ExprStatement)
	assign := stmt.Expr.(*ast.BinaryOp)
	plus := assign.Rhs.(*ast.BinaryOp)
	if _, ok := plus.Rhs.(*ast.BinaryOp); !ok {
		t.Fatalf("rhs of '+' is %T; want nested '*' BinaryOp", plus.Rhs)
	}
}

func TestPowerRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 == 2 ^ (3 ^ 2)
	root, err := Parse([]byte("x = 2 ^ 3 ^ 2"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assign := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.BinaryOp)
	outer := assign.Rhs.(*ast.BinaryOp)
	if lhs, ok := outer.Lhs.(*ast.NumberLiteral); !ok || lhs.Value != 2 {
		t.Fatalf("outer.Lhs = %#v; want NumberLiteral(2)", outer.Lhs)
	}
	if _, ok := outer.Rhs.(*ast.BinaryOp); !ok {
		t.Fatalf("outer.Rhs = %T; want nested BinaryOp", outer.Rhs)
	}
}

func TestIfThenElse(t *testing.T) {
	src := `if 1 < 0 then print("true") else print("false") end if`
	root, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ifNode, ok := root.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement is %T; want *ast.If", root.Statements[0])
	}
	if len(ifNode.Then) != 1 || len(ifNode.Else) != 1 {
		t.Fatalf("then=%d else=%d; want 1,1", len(ifNode.Then), len(ifNode.Else))
	}
}

func TestIfMissingThen(t *testing.T) {
	_, err := Parse([]byte("if 1 < 0 print(1) end if"))
	if err == nil {
		t.Fatal("expected error for missing 'then'")
	}
}

func TestElseIfChainNesting(t *testing.T) {
	src := `if a then
  print(1)
elseif b then
  print(2)
else
  print(3)
end if`
	root, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer := root.Statements[0].(*ast.If)
	if len(outer.Else) != 1 {
		t.Fatalf("outer.Else has %d nodes; want 1 (nested If)", len(outer.Else))
	}
	if _, ok := outer.Else[0].(*ast.If); !ok {
		t.Fatalf("outer.Else[0] is %T; want *ast.If", outer.Else[0])
	}
}

func TestWhileLoop(t *testing.T) {
	root, err := Parse([]byte("while x < 10\n x += 1\n end while"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, ok := root.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("statement is %T; want *ast.While", root.Statements[0])
	}
	if len(w.Body) != 1 {
		t.Fatalf("body has %d statements; want 1", len(w.Body))
	}
}

func TestForRange(t *testing.T) {
	root, err := Parse([]byte("for i in range(1, 10, 1)\n print(i)\n end for"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, ok := root.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement is %T; want *ast.For", root.Statements[0])
	}
	if f.VarName != "i" {
		t.Fatalf("VarName = %q; want %q", f.VarName, "i")
	}
	call, ok := f.Iterable.(*ast.GlobalFunctionCall)
	if !ok || call.Name != "range" {
		t.Fatalf("Iterable = %#v; want range(...) call", f.Iterable)
	}
}

func TestBuiltinVsNamedCall(t *testing.T) {
	root, err := Parse([]byte("print(foo())"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.GlobalFunctionCall)
	if outer.Name != "print" {
		t.Fatalf("outer.Name = %q; want print", outer.Name)
	}
	inner, ok := outer.Args[0].(*ast.FunctionCall)
	if !ok || inner.Name != "foo" {
		t.Fatalf("inner = %#v; want named call to 'foo'", outer.Args[0])
	}
}

func TestChainedCallBecomesUnnamed(t *testing.T) {
	root, err := Parse([]byte("f()()"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer, ok := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.UnnamedFunctionCall)
	if !ok {
		t.Fatalf("outer = %T; want *ast.UnnamedFunctionCall", root.Statements[0].(*ast.ExprStatement).Expr)
	}
	if _, ok := outer.Callee.(*ast.FunctionCall); !ok {
		t.Fatalf("callee = %T; want *ast.FunctionCall", outer.Callee)
	}
}

func TestSliceWithTwoComponents(t *testing.T) {
	root, err := Parse([]byte("a[1:8]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.GlobalFunctionCall)
	if call.Name != "slice" || len(call.Args) != 3 {
		t.Fatalf("call = %#v; want slice with 3 args", call)
	}
}

func TestSliceWithEmptyEndpoint(t *testing.T) {
	root, err := Parse([]byte("a[:8]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.GlobalFunctionCall)
	idx1, ok := call.Args[1].(*ast.NumberLiteral)
	if !ok || idx1.Value != sliceSentinel {
		t.Fatalf("Args[1] = %#v; want sentinel NumberLiteral", call.Args[1])
	}
}

func TestFunctionLiteral(t *testing.T) {
	root, err := Parse([]byte("f = function(a, b)\n return a + b\n end function"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assign := root.Statements[0].(*ast.ExprStatement).Expr.(*ast.BinaryOp)
	fn, ok := assign.Rhs.(*ast.FunctionImplementation)
	if !ok {
		t.Fatalf("rhs = %T; want *ast.FunctionImplementation", assign.Rhs)
	}
	if len(fn.Def.ArgNames) != 2 {
		t.Fatalf("ArgNames = %v; want 2 names", fn.Def.ArgNames)
	}
}

func TestUnknownBinaryOperation(t *testing.T) {
	_, err := Parse([]byte("a \"b\""))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUnterminatedIfIsError(t *testing.T) {
	_, err := Parse([]byte("if true then print(1)"))
	if err == nil {
		t.Fatal("expected error for missing 'end if'")
	}
}
