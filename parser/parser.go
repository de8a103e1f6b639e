// Package parser combines a Pratt expression parser with a recursive
// statement parser to build an AST from a token stream. Parsing is
// single-pass with one-token lookahead; the first error aborts the parse,
// there is no recovery.
package parser

import (
	"fmt"

	"github.com/dimbo4ka/interpreter/ast"
	"github.com/dimbo4ka/interpreter/internal/debug"
	"github.com/dimbo4ka/interpreter/lexer"
	"github.com/dimbo4ka/interpreter/token"
)

// sliceSentinel marks an omitted slice endpoint; it is the smallest
// positive normal double, the same sentinel the original implementation
// used, so a user-supplied value could (in principle, if unlikely) collide
// with it -- an edge case that is not handled.
const sliceSentinel = 2.2250738585072014e-308

// Parser builds an *ast.Root from a token stream produced by a *lexer.Lexer.
type Parser struct {
	lex *lexer.Lexer
}

func New(src []byte) *Parser {
	return &Parser{lex: lexer.New(src)}
}

// Parse runs the parser to completion, returning the first SyntaxError it
// encounters, if any. A lexer-level fatal panic (unterminated block
// comment) is converted to a SyntaxError at this boundary.
func Parse(src []byte) (root *ast.Root, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *lexer.UnterminatedError:
				err = newError(e.Line, e.Col, "unterminated %s", e.What)
			case error:
				err = e
			default:
				err = fmt.Errorf("parser: panic: %v", r)
			}
			root = nil
		}
	}()
	p := New(src)
	return p.parseRoot()
}

var infixBp = map[token.Kind][2]int{
	token.Assign:    {-1, -2},
	token.PlusEq:    {-1, -2},
	token.MinusEq:   {-1, -2},
	token.StarEq:    {-1, -2},
	token.SlashEq:   {-1, -2},
	token.PercentEq: {-1, -2},
	token.CaretEq:   {-1, -2},

	token.Or: {1, 2},

	token.And: {3, 4},

	token.Eq:    {5, 6},
	token.NotEq: {5, 6},

	token.Lt:   {7, 8},
	token.LtEq: {7, 8},
	token.Gt:   {7, 8},
	token.GtEq: {7, 8},

	token.Plus:  {9, 10},
	token.Minus: {9, 10},

	token.Star:    {11, 12},
	token.Slash:   {11, 12},
	token.Percent: {11, 12},

	token.Caret: {15, 14},
}

const unaryBp = 17

// exprBp is the binding-power floor used for nested expressions (call
// arguments, list elements, conditions, slice components): it excludes
// assignment, which is only meaningful as an outermost, statement-level
// operator.
const exprBp = 0

// stmtBp is the floor used to start a statement-level expression, low
// enough to admit the (negative) assignment binding powers.
const stmtBp = -2

func isTerminator(k token.Kind) bool {
	switch k {
	case token.EOF, token.Colon, token.EndLine, token.RParen, token.End,
		token.Then, token.ElseIf, token.Else, token.Comma, token.RBracket:
		return true
	}
	return false
}

func (p *Parser) peek() token.Token { return p.lex.Peek() }
func (p *Parser) next() token.Token { return p.lex.Next() }

func (p *Parser) skipEndLines() {
	for p.peek().Kind == token.EndLine {
		p.next()
	}
}

func (p *Parser) expect(k token.Kind, desc string) (token.Token, error) {
	t := p.peek()
	if t.Kind != k {
		return t, newError(t.Line, t.Col, "Expected '%s'", desc)
	}
	return p.next(), nil
}

func (p *Parser) parseRoot() (*ast.Root, error) {
	t := p.peek()
	root := &ast.Root{}
	root.Line, root.Col = t.Line, t.Col

	p.skipEndLines()
	for p.peek().Kind != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		root.Statements = append(root.Statements, stmt)
		p.skipEndLines()
	}
	return root, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	p.skipEndLines()
	t := p.peek()
	switch t.Kind {
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Break:
		p.next()
		return &ast.Break{}, nil
	case token.Continue:
		p.next()
		return &ast.Continue{}, nil
	case token.Return:
		return p.parseReturn()
	default:
		expr, err := p.parseExpression(stmtBp)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Expr: expr}, nil
	}
}

func (p *Parser) parseReturn() (ast.Node, error) {
	t := p.next() // 'return'
	ret := &ast.Return{}
	ret.Line, ret.Col = t.Line, t.Col
	if isTerminator(p.peek().Kind) {
		return ret, nil
	}
	expr, err := p.parseExpression(stmtBp)
	if err != nil {
		return nil, err
	}
	ret.Value = expr
	return ret, nil
}

// parseStatementsUntil parses statements until peek() matches one of the
// given terminators (after skipping EndLines). It does not consume the
// terminator.
func (p *Parser) parseStatementsUntil(terminators ...token.Kind) ([]ast.Node, error) {
	var body []ast.Node
	for {
		p.skipEndLines()
		t := p.peek()
		if t.Kind == token.EOF {
			return nil, newError(t.Line, t.Col, "Expected 'end', got EOF")
		}
		for _, term := range terminators {
			if t.Kind == term {
				return body, nil
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

func (p *Parser) parseIf() (ast.Node, error) {
	t := p.next() // 'if'
	return p.parseIfFrom(t.Line, t.Col)
}

// parseIfFrom parses the condition, then-block, and tail of an if/elseif
// head (the 'if'/'elseif' keyword itself has already been consumed). An
// elseif chain recurses here; only the level that bottoms out into a plain
// 'else' or straight to 'end' consumes the single "end if" in the source.
func (p *Parser) parseIfFrom(line, col int) (ast.Node, error) {
	cond, err := p.parseExpression(exprBp)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != token.Then {
		return nil, newError(t.Line, t.Col, "Expected 'then' after if-block")
	}
	p.next()
	p.skipEndLines()
	thenBlock, err := p.parseStatementsUntil(token.End, token.Else, token.ElseIf)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Cond: cond, Then: thenBlock}
	node.Line, node.Col = line, col

	switch p.peek().Kind {
	case token.ElseIf:
		et := p.next()
		nested, err := p.parseIfFrom(et.Line, et.Col)
		if err != nil {
			return nil, err
		}
		node.Else = []ast.Node{nested}

	case token.Else:
		p.next()
		p.skipEndLines()
		elseBlock, err := p.parseStatementsUntil(token.End)
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
		if _, err := p.expect(token.End, "end"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.If, "if"); err != nil {
			return nil, err
		}

	case token.End:
		p.next()
		if _, err := p.expect(token.If, "if"); err != nil {
			return nil, err
		}

	default:
		t := p.peek()
		return nil, newError(t.Line, t.Col, "Expected 'else', 'elseif', or 'end'")
	}

	return node, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	t := p.next() // 'while'
	cond, err := p.parseExpression(exprBp)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == token.Then {
		p.next()
	}
	p.skipEndLines()
	body, err := p.parseStatementsUntil(token.End)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.End, "end"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.While, "while"); err != nil {
		return nil, err
	}
	node := &ast.While{Cond: cond, Body: body}
	node.Line, node.Col = t.Line, t.Col
	return node, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	t := p.next() // 'for'
	nameTok, err := p.expect(token.Identifier, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.In, "in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression(exprBp)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == token.Then {
		p.next()
	}
	p.skipEndLines()
	body, err := p.parseStatementsUntil(token.End)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.End, "end"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.For, "for"); err != nil {
		return nil, err
	}
	node := &ast.For{VarName: nameTok.Literal, Iterable: iterable, Body: body}
	node.Line, node.Col = t.Line, t.Col
	return node, nil
}

func (p *Parser) parseFunctionLiteral() (ast.Node, error) {
	t := p.next() // 'function'
	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, err
	}

	var names []string
	p.skipEndLines()
	if p.peek().Kind != token.RParen {
		for {
			nameTok, err := p.expect(token.Identifier, "identifier")
			if err != nil {
				return nil, err
			}
			names = append(names, nameTok.Literal)
			p.skipEndLines()
			if p.peek().Kind == token.Comma {
				p.next()
				p.skipEndLines()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	p.skipEndLines()
	body, err := p.parseStatementsUntil(token.End)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.End, "end"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Function, "function"); err != nil {
		return nil, err
	}

	def := &ast.FunctionDefinition{ArgNames: names, Body: body}
	node := &ast.FunctionImplementation{Def: def}
	node.Line, node.Col = t.Line, t.Col
	return node, nil
}

// parseExpression is the Pratt core: a prefix element followed by an infix
// loop that consumes operators (and postfix call/index continuations)
// whose binding power is at least minBp.
func (p *Parser) parseExpression(minBp int) (ast.Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()

		switch t.Kind {
		case token.LParen:
			p.next()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			left = p.resolveCall(left, args, t.Line, t.Col)
			continue

		case token.LBracket:
			left, err = p.parseIndexOrSlice(left, t.Line, t.Col)
			if err != nil {
				return nil, err
			}
			continue
		}

		bp, ok := infixBp[t.Kind]
		if !ok {
			if isTerminator(t.Kind) {
				break
			}
			return nil, newError(t.Line, t.Col, "Unknown binary operation")
		}
		if bp[0] < minBp {
			break
		}
		p.next()
		right, err := p.parseExpression(bp[1])
		if err != nil {
			return nil, err
		}
		bin := &ast.BinaryOp{Op: t.Kind, Lhs: left, Rhs: right}
		bin.Line, bin.Col = t.Line, t.Col
		left = bin
	}

	return left, nil
}

func (p *Parser) parsePrefix() (ast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case token.Not, token.Plus, token.Minus:
		p.next()
		operand, err := p.parseExpression(unaryBp)
		if err != nil {
			return nil, err
		}
		u := &ast.UnaryOp{Op: t.Kind, Operand: operand}
		u.Line, u.Col = t.Line, t.Col
		return u, nil

	case token.LBracket:
		return p.parseListLiteral()

	case token.LParen:
		p.next()
		inner, err := p.parseExpression(exprBp)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil

	case token.Identifier:
		p.next()
		v := &ast.Variable{Name: t.Literal}
		v.Line, v.Col = t.Line, t.Col
		return v, nil

	case token.String:
		p.next()
		s := &ast.StringLiteral{Value: t.Literal}
		s.Line, s.Col = t.Line, t.Col
		return s, nil

	case token.Number:
		p.next()
		n := &ast.NumberLiteral{Value: t.Num}
		n.Line, n.Col = t.Line, t.Col
		return n, nil

	case token.True:
		p.next()
		n := &ast.NumberLiteral{Value: 1}
		n.Line, n.Col = t.Line, t.Col
		return n, nil

	case token.False:
		p.next()
		n := &ast.NumberLiteral{Value: 0}
		n.Line, n.Col = t.Line, t.Col
		return n, nil

	case token.Nil:
		p.next()
		nl := &ast.NilLiteral{}
		nl.Line, nl.Col = t.Line, t.Col
		return nl, nil

	case token.Function:
		return p.parseFunctionLiteral()

	default:
		return nil, newError(t.Line, t.Col, "Incorrect expression")
	}
}

func (p *Parser) parseListLiteral() (ast.Node, error) {
	t := p.next() // '['
	lit := &ast.ListLiteral{}
	lit.Line, lit.Col = t.Line, t.Col

	p.skipEndLines()
	if p.peek().Kind == token.RBracket {
		p.next()
		return lit, nil
	}
	for {
		elem, err := p.parseExpression(exprBp)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
		p.skipEndLines()
		if p.peek().Kind == token.Comma {
			p.next()
			p.skipEndLines()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket, "]"); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseArgList() ([]ast.Node, error) {
	p.skipEndLines()
	if p.peek().Kind == token.RParen {
		p.next()
		return nil, nil
	}
	var args []ast.Node
	for {
		arg, err := p.parseExpression(exprBp)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipEndLines()
		if p.peek().Kind == token.Comma {
			p.next()
			p.skipEndLines()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) resolveCall(callee ast.Node, args []ast.Node, line, col int) ast.Node {
	if v, ok := callee.(*ast.Variable); ok {
		if kind, ok := ast.GlobalFunctions[v.Name]; ok {
			debug.Logf("parser: resolved builtin call %q", v.Name)
			call := &ast.GlobalFunctionCall{Kind: kind, Name: v.Name, Args: args}
			call.Line, call.Col = line, col
			return call
		}
		call := &ast.FunctionCall{Name: v.Name, Args: args}
		call.Line, call.Col = line, col
		return call
	}
	call := &ast.UnnamedFunctionCall{Callee: callee, Args: args}
	call.Line, call.Col = line, col
	return call
}

// parseIndexOrSlice parses the postfix "[...]" form: a colon-separated list
// of 1-3 sub-expressions, any of which may be empty (represented by the
// sliceSentinel), lowered to a GlobalFunctionCall(slice, [target, ...]).
func (p *Parser) parseIndexOrSlice(target ast.Node, line, col int) (ast.Node, error) {
	p.next() // '['

	args := []ast.Node{target}
	comp, err := p.parseSliceComponent()
	if err != nil {
		return nil, err
	}
	args = append(args, comp)

	for p.peek().Kind == token.Colon {
		p.next()
		comp, err := p.parseSliceComponent()
		if err != nil {
			return nil, err
		}
		args = append(args, comp)
	}

	if _, err := p.expect(token.RBracket, "]"); err != nil {
		return nil, err
	}
	if len(args) > 4 {
		return nil, newError(line, col, "slice accepts at most 3 components")
	}

	call := &ast.GlobalFunctionCall{Kind: ast.GlobalSlice, Name: "slice", Args: args}
	call.Line, call.Col = line, col
	return call, nil
}

func (p *Parser) parseSliceComponent() (ast.Node, error) {
	t := p.peek()
	if t.Kind == token.Colon || t.Kind == token.RBracket {
		n := &ast.NumberLiteral{Value: sliceSentinel}
		n.Line, n.Col = t.Line, t.Col
		return n, nil
	}
	return p.parseExpression(exprBp)
}
