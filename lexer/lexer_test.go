package lexer

import (
	"testing"

	"github.com/dimbo4ka/interpreter/token"
)

func TestNextPeek(t *testing.T) {
	l := New([]byte(`a = 1 + 2.5`))

	want := []token.Kind{
		token.Identifier, token.Assign, token.Number, token.Plus, token.Number, token.EOF,
	}

	for i, k := range want {
		if peeked := l.Peek(); peeked.Kind != k {
			t.Fatalf("token %d: Peek() = %v; want %v", i, peeked.Kind, k)
		}
		got := l.Next()
		if got.Kind != k {
			t.Fatalf("token %d: Next() = %v; want %v", i, got.Kind, k)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	cases := []struct {
		src  string
		want token.Kind
	}{
		{"==", token.Eq},
		{"!=", token.NotEq},
		{"<=", token.LtEq},
		{">=", token.GtEq},
		{"+=", token.PlusEq},
		{"-=", token.MinusEq},
		{"*=", token.StarEq},
		{"/=", token.SlashEq},
		{"%=", token.PercentEq},
		{"^=", token.CaretEq},
		{"<", token.Lt},
		{">", token.Gt},
		{"=", token.Assign},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			l := New([]byte(c.src))
			if got := l.Next().Kind; got != c.want {
				t.Fatalf("Next() = %v; want %v", got, c.want)
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	l := New([]byte(`"a\nb\t\"c\\"`))
	tok := l.Next()
	if tok.Kind != token.String {
		t.Fatalf("Kind = %v; want String", tok.Kind)
	}
	want := "a\nb\t\"c\\"
	if tok.Literal != want {
		t.Fatalf("Literal = %q; want %q", tok.Literal, want)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New([]byte(`"abc`))
	tok := l.Next()
	if tok.Kind != token.Illegal {
		t.Fatalf("Kind = %v; want Illegal", tok.Kind)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New([]byte("/* never closes"))
	defer func() {
		r := recover()
		if _, ok := r.(*UnterminatedError); !ok {
			t.Fatalf("recover() = %v; want *UnterminatedError", r)
		}
	}()
	l.Next()
	t.Fatal("expected panic")
}

func TestLineCommentSkipped(t *testing.T) {
	l := New([]byte("a // comment\nb"))
	if got := l.Next(); got.Kind != token.Identifier || got.Literal != "a" {
		t.Fatalf("got %v", got)
	}
	if got := l.Next(); got.Kind != token.EndLine {
		t.Fatalf("got %v; want EndLine", got.Kind)
	}
	if got := l.Next(); got.Kind != token.Identifier || got.Literal != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestKeywordsAndBooleans(t *testing.T) {
	l := New([]byte("while for function break continue end return if else elseif in then and or not true false nil"))
	want := []token.Kind{
		token.While, token.For, token.Function, token.Break, token.Continue, token.End,
		token.Return, token.If, token.Else, token.ElseIf, token.In, token.Then,
		token.And, token.Or, token.Not, token.True, token.False, token.Nil,
	}
	for i, k := range want {
		got := l.Next()
		if got.Kind != k {
			t.Fatalf("token %d: got %v; want %v", i, got.Kind, k)
		}
	}
}

func TestNumberLiteral(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"1.5", 1.5},
		{"1e3", 1000},
		{"1.5e2", 150},
	}
	for _, c := range cases {
		l := New([]byte(c.src))
		tok := l.Next()
		if tok.Kind != token.Number || tok.Num != c.want {
			t.Fatalf("scan(%q) = %v; want Number(%v)", c.src, tok, c.want)
		}
	}
}

func TestIllegalByte(t *testing.T) {
	l := New([]byte("@"))
	if got := l.Next().Kind; got != token.Illegal {
		t.Fatalf("Next() = %v; want Illegal", got)
	}
}

func TestTabAndCRAreIllegalOutsideStrings(t *testing.T) {
	for _, src := range []string{"\t", "\r"} {
		l := New([]byte(src))
		if got := l.Next().Kind; got != token.Illegal {
			t.Fatalf("Next() on %q = %v; want Illegal", src, got)
		}
	}
}
