package value

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{3.0, "3"},
		{3.5, "3.5"},
		{-2, "-2"},
		{0, "0"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestStringifyTopLevelVsNested(t *testing.T) {
	s := NewString("hi")
	if got := s.Stringify(true); got != "hi" {
		t.Errorf("top-level Stringify = %q; want %q", got, "hi")
	}
	if got := s.Stringify(false); got != `"hi"` {
		t.Errorf("nested Stringify = %q; want %q", got, `"hi"`)
	}
}

func TestListStringify(t *testing.T) {
	l := NewList(Number(1), NewString("a"), Nil{})
	want := `[1, "a", nil]`
	if got := l.Stringify(false); got != want {
		t.Errorf("Stringify = %q; want %q", got, want)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil{}, false},
		{Number(0), false},
		{Number(1), true},
		{NewString(""), false},
		{NewString("x"), true},
		{NewList(), false},
		{NewList(Number(1)), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("%v.Truthy() = %v; want %v", c.v, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Number(1), Number(1)) {
		t.Error("Number(1) should equal Number(1)")
	}
	if Equal(Number(1), NewString("1")) {
		t.Error("Number(1) should not equal String(\"1\")")
	}
	if !Equal(NewString("a"), NewString("a")) {
		t.Error("equal strings should compare equal")
	}
}
