package lang

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string, opts ...Option) *AST {
	t.Helper()

	ast, err := New(opts...).Parse(t.Context(), src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	return ast
}

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2*3", "1 + (2 * 3)"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"a-b-c", "(a - b) - c"},
		{"a or b and c", "a || (b && c)"},
		{"a | | b", "a || b"},
		{"a & & b", "a && b"},
		{"a <> b", "a != b"},
		{"a < = b", "a <= b"},
		{"a > b == c", "(a > b) == c"},
		{"-x", "-x"},
		{"!!x", "!!x"},
		{"- -1", "--1"},
		{"a ? b : c ? d : e", "a ? b : (c ? d : e)"},
		{"a ? b || c : d", "a ? (b || c) : d"},
		{"x.y.z", "x.y.z"},
		{"x.f(1, 2).g()", "x.f(1, 2).g()"},
		{"x[1][2, 3]", "x[1][2, 3]"},
		{"f(1)(2)", "f(1)(2)"},
		{"(-x).Abs()", "(-x).Abs()"},
		{"(a+b).ToString()", "(a + b).ToString()"},
		{`"say ""hi"""`, `"say ""hi"""`},
		{"new[]{1, \"a\", null}", `new[]{1, "a", null}`},
		{"new[]{}", "new[]{}"},
		{`new dictionary{{"a", 1}, {"b", 2}}`, `new dictionary{{"a", 1}, {"b", 2}}`},
		{"new Dictionary{}", "new dictionary{}"},
		{"true && false || null", "(true && false) || null"},
		{"1.50 + 0.5", "1.5 + 0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ast := mustParse(t, tt.src)

			if got := ast.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}

			// The canonical form parses back to itself.
			again := mustParse(t, ast.String())
			if again.String() != ast.String() {
				t.Errorf("round trip %q != %q", again.String(), ast.String())
			}
		})
	}
}

func TestParse_SingleEquals(t *testing.T) {
	if _, err := New().Parse(t.Context(), "a = 1"); err == nil {
		t.Fatal("single '=' accepted without WithSingleEquals")
	}

	ast := mustParse(t, "a = 1", WithSingleEquals(true))
	if got := ast.String(); got != "a == 1" {
		t.Errorf("String() = %q", got)
	}

	// Doubled forms still win over the single form.
	ast = mustParse(t, "a == 1 = b", WithSingleEquals(true))
	if got := ast.String(); got != "(a == 1) == b" {
		t.Errorf("String() = %q", got)
	}
}

func TestParse_Variables(t *testing.T) {
	tests := []struct {
		src  string
		opts []Option
		want []string
	}{
		{"1 + 2", nil, nil},
		{"b + a * b - c", nil, []string{"b", "a", "c"}},
		{"x.Length + y[z] + f(w)", nil, []string{"x", "y", "z", "f", "w"}},
		{"true ? null : false", nil, nil},
		{
			"var a = x * 2; var b = a + y; a + b + z",
			[]Option{WithBindings(true)},
			[]string{"x", "y", "z"},
		},
		{
			// A binding is not visible inside its own initializer.
			"var a = a + 1; a",
			[]Option{WithBindings(true)},
			[]string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ast := mustParse(t, tt.src, tt.opts...)
			if !slices.Equal(ast.Variables, tt.want) {
				t.Errorf("Variables = %v, want %v", ast.Variables, tt.want)
			}
		})
	}
}

func TestParse_Bindings(t *testing.T) {
	ast := mustParse(t, "var a = 2*2; var b = a*2; b/a", WithBindings(true))

	let, ok := ast.Root.(*Let)
	if !ok {
		t.Fatalf("root is %T, want *Let", ast.Root)
	}

	if len(let.Bindings) != 2 || let.Bindings[0].Name != "a" || let.Bindings[1].Name != "b" {
		t.Errorf("bindings = %+v", let.Bindings)
	}

	want := "var a = 2 * 2; var b = a * 2; b / a"
	if got := ast.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	body, ok := let.Body.(*Binary)
	if !ok {
		t.Fatalf("body is %T", let.Body)
	}

	if v, ok := body.Left.(*Variable); !ok || !v.Local {
		t.Errorf("body left = %#v, want local variable", body.Left)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		src    string
		opts   []Option
		msg    string
		offset int
	}{
		{"", nil, "expected value", 0},
		{"1 +", nil, "expected value", 3},
		{"1 2", nil, "invalid expression", 1},
		{"(1 + 2", nil, "expected ')'", 6},
		{"a ? b", nil, "expected ':'", 5},
		{"f(,1)", nil, "expected method call parameter", 2},
		{"f(1 2)", nil, "expected ')'", 4},
		{"x[1 2]", nil, "expected ']'", 4},
		{"new foo{}", nil, "unknown new instance initializer", 3},
		{"new[]{1 2}", nil, "expected '}'", 8},
		{"new dictionary{{1}}", nil, "dictionary entry should have exactly 2 arguments", 15},
		{"new dictionary{{1, 2, 3}}", nil, "dictionary entry should have exactly 2 arguments", 15},
		{"new dictionary{{1, 2} {3, 4}}", nil, "expected '}'", 22},
		{"new dictionary[]", nil, "expected '{'", 14},
		{`"abc`, nil, "unterminated string constant", 0},
		{"var a = 2*2;", []Option{WithBindings(true)}, "expected value", 12},
		{"var a = 2*2", []Option{WithBindings(true)}, "expected ';'", 11},
		{"var a; a", []Option{WithBindings(true)}, "expected '='", 5},
		{"var 1 = 2; 1", []Option{WithBindings(true)}, "expected variable name", 3},
		{"var a = 2*2;", nil, "invalid expression", 3},
		{strings.Repeat("(", MaxDepth+1) + "1" + strings.Repeat(")", MaxDepth+1), nil,
			"expression nested too deeply", MaxDepth},
	}

	for _, tt := range tests {
		name := tt.src
		if len(name) > 32 {
			name = name[:32]
		}

		t.Run(name, func(t *testing.T) {
			_, err := New(tt.opts...).Parse(t.Context(), tt.src)

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}

			if se.Message != tt.msg {
				t.Errorf("message = %q, want %q", se.Message, tt.msg)
			}

			if se.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", se.Offset, tt.offset)
			}

			if se.Source != tt.src {
				t.Errorf("source = %q, want %q", se.Source, tt.src)
			}
		})
	}
}

func TestParse_DeepUnary(t *testing.T) {
	src := strings.Repeat("-", MaxDepth+1) + "1"

	var se *SyntaxError
	if _, err := New().Parse(t.Context(), src); !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	ok := strings.Repeat("-", 10) + "1"
	if _, err := New().Parse(t.Context(), ok); err != nil {
		t.Fatal(err)
	}
}

func TestParse_Offsets(t *testing.T) {
	ast := mustParse(t, "a + b.c(1)")

	bin := ast.Root.(*Binary)
	if bin.Pos() != 2 {
		t.Errorf("binary offset = %d", bin.Pos())
	}

	call := bin.Right.(*Call)
	if call.Pos() != 5 || call.Target.Pos() != 4 {
		t.Errorf("call offset = %d, target offset = %d", call.Pos(), call.Target.Pos())
	}
}
