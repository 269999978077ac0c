package lang

import (
	"testing"

	"github.com/expr-lang/expr"
	"github.com/shopspring/decimal"
)

// The arithmetic and logic shared with expr-lang must agree with it.
var differential = []string{
	"1 + 2 * 3",
	"(1 + (3 - 1) * 4) / 3",
	"one * 5 * one - (-1 + 5 * 5 % 10)",
	"pi + -one",
	"pi > one && 0 < one ? (1 + 8) / 3 + 1 * two : 0",
	"two / 4 + pi * pi",
	"!(one == two) || pi < 3",
	"one != 1 ? 1 : two >= 2",
	`"a" + "b"`,
}

func differentialEnv() map[string]any {
	return map[string]any{"pi": 3.14, "one": 1, "two": 2}
}

func normalize(t *testing.T, x any) any {
	t.Helper()

	switch x := x.(type) {
	case decimal.Decimal:
		return x.Round(9).String()
	case int:
		return decimal.NewFromInt(int64(x)).String()
	case float64:
		return decimal.NewFromFloat(x).Round(9).String()
	case bool, string:
		return x
	}

	t.Fatalf("unexpected result type %T", x)

	return nil
}

func TestDifferential_ExprLang(t *testing.T) {
	p := New()
	env := differentialEnv()

	for _, src := range differential {
		t.Run(src, func(t *testing.T) {
			want, err := expr.Eval(src, env)
			if err != nil {
				t.Fatalf("expr-lang: %v", err)
			}

			got, err := p.EvalMap(t.Context(), src, env)
			if err != nil {
				t.Fatal(err)
			}

			if g, w := normalize(t, got), normalize(t, want); g != w {
				t.Errorf("got %v, expr-lang %v", g, w)
			}
		})
	}
}

func BenchmarkDifferential_ExprLang(b *testing.B) {
	src := differential[4]
	env := differentialEnv()

	prog, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, err := expr.Run(prog, env); err != nil {
			b.Fatal(err)
		}
	}
}
