package lang

import (
	"context"
	"testing"
)

const benchSource = "pi>one && 0<one ? (1+8)/3+1*two : 0"

func BenchmarkParse(b *testing.B) {
	p := New()
	ctx := context.Background()

	for b.Loop() {
		if _, err := p.Parse(ctx, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Cached(b *testing.B) {
	p := New()
	ctx := context.Background()

	for b.Loop() {
		if _, err := p.Compile(ctx, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Uncached(b *testing.B) {
	p := New(WithCache(false))
	ctx := context.Background()

	for b.Loop() {
		if _, err := p.Compile(ctx, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	ctx := context.Background()

	e, err := New().Compile(ctx, benchSource)
	if err != nil {
		b.Fatal(err)
	}

	lookup := MapLookup(differentialEnv())

	for b.Loop() {
		if _, err := e.Eval(ctx, lookup); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEval_Parallel(b *testing.B) {
	p := New()
	lookup := MapLookup(differentialEnv())

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()

		for pb.Next() {
			e, err := p.Compile(ctx, benchSource)
			if err != nil {
				b.Error(err)

				return
			}

			if _, err := e.Eval(ctx, lookup); err != nil {
				b.Error(err)

				return
			}
		}
	})
}

func BenchmarkInvokeMethod(b *testing.B) {
	r := NewReflectResolver(ResolveOptional)
	args := []any{1, 2}

	for b.Loop() {
		if _, err := r.InvokeMethod("benchmark", "Substring", args); err != nil {
			b.Fatal(err)
		}
	}
}
