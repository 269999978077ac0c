package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
)

// Engine holds the flags that configure the expression parser.
type Engine struct {
	Bindings       bool   `help:"Accept 'var name = expr;' local bindings."`
	SingleEquals   bool   `help:"Accept a single '=' as equality."`
	NullMode       string `default:"min"      enum:"min,sql"          help:"Null ordering: min orders null first, sql makes it incomparable."`
	SuppressErrors bool   `help:"Treat values that cannot be compared as unequal instead of failing."`
	Resolver       string `default:"optional" enum:"optional,strict"  help:"Argument matching for host methods."`
	CacheLimit     int    `default:"0"                                help:"Maximum number of cached expressions (0 is unbounded)."`
	Env            bool   `help:"Expose the 'env' host object to expressions."`
}

// comparer returns the value comparer selected by the flags.
func (e Engine) comparer() *lang.ValueComparer {
	c := lang.DefaultComparer()
	c.SuppressErrors = e.SuppressErrors

	if e.NullMode == lang.NullSQL.String() {
		c.NullMode = lang.NullSQL
	}

	return c
}

// resolver returns the member resolver selected by the flags.
func (e Engine) resolver() *lang.ReflectResolver {
	mode := lang.ResolveOptional
	if e.Resolver == lang.ResolveStrict.String() {
		mode = lang.ResolveStrict
	}

	return lang.NewReflectResolver(mode)
}

// parser builds a Parser from the flags, logging through the package
// logger and reporting to the recorder stored in ctx.
func (e Engine) parser(ctx context.Context) *lang.Parser {
	opts := []lang.Option{
		lang.WithBindings(e.Bindings),
		lang.WithSingleEquals(e.SingleEquals),
		lang.WithComparer(e.comparer()),
		lang.WithResolver(e.resolver()),
		lang.WithLogger(log.With(slog.String("component", "lang"))),
		lang.WithMetrics(recorderFrom(ctx)),
	}

	if e.CacheLimit > 0 {
		opts = append(opts, lang.WithCacheLimit(e.CacheLimit))
	}

	log.DebugContext(ctx, "engine configured",
		slog.Bool("bindings", e.Bindings),
		slog.Bool("single-equals", e.SingleEquals),
		slog.String("null-mode", e.NullMode),
		slog.String("resolver", e.Resolver),
		slog.Int("cache-limit", e.CacheLimit),
	)

	return lang.New(opts...)
}

// globals returns the host variables enabled by the flags.
func (e Engine) globals() map[string]any {
	if !e.Env {
		return nil
	}

	return map[string]any{HostIdentifier: NewHost()}
}
