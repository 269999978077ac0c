package lang

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/readahead"

	"github.com/ardnew/lambda/log"
)

// Expression is a compiled expression. It is immutable and safe for
// concurrent evaluation.
type Expression struct {
	source  string
	root    Node
	vars    []string
	nlocals int
	run     evalFunc
	owner   *Parser
}

// Source returns the exact text the expression was compiled from.
func (e *Expression) Source() string { return e.source }

// Variables returns the free variables in order of first occurrence.
func (e *Expression) Variables() []string {
	return append([]string(nil), e.vars...)
}

// String returns the canonical text of the expression.
func (e *Expression) String() string { return e.root.String() }

// Eval evaluates the expression, resolving each free variable through
// lookup. Variables that lookup does not define evaluate to null, as do all
// variables when lookup is nil.
//
// The result is a native Go value: numbers are [decimal.Decimal], list
// literals are []any, dictionary literals are [*Dict], and host values are
// returned as the resolver produced them.
func (e *Expression) Eval(ctx context.Context, lookup Lookup) (any, error) {
	start := time.Now()

	f := &frame{
		vars:   make([]Value, len(e.vars)),
		locals: make([]Value, e.nlocals),
	}

	if lookup != nil {
		for i, name := range e.vars {
			if x, ok := lookup(name); ok {
				f.vars[i] = Wrap(x)
			}
		}
	}

	v, err := e.exec(f)
	elapsed := time.Since(start)

	p := e.owner
	p.metrics.RecordEval(ctx, elapsed, err)

	if p.logger.Enabled(ctx, log.LevelTrace) {
		outcome := slog.Any("error", err)
		if err == nil {
			outcome = slog.String("kind", v.Kind().String())
		}

		p.logger.TraceContext(ctx, "eval complete",
			slog.Duration("elapsed", elapsed),
			outcome,
		)
	}

	if err != nil {
		return nil, err
	}

	return v.Native(), nil
}

// exec runs the compiled graph, reporting a panic from a [Comparer],
// [Resolver] or other plugged-in component as [ErrEvalPanic].
func (e *Expression) exec(f *frame) (v Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = Null, ErrEvalPanic.With(
				slog.String("source", e.source),
				slog.Any("panic", p),
			)
		}
	}()

	return e.run(f)
}

// Parse parses source into an AST without compiling or caching it.
func (p *Parser) Parse(ctx context.Context, source string) (*AST, error) {
	start := time.Now()
	ast, err := parse(source, p.bindings, p.singleEquals)
	elapsed := time.Since(start)

	p.metrics.RecordParse(ctx, elapsed, err)

	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(source)),
		slog.Int("variables", len(ast.Variables)),
		slog.Duration("elapsed", elapsed),
	)

	return ast, nil
}

// Compile parses and compiles source. When caching is enabled, the result
// is cached under the exact source text, so identical sources share one
// Expression. Sources that fail to parse are never cached.
func (p *Parser) Compile(ctx context.Context, source string) (*Expression, error) {
	if p.cache != nil {
		e, hit := p.cache.get(source)

		p.metrics.RecordCache(ctx, hit)

		if p.logger.Enabled(ctx, log.LevelTrace) {
			p.logger.TraceContext(ctx, "cache lookup",
				slog.Int("source_bytes", len(source)),
				slog.Bool("cache_hit", hit),
			)
		}

		if hit {
			return e, nil
		}
	}

	ast, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	e, err := p.build(ctx, ast)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.put(source, e)
	}

	return e, nil
}

// CompileAST compiles an AST previously returned by [Parser.Parse].
// The result is not cached.
func (p *Parser) CompileAST(ctx context.Context, ast *AST) (*Expression, error) {
	return p.build(ctx, ast)
}

func (p *Parser) build(ctx context.Context, ast *AST) (*Expression, error) {
	start := time.Now()
	run, nlocals, err := compile(ast, p.comparer, p.resolver)
	elapsed := time.Since(start)

	p.metrics.RecordCompile(ctx, elapsed, err)

	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "compile complete",
		slog.Int("locals", nlocals),
		slog.Duration("elapsed", elapsed),
	)

	return &Expression{
		source:  ast.Source,
		root:    ast.Root,
		vars:    append([]string(nil), ast.Variables...),
		nlocals: nlocals,
		run:     run,
		owner:   p,
	}, nil
}

// CompileReader reads the whole of r and compiles it as one expression.
func (p *Parser) CompileReader(ctx context.Context, r io.Reader) (*Expression, error) {
	// Read ahead asynchronously so large sources are fetched while earlier
	// chunks are being copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	p.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return p.Compile(ctx, string(data))
}

// Eval compiles source (or fetches it from the cache) and evaluates it
// against lookup.
func (p *Parser) Eval(ctx context.Context, source string, lookup Lookup) (any, error) {
	e, err := p.Compile(ctx, source)
	if err != nil {
		return nil, err
	}

	return e.Eval(ctx, lookup)
}

// EvalMap is [Parser.Eval] with variables taken from vars.
func (p *Parser) EvalMap(ctx context.Context, source string, vars map[string]any) (any, error) {
	return p.Eval(ctx, source, MapLookup(vars))
}

// ClearCache removes every cached expression.
func (p *Parser) ClearCache() {
	if p.cache != nil {
		p.cache.clear()
	}
}

// CacheLen returns the number of cached expressions.
func (p *Parser) CacheLen() int {
	if p.cache == nil {
		return 0
	}

	return p.cache.len()
}
