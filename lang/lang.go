package lang

import (
	"github.com/ardnew/lambda/log"
	"github.com/ardnew/lambda/metrics"
)

// Parser parses, compiles and evaluates expressions under one fixed policy.
//
// A Parser is safe for concurrent use. Its options are applied once by [New]
// and never change afterward; the compiled-expression cache is the only
// state it mutates.
type Parser struct {
	comparer     Comparer
	resolver     Resolver
	bindings     bool
	singleEquals bool
	caching      bool
	cacheLimit   int
	cache        *cache
	logger       log.Logger
	metrics      metrics.Recorder
}

// Option configures a Parser.
type Option func(*Parser)

// New returns a Parser configured by opts.
//
// By default the Parser uses [DefaultComparer], an optional-mode
// [ReflectResolver], caches compiled expressions without bound, and rejects
// local bindings and the single '=' equality operator.
func New(opts ...Option) *Parser {
	p := &Parser{caching: true, metrics: metrics.Noop{}}

	for _, opt := range opts {
		opt(p)
	}

	if p.comparer == nil {
		p.comparer = DefaultComparer()
	}

	if p.resolver == nil {
		p.resolver = NewReflectResolver(ResolveOptional)
	}

	if p.metrics == nil {
		p.metrics = metrics.Noop{}
	}

	if p.caching {
		p.cache = newCache(p.cacheLimit)
	}

	return p
}

// WithBindings enables the "var name = expr;" local binding prefix.
func WithBindings(enable bool) Option {
	return func(p *Parser) { p.bindings = enable }
}

// WithSingleEquals accepts a lone '=' as the equality operator.
func WithSingleEquals(enable bool) Option {
	return func(p *Parser) { p.singleEquals = enable }
}

// WithComparer sets the comparer used by equality, ordering and truthiness.
func WithComparer(c Comparer) Option {
	return func(p *Parser) { p.comparer = c }
}

// WithResolver sets the resolver used for member, index and call access.
func WithResolver(r Resolver) Option {
	return func(p *Parser) { p.resolver = r }
}

// WithCache enables or disables the compiled-expression cache.
func WithCache(enable bool) Option {
	return func(p *Parser) { p.caching = enable }
}

// WithCacheLimit bounds the cache to roughly n compiled expressions.
// Entries are evicted oldest first. A limit of zero or less means unbounded.
func WithCacheLimit(n int) Option {
	return func(p *Parser) { p.cacheLimit = n }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithMetrics sets the recorder that receives parse, compile, eval and cache
// measurements. A nil recorder disables metrics.
func WithMetrics(rec metrics.Recorder) Option {
	return func(p *Parser) { p.metrics = rec }
}

// Comparer returns the comparer the Parser evaluates with.
func (p *Parser) Comparer() Comparer { return p.comparer }

// Resolver returns the resolver the Parser evaluates with.
func (p *Parser) Resolver() Resolver { return p.resolver }

// Lookup resolves a variable name to its value. It reports false when the
// name is not defined, in which case the variable evaluates to null.
type Lookup func(name string) (any, bool)

// MapLookup returns a Lookup backed by m.
func MapLookup(m map[string]any) Lookup {
	return func(name string) (any, bool) {
		v, ok := m[name]

		return v, ok
	}
}
