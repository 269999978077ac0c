package repl

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
)

// Session is the state behind the REPL: a parser and the variables that
// persist between lines. It has no terminal dependencies.
type Session struct {
	parser *lang.Parser
	vars   map[string]any
	logger log.Logger
}

// NewSession returns a Session evaluating with p against a copy of vars.
// A nil p selects a parser with default options.
func NewSession(p *lang.Parser, vars map[string]any, logger log.Logger) *Session {
	if p == nil {
		p = lang.New()
	}

	v := maps.Clone(vars)
	if v == nil {
		v = make(map[string]any)
	}

	return &Session{parser: p, vars: v, logger: logger}
}

// Eval evaluates src against the session variables.
func (s *Session) Eval(ctx context.Context, src string) (any, error) {
	x, err := s.parser.EvalMap(ctx, src, s.vars)

	s.logger.TraceContext(ctx, "repl eval",
		slog.String("source", src),
		slog.Bool("ok", err == nil),
	)

	return x, err
}

// Set evaluates src and binds the result to name.
func (s *Session) Set(ctx context.Context, name, src string) (any, error) {
	name = strings.TrimSpace(name)
	if !s.validName(ctx, name) {
		return nil, ErrInvalidName
	}

	x, err := s.Eval(ctx, src)
	if err != nil {
		return nil, err
	}

	s.vars[name] = x

	return x, nil
}

// Unset removes name and reports whether it was defined.
func (s *Session) Unset(name string) bool {
	_, ok := s.vars[name]
	delete(s.vars, name)

	return ok
}

// Value returns the value bound to name.
func (s *Session) Value(name string) (any, bool) {
	x, ok := s.vars[name]

	return x, ok
}

// Names returns the sorted variable names.
func (s *Session) Names() []string {
	return slices.Sorted(maps.Keys(s.vars))
}

// Compile checks that src compiles without evaluating it.
func (s *Session) Compile(ctx context.Context, src string) error {
	_, err := s.parser.Compile(ctx, src)

	return err
}

// Candidates returns the names that may follow parent in a member chain.
// For an empty parent these are the variable names. Otherwise parent is
// evaluated and its members are listed by the resolver, which must be a
// [lang.ReflectResolver].
func (s *Session) Candidates(ctx context.Context, parent string) []string {
	if parent == "" {
		return s.Names()
	}

	r, target, ok := s.target(ctx, parent)
	if !ok {
		return nil
	}

	return r.Members(target)
}

// Signatures describes the callable named by call, a member chain such as
// "env.Get" or a bare variable name.
func (s *Session) Signatures(ctx context.Context, call string) []string {
	recv, name, ok := cutLast(call)
	if !ok {
		fn, ok := s.vars[call]
		if !ok {
			return nil
		}

		if sig := funcSignature(call, fn); sig != "" {
			return []string{sig}
		}

		return nil
	}

	r, target, ok := s.target(ctx, recv)
	if !ok {
		return nil
	}

	return r.Signatures(target, name)
}

// target evaluates the member chain expr without logging failures, which
// are expected while the user is still typing.
func (s *Session) target(
	ctx context.Context,
	expr string,
) (*lang.ReflectResolver, any, bool) {
	r, ok := s.parser.Resolver().(*lang.ReflectResolver)
	if !ok {
		return nil, nil, false
	}

	x, err := s.parser.EvalMap(ctx, expr, s.vars)
	if err != nil || x == nil {
		return nil, nil, false
	}

	return r, x, true
}

// validName reports whether name parses as nothing but a variable reference.
func (s *Session) validName(ctx context.Context, name string) bool {
	ast, err := s.parser.Parse(ctx, name)
	if err != nil {
		return false
	}

	v, ok := ast.Root.(*lang.Variable)

	return ok && v.Name == name
}

// cutLast splits "a.b.c" into "a.b" and "c".
func cutLast(chain string) (recv, name string, ok bool) {
	i := strings.LastIndexByte(chain, '.')
	if i < 0 {
		return "", chain, false
	}

	return chain[:i], chain[i+1:], true
}

// funcSignature formats fn's type as a call signature, or returns "" if fn
// is not a function.
func funcSignature(name string, fn any) string {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return ""
	}

	return name + strings.TrimPrefix(t.String(), "func")
}
