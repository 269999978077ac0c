package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
	"github.com/ardnew/lambda/pkg"
)

// Variables holds the flags that define the evaluation context.
type Variables struct {
	Var  []string `help:"Define a variable as name=value. The value is evaluated as an expression, or taken as a string if that fails." placeholder:"NAME=VALUE" sep:"none" short:"D"`
	Vars []string `help:"Load variables from a YAML or JSON mapping ('-' for stdin)."                                                      placeholder:"FILE"       type:"path"`
}

// context builds the variable map. Files are loaded first in the order
// given, then each --var definition is evaluated with p against the
// variables defined before it. globals are visible to both but can be
// shadowed.
func (v Variables) context(
	ctx context.Context,
	p *lang.Parser,
	globals map[string]any,
) (map[string]any, error) {
	vars := maps.Clone(globals)
	if vars == nil {
		vars = make(map[string]any)
	}

	srcs, err := openSources(v.Vars)
	defer closeSources(srcs)

	if err != nil {
		return nil, ErrVarFile.Wrap(err)
	}

	for _, src := range srcs {
		m, err := decodeVars(src)
		if err != nil {
			return nil, ErrVarFile.With(slog.String("file", src.name)).Wrap(err)
		}

		maps.Copy(vars, m)

		log.DebugContext(ctx, "loaded variables",
			slog.String("file", src.name),
			slog.Int("count", len(m)),
		)
	}

	var errs pkg.Error

	for _, def := range v.Var {
		name, val, err := defineVar(ctx, p, def, vars)
		if err != nil {
			errs = errs.Wrap(err)

			continue
		}

		vars[name] = val
	}

	if len(errs) > 0 {
		return nil, pkg.ErrDefinition.Wrap(errs...)
	}

	return vars, nil
}

// decodeVars reads a YAML (or JSON) mapping of variable names to values.
func decodeVars(r io.Reader) (map[string]any, error) {
	var m map[string]any

	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, err
	}

	return m, nil
}

// defineVar splits a name=value definition and evaluates its value. The
// value is taken as a plain string if it does not compile, refers to an
// undefined variable, or fails to evaluate.
func defineVar(
	ctx context.Context,
	p *lang.Parser,
	def string,
	vars map[string]any,
) (string, any, error) {
	name, src, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)

	if !ok || !validName(ctx, p, name) {
		return "", nil, pkg.MakeErrorf("%q: expected NAME=VALUE", def)
	}

	asString := func(reason any) (string, any, error) {
		log.TraceContext(ctx, "variable taken as string",
			slog.String("name", name),
			slog.Any("reason", reason),
		)

		return name, src, nil
	}

	expr, err := p.Compile(ctx, src)
	if err != nil {
		return asString(err)
	}

	for _, v := range expr.Variables() {
		if _, ok := vars[v]; !ok {
			return asString("undefined: " + v)
		}
	}

	val, err := expr.Eval(ctx, lang.MapLookup(vars))
	if err != nil {
		return asString(err)
	}

	return name, val, nil
}

// validName reports whether s parses as nothing but a variable reference,
// which excludes keywords.
func validName(ctx context.Context, p *lang.Parser, s string) bool {
	ast, err := p.Parse(ctx, s)
	if err != nil {
		return false
	}

	v, ok := ast.Root.(*lang.Variable)

	return ok && v.Name == s
}
