package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
)

// Eval compiles one expression and prints its value.
type Eval struct {
	Engine    `embed:""`
	Variables `embed:""`
	Output    `embed:""`

	Expr string `arg:"" help:"Expression to evaluate." optional:""`
	File string `help:"Read the expression from a file ('-' for stdin)." placeholder:"FILE" short:"f" type:"path"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	p := e.parser(ctx)

	expr, err := compileInput(ctx, p, e.Expr, e.File)
	if err != nil {
		return err
	}

	vars, err := e.context(ctx, p, e.globals())
	if err != nil {
		return err
	}

	result, err := expr.Eval(ctx, lang.MapLookup(vars))
	if err != nil {
		return ErrEval.With(slog.String("source", expr.Source())).Wrap(err)
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("source", expr.Source()),
		slog.Any("variables", expr.Variables()),
	)

	if err := lang.FormatValue(ctx, outputFrom(ctx), result, e.format(), e.Indent); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}

// compileInput compiles expr, or the contents of file when expr is empty.
func compileInput(
	ctx context.Context,
	p *lang.Parser,
	expr, file string,
) (*lang.Expression, error) {
	var (
		e   *lang.Expression
		err error
	)

	switch {
	case expr != "":
		e, err = p.Compile(ctx, expr)

	case file != "":
		var r io.ReadCloser

		r, err = openInput(file)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", file)).Wrap(err)
		}
		defer r.Close()

		e, err = p.CompileReader(ctx, r)

	default:
		return nil, ErrNoExpression
	}

	if err != nil {
		return nil, ErrCompile.Wrap(err)
	}

	return e, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return nopCloser{os.Stdin}, nil
	}

	return os.Open(path)
}
