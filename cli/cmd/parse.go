package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/lambda/log"
)

// Parse prints the syntax tree of one expression.
type Parse struct {
	Engine `embed:""`
	Output `embed:""`

	Expr      string `arg:"" help:"Expression to parse." optional:""`
	File      string `help:"Read the expression from a file ('-' for stdin)." placeholder:"FILE" short:"f" type:"path"`
	Canonical bool   `help:"Print the canonical source text instead of the tree." short:"c"`
}

// Run executes the parse command.
func (c *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	p := c.parser(ctx)

	expr, err := compileInput(ctx, p, c.Expr, c.File)
	if err != nil {
		return err
	}

	ast, err := p.Parse(ctx, expr.Source())
	if err != nil {
		return ErrCompile.Wrap(err)
	}

	log.DebugContext(ctx, "parsed",
		slog.String("variables", strings.Join(ast.Variables, ",")),
	)

	w := outputFrom(ctx)

	if c.Canonical {
		_, err = w.Write([]byte(ast.String() + "\n"))
	} else {
		err = ast.Format(ctx, w, c.format(), c.Indent)
	}

	if err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
