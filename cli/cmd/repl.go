package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lambda/cli/cmd/repl"
	"github.com/ardnew/lambda/log"
)

// Repl starts an interactive shell whose variables persist between lines.
type Repl struct {
	Engine    `embed:""`
	Variables `embed:""`

	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	p := r.parser(ctx)

	vars, err := r.context(ctx, p, r.globals())
	if err != nil {
		return err
	}

	var dir string

	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		dir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, repl.Config{
		Parser:     p,
		Vars:       vars,
		HistoryDir: dir,
		Logger:     log.With(slog.String("component", "repl")),
	})
}
