package repl

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ardnew/lambda/lang"
)

const commandPrefix = ":"

// action is what the UI does after a line is handled.
type action int

const (
	actNone action = iota
	actQuit
	actClear
	actEdit
)

// reply is the outcome of one submitted line.
type reply struct {
	out string
	err error
	act action
	// edit is the initial editor content for actEdit.
	edit string
}

type command struct {
	name  string
	alias []string
	usage string
	help  string
	run   func(ctx context.Context, s *Session, arg string) reply
}

//nolint:gochecknoglobals
var commands []command

func init() {
	commands = []command{
		{name: "set", usage: "NAME = EXPR", help: "Bind the value of EXPR to NAME", run: setCommand},
		{name: "unset", usage: "NAME...", help: "Remove variables", run: unsetCommand},
		{name: "vars", help: "List variables and their values", run: varsCommand},
		{name: "edit", usage: "[EXPR]", help: "Compose an expression in $EDITOR and evaluate it", run: editCommandReply},
		{name: "clear", help: "Clear the screen", run: constReply(reply{act: actClear})},
		{name: "help", alias: []string{"h", "?"}, help: "Print this help", run: helpCommand},
		{name: "quit", alias: []string{"q", "exit"}, help: "Exit the REPL", run: constReply(reply{act: actQuit})},
	}
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}

		for _, a := range c.alias {
			if a == name {
				return c, true
			}
		}
	}

	return command{}, false
}

// dispatch evaluates line, or runs it as a command if it starts with ':'.
func dispatch(ctx context.Context, s *Session, line string) reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return reply{}
	}

	rest, ok := strings.CutPrefix(line, commandPrefix)
	if !ok {
		x, err := s.Eval(ctx, line)
		if err != nil {
			return reply{err: err}
		}

		return reply{out: formatResult(ctx, x)}
	}

	name, arg, _ := strings.Cut(strings.TrimSpace(rest), " ")

	c, ok := lookupCommand(name)
	if !ok {
		return reply{err: fmt.Errorf("unknown command %q (try :help)", name)}
	}

	return c.run(ctx, s, strings.TrimSpace(arg))
}

func setCommand(ctx context.Context, s *Session, arg string) reply {
	name, src, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(src) == "" {
		return reply{err: fmt.Errorf("%w: :set NAME = EXPR", ErrUsage)}
	}

	name = strings.TrimSpace(name)

	x, err := s.Set(ctx, name, src)
	if err != nil {
		return reply{err: fmt.Errorf("%s: %w", name, err)}
	}

	return reply{out: name + " = " + formatResult(ctx, x)}
}

func unsetCommand(_ context.Context, s *Session, arg string) reply {
	names := strings.Fields(arg)
	if len(names) == 0 {
		return reply{err: fmt.Errorf("%w: :unset NAME...", ErrUsage)}
	}

	var missing []string

	for _, name := range names {
		if !s.Unset(name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return reply{err: fmt.Errorf("undefined: %s", strings.Join(missing, ", "))}
	}

	return reply{}
}

func varsCommand(ctx context.Context, s *Session, _ string) reply {
	var b strings.Builder

	for _, name := range s.Names() {
		x, _ := s.Value(name)
		fmt.Fprintf(&b, "%s = %s\n", name, formatResult(ctx, x))
	}

	return reply{out: strings.TrimSuffix(b.String(), "\n")}
}

func editCommandReply(_ context.Context, _ *Session, arg string) reply {
	return reply{act: actEdit, edit: arg}
}

func helpCommand(context.Context, *Session, string) reply {
	var b strings.Builder

	b.WriteString("Type an expression to evaluate it.\n\nCommands:\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-20s %s\n", strings.TrimSpace(commandPrefix+c.name+" "+c.usage), c.help)
	}

	b.WriteString(`
Keys:
  Tab / Shift-Tab   Cycle through completions
  Esc               Cancel the completion in progress
  Up / Down         Navigate history
  Ctrl-C            Clear the line, or exit on an empty line
  Ctrl-D            Exit on an empty line`)

	return reply{out: b.String()}
}

func constReply(r reply) func(context.Context, *Session, string) reply {
	return func(context.Context, *Session, string) reply { return r }
}

// formatResult renders x the way the eval command prints it.
func formatResult(ctx context.Context, x any) string {
	var buf bytes.Buffer
	if err := lang.FormatValue(ctx, &buf, x, lang.FormatText, 0); err != nil {
		return fmt.Sprint(x)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
