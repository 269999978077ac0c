package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/lambda/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-compile-retry loop.
// It writes the initial source to a temp file, opens the user's editor, and
// compiles the result. On a compile error the user is asked whether to edit
// again.
type editCommand struct {
	ctx     context.Context
	source  string
	compile func(context.Context, string) error
	logger  log.Logger
	result  string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run leaves the edited source in c.result, or "" if the user emptied the
// file. It returns [ErrEditDeclined] if the user gives up after a compile
// error.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp(os.TempDir(), "lambda-repl-*.txt")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
			return err
		}

		data, err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, path)
		if err != nil {
			return err
		}

		content = strings.TrimSpace(string(data))
		if content == "" {
			return nil
		}

		err = c.compile(c.ctx, content)

		c.logger.TraceContext(c.ctx, "editor compile attempt",
			slog.Int("length", len(content)),
			slog.Bool("ok", err == nil),
		)

		if err == nil {
			c.result = content

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

// confirm reads one answer from r, defaulting to yes.
func confirm(r io.Reader) bool {
	s := bufio.NewScanner(r)
	if !s.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(s.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor opens $EDITOR on path and returns the edited contents.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	// $EDITOR may carry arguments, e.g. "code --wait".
	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
