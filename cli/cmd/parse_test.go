package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runParse(t *testing.T, p Parse) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	err := p.Run(WithOutput(context.Background(), &buf))

	return buf.String(), err
}

func TestParseRun(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		out, err := runParse(t, Parse{Expr: "a + 1"})
		require.NoError(t, err)
		assert.Equal(t, "Variables: a\nBinary: +\n  Variable: a\n  Literal: Number: 1\n", out)
	})

	t.Run("canonical", func(t *testing.T) {
		out, err := runParse(t, Parse{Expr: "x*( y+1 )", Canonical: true})
		require.NoError(t, err)
		assert.Equal(t, "x * (y + 1)\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := runParse(t, Parse{Expr: "b.c(a)", Output: Output{Output: "json"}})
		require.NoError(t, err)

		var tree struct {
			Source    string   `json:"source"`
			Variables []string `json:"variables"`
		}

		require.NoError(t, json.Unmarshal([]byte(out), &tree))
		assert.Equal(t, "b.c(a)", tree.Source)
		assert.ElementsMatch(t, []string{"a", "b"}, tree.Variables)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "expr", "1")

		out, err := runParse(t, Parse{File: path, Canonical: true})
		require.NoError(t, err)
		assert.Equal(t, "1\n", out)
	})

	t.Run("bindings", func(t *testing.T) {
		p := Parse{Engine: Engine{Bindings: true}, Expr: "var a=1;a", Canonical: true}

		out, err := runParse(t, p)
		require.NoError(t, err)
		assert.Equal(t, "var a = 1; a\n", out)
	})
}

func TestParseRun_Errors(t *testing.T) {
	_, err := runParse(t, Parse{})
	require.ErrorIs(t, err, ErrNoExpression)

	_, err = runParse(t, Parse{Expr: "(1"})
	require.ErrorIs(t, err, ErrCompile)
}
