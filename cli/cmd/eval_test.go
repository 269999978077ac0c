package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/pkg"
)

func runEval(t *testing.T, e Eval) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	err := e.Run(WithOutput(context.Background(), &buf))

	return buf.String(), err
}

func TestEvalRun(t *testing.T) {
	dir := t.TempDir()
	exprFile := writeFile(t, dir, "expr.txt", "a * 2\n")
	varsFile := writeFile(t, dir, "vars.yaml", "a: 21\n")

	t.Setenv("LAMBDA_EVAL_TEST", "set")

	tests := []struct {
		name string
		eval Eval
		want string
	}{
		{
			name: "literal",
			eval: Eval{Expr: "1 + 2"},
			want: "3\n",
		},
		{
			name: "string",
			eval: Eval{Expr: `"a" + "b"`},
			want: "ab\n",
		},
		{
			name: "null",
			eval: Eval{Expr: "null"},
			want: "\n",
		},
		{
			name: "definitions",
			eval: Eval{Expr: "a + b", Variables: Variables{Var: []string{"a=1", "b=a + 1"}}},
			want: "3\n",
		},
		{
			name: "file_and_vars",
			eval: Eval{File: exprFile, Variables: Variables{Vars: []string{varsFile}}},
			want: "42\n",
		},
		{
			name: "json",
			eval: Eval{Expr: `new dictionary{{"k", new[]{1, "two"}}}`, Output: Output{Output: "json"}},
			want: `{"k":[1,"two"]}` + "\n",
		},
		{
			name: "yaml",
			eval: Eval{Expr: `new dictionary{{"k", 1}}`, Output: Output{Output: "yaml", Indent: 2}},
			want: "k: 1\n",
		},
		{
			name: "host",
			eval: Eval{Engine: Engine{Env: true}, Expr: `env.Get("LAMBDA_EVAL_TEST")`},
			want: "set\n",
		},
		{
			name: "expr_wins_over_file",
			eval: Eval{Expr: "7", File: exprFile},
			want: "7\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runEval(t, tt.eval)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		eval    Eval
		wantErr error
	}{
		{name: "no_expression", eval: Eval{}, wantErr: ErrNoExpression},
		{name: "syntax", eval: Eval{Expr: "1 +"}, wantErr: ErrCompile},
		{name: "missing_file", eval: Eval{File: "/nonexistent/expr"}, wantErr: ErrReadSource},
		{name: "divide_by_zero", eval: Eval{Expr: "1 / 0"}, wantErr: ErrEval},
		{name: "bad_definition", eval: Eval{Expr: "1", Variables: Variables{Var: []string{"nope"}}}, wantErr: pkg.ErrDefinition},
		{name: "missing_vars", eval: Eval{Expr: "1", Variables: Variables{Vars: []string{"/nonexistent/vars"}}}, wantErr: ErrVarFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runEval(t, tt.eval)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out)
		})
	}
}
