package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/pkg"
)

func TestDecodeVars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "yaml", input: "a: x\nb: true\n", want: map[string]any{"a": "x", "b": true}},
		{name: "json", input: `{"a": "x", "b": false}`, want: map[string]any{"a": "x", "b": false}},
		{name: "not_mapping", input: "- 1\n- 2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVars(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefineVar(t *testing.T) {
	p := lang.New()
	vars := map[string]any{"n": int64(3)}

	tests := []struct {
		name     string
		def      string
		wantName string
		want     any
		wantErr  bool
	}{
		{name: "expression", def: "x=1 + 2", wantName: "x", want: int64(3)},
		{name: "refers_to_defined", def: "y = n * 2", wantName: "y", want: int64(6)},
		{name: "string_literal", def: `s="quoted"`, wantName: "s", want: "quoted"},
		{name: "bare_word", def: "who=world", wantName: "who", want: "world"},
		{name: "does_not_compile", def: "path=/usr/bin", wantName: "path", want: "/usr/bin"},
		{name: "eval_error", def: "z=1 / 0", wantName: "z", want: "1 / 0"},
		{name: "empty_value", def: "e=", wantName: "e", want: ""},
		{name: "missing_equals", def: "x", wantErr: true},
		{name: "empty_name", def: "=1", wantErr: true},
		{name: "invalid_name", def: "a.b=1", wantErr: true},
		{name: "keyword_name", def: "true=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, val, err := defineVar(t.Context(), p, tt.def, vars)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.want, lang.Plain(val))
		})
	}
}

func TestVariables_Context(t *testing.T) {
	ctx := context.Background()
	p := lang.New()

	dir := t.TempDir()
	first := writeFile(t, dir, "first.yaml", "a: 1\nb: one\n")
	second := writeFile(t, dir, "second.json", `{"b": "two"}`)

	t.Run("files_then_definitions", func(t *testing.T) {
		v := Variables{
			Vars: []string{first, second},
			Var:  []string{"c=a + 1", "a=10"},
		}

		vars, err := v.context(ctx, p, map[string]any{"g": "global", "b": "shadowed"})
		require.NoError(t, err)

		assert.Equal(t, "global", vars["g"])
		assert.Equal(t, "two", vars["b"])
		assert.Equal(t, int64(2), lang.Plain(vars["c"]))
		assert.Equal(t, int64(10), lang.Plain(vars["a"]))
	})

	t.Run("globals_untouched", func(t *testing.T) {
		globals := map[string]any{"g": 1}

		_, err := Variables{Var: []string{"g=2"}}.context(ctx, p, globals)
		require.NoError(t, err)
		assert.Equal(t, 1, globals["g"])
	})

	t.Run("aggregates_errors", func(t *testing.T) {
		_, err := Variables{Var: []string{"bad", "ok=1", "=2"}}.context(ctx, p, nil)
		require.ErrorIs(t, err, pkg.ErrDefinition)
		assert.Contains(t, err.Error(), `"bad"`)
		assert.Contains(t, err.Error(), `"=2"`)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Variables{Vars: []string{filepath.Join(dir, "none.yaml")}}.context(ctx, p, nil)
		require.ErrorIs(t, err, ErrVarFile)
		require.ErrorIs(t, err, ErrReadSource)
	})

	t.Run("bad_file", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "[1, 2]")

		_, err := Variables{Vars: []string{bad}}.context(ctx, p, nil)
		require.ErrorIs(t, err, ErrVarFile)
	})
}
