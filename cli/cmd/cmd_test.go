package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/metrics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readSources(t *testing.T, srcs []source) []string {
	t.Helper()

	out := make([]string, len(srcs))
	for i, s := range srcs {
		if s.name == stdinSource {
			out[i] = stdinSource

			continue
		}

		data, err := io.ReadAll(s)
		require.NoError(t, err)

		out[i] = string(data)
	}

	return out
}

func TestOpenSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "a")
	b := writeFile(t, dir, "b.yaml", "b")

	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(a, link))

	t.Run("order", func(t *testing.T) {
		srcs, err := openSources([]string{b, a})
		defer closeSources(srcs)

		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, readSources(t, srcs))
	})

	t.Run("dedup", func(t *testing.T) {
		rel, err := filepath.Rel(mustGetwd(t), a)
		require.NoError(t, err)

		srcs, err := openSources([]string{a, link, rel, b, a})
		defer closeSources(srcs)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, readSources(t, srcs))
	})

	t.Run("stdin_last_once", func(t *testing.T) {
		srcs, err := openSources([]string{"-", a, "-"})
		defer closeSources(srcs)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "-"}, readSources(t, srcs))
	})

	t.Run("missing", func(t *testing.T) {
		srcs, err := openSources([]string{a, filepath.Join(dir, "missing")})
		defer closeSources(srcs)

		require.ErrorIs(t, err, ErrReadSource)
		assert.Len(t, srcs, 1)
	})

	t.Run("empty", func(t *testing.T) {
		srcs, err := openSources(nil)
		require.NoError(t, err)
		assert.Empty(t, srcs)
	})
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	return wd
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, kongContextFrom(ctx))
	assert.Equal(t, os.Stdout, outputFrom(ctx))
	assert.Equal(t, metrics.Noop{}, recorderFrom(ctx))

	var buf bytes.Buffer

	col, err := metrics.NewCollector()
	require.NoError(t, err)

	ctx = WithRecorder(WithOutput(ctx, &buf), col)
	assert.Same(t, &buf, outputFrom(ctx))
	assert.Same(t, col, recorderFrom(ctx))
}

func TestError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := ErrCompile.Wrap(cause)

	require.ErrorIs(t, err, ErrCompile)
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEval)
	assert.Equal(t, "compile: unexpected EOF", err.Error())

	// Sentinels are never modified.
	assert.Equal(t, "compile", ErrCompile.Error())
}
