package repl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
)

func newTestSession(vars map[string]any) *Session {
	return NewSession(lang.New(), vars, log.Logger{})
}

func TestSession_SetPersists(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)

	x, err := s.Set(ctx, "x", "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, "3", formatResult(ctx, x))

	y, err := s.Eval(ctx, "x * 2")
	require.NoError(t, err)
	assert.Equal(t, "6", formatResult(ctx, y))

	_, err = s.Set(ctx, "x", "x + 1")
	require.NoError(t, err)

	v, ok := s.Value("x")
	require.True(t, ok)
	assert.Equal(t, "4", formatResult(ctx, v))
}

func TestSession_SetInvalidName(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)

	for _, name := range []string{"", "1x", "a b", "a.b", "true"} {
		_, err := s.Set(ctx, name, "1")
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	assert.Empty(t, s.Names())
}

func TestSession_SetEvalError(t *testing.T) {
	s := newTestSession(nil)

	_, err := s.Set(context.Background(), "x", "1 / 0")
	require.Error(t, err)

	_, ok := s.Value("x")
	assert.False(t, ok)
}

func TestSession_CopiesVars(t *testing.T) {
	vars := map[string]any{"a": "x"}
	s := newTestSession(vars)

	_, err := s.Set(context.Background(), "b", `"y"`)
	require.NoError(t, err)

	assert.True(t, s.Unset("a"))
	assert.False(t, s.Unset("a"))
	assert.Equal(t, map[string]any{"a": "x"}, vars)
	assert.Equal(t, []string{"b"}, s.Names())
}

func TestSession_Candidates(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(map[string]any{
		"s":   "hello",
		"abc": 1,
		"pt":  point{X: 1, Y: 2},
	})

	assert.Equal(t, []string{"abc", "pt", "s"}, s.Candidates(ctx, ""))
	assert.Subset(t, s.Candidates(ctx, "s"), []string{"Length", "ToUpper", "Substring"})
	assert.Subset(t, s.Candidates(ctx, "pt"), []string{"X", "Y", "Sum"})
	assert.Nil(t, s.Candidates(ctx, "missing"))
	assert.Nil(t, s.Candidates(ctx, "s.("))
}

func TestSession_Signatures(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(map[string]any{
		"s":   "hello",
		"add": func(a, b int) int { return a + b },
		"pt":  point{},
	})

	assert.Equal(t, []string{`PadLeft(int, string = " ") string`}, s.Signatures(ctx, "s.PadLeft"))
	assert.Equal(t, []string{"Sum() int"}, s.Signatures(ctx, "pt.Sum"))
	assert.Equal(t, []string{"add(int, int) int"}, s.Signatures(ctx, "add"))

	subs := s.Signatures(ctx, "s.Substring")
	require.Len(t, subs, 2)

	for _, sig := range subs {
		assert.Contains(t, sig, "Substring(")
	}

	assert.Nil(t, s.Signatures(ctx, "s.Nope"))
	assert.Nil(t, s.Signatures(ctx, "missing.Sum"))
	assert.Nil(t, s.Signatures(ctx, "s"))
}

func TestCutLast(t *testing.T) {
	recv, name, ok := cutLast("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "a.b", recv)
	assert.Equal(t, "c", name)

	_, name, ok = cutLast("f")
	assert.False(t, ok)
	assert.Equal(t, "f", name)
}

type point struct{ X, Y int }

func (p point) Sum() int { return p.X + p.Y }
