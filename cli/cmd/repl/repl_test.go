package repl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lambda/log"
)

func typeRunes(t *testing.T, m model, s string) model {
	t.Helper()

	for _, r := range s {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func newTestModel(vars map[string]any) model {
	return newModel(context.Background(), newTestSession(vars), NewHistory(""), log.Logger{})
}

func TestModel_TabCompletesSoleCandidate(t *testing.T) {
	m := typeRunes(t, newTestModel(map[string]any{"alpha": 1, "beta": 2}), "al")
	require.Len(t, m.comp.matches, 1)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "alpha", m.input.Value())
	assert.False(t, m.tabActive)
}

func TestModel_TabCyclesAndEscRestores(t *testing.T) {
	m := typeRunes(t, newTestModel(map[string]any{"ab1": 1, "ab2": 2}), "ab")
	require.Len(t, m.comp.matches, 2)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.tabActive)
	first := m.input.Value()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	assert.NotEqual(t, first, m.input.Value())

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, first, m.input.Value())

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.tabActive)
	assert.Equal(t, "ab", m.input.Value())
}

func TestModel_SubmitAndHistory(t *testing.T) {
	m := typeRunes(t, newTestModel(nil), "1+1")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, 1, m.history.Len())

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "1+1", m.input.Value())
	assert.Contains(t, m.View(), "1/1")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.input.Value())
}

func TestModel_SetThenUse(t *testing.T) {
	m := typeRunes(t, newTestModel(nil), ":set x = 5")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	v, ok := m.sess.Value("x")
	require.True(t, ok)
	assert.Equal(t, "5", formatResult(context.Background(), v))
}

func TestModel_SignatureHint(t *testing.T) {
	m := typeRunes(t, newTestModel(map[string]any{"s": "hey"}), "s.PadLeft(")

	assert.Contains(t, m.sigHint, "PadLeft")
	assert.Contains(t, m.View(), "PadLeft")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(nil)

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
