package repl

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lambda/lang"
	"github.com/ardnew/lambda/log"
)

// editDoneMsg carries the source composed in the editor.
type editDoneMsg struct{ source string }

// editCancelledMsg is sent when the user emptied the editor or declined to
// re-edit after a compile error.
type editCancelledMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	prompt       = "λ "
	defaultWidth = 80
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config configures [Run].
type Config struct {
	// Parser evaluates every line. Nil selects default options.
	Parser *lang.Parser
	// Vars are the initial variables.
	Vars map[string]any
	// HistoryDir holds the history file. Empty keeps history in memory.
	HistoryDir string
	Logger     log.Logger
}

// Run starts the REPL on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	var path string
	if cfg.HistoryDir != "" {
		path = filepath.Join(cfg.HistoryDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("history_len", history.Len()),
		slog.Int("vars", len(cfg.Vars)),
	)

	sess := NewSession(cfg.Parser, cfg.Vars, cfg.Logger)

	p := tea.NewProgram(newModel(ctx, sess, history, cfg.Logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx          context.Context
	input        textinput.Model
	sess         *Session
	logger       log.Logger
	history      *History
	historyIdx   int
	comp         completion
	sigHint      string // rendered signature of the call under the cursor
	suggIdx      int    // selected candidate index
	tabActive    bool   // whether user is tab-cycling
	preTabText   string // input text before tab-cycling began
	preTabCursor int    // cursor position before tab-cycling began
	width        int
	quitting     bool
}

func newModel(
	ctx context.Context,
	sess *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		input:      ti,
		sess:       sess,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil

	case editDoneMsg:
		_ = m.history.Add(msg.source)
		m.historyIdx = m.history.Len()

		return m, m.respond(msg.source, dispatch(m.ctx, m.sess, msg.source))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)) +
				"/" + strconv.Itoa(m.history.Len()),
		))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type an expression, or :help for commands"))

	case m.sigHint != "" && !m.tabActive:
		b.WriteString(m.sigHint)

	case len(m.comp.matches) > 0:
		b.WriteString(renderCandidateBar(m.comp.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.comp.matches) > 0 {
			// Lock in the current candidate without executing.
			m.tabActive = false
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1), nil

	case tea.KeyDown:
		return m.historyMove(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refresh(false)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refresh(true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(false)

	return m, cmd
}

// cycle selects the next (dir > 0) or previous candidate. A sole candidate
// is completed immediately.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.comp.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.comp.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	case dir > 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = n - 1
	}

	m.replaceWord(m.comp.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the word under completion and moves the cursor to
// its end.
func (m *model) replaceWord(s string) {
	input := m.input.Value()
	end := min(m.comp.end, len(input))
	start := min(m.comp.start, end)

	m.input.SetValue(input[:start] + s + input[end:])
	m.input.SetCursor(start + len(s))
	m.comp.end = start + len(s)
}

// refresh recomputes completions and the signature hint. With autoConfirm,
// a word that already equals its sole candidate is accepted. Deletions and
// cursor motion pass false so editing never completes unexpectedly.
func (m *model) refresh(autoConfirm bool) {
	input, cursor := m.input.Value(), m.input.Position()

	m.comp = complete(m.ctx, m.sess, input, cursor)
	m.sigHint = ""

	if call := detectFunctionCall(input, cursor); call.inCall {
		if sigs := m.sess.Signatures(m.ctx, call.name); len(sigs) > 0 {
			m.sigHint = renderSignatureHint(
				pickSignature(sigs, call.argIndex), call.argIndex, len(sigs)-1,
			)
		}
	}

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.comp.matches) != 1 {
		return
	}

	if only := m.comp.matches[0].Str; input[m.comp.start:m.comp.end] == only {
		m.tabActive = false
		m.suggIdx = -1
		m.comp.matches = nil
	}
}

func (m model) historyMove(dir int) model {
	idx := m.historyIdx + dir
	if idx < 0 {
		return m
	}

	m.tabActive = false

	if idx >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)

		return m
	}

	if line, err := m.history.Get(idx); err == nil {
		m.historyIdx = idx
		m.input.SetValue(line)
		m.input.SetCursor(len(line))
		m.refresh(false)
	}

	return m
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.refresh(false)

	if err := m.history.Add(line); err != nil {
		m.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	r := dispatch(m.ctx, m.sess, line)

	switch r.act {
	case actQuit:
		m.quitting = true

		return m, tea.Sequence(tea.Println(echo(line)), tea.Quit)

	case actClear:
		return m, tea.ClearScreen

	case actEdit:
		return m, tea.Sequence(tea.Println(echo(line)), m.edit(r.edit))
	}

	return m, m.respond(line, r)
}

// respond echoes line and prints the reply.
func (m model) respond(line string, r reply) tea.Cmd {
	cmds := []tea.Cmd{tea.Println(echo(line))}

	switch {
	case r.err != nil:
		m.logger.TraceContext(m.ctx, "repl error", slog.Any("error", r.err))
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+r.err.Error())))

	case r.out != "":
		cmds = append(cmds, tea.Println(resultStyle.Render(r.out)))
	}

	return tea.Sequence(cmds...)
}

func (m model) edit(source string) tea.Cmd {
	cmd := &editCommand{
		ctx:     m.ctx,
		source:  source,
		compile: m.sess.Compile,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.result == "":
			return editCancelledMsg{}
		}

		return editDoneMsg{source: cmd.result}
	})
}

func echo(line string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(line)
}
