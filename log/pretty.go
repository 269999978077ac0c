package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to colorize pretty output. Styles come from a
// renderer bound to the output writer, so plain files and buffers receive
// uncolored text.
type palette struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style
	levels                                  [4]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		null: fg("8"),
		levels: [4]lipgloss.Style{
			fg("4").Bold(true),
			fg("2").Bold(true),
			fg("3").Bold(true),
			fg("1").Bold(true),
		},
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.levels[3]
	case l >= slog.LevelWarn:
		return p.levels[2]
	case l >= slog.LevelInfo:
		return p.levels[1]
	default:
		return p.levels[0]
	}
}

// field is a rendered key and value pair.
type field struct{ key, val string }

// prettyHandler writes colorized records either on a single line
// (key=value pairs) or as an indented block with one field per line.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	block  bool
	groups []string
	preset []field
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, pal: newPalette(w)}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := newPrettyTextHandler(w, opts)
	h.block = true

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}

	return level >= min
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.preset)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.appendAttr(fields, nil, slog.Time(slog.TimeKey, r.Time))
	}

	if a := h.replace(nil, slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		fields = append(fields, field{
			key: h.pal.key.Render(a.Key),
			val: h.pal.level(r.Level).Render(a.Value.String()),
		})
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = h.appendAttr(fields, nil,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = h.appendAttr(fields, nil, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.preset...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.groups, a)

		return true
	})

	var buf bytes.Buffer

	if h.block {
		buf.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  ")
			buf.WriteString(f.key)
			buf.WriteString(": ")
			buf.WriteString(f.val)
		}

		buf.WriteString("\n}")
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(f.key)
			buf.WriteByte('=')
			buf.WriteString(f.val)
		}
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.preset = slices.Clip(h.preset)

	for _, a := range attrs {
		c.preset = c.appendAttr(c.preset, h.groups, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) replace(groups []string, a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(groups, a)
	}

	return a
}

// appendAttr renders a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(
	fields []field,
	groups []string,
	a slog.Attr,
) []field {
	a.Value = a.Value.Resolve()
	a = h.replace(groups, a)

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := a.Value.Group()
		if len(sub) == 0 {
			return fields
		}

		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, g := range sub {
			fields = h.appendAttr(fields, groups, g)
		}

		return fields
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	return append(fields, field{key: h.pal.key.Render(key), val: h.value(a.Value)})
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.pal.str.Render(v.String())
	case slog.KindInt64:
		return h.pal.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.pal.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.pal.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.pal.yes.Render("true")
		}

		return h.pal.no.Render("false")
	case slog.KindDuration:
		return h.pal.dur.Render(v.Duration().String())
	case slog.KindTime:
		return h.pal.when.Render(v.Time().String())
	}

	x := v.Any()
	if x == nil {
		return h.pal.null.Render("null")
	}

	if err, ok := x.(error); ok {
		return h.pal.no.Render(err.Error())
	}

	return h.pal.str.Render(fmt.Sprint(x))
}
