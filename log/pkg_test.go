package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_UsesDefaultLogger(t *testing.T) {
	original := defaultLog
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	ctx := context.Background()

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }, "TRACE"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(ctx, m, a...) }, "DEBUG"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }, "INFO"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(ctx, m, a...) }, "WARN"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(ctx, m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			entry := decodeJSON(t, buf.Bytes())
			if entry["level"] != tt.level || entry["key"] != "value" {
				t.Errorf("entry = %v", entry)
			}
		})
	}

	buf.Reset()
	With(slog.String("cmd", "eval")).Info("attrs")

	if !strings.Contains(buf.String(), `"cmd":"eval"`) {
		t.Errorf("With output = %q", buf.String())
	}

	buf.Reset()
	Config(WithCaller(true))
	Info("caller")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("package caller = %q", buf.String())
	}

	if !Enabled(ctx, LevelTrace) {
		t.Error("Enabled(LevelTrace) = false")
	}

	if Default().Level() != LevelTrace {
		t.Errorf("Default().Level() = %v", Default().Level())
	}
}
