package log

import (
	"context"
	"log/slog"
	"os"
)

// DefaultContextProvider returns the context used by the context-unaware
// logging functions and methods.
var DefaultContextProvider = context.TODO

var defaultLog = Make(os.Stderr)

// Default returns the package logger configured by [Config].
func Default() Logger { return defaultLog }

// Config updates the package logger with the given options.
// It is not safe to call concurrently with the package logging functions.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// Enabled reports whether the package logger writes messages at level.
func Enabled(ctx context.Context, level Level) bool {
	return defaultLog.Enabled(ctx, level)
}

// The package functions call emit themselves rather than the Logger methods
// so that both report the same caller.

// TraceContext logs at Trace level using the package logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelTrace, msg, attrs)
}

// Trace logs at Trace level using the package logger.
func Trace(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs at Debug level using the package logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelDebug, msg, attrs)
}

// Debug logs at Debug level using the package logger.
func Debug(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs at Info level using the package logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelInfo, msg, attrs)
}

// Info logs at Info level using the package logger.
func Info(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs at Warn level using the package logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelWarn, msg, attrs)
}

// Warn logs at Warn level using the package logger.
func Warn(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs at Error level using the package logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelError, msg, attrs)
}

// Error logs at Error level using the package logger.
func Error(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelError, msg, attrs)
}

// With returns the package logger with attrs added to each message.
func With(attrs ...slog.Attr) Logger {
	return defaultLog.With(attrs...)
}

// WithGroup returns the package logger with later attributes nested under
// name.
func WithGroup(name string) Logger {
	return defaultLog.WithGroup(name)
}
