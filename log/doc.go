// Package log provides a concurrency-safe logging interface based on
// [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options.
// Its zero value discards everything, so libraries can hold one without
// checking whether logging was set up:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger = logger.With(slog.String("component", "repl"))
//	logger.Info("ready")
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-expression
// events such as cache lookups. Levels are written in upper case ("TRACE")
// and parsed case-insensitively by [ParseLevel].
//
// # Formats
//
// [FormatJSON] (default) and [FormatText] select the slog handler. With
// [WithPretty], text records are colorized key=value pairs and JSON records
// are written as indented blocks. Colors are dropped automatically when the
// output is not a terminal.
//
// # Package Logger
//
// The package-level functions ([Info], [TraceContext], ...) write to a
// default logger on standard error, reconfigured with [Config].
// Context-unaware calls use [DefaultContextProvider].
package log
