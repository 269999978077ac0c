// Package cli contains the command line interface for lambda.
//
// # Usage
//
//	lambda [flags] [EXPR]
//	lambda parse [flags] [EXPR]
//	lambda repl [flags]
//	lambda init [--force]
//
// Evaluation is the default command, so
//
//	lambda -D 'n=3' 'n * (n + 1) / 2'
//
// prints 6.
//
// # Configuration
//
// Flag defaults are read from config.yaml (written by "lambda init") and
// config.json in the per-user configuration directory, for example
// ~/.config/lambda on Linux. Keys are flag names.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, or a Go layout)
//   - --log-caller: include caller information
//   - --log-pretty: colorize output on terminals
//
// The --metrics flag collects engine measurements in process and logs a
// summary at exit.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o lambda .
//
// It adds --pprof-mode (one of the modes listed by --help) and --pprof-dir
// (default ~/.cache/lambda/pprof).
package cli
