package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lambda/log"
)

// logFormat configures the logger format as a side effect of parsing, so
// the setting applies to errors kong reports while parsing the rest.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies the logger flags in args before kong parses them, so the
// logger is configured regardless of flag position. The level and format
// would be applied by their UnmarshalText during parsing anyway, but the
// boolean flags have no such hook. Scanning stops at "--".
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return
		}

		arg, value, assigned := strings.Cut(args[i], "=")

		var (
			name   string
			negate bool
		)

		switch {
		case strings.HasPrefix(arg, "--no-log-"):
			name, negate = strings.TrimPrefix(arg, "--no-log-"), true
		case strings.HasPrefix(arg, "--log-"):
			name = strings.TrimPrefix(arg, "--log-")
		default:
			continue
		}

		// Non-boolean flags take the next argument unless assigned with '='.
		operand := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		switch name {
		case "level":
			if !negate {
				_ = f.Level.UnmarshalText([]byte(operand()))
			}

		case "format":
			if !negate {
				_ = f.Format.UnmarshalText([]byte(operand()))
			}

		case "pretty":
			if v, ok := boolFlag(value, assigned); ok {
				f.Pretty = v != negate
				log.Config(log.WithPretty(f.Pretty))
			}

		case "caller":
			if v, ok := boolFlag(value, assigned); ok {
				f.Caller = v != negate
				log.Config(log.WithCaller(f.Caller))
			}
		}
	}
}

// boolFlag returns the value of a boolean flag, which is true when given
// without '='.
func boolFlag(value string, assigned bool) (bool, bool) {
	if !assigned {
		return true, true
	}

	v, err := strconv.ParseBool(value)

	return v, err == nil
}
