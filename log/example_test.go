package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/lambda/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.Info("compiled", slog.String("source", "a + 1"))
	logger.Debug("not shown")
	// Output:
	// level=INFO msg=compiled source="a + 1"
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.Trace("cache lookup", slog.Bool("hit", false))
	// Output:
	// level=TRACE msg="cache lookup" hit=false
}

func Example_withContext() {
	type requestIDKey struct{}

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-789")

	logger := log.Make(os.Stderr).With(slog.String("component", "repl"))
	logger.InfoContext(ctx, "evaluating")
}
