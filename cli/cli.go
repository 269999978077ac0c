package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lambda/cli/cmd"
	"github.com/ardnew/lambda/log"
	"github.com/ardnew/lambda/metrics"
	"github.com/ardnew/lambda/pkg"
)

// defaultDirMode is the permission mode of created directories.
const defaultDirMode os.FileMode = 0o700

// CLI is the top-level command-line interface for lambda.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Metrics bool             `help:"Log engine metrics on exit."`
	Version kong.VersionFlag `help:"Print version and exit."     short:"V"`

	Eval  cmd.Eval  `cmd:"" default:"withargs" help:"Evaluate an expression"`
	Parse cmd.Parse `cmd:""                    help:"Print the syntax tree of an expression"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive shell"`
	Init  cmd.Init  `cmd:""                    help:"Write the current flags to the configuration file"`
}

// Run executes the lambda CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) (err error) {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	confPath := pkg.ConfigPath()

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	// Apply logger flags before kong parses anything, so that errors in the
	// configuration files are reported the way the user asked.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON,
			strings.TrimSuffix(confPath, filepath.Ext(confPath))+".json"),
		kong.Configuration(resolveYAML, confPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Finalize the logger with the flags that have no early hook, such as
	// TimeLayout.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	if cli.Metrics {
		col, err := metrics.NewCollector()
		if err != nil {
			return err
		}

		ctx = cmd.WithRecorder(ctx, col)

		defer reportMetrics(ctx, col)
	}

	return ktx.Run(ctx, &cli)
}

// reportMetrics logs a summary of everything col recorded.
func reportMetrics(ctx context.Context, col *metrics.Collector) {
	attrs, err := col.Summary(ctx)
	if err != nil {
		log.WarnContext(ctx, "collect metrics", slog.Any("error", err))
	} else {
		log.InfoContext(ctx, "engine metrics", attrs...)
	}

	if err := col.Shutdown(ctx); err != nil {
		log.WarnContext(ctx, "shutdown metrics", slog.Any("error", err))
	}
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
