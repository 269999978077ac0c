// Package cmd implements the lambda subcommands.
//
// [Eval] compiles and evaluates one expression, [Parse] prints its syntax
// tree, [Repl] starts the interactive shell, and [Init] writes the current
// flags as a YAML configuration file. The first three share the [Engine]
// flags that configure the parser and the [Variables] flags that define
// the evaluation context.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
