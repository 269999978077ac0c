package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lambda/log"
	"github.com/ardnew/lambda/profile"
)

// defaultConfigIndent is the indentation of the generated YAML.
const defaultConfigIndent = 2

// configIgnore lists flag name prefixes never written to the configuration.
//
//nolint:gochecknoglobals
var configIgnore = []string{"help", "version", "force", "file", profile.Tag}

// Init writes the current flag values as a YAML configuration file.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(os.ErrInvalid)
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrWriteConfig.Wrap(os.ErrInvalid)
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(configValues(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.InfoContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configValues collects the value of every configurable flag in the model,
// the application's own flags first, then each command's in declaration
// order. Flags shared by several commands are written once.
func configValues(ktx *kong.Context) yaml.MapSlice {
	var (
		out  yaml.MapSlice
		seen = make(map[string]bool)
	)

	add := func(flags []*kong.Flag) {
		for _, flag := range flags {
			if flag.Hidden || seen[flag.Name] || ignored(flag.Name) {
				continue
			}

			seen[flag.Name] = true

			if val, ok := configValue(ktx.FlagValue(flag)); ok {
				out = append(out, yaml.MapItem{Key: flag.Name, Value: val})
			}
		}
	}

	add(ktx.Model.Flags)

	for _, child := range ktx.Model.Children {
		add(child.Flags)
	}

	return out
}

func ignored(name string) bool {
	return slices.ContainsFunc(configIgnore, func(prefix string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// configValue returns v in a form the YAML resolver reads back, dropping
// empty values.
func configValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case string:
		return v, v != ""
	case []string:
		return v, len(v) > 0
	case interface{ MarshalText() ([]byte, error) }:
		b, err := v.MarshalText()

		return string(b), err == nil && len(b) > 0
	}

	return v, true
}
