package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lambda/log"
)

// resolveYAML is a [kong.ConfigurationLoader] for YAML configuration files
// such as the one written by the init command:
//
//	log-level: debug
//	null-mode: sql
//	var:
//	  - greeting="hello"
//
// Keys are flag names. Nested mappings are joined with '-', so
//
//	log:
//	  level: debug
//
// sets --log-level as well. Underscores may stand in for hyphens. A file
// that cannot be decoded is ignored with a warning. Command-line flags
// override configured values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var m map[string]any

	if err := yaml.NewDecoder(r).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("ignoring configuration file", slog.Any("error", err))

		return config{}, nil
	}

	c := make(config, len(m))
	c.flatten("", m)

	return c, nil
}

// config implements [kong.Resolver] over a flat map of flag names.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(prefix+k, "_", "-")

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key+"-", sub)

			continue
		}

		c[key] = flagValue(v)
	}
}

// flagValue converts a decoded YAML value to a form kong's mappers accept:
// numbers become strings and sequences are converted element-wise.
func flagValue(v any) any {
	switch v := v.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	case nil, string, bool:
		return v
	}

	return fmt.Sprint(v)
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
