package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// Format selects how results and syntax trees are written.
type Format int

const (
	// FormatText writes the natural text form.
	FormatText Format = iota
	// FormatJSON writes JSON.
	FormatJSON
	// FormatYAML writes YAML.
	FormatYAML
)

var formatNames = [...]string{
	FormatText: "text",
	FormatJSON: "json",
	FormatYAML: "yaml",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}

	return "Format(" + fmt.Sprint(int(f)) + ")"
}

// Formats returns an iterator over all supported format names.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatNames {
			if !yield(name) {
				return
			}
		}
	}
}

// ParseFormat returns the Format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}

	return FormatText, ErrUnknownFormat.With(slog.String("format", s))
}

// Plain converts an evaluation result into values the JSON and YAML
// encoders render naturally: integral decimals become int64, other decimals
// float64, durations their text form, and lists are converted element-wise.
// A [*Dict] is returned as is since it encodes itself in order.
func Plain(x any) any {
	switch x := x.(type) {
	case Value:
		return Plain(x.v)
	case decimal.Decimal:
		if x.IsInteger() {
			if i := x.IntPart(); decimal.NewFromInt(i).Equal(x) {
				return i
			}
		}

		f := x.InexactFloat64()
		if math.IsInf(f, 0) {
			return x.String()
		}

		return f
	case time.Duration:
		return x.String()
	case *Dict, string, bool, nil, time.Time:
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Plain(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Plain(e)
		}

		return out
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return x
		}

		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Plain(rv.Index(i).Interface())
		}

		return out
	}

	return x
}

// FormatValue writes the evaluation result x to w in format f, followed by
// a newline. An indent of zero selects the compact form.
func FormatValue(
	ctx context.Context,
	w io.Writer,
	x any,
	f Format,
	indent int,
) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, Plain(x), indent)

	case FormatYAML:
		return writeYAML(ctx, w, Plain(x), indent)
	}

	_, err := fmt.Fprintln(w, formatText(x))

	return err
}

// FormatJSON writes the AST as JSON to the writer.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, ast.ToMap(), indent)
}

// FormatYAML writes the AST as YAML to the writer.
func (ast *AST) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, ast.ToMap(), indent)
}

// Format writes the AST to w in format f. The text form is the indented
// tree written by [AST.PrintIndent].
func (ast *AST) Format(ctx context.Context, w io.Writer, f Format, indent int) error {
	switch f {
	case FormatJSON:
		return ast.FormatJSON(ctx, w, indent)

	case FormatYAML:
		return ast.FormatYAML(ctx, w, indent)
	}

	ast.PrintIndent(ctx, w, indent)

	return nil
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
