package lang

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies the dynamic type of a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindTime
	KindDuration
	KindList
	KindMap
	KindCallable
	KindHost
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindTime:
		return "Time"
	case KindDuration:
		return "Duration"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindCallable:
		return "Callable"
	case KindHost:
		return "Host"
	default:
		return "Unknown"
	}
}

// Value is the dynamically-typed runtime representation of every literal,
// intermediate result and variable.
//
// The zero Value is null.
type Value struct {
	kind Kind
	v    any
}

// Null is the null value.
var Null = Value{}

var (
	typeDecimal  = reflect.TypeFor[decimal.Decimal]()
	typeTime     = reflect.TypeFor[time.Time]()
	typeDuration = reflect.TypeFor[time.Duration]()
	typeError    = reflect.TypeFor[error]()
	typeAny      = reflect.TypeFor[any]()
)

// Wrap converts a native Go value into a Value.
//
// Wrapping a Value returns it unchanged, and wrapping []any unwraps each
// element, so wrappers never nest.
func Wrap(x any) Value {
	switch x := x.(type) {
	case nil:
		return Null
	case Value:
		return x
	case *Value:
		if x == nil {
			return Null
		}

		return *x
	case decimal.Decimal:
		return Value{kind: KindNumber, v: x}
	case string:
		return Value{kind: KindString, v: x}
	case bool:
		return Value{kind: KindBool, v: x}
	case time.Time:
		return Value{kind: KindTime, v: x}
	case time.Duration:
		return Value{kind: KindDuration, v: x}
	case []any:
		return Value{kind: KindList, v: unwrapAll(x)}
	case *Dict:
		if x == nil {
			return Null
		}

		return Value{kind: KindMap, v: x}
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Value{kind: KindNumber, v: x}
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			return Null
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Value{kind: KindNumber, v: x}
	case reflect.String:
		return Value{kind: KindString, v: rv.String()}
	case reflect.Bool:
		return Value{kind: KindBool, v: rv.Bool()}
	case reflect.Slice:
		if rv.IsNil() {
			return Null
		}

		return Value{kind: KindList, v: x}
	case reflect.Array:
		return Value{kind: KindList, v: x}
	case reflect.Map:
		if rv.IsNil() {
			return Null
		}

		return Value{kind: KindMap, v: x}
	case reflect.Func:
		if rv.IsNil() {
			return Null
		}

		return Value{kind: KindCallable, v: x}
	}

	return Value{kind: KindHost, v: x}
}

// unwrapAll returns x with every Value element replaced by its native form.
// The input slice is copied only when it holds a Value.
func unwrapAll(x []any) []any {
	var out []any

	for i, e := range x {
		w, ok := e.(Value)
		if !ok {
			continue
		}

		if out == nil {
			out = make([]any, len(x))
			copy(out, x)
		}

		out[i] = w.Native()
	}

	if out == nil {
		return x
	}

	return out
}

func number(d decimal.Decimal) Value { return Value{kind: KindNumber, v: d} }

func boolean(b bool) Value { return Value{kind: KindBool, v: b} }

func text(s string) Value { return Value{kind: KindString, v: s} }

// Kind returns the dynamic kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Native returns the Go value wrapped by v.
func (v Value) Native() any { return v.v }

// TypeName returns the name of the Go type wrapped by v.
func (v Value) TypeName() string { return typeName(v.v) }

func typeName(x any) string {
	if x == nil {
		return "null"
	}

	return reflect.TypeOf(x).String()
}

// String returns the natural text form of v.
func (v Value) String() string { return formatText(v.v) }

// formatText renders a native value in natural text form: canonical decimals,
// true/false, empty for null, RFC 3339 times and bracketed collections.
func formatText(x any) string {
	switch x := x.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *Dict:
		part := make([]string, 0, x.Len())
		for k, e := range x.All() {
			part = append(part, formatText(k)+": "+formatText(e))
		}

		return "{" + strings.Join(part, ", ") + "}"
	case interface{ String() string }:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		part := make([]string, rv.Len())
		for i := range rv.Len() {
			part[i] = formatText(rv.Index(i).Interface())
		}

		return "[" + strings.Join(part, ", ") + "]"
	case reflect.Map:
		part := make([]string, 0, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			part = append(part,
				formatText(iter.Key().Interface())+": "+
					formatText(iter.Value().Interface()))
		}

		sort.Strings(part)

		return "{" + strings.Join(part, ", ") + "}"
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
	}

	return reflect.TypeOf(x).String()
}
