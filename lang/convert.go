package lang

import (
	"log/slog"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var typeInt = reflect.TypeFor[int]()

// numericDecimal converts a Go number to a decimal. Strings, booleans and
// durations are not numbers here, and neither are NaN and the infinities,
// which have no decimal form.
func numericDecimal(x any) (decimal.Decimal, bool) {
	switch x := x.(type) {
	case decimal.Decimal:
		return x, true
	case time.Duration:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		if !finite(x) {
			return decimal.Zero, false
		}

		return decimal.NewFromFloat(x), true
	}

	if x == nil {
		return decimal.Zero, false
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type() == typeDuration {
			return decimal.Zero, false
		}

		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), true
	case reflect.Float32, reflect.Float64:
		if !finite(rv.Float()) {
			return decimal.Zero, false
		}

		if rv.Kind() == reflect.Float32 {
			return decimal.NewFromFloat32(float32(rv.Float())), true
		}

		return decimal.NewFromFloat(rv.Float()), true
	}

	return decimal.Zero, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// nonFinite reports whether x is a NaN or infinite float of any float type.
func nonFinite(x any) bool {
	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return !finite(rv.Float())
	}

	return false
}

// toDecimal coerces an arithmetic operand to a decimal.
// Numeric strings parse, booleans are 1 or 0 and null is 0.
func toDecimal(v Value) (decimal.Decimal, error) {
	switch v.kind {
	case KindNull:
		return decimal.Zero, nil
	case KindNumber:
		if d, ok := numericDecimal(v.v); ok {
			return d, nil
		}
	case KindBool:
		if v.v.(bool) {
			return decimal.NewFromInt(1), nil
		}

		return decimal.Zero, nil
	case KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.v.(string)))
		if err == nil {
			return d, nil
		}
	}

	return decimal.Zero, ErrInvalidOperand.With(
		slog.String("type", v.TypeName()),
		slog.String("value", v.String()),
	)
}

func errConvert(x any, t reflect.Type) *Error {
	return ErrConvert.With(
		slog.String("from", typeName(x)),
		slog.String("to", t.String()),
	)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map,
		reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// convertTo converts x into a value assignable to t.
func convertTo(x any, t reflect.Type) (reflect.Value, error) {
	if w, ok := x.(Value); ok {
		x = w.Native()
	}

	if x == nil {
		if nillable(t) {
			return reflect.Zero(t), nil
		}

		return reflect.Value{}, errConvert(x, t)
	}

	rv := reflect.ValueOf(x)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch t {
	case typeDecimal:
		d, err := toDecimal(Wrap(x))
		if err != nil {
			return reflect.Value{}, errConvert(x, t)
		}

		return reflect.ValueOf(d), nil

	case typeDuration:
		if s, ok := x.(string); ok {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err == nil {
				return reflect.ValueOf(d), nil
			}
		}

		return reflect.Value{}, errConvert(x, t)

	case typeTime:
		if s, ok := x.(string); ok {
			tm, err := parseTime(s)
			if err == nil {
				return reflect.ValueOf(tm), nil
			}
		}

		return reflect.Value{}, errConvert(x, t)
	}

	out := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		d, err := scalarDecimal(x)
		if err != nil || !d.IsInteger() || !d.BigInt().IsInt64() ||
			out.OverflowInt(d.IntPart()) {
			return reflect.Value{}, errConvert(x, t)
		}

		out.SetInt(d.IntPart())

		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		d, err := scalarDecimal(x)
		if err != nil || !d.IsInteger() || d.IsNegative() ||
			!d.BigInt().IsUint64() || out.OverflowUint(d.BigInt().Uint64()) {
			return reflect.Value{}, errConvert(x, t)
		}

		out.SetUint(d.BigInt().Uint64())

		return out, nil

	case reflect.Float32, reflect.Float64:
		if nonFinite(x) {
			out.SetFloat(rv.Float())

			return out, nil
		}

		d, err := scalarDecimal(x)
		if err != nil {
			return reflect.Value{}, errConvert(x, t)
		}

		out.SetFloat(d.InexactFloat64())

		return out, nil

	case reflect.String:
		switch Wrap(x).Kind() {
		case KindNumber, KindString, KindBool, KindTime, KindDuration:
			out.SetString(formatText(x))

			return out, nil
		}

	case reflect.Bool:
		switch v := Wrap(x); v.Kind() {
		case KindBool:
			out.SetBool(v.v.(bool))

			return out, nil
		case KindString:
			b, err := strconv.ParseBool(strings.TrimSpace(v.v.(string)))
			if err == nil {
				out.SetBool(b)

				return out, nil
			}
		case KindNumber:
			d, _ := numericDecimal(v.v)
			out.SetBool(!d.IsZero())

			return out, nil
		}

	case reflect.Slice:
		return convertSlice(x, rv, t)

	case reflect.Map:
		return convertMap(x, rv, t)
	}

	if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, errConvert(x, t)
}

// scalarDecimal is toDecimal restricted to numbers, numeric strings and
// booleans.
func scalarDecimal(x any) (decimal.Decimal, error) {
	v := Wrap(x)

	switch v.Kind() {
	case KindNumber, KindString, KindBool:
		return toDecimal(v)
	default:
		return decimal.Zero, ErrInvalidOperand
	}
}

func convertSlice(x any, rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, errConvert(x, t)
	}

	out := reflect.MakeSlice(t, rv.Len(), rv.Len())
	for i := range rv.Len() {
		e, err := convertTo(rv.Index(i).Interface(), t.Elem())
		if err != nil {
			return reflect.Value{}, errConvert(x, t)
		}

		out.Index(i).Set(e)
	}

	return out, nil
}

func convertMap(x any, rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMap(t)

	put := func(k, e any) error {
		kv, err := convertTo(k, t.Key())
		if err != nil {
			return err
		}

		ev, err := convertTo(e, t.Elem())
		if err != nil {
			return err
		}

		out.SetMapIndex(kv, ev)

		return nil
	}

	switch {
	case rv.Type() == reflect.TypeFor[*Dict]():
		for k, e := range x.(*Dict).All() {
			if err := put(k, e); err != nil {
				return reflect.Value{}, errConvert(x, t)
			}
		}

	case rv.Kind() == reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			err := put(iter.Key().Interface(), iter.Value().Interface())
			if err != nil {
				return reflect.Value{}, errConvert(x, t)
			}
		}

	default:
		return reflect.Value{}, errConvert(x, t)
	}

	return out, nil
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}

	return time.Time{}, ErrConvert.With(slog.String("time", s))
}

// toInt coerces an index argument to int.
func toInt(x any) (int, error) {
	rv, err := convertTo(x, typeInt)
	if err != nil {
		return 0, err
	}

	return int(rv.Int()), nil
}
