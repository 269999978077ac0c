package lang

import (
	"cmp"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ordering is the result of comparing two values.
type Ordering int

const (
	Less         Ordering = -1
	Equal        Ordering = 0
	Greater      Ordering = 1
	Incomparable Ordering = 2
)

// String returns a string representation of the ordering.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return "Incomparable"
	}
}

func (o Ordering) invert() Ordering {
	if o == Incomparable {
		return o
	}

	return -o
}

// NullMode selects how a [ValueComparer] orders null.
type NullMode int

const (
	// NullMin orders null before every other value and equal to itself.
	NullMin NullMode = iota
	// NullSQL makes any comparison involving null incomparable.
	NullSQL
)

// String returns a string representation of the null mode.
func (m NullMode) String() string {
	if m == NullSQL {
		return "sql"
	}

	return "min"
}

// Comparer orders values of arbitrary type.
//
// Every equality and ordering operator of the language is routed through a
// Comparer.
type Comparer interface {
	Compare(x, y any) (Ordering, error)
}

// ValueComparer is the default [Comparer].
//
// Values of the same kind compare natively. Sequences compare by length and
// then element by element. Host values implementing a Compare(T) int method
// compare through it. Otherwise the operand of the looser kind is coerced to
// the kind of the other: strings to booleans, durations, times or numbers,
// and booleans to numbers.
type ValueComparer struct {
	NullMode NullMode
	// SuppressErrors reports Incomparable without an error when values have
	// no common representation.
	SuppressErrors bool
}

// DefaultComparer returns a ValueComparer with the default policy: null is
// the minimum value and incomparable values are errors.
func DefaultComparer() *ValueComparer { return &ValueComparer{} }

// Compare implements [Comparer].
func (c *ValueComparer) Compare(x, y any) (Ordering, error) {
	x, y = unwrap(x), unwrap(y)

	if c.NullMode == NullSQL && (x == nil || y == nil) {
		return Incomparable, nil
	}

	ord, err := c.compare(x, y)
	if err != nil {
		if c.SuppressErrors {
			return Incomparable, nil
		}

		return Incomparable, err
	}

	return ord, nil
}

func unwrap(x any) any {
	if w, ok := x.(Value); ok {
		return w.v
	}

	return x
}

func (c *ValueComparer) compare(x, y any) (Ordering, error) {
	switch {
	case x == nil && y == nil:
		return Equal, nil
	case x == nil:
		return Less, nil
	case y == nil:
		return Greater, nil
	}

	vx, vy := Wrap(x), Wrap(y)

	if vx.kind == KindList && vy.kind == KindList {
		return c.compareLists(vx, vy)
	}

	if vx.kind == vy.kind {
		if ord, ok := compareNative(vx, vy); ok {
			return ord, nil
		}
	}

	if ord, ok := compareHost(x, y); ok {
		return ord, nil
	}

	if ord, ok := compareHost(y, x); ok {
		return ord.invert(), nil
	}

	// A comparable type may still hold an uncomparable value in an interface
	// field, so ask the value rather than the type.
	if reflect.TypeOf(x) == reflect.TypeOf(y) && reflect.ValueOf(x).Comparable() &&
		reflect.ValueOf(y).Comparable() && x == y {
		return Equal, nil
	}

	// Coerce toward the higher ranked kind so that swapping the operands
	// always inverts the result.
	switch {
	case rank(vx.kind) > 0 && rank(vx.kind) >= rank(vy.kind):
		if ord, ok := coerceCompare(vx, vy); ok {
			return ord, nil
		}
	case rank(vy.kind) > 0:
		if ord, ok := coerceCompare(vy, vx); ok {
			return ord.invert(), nil
		}
	}

	return Incomparable, &IncomparableValuesError{
		Left:  typeName(x),
		Right: typeName(y),
	}
}

func (c *ValueComparer) compareLists(x, y Value) (Ordering, error) {
	rx, ry := reflect.ValueOf(x.v), reflect.ValueOf(y.v)

	if n, m := rx.Len(), ry.Len(); n != m {
		return Ordering(cmp.Compare(n, m)), nil
	}

	for i := range rx.Len() {
		ord, err := c.Compare(rx.Index(i).Interface(), ry.Index(i).Interface())
		if err != nil || ord != Equal {
			return ord, err
		}
	}

	return Equal, nil
}

func ordered(k Kind) bool { return rank(k) > 0 }

// rank orders the kinds that have a native ordering by how strictly they
// parse: every ordered kind has a text form, but few strings are numbers.
func rank(k Kind) int {
	switch k {
	case KindString:
		return 1
	case KindBool:
		return 2
	case KindDuration:
		return 3
	case KindTime:
		return 4
	case KindNumber:
		return 5
	default:
		return 0
	}
}

// compareNative orders two values of the same ordered kind.
func compareNative(x, y Value) (Ordering, bool) {
	switch x.kind {
	case KindNumber:
		dx, okx := numericDecimal(x.v)
		dy, oky := numericDecimal(y.v)

		if !okx || !oky {
			return Incomparable, false
		}

		return Ordering(dx.Cmp(dy)), true
	case KindString:
		return Ordering(strings.Compare(x.v.(string), y.v.(string))), true
	case KindBool:
		return compareBool(x.v.(bool), y.v.(bool)), true
	case KindTime:
		return Ordering(x.v.(time.Time).Compare(y.v.(time.Time))), true
	case KindDuration:
		return Ordering(cmp.Compare(x.v.(time.Duration), y.v.(time.Duration))), true
	default:
		return Incomparable, false
	}
}

func compareBool(x, y bool) Ordering {
	switch {
	case x == y:
		return Equal
	case y:
		return Less
	default:
		return Greater
	}
}

// compareHost uses a Compare(T) int method declared by x, when y converts to
// T.
func compareHost(x, y any) (Ordering, bool) {
	m := reflect.ValueOf(x).MethodByName("Compare")
	if !m.IsValid() {
		return Incomparable, false
	}

	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.IsVariadic() ||
		mt.Out(0).Kind() != reflect.Int {
		return Incomparable, false
	}

	arg, err := convertTo(y, mt.In(0))
	if err != nil {
		return Incomparable, false
	}

	return Ordering(cmp.Compare(m.Call([]reflect.Value{arg})[0].Int(), 0)), true
}

// coerceCompare converts y into the kind of x and compares the results.
func coerceCompare(x, y Value) (Ordering, bool) {
	switch x.kind {
	case KindString:
		if !ordered(y.kind) {
			return Incomparable, false
		}

		return Ordering(strings.Compare(x.v.(string), y.String())), true

	case KindNumber:
		dx, ok := numericDecimal(x.v)
		if !ok {
			return Incomparable, false
		}

		var dy decimal.Decimal

		switch y.kind {
		case KindString:
			d, err := decimal.NewFromString(strings.TrimSpace(y.v.(string)))
			if err != nil {
				return Incomparable, false
			}

			dy = d
		case KindBool:
			if y.v.(bool) {
				dy = decimal.NewFromInt(1)
			}
		default:
			return Incomparable, false
		}

		return Ordering(dx.Cmp(dy)), true

	case KindBool:
		switch y.kind {
		case KindString:
			b, err := strconv.ParseBool(strings.TrimSpace(y.v.(string)))
			if err != nil {
				return Incomparable, false
			}

			return compareBool(x.v.(bool), b), true
		case KindNumber:
			d, ok := numericDecimal(y.v)
			if !ok {
				return Incomparable, false
			}

			return compareBool(x.v.(bool), !d.IsZero()), true
		}

	case KindTime:
		if y.kind == KindString {
			t, err := parseTime(y.v.(string))
			if err == nil {
				return Ordering(x.v.(time.Time).Compare(t)), true
			}
		}

	case KindDuration:
		if y.kind == KindString {
			d, err := time.ParseDuration(strings.TrimSpace(y.v.(string)))
			if err == nil {
				return Ordering(cmp.Compare(x.v.(time.Duration), d)), true
			}
		}
	}

	return Incomparable, false
}

// truthy reports whether v compares equal to true.
func truthy(c Comparer, v Value) bool {
	ord, err := c.Compare(v.v, true)

	return err == nil && ord == Equal
}

// relational evaluates an equality or ordering operator.
// Equality never fails; ordering fails when the comparer reports an error.
func relational(c Comparer, op string, x, y Value) (bool, error) {
	ord, err := c.Compare(x.v, y.v)

	switch op {
	case "==":
		return err == nil && ord == Equal, nil
	case "!=":
		return err != nil || ord != Equal, nil
	}

	if err != nil {
		return false, err
	}

	switch op {
	case "<":
		return ord == Less, nil
	case "<=":
		return ord == Less || ord == Equal, nil
	case ">":
		return ord == Greater, nil
	case ">=":
		return ord == Greater || ord == Equal, nil
	}

	return false, ErrInvalidOperand
}
