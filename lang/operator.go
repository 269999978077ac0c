package lang

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Add implements binary "+".
//
// A string on either side concatenates the natural text forms. A duration
// shifts a time (in either order) or sums with another duration. Otherwise
// both operands are added as decimals.
func (v Value) Add(w Value) (Value, error) {
	if v.kind == KindString || w.kind == KindString {
		return text(v.String() + w.String()), nil
	}

	switch {
	case v.kind == KindDuration && w.kind == KindTime:
		return Wrap(w.v.(time.Time).Add(v.v.(time.Duration))), nil
	case v.kind == KindTime && w.kind == KindDuration:
		return Wrap(v.v.(time.Time).Add(w.v.(time.Duration))), nil
	case v.kind == KindDuration && w.kind == KindDuration:
		return Wrap(v.v.(time.Duration) + w.v.(time.Duration)), nil
	}

	return arith(v, w, decimal.Decimal.Add)
}

// Subtract implements binary "-".
func (v Value) Subtract(w Value) (Value, error) {
	switch {
	case v.kind == KindDuration && w.kind == KindDuration:
		return Wrap(v.v.(time.Duration) - w.v.(time.Duration)), nil
	case v.kind == KindTime && w.kind == KindTime:
		return Wrap(v.v.(time.Time).Sub(w.v.(time.Time))), nil
	case v.kind == KindTime && w.kind == KindDuration:
		return Wrap(v.v.(time.Time).Add(-w.v.(time.Duration))), nil
	}

	return arith(v, w, decimal.Decimal.Sub)
}

// Multiply implements binary "*".
func (v Value) Multiply(w Value) (Value, error) {
	return arith(v, w, decimal.Decimal.Mul)
}

// Divide implements binary "/". A zero divisor is an error.
func (v Value) Divide(w Value) (Value, error) {
	return divide(v, w, "/", decimal.Decimal.Div)
}

// Modulo implements binary "%". The remainder takes the sign of the dividend
// and a zero divisor is an error.
func (v Value) Modulo(w Value) (Value, error) {
	return divide(v, w, "%", decimal.Decimal.Mod)
}

// Negate implements unary "-".
func (v Value) Negate() (Value, error) {
	if v.kind == KindDuration {
		return Wrap(-v.v.(time.Duration)), nil
	}

	d, err := toDecimal(v)
	if err != nil {
		return Null, err
	}

	return number(d.Neg()), nil
}

type decimalOp func(x, y decimal.Decimal) decimal.Decimal

func arith(v, w Value, op decimalOp) (Value, error) {
	x, err := toDecimal(v)
	if err != nil {
		return Null, err
	}

	y, err := toDecimal(w)
	if err != nil {
		return Null, err
	}

	return number(op(x, y)), nil
}

func divide(v, w Value, op string, fn decimalOp) (Value, error) {
	x, err := toDecimal(v)
	if err != nil {
		return Null, err
	}

	y, err := toDecimal(w)
	if err != nil {
		return Null, err
	}

	if y.IsZero() {
		return Null, ErrDivideByZero.With(
			slog.String("op", op),
			slog.String("dividend", x.String()),
		)
	}

	return number(fn(x, y)), nil
}

// Binary evaluates the arithmetic operator op ("+", "-", "*", "/", "%").
func (v Value) Binary(op string, w Value) (Value, error) {
	switch op {
	case "+":
		return v.Add(w)
	case "-":
		return v.Subtract(w)
	case "*":
		return v.Multiply(w)
	case "/":
		return v.Divide(w)
	case "%":
		return v.Modulo(w)
	}

	return Null, ErrInvalidOperand.With(slog.String("op", op))
}
