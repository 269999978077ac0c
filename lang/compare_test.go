package lang

import (
	"errors"
	"math"
	"testing"
	"time"
)

// version orders itself through a Compare method.
type version struct{ major, minor int }

func (v version) Compare(o version) int {
	if v.major != o.major {
		return v.major - o.major
	}

	return v.minor - o.minor
}

func TestValueComparer_Compare(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		x, y any
		want Ordering
	}{
		{"null null", nil, nil, Equal},
		{"null first", nil, 1, Less},
		{"null last", "a", nil, Greater},
		{"numbers", 1, dec("1.0"), Equal},
		{"numbers less", 1.5, 2, Less},
		{"mixed ints", uint8(200), int64(-1), Greater},
		{"strings", "abc", "abd", Less},
		{"bools", false, true, Less},
		{"times", epoch, epoch.Add(time.Second), Less},
		{"durations", time.Minute, time.Second, Greater},
		{"number vs string", 10, "9", Greater},
		{"string vs number", "10", 9, Greater},
		{"number vs bool", 1, true, Equal},
		{"bool vs number", false, 0, Equal},
		{"bool vs string", true, "true", Equal},
		{"time vs string", epoch, "2024-01-01", Equal},
		{"duration vs string", time.Minute, "60s", Equal},
		{"lists", []any{1, 2}, []int{1, 2}, Equal},
		{"list shorter", []int{9}, []int{1, 2}, Less},
		{"list element", []int{1, 3}, []int{1, 2}, Greater},
		{"host", version{1, 2}, version{1, 10}, Less},
		{"host reversed", version{2, 0}, version{1, 10}, Greater},
		{"same pointer", &epoch, &epoch, Equal},
	}

	c := DefaultComparer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compare(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Compare(%v, %v): %v", tt.x, tt.y, err)
			}

			if got != tt.want {
				t.Errorf("Compare(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}

			// Swapping operands inverts the ordering.
			back, err := c.Compare(tt.y, tt.x)
			if err != nil {
				t.Fatalf("Compare(%v, %v): %v", tt.y, tt.x, err)
			}

			if back != got.invert() {
				t.Errorf("Compare(%v, %v) = %v, want %v", tt.y, tt.x, back, got.invert())
			}
		})
	}
}

func TestValueComparer_Reflexive(t *testing.T) {
	c := DefaultComparer()

	for _, x := range []any{
		nil, 0, dec("-3.25"), "", "x", true, time.Now(), time.Hour,
		[]any{1, "a"}, version{1, 1},
	} {
		if got, err := c.Compare(x, x); err != nil || got != Equal {
			t.Errorf("Compare(%v, %v) = %v, %v", x, x, got, err)
		}
	}
}

func TestValueComparer_NullSQL(t *testing.T) {
	c := &ValueComparer{NullMode: NullSQL}

	for _, pair := range [][2]any{{nil, nil}, {nil, 1}, {"a", nil}} {
		got, err := c.Compare(pair[0], pair[1])
		if err != nil || got != Incomparable {
			t.Errorf("Compare(%v, %v) = %v, %v; want Incomparable", pair[0], pair[1], got, err)
		}
	}
}

func TestValueComparer_Incomparable(t *testing.T) {
	type host struct{ A int }

	c := DefaultComparer()

	_, err := c.Compare(host{1}, 1)

	var ie *IncomparableValuesError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IncomparableValuesError, got %v", err)
	}

	if _, err := c.Compare("abc", 1); err == nil {
		t.Error("expected error comparing non-numeric string to number")
	}

	quiet := &ValueComparer{SuppressErrors: true}

	got, err := quiet.Compare(host{1}, 1)
	if err != nil || got != Incomparable {
		t.Errorf("suppressed Compare = %v, %v", got, err)
	}
}

func TestValueComparer_NonFinite(t *testing.T) {
	c := DefaultComparer()

	for _, pair := range [][2]any{
		{math.NaN(), 1},
		{1, math.NaN()},
		{math.Inf(1), dec("1")},
		{float32(math.Inf(-1)), 0},
		{math.NaN(), math.NaN()},
		{math.NaN(), "1"},
		{true, math.Inf(1)},
	} {
		got, err := c.Compare(pair[0], pair[1])

		var ie *IncomparableValuesError
		if got != Incomparable || !errors.As(err, &ie) {
			t.Errorf("Compare(%v, %v) = %v, %v; want *IncomparableValuesError", pair[0], pair[1], got, err)
		}
	}

	if got, err := c.Compare(math.Inf(1), math.Inf(1)); err != nil || got != Equal {
		t.Errorf("Compare(+Inf, +Inf) = %v, %v", got, err)
	}
}

func TestValueComparer_UncomparableValues(t *testing.T) {
	type box struct{ A any }

	c := DefaultComparer()

	got, err := c.Compare(box{A: []int{1}}, box{A: []int{1}})

	var ie *IncomparableValuesError
	if got != Incomparable || !errors.As(err, &ie) {
		t.Errorf("Compare(box{[1]}, box{[1]}) = %v, %v", got, err)
	}

	if got, err := c.Compare(box{A: 1}, box{A: 1}); err != nil || got != Equal {
		t.Errorf("Compare(box{1}, box{1}) = %v, %v", got, err)
	}
}

func TestRelational(t *testing.T) {
	c := DefaultComparer()
	quiet := &ValueComparer{SuppressErrors: true}

	type host struct{}

	tests := []struct {
		name    string
		c       Comparer
		op      string
		x, y    any
		want    bool
		wantErr bool
	}{
		{"eq", c, "==", 1, dec("1"), true, false},
		{"ne", c, "!=", "a", "b", true, false},
		{"eq incomparable", c, "==", host{}, 1, false, false},
		{"ne incomparable", c, "!=", host{}, 1, true, false},
		{"lt", c, "<", 1, 2, true, false},
		{"le", c, "<=", 2, 2, true, false},
		{"gt", c, ">", "b", "a", true, false},
		{"ge", c, ">=", 1, 2, false, false},
		{"lt incomparable", c, "<", host{}, 1, false, true},
		{"lt suppressed", quiet, "<", host{}, 1, false, false},
		{"ge suppressed", quiet, ">=", host{}, 1, false, false},
		{"eq NaN", c, "==", math.NaN(), 1, false, false},
		{"ne NaN", c, "!=", math.NaN(), math.NaN(), true, false},
		{"gt infinity", c, ">", math.Inf(1), 1, false, true},
		{"eq infinity", c, "==", math.Inf(-1), math.Inf(-1), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := relational(tt.c, tt.op, Wrap(tt.x), Wrap(tt.y))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("%v %s %v = %v, want %v", tt.x, tt.op, tt.y, got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	c := DefaultComparer()

	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{1, true},
		{0, false},
		{dec("2"), false},
		{"true", true},
		{"yes", false},
		{struct{}{}, false},
	}

	for _, tt := range tests {
		if got := truthy(c, Wrap(tt.in)); got != tt.want {
			t.Errorf("truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
