package lang

import (
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func registerBuiltins(r *ReflectResolver) {
	str := reflect.String

	r.RegisterKindAdapter(str, "Length", utf8.RuneCountInString)
	r.RegisterKindAdapter(str, "Substring", substring)
	r.RegisterKindAdapter(str, "Substring", substringN)
	r.RegisterKindAdapter(str, "ToUpper", strings.ToUpper)
	r.RegisterKindAdapter(str, "ToLower", strings.ToLower)
	r.RegisterKindAdapter(str, "Trim", strings.TrimSpace)
	r.RegisterKindAdapter(str, "Contains", strings.Contains)
	r.RegisterKindAdapter(str, "StartsWith", strings.HasPrefix)
	r.RegisterKindAdapter(str, "EndsWith", strings.HasSuffix)
	r.RegisterKindAdapter(str, "IndexOf", indexOf)
	r.RegisterKindAdapter(str, "Replace", strings.ReplaceAll)
	r.RegisterKindAdapter(str, "Split", strings.Split)
	r.RegisterKindAdapter(str, "PadLeft", padLeft, " ")

	tm := typeTime

	r.RegisterAdapter(tm, "AddDays", func(t time.Time, n decimal.Decimal) time.Time {
		return t.Add(time.Duration(n.Mul(decimal.NewFromInt(int64(24 * time.Hour))).IntPart()))
	})
	r.RegisterAdapter(tm, "AddHours", func(t time.Time, n decimal.Decimal) time.Time {
		return t.Add(time.Duration(n.Mul(decimal.NewFromInt(int64(time.Hour))).IntPart()))
	})
	r.RegisterAdapter(tm, "ToString", func(t time.Time, layout string) string {
		return t.Format(layout)
	}, time.RFC3339)

	dur := typeDuration

	r.RegisterAdapter(dur, "TotalDays", func(d time.Duration) decimal.Decimal {
		return totalUnits(d, 24*time.Hour)
	})
	r.RegisterAdapter(dur, "TotalHours", func(d time.Duration) decimal.Decimal {
		return totalUnits(d, time.Hour)
	})
	r.RegisterAdapter(dur, "TotalMinutes", func(d time.Duration) decimal.Decimal {
		return totalUnits(d, time.Minute)
	})
	r.RegisterAdapter(dur, "TotalSeconds", func(d time.Duration) decimal.Decimal {
		return totalUnits(d, time.Second)
	})

	r.RegisterAdapter(reflect.TypeFor[*Dict](), "Count", (*Dict).Len)

	for _, k := range []reflect.Kind{reflect.Slice, reflect.Array} {
		r.RegisterKindAdapter(k, "Length", seqLen)
		r.RegisterKindAdapter(k, "Count", seqLen)
		r.RegisterKindAdapter(k, "Join", join, ", ")
	}

	r.RegisterKindAdapter(reflect.Map, "Count", seqLen)
	r.RegisterKindAdapter(reflect.Map, "ContainsKey", mapContainsKey)
	r.RegisterKindAdapter(reflect.Map, "Keys", mapKeys)

	r.RegisterAdapter(typeAny, "ToString", formatText)
}

// substring returns the runes of s from start to the end.
func substring(s string, start int) (string, error) {
	rs := []rune(s)
	if start < 0 || start > len(rs) {
		return "", ErrIndexRange
	}

	return string(rs[start:]), nil
}

// substringN returns n runes of s beginning at start.
func substringN(s string, start, n int) (string, error) {
	rs := []rune(s)
	if start < 0 || n < 0 || start+n > len(rs) {
		return "", ErrIndexRange
	}

	return string(rs[start : start+n]), nil
}

// indexOf returns the rune position of the first sub in s, or -1.
func indexOf(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}

	return utf8.RuneCountInString(s[:i])
}

func padLeft(s string, width int, pad string) string {
	n := utf8.RuneCountInString(s)
	if pad == "" || n >= width {
		return s
	}

	fill := strings.Repeat(pad, width-n)

	return string([]rune(fill)[:width-n]) + s
}

func totalUnits(d, unit time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(decimal.NewFromInt(int64(unit)))
}

func seqLen(x any) int { return reflect.ValueOf(x).Len() }

func join(x any, sep string) string {
	rv := reflect.ValueOf(x)

	part := make([]string, rv.Len())
	for i := range rv.Len() {
		part[i] = formatText(rv.Index(i).Interface())
	}

	return strings.Join(part, sep)
}

func mapContainsKey(m, key any) bool {
	rv := reflect.ValueOf(m)

	k, err := convertTo(key, rv.Type().Key())
	if err != nil {
		return false
	}

	return rv.MapIndex(k).IsValid()
}

// mapKeys returns the keys of m ordered by their natural text form.
func mapKeys(m any) []any {
	rv := reflect.ValueOf(m)

	keys := make([]any, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.Interface())
	}

	sort.Slice(keys, func(i, j int) bool {
		return formatText(keys[i]) < formatText(keys[j])
	})

	return keys
}
