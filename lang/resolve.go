package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

// Resolver dispatches member, index and call operations onto host values.
type Resolver interface {
	InvokeMethod(target any, name string, args []any) (any, error)
	GetProperty(target any, name string) (any, error)
	InvokeIndex(target any, args []any) (any, error)
	InvokeCallable(target any, args []any) (any, error)
}

// ResolveMode selects how a [ReflectResolver] matches call arguments to
// parameters.
type ResolveMode int

const (
	// ResolveOptional lets trailing parameters with declared defaults be
	// omitted and spreads extra arguments over a variadic parameter.
	ResolveOptional ResolveMode = iota
	// ResolveStrict requires one argument per declared parameter. A variadic
	// parameter takes a single sequence argument.
	ResolveStrict
)

// String returns a string representation of the resolve mode.
func (m ResolveMode) String() string {
	if m == ResolveStrict {
		return "strict"
	}

	return "optional"
}

type adapter struct {
	fn       reflect.Value
	defaults []any
}

// ReflectResolver is the default [Resolver]. It reaches exported methods and
// fields through package reflect, and extension adapters registered per type
// or per kind supply members for types that declare none.
type ReflectResolver struct {
	Mode ResolveMode

	mu    sync.RWMutex
	types map[reflect.Type]map[string][]adapter
	kinds map[reflect.Kind]map[string][]adapter
}

// NewReflectResolver returns a resolver with the builtin adapters for
// strings, times, durations, sequences, maps and dictionaries registered.
func NewReflectResolver(mode ResolveMode) *ReflectResolver {
	r := &ReflectResolver{
		Mode:  mode,
		types: make(map[reflect.Type]map[string][]adapter),
		kinds: make(map[reflect.Kind]map[string][]adapter),
	}

	registerBuiltins(r)

	return r
}

func checkAdapter(fn any) reflect.Value {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.Type().NumIn() < 1 {
		panic(fmt.Sprintf("adapter must be a func with a receiver parameter, got %T", fn))
	}

	return fv
}

// RegisterAdapter adds an extension method name to values of type t.
// Register t as reflect.TypeFor[any]() to extend every type.
//
// fn must be a function whose first parameter receives the target. Its
// trailing parameters may be given default values, which are used when a
// caller omits them in [ResolveOptional] mode. Registering the same name
// more than once adds overloads.
func (r *ReflectResolver) RegisterAdapter(
	t reflect.Type,
	name string,
	fn any,
	defaults ...any,
) {
	a := adapter{fn: checkAdapter(fn), defaults: defaults}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.types == nil {
		r.types = make(map[reflect.Type]map[string][]adapter)
	}

	if r.types[t] == nil {
		r.types[t] = make(map[string][]adapter)
	}

	r.types[t][name] = append(r.types[t][name], a)
}

// RegisterKindAdapter adds an extension method name to every value whose
// type has kind k.
func (r *ReflectResolver) RegisterKindAdapter(
	k reflect.Kind,
	name string,
	fn any,
	defaults ...any,
) {
	a := adapter{fn: checkAdapter(fn), defaults: defaults}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.kinds == nil {
		r.kinds = make(map[reflect.Kind]map[string][]adapter)
	}

	if r.kinds[k] == nil {
		r.kinds[k] = make(map[string][]adapter)
	}

	r.kinds[k][name] = append(r.kinds[k][name], a)
}

func (r *ReflectResolver) adapters(t reflect.Type, name string) []adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []adapter

	out = append(out, r.types[t][name]...)
	out = append(out, r.kinds[t.Kind()][name]...)

	if t != typeAny {
		out = append(out, r.types[typeAny][name]...)
	}

	return out
}

// candidate is one callable member: a bound Go method, or an adapter with
// its receiver.
type candidate struct {
	fn       reflect.Value
	recv     reflect.Value
	defaults []any
}

func (c candidate) skip() int {
	if c.recv.IsValid() {
		return 1
	}

	return 0
}

func (c candidate) invoke(name string, args []reflect.Value, spread bool) (any, error) {
	if c.recv.IsValid() {
		args = append([]reflect.Value{c.recv}, args...)
	}

	return call(name, c.fn, args, spread)
}

func (r *ReflectResolver) candidates(target any, name string) []candidate {
	rv := reflect.ValueOf(target)

	var out []candidate

	if m := rv.MethodByName(name); m.IsValid() {
		out = append(out, candidate{fn: m})
	} else if rv.Kind() != reflect.Pointer {
		// Pointer receiver methods of a value target.
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)

		if m := p.MethodByName(name); m.IsValid() {
			out = append(out, candidate{fn: m})
		}
	}

	for _, a := range r.adapters(rv.Type(), name) {
		recv, err := convertTo(target, a.fn.Type().In(0))
		if err != nil {
			continue
		}

		out = append(out, candidate{fn: a.fn, recv: recv, defaults: a.defaults})
	}

	return out
}

// InvokeMethod calls the method name on target.
//
// Candidates are tried first for an exact match by argument type, then for
// a match by argument count where every argument converts to its parameter.
func (r *ReflectResolver) InvokeMethod(
	target any,
	name string,
	args []any,
) (any, error) {
	target = unwrap(target)
	if target == nil {
		return nil, &NullTargetError{Op: "method " + name}
	}

	cands := r.candidates(target, name)

	for _, c := range cands {
		vals, spread, err := r.bind(name, c.fn.Type(), c.skip(), nil, args, true)
		if err == nil {
			return c.invoke(name, vals, spread)
		}
	}

	var convErr error

	for _, c := range cands {
		vals, spread, err := r.bind(name, c.fn.Type(), c.skip(), c.defaults, args, false)
		if err == nil {
			return c.invoke(name, vals, spread)
		}

		if convErr == nil && !errors.Is(err, ErrParamCountMismatch) {
			convErr = err
		}
	}

	if convErr != nil {
		return nil, convErr
	}

	return nil, &MissingMemberError{Type: typeName(target), Member: name}
}

// bind converts args to the parameters of a function of type ft, ignoring
// its first skip parameters. It reports whether the final value must be
// passed with CallSlice.
func (r *ReflectResolver) bind(
	name string,
	ft reflect.Type,
	skip int,
	defaults []any,
	args []any,
	exact bool,
) ([]reflect.Value, bool, error) {
	nparam := ft.NumIn() - skip
	variadic := ft.IsVariadic()

	fixed := nparam
	if variadic {
		fixed--
	}

	strict := exact || r.Mode == ResolveStrict
	if strict {
		defaults = nil
	}

	defaults = defaults[:min(len(defaults), fixed)]

	lo, hi := fixed-len(defaults), fixed
	spread := false

	switch {
	case variadic && strict:
		lo, hi, spread = nparam, nparam, true
	case variadic:
		hi = -1
	}

	n := len(args)
	if n < lo || (hi >= 0 && n > hi) {
		return nil, false, ErrParamCountMismatch.With(
			slog.String("member", name),
			slog.Int("want", nparam),
			slog.Int("have", n),
		)
	}

	out := make([]reflect.Value, 0, max(n, nparam))

	for i := range fixed {
		x := any(nil)
		if i < n {
			x = args[i]
		} else {
			x = defaults[i-(fixed-len(defaults))]
		}

		v, err := convertArg(name, i, x, ft.In(skip+i), exact)
		if err != nil {
			return nil, false, err
		}

		out = append(out, v)
	}

	if variadic {
		st := ft.In(skip + fixed)

		if spread {
			v, err := convertArg(name, fixed, args[fixed], st, exact)
			if err != nil {
				return nil, false, err
			}

			out = append(out, v)
		} else {
			for i := fixed; i < n; i++ {
				v, err := convertArg(name, i, args[i], st.Elem(), exact)
				if err != nil {
					return nil, false, err
				}

				out = append(out, v)
			}
		}
	}

	return out, spread, nil
}

func convertArg(
	name string,
	index int,
	x any,
	t reflect.Type,
	exact bool,
) (reflect.Value, error) {
	x = unwrap(x)

	fail := &ArgumentConversionError{
		Member: name,
		Index:  index,
		From:   typeName(x),
		To:     t.String(),
	}

	if exact {
		switch {
		case x == nil && nillable(t):
			return reflect.Zero(t), nil
		case x != nil && reflect.TypeOf(x) == t:
			return reflect.ValueOf(x), nil
		case x != nil && t.Kind() == reflect.Interface &&
			reflect.TypeOf(x).Implements(t):
			return reflect.ValueOf(x), nil
		}

		return reflect.Value{}, fail
	}

	v, err := convertTo(x, t)
	if err != nil {
		return reflect.Value{}, fail
	}

	return v, nil
}

func call(
	name string,
	fn reflect.Value,
	args []reflect.Value,
	spread bool,
) (res any, err error) {
	defer func() {
		if p := recover(); p != nil {
			cause, ok := p.(error)
			if !ok {
				cause = NewError(fmt.Sprint(p))
			}

			res, err = nil, &InvocationError{Member: name, Err: cause}
		}
	}()

	var out []reflect.Value
	if spread {
		out = fn.CallSlice(args)
	} else {
		out = fn.Call(args)
	}

	return results(name, out)
}

// results unpacks the return values of a host call. A trailing error result
// becomes an InvocationError; otherwise the first result is returned.
func results(name string, out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == typeError {
		if !out[n-1].IsNil() {
			cause, _ := out[n-1].Interface().(error)

			return nil, &InvocationError{Member: name, Err: cause}
		}

		out = out[:n-1]
	}

	if len(out) == 0 {
		return nil, nil
	}

	return out[0].Interface(), nil
}

// GetProperty reads the member name of target.
//
// A method or adapter callable without arguments is preferred, then an
// exported struct field (the shallowest, first declared match when
// promoted through embedding), then the entry of a map keyed by strings.
func (r *ReflectResolver) GetProperty(target any, name string) (any, error) {
	target = unwrap(target)
	if target == nil {
		return nil, &NullTargetError{Op: "property " + name}
	}

	for _, c := range r.candidates(target, name) {
		vals, spread, err := r.bind(name, c.fn.Type(), c.skip(), c.defaults, nil, false)
		if err == nil {
			return c.invoke(name, vals, spread)
		}
	}

	rv := reflect.ValueOf(target)

	if f, ok := field(rv, name); ok {
		return f.Interface(), nil
	}

	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if e.IsValid() {
			return e.Interface(), nil
		}

	case rv.Type() == reflect.TypeFor[*Dict]():
		if e, ok := target.(*Dict).Get(name); ok {
			return e, nil
		}
	}

	return nil, &MissingMemberError{Type: typeName(target), Member: name}
}

// field finds an exported struct field by breadth-first search through
// embedded structs.
func field(rv reflect.Value, name string) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	level := []reflect.Value{rv}

	for len(level) > 0 {
		var next []reflect.Value

		for _, sv := range level {
			st := sv.Type()

			for i := range st.NumField() {
				sf := st.Field(i)
				if sf.Name == name && sf.IsExported() {
					return sv.Field(i), true
				}

				if !sf.Anonymous {
					continue
				}

				fv := sv.Field(i)
				for fv.Kind() == reflect.Pointer && !fv.IsNil() {
					fv = fv.Elem()
				}

				if fv.Kind() == reflect.Struct {
					next = append(next, fv)
				}
			}
		}

		level = next
	}

	return reflect.Value{}, false
}

// InvokeIndex applies target[args...].
//
// Dictionaries and maps take one key. Strings take one rune position.
// Slices and arrays take between one and as many integer indices as they
// have nested dimensions. Any other value is indexed through its Item or
// Get method.
func (r *ReflectResolver) InvokeIndex(target any, args []any) (any, error) {
	target = unwrap(target)
	if target == nil {
		return nil, &NullTargetError{Op: "indexer"}
	}

	if d, ok := target.(*Dict); ok {
		if len(args) != 1 {
			return nil, ErrIndexArity.With(slog.Int("want", 1), slog.Int("have", len(args)))
		}

		e, ok := d.Get(unwrap(args[0]))
		if !ok {
			return nil, ErrKeyNotFound.With(slog.String("key", formatText(unwrap(args[0]))))
		}

		return e, nil
	}

	rv := reflect.ValueOf(target)

	switch rv.Kind() {
	case reflect.Map:
		if len(args) != 1 {
			return nil, ErrIndexArity.With(slog.Int("want", 1), slog.Int("have", len(args)))
		}

		key, err := convertArg("indexer", 0, args[0], rv.Type().Key(), false)
		if err != nil {
			return nil, err
		}

		e := rv.MapIndex(key)
		if !e.IsValid() {
			return nil, ErrKeyNotFound.With(slog.String("key", formatText(key.Interface())))
		}

		return e.Interface(), nil

	case reflect.String:
		if len(args) != 1 {
			return nil, ErrIndexArity.With(slog.Int("want", 1), slog.Int("have", len(args)))
		}

		i, err := toInt(args[0])
		if err != nil {
			return nil, err
		}

		s := rv.String()
		if i < 0 || i >= utf8.RuneCountInString(s) {
			return nil, ErrIndexRange.With(slog.Int("index", i))
		}

		return string([]rune(s)[i]), nil

	case reflect.Slice, reflect.Array:
		return indexSequence(rv, args)
	}

	for _, name := range []string{"Item", "Get"} {
		res, err := r.InvokeMethod(target, name, args)

		var mm *MissingMemberError
		if errors.As(err, &mm) && mm.Member == name {
			continue
		}

		return res, err
	}

	return nil, &MissingMemberError{Type: typeName(target), Member: "Item"}
}

func dimensions(t reflect.Type) int {
	n := 0
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		n++
		t = t.Elem()
	}

	return n
}

func indexSequence(rv reflect.Value, args []any) (any, error) {
	if dims := dimensions(rv.Type()); len(args) < 1 || len(args) > dims {
		return nil, ErrIndexArity.With(
			slog.Int("dimensions", dims),
			slog.Int("have", len(args)),
		)
	}

	for _, a := range args {
		i, err := toInt(a)
		if err != nil {
			return nil, err
		}

		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, &NullTargetError{Op: "indexer"}
		}

		if i < 0 || i >= rv.Len() {
			return nil, ErrIndexRange.With(
				slog.Int("index", i),
				slog.Int("length", rv.Len()),
			)
		}

		rv = rv.Index(i)
	}

	return rv.Interface(), nil
}

// InvokeCallable calls target, which must be a Go func, with args. The
// argument count must equal the declared parameter count unless the func is
// variadic.
func (r *ReflectResolver) InvokeCallable(target any, args []any) (any, error) {
	target = unwrap(target)
	if target == nil {
		return nil, &NullTargetError{Op: "callable"}
	}

	fv := reflect.ValueOf(target)
	if fv.Kind() != reflect.Func {
		return nil, ErrNotCallable.With(slog.String("type", typeName(target)))
	}

	ft := fv.Type()
	name := ft.String()

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}

	if len(args) < fixed || (!ft.IsVariadic() && len(args) != fixed) {
		return nil, ErrParamCountMismatch.With(
			slog.String("member", name),
			slog.Int("want", ft.NumIn()),
			slog.Int("have", len(args)),
		)
	}

	vals := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := ft.In(min(i, ft.NumIn()-1))
		if ft.IsVariadic() && i >= fixed {
			pt = pt.Elem()
		}

		v, err := convertArg(name, i, a, pt, false)
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return call(name, fv, vals, false)
}

// Members lists the member names reachable on target: methods, adapters,
// exported fields and string map keys.
func (r *ReflectResolver) Members(target any) []string {
	target = unwrap(target)
	if target == nil {
		return nil
	}

	rv := reflect.ValueOf(target)
	seen := make(map[string]bool)

	add := func(name string) {
		if name != "" {
			seen[name] = true
		}
	}

	pt := rv.Type()
	if pt.Kind() != reflect.Pointer {
		pt = reflect.PointerTo(pt)
	}

	for i := range pt.NumMethod() {
		add(pt.Method(i).Name)
	}

	r.mu.RLock()
	for name := range r.types[rv.Type()] {
		add(name)
	}

	for name := range r.kinds[rv.Kind()] {
		add(name)
	}

	for name := range r.types[typeAny] {
		add(name)
	}
	r.mu.RUnlock()

	sv := rv
	for sv.Kind() == reflect.Pointer && !sv.IsNil() {
		sv = sv.Elem()
	}

	if sv.Kind() == reflect.Struct {
		for _, sf := range reflect.VisibleFields(sv.Type()) {
			if sf.IsExported() {
				add(sf.Name)
			}
		}
	}

	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		for _, k := range rv.MapKeys() {
			add(k.String())
		}
	case rv.Type() == reflect.TypeFor[*Dict]():
		for _, k := range target.(*Dict).Keys() {
			if s, ok := k.(string); ok {
				add(s)
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Signatures describes each overload of the method name on target, for
// example "Substring(int, int) string".
func (r *ReflectResolver) Signatures(target any, name string) []string {
	target = unwrap(target)
	if target == nil {
		return nil
	}

	var sigs []string

	for _, c := range r.candidates(target, name) {
		sigs = append(sigs, signature(name, c.fn.Type(), c.skip(), c.defaults))
	}

	return sigs
}

func signature(name string, ft reflect.Type, skip int, defaults []any) string {
	nparam := ft.NumIn() - skip

	fixed := nparam
	if ft.IsVariadic() {
		fixed--
	}

	first := fixed - min(len(defaults), fixed)

	params := make([]string, 0, nparam)
	for i := range nparam {
		t := ft.In(skip + i)

		switch {
		case ft.IsVariadic() && i == nparam-1:
			params = append(params, "..."+t.Elem().String())
		case i >= first:
			params = append(params, fmt.Sprintf("%s = %q", t, formatText(defaults[i-first])))
		default:
			params = append(params, t.String())
		}
	}

	var outs []string
	for i := range ft.NumOut() {
		outs = append(outs, ft.Out(i).String())
	}

	sig := name + "(" + strings.Join(params, ", ") + ")"

	switch len(outs) {
	case 0:
		return sig
	case 1:
		return sig + " " + outs[0]
	default:
		return sig + " (" + strings.Join(outs, ", ") + ")"
	}
}
