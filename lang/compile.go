package lang

import (
	"log/slog"
)

// frame holds the variable slots of one evaluation.
type frame struct {
	vars   []Value
	locals []Value
}

// evalFunc is one node of a compiled closure graph.
type evalFunc func(f *frame) (Value, error)

type compiler struct {
	comparer Comparer
	resolver Resolver
	vars     map[string]int
	scope    map[string]int
	nlocals  int
}

// compile translates the AST into a closure graph bound to the ordered free
// variables of ast. It returns the graph and the number of local slots each
// evaluation frame needs.
func compile(ast *AST, c Comparer, r Resolver) (evalFunc, int, error) {
	cc := &compiler{
		comparer: c,
		resolver: r,
		vars:     make(map[string]int, len(ast.Variables)),
		scope:    make(map[string]int),
	}

	for i, name := range ast.Variables {
		cc.vars[name] = i
	}

	run, err := cc.node(ast.Root)
	if err != nil {
		return nil, 0, err
	}

	return run, cc.nlocals, nil
}

func (cc *compiler) nodes(ns []Node) ([]evalFunc, error) {
	fns := make([]evalFunc, len(ns))

	for i, n := range ns {
		fn, err := cc.node(n)
		if err != nil {
			return nil, err
		}

		fns[i] = fn
	}

	return fns, nil
}

// natives evaluates fns and returns their native results.
func natives(f *frame, fns []evalFunc) ([]any, error) {
	out := make([]any, len(fns))

	for i, fn := range fns {
		v, err := fn(f)
		if err != nil {
			return nil, err
		}

		out[i] = v.Native()
	}

	return out, nil
}

func (cc *compiler) node(n Node) (evalFunc, error) {
	switch n := n.(type) {
	case *Literal:
		v := n.Value

		return func(*frame) (Value, error) { return v, nil }, nil

	case *Variable:
		return cc.variable(n)

	case *Unary:
		return cc.unary(n)

	case *Binary:
		return cc.binary(n)

	case *Conditional:
		return cc.conditional(n)

	case *Member:
		return cc.member(n)

	case *Call:
		return cc.call(n)

	case *Index:
		return cc.index(n)

	case *Invoke:
		return cc.invoke(n)

	case *Array:
		return cc.array(n)

	case *Dictionary:
		return cc.dictionary(n)

	case *Let:
		return cc.let(n)
	}

	return nil, ErrInvalidOperand.With(slog.String("node", typeName(n)))
}

func (cc *compiler) variable(n *Variable) (evalFunc, error) {
	if n.Local {
		slot, ok := cc.scope[n.Name]
		if !ok {
			return nil, syntaxError("", n.Offset, "undefined local "+n.Name)
		}

		return func(f *frame) (Value, error) { return f.locals[slot], nil }, nil
	}

	slot, ok := cc.vars[n.Name]
	if !ok {
		slot = len(cc.vars)
		cc.vars[n.Name] = slot
	}

	return func(f *frame) (Value, error) {
		if slot >= len(f.vars) {
			return Null, nil
		}

		return f.vars[slot], nil
	}, nil
}

func (cc *compiler) unary(n *Unary) (evalFunc, error) {
	operand, err := cc.node(n.Operand)
	if err != nil {
		return nil, err
	}

	if n.Op == "!" {
		return func(f *frame) (Value, error) {
			v, err := operand(f)
			if err != nil {
				return Null, err
			}

			return boolean(!truthy(cc.comparer, v)), nil
		}, nil
	}

	return func(f *frame) (Value, error) {
		v, err := operand(f)
		if err != nil {
			return Null, err
		}

		return v.Negate()
	}, nil
}

func (cc *compiler) binary(n *Binary) (evalFunc, error) {
	left, err := cc.node(n.Left)
	if err != nil {
		return nil, err
	}

	right, err := cc.node(n.Right)
	if err != nil {
		return nil, err
	}

	c := cc.comparer
	op := n.Op

	switch op {
	case "&&", "||":
		// The right operand is evaluated only when the left one does not
		// decide the result.
		decided := op == "||"

		return func(f *frame) (Value, error) {
			l, err := left(f)
			if err != nil {
				return Null, err
			}

			if truthy(c, l) == decided {
				return boolean(decided), nil
			}

			r, err := right(f)
			if err != nil {
				return Null, err
			}

			return boolean(truthy(c, r)), nil
		}, nil

	case "==", "!=", "<", "<=", ">", ">=":
		return func(f *frame) (Value, error) {
			l, r, err := operands(f, left, right)
			if err != nil {
				return Null, err
			}

			ok, err := relational(c, op, l, r)
			if err != nil {
				return Null, err
			}

			return boolean(ok), nil
		}, nil
	}

	return func(f *frame) (Value, error) {
		l, r, err := operands(f, left, right)
		if err != nil {
			return Null, err
		}

		return l.Binary(op, r)
	}, nil
}

func operands(f *frame, left, right evalFunc) (Value, Value, error) {
	l, err := left(f)
	if err != nil {
		return Null, Null, err
	}

	r, err := right(f)
	if err != nil {
		return Null, Null, err
	}

	return l, r, nil
}

func (cc *compiler) conditional(n *Conditional) (evalFunc, error) {
	test, err := cc.node(n.Test)
	if err != nil {
		return nil, err
	}

	then, err := cc.node(n.Then)
	if err != nil {
		return nil, err
	}

	els, err := cc.node(n.Else)
	if err != nil {
		return nil, err
	}

	c := cc.comparer

	return func(f *frame) (Value, error) {
		t, err := test(f)
		if err != nil {
			return Null, err
		}

		if truthy(c, t) {
			return then(f)
		}

		return els(f)
	}, nil
}

func (cc *compiler) member(n *Member) (evalFunc, error) {
	target, err := cc.node(n.Target)
	if err != nil {
		return nil, err
	}

	r, name := cc.resolver, n.Name

	return func(f *frame) (Value, error) {
		t, err := target(f)
		if err != nil {
			return Null, err
		}

		res, err := r.GetProperty(t.Native(), name)
		if err != nil {
			return Null, err
		}

		return Wrap(res), nil
	}, nil
}

func (cc *compiler) call(n *Call) (evalFunc, error) {
	target, err := cc.node(n.Target)
	if err != nil {
		return nil, err
	}

	args, err := cc.nodes(n.Args)
	if err != nil {
		return nil, err
	}

	r, name := cc.resolver, n.Name

	return func(f *frame) (Value, error) {
		t, err := target(f)
		if err != nil {
			return Null, err
		}

		if t.IsNull() {
			return Null, &NullTargetError{Op: "method " + name}
		}

		xs, err := natives(f, args)
		if err != nil {
			return Null, err
		}

		res, err := r.InvokeMethod(t.Native(), name, xs)
		if err != nil {
			return Null, err
		}

		return Wrap(res), nil
	}, nil
}

func (cc *compiler) index(n *Index) (evalFunc, error) {
	target, err := cc.node(n.Target)
	if err != nil {
		return nil, err
	}

	args, err := cc.nodes(n.Args)
	if err != nil {
		return nil, err
	}

	r := cc.resolver

	return func(f *frame) (Value, error) {
		t, err := target(f)
		if err != nil {
			return Null, err
		}

		xs, err := natives(f, args)
		if err != nil {
			return Null, err
		}

		res, err := r.InvokeIndex(t.Native(), xs)
		if err != nil {
			return Null, err
		}

		return Wrap(res), nil
	}, nil
}

func (cc *compiler) invoke(n *Invoke) (evalFunc, error) {
	target, err := cc.node(n.Target)
	if err != nil {
		return nil, err
	}

	args, err := cc.nodes(n.Args)
	if err != nil {
		return nil, err
	}

	r := cc.resolver

	return func(f *frame) (Value, error) {
		t, err := target(f)
		if err != nil {
			return Null, err
		}

		xs, err := natives(f, args)
		if err != nil {
			return Null, err
		}

		res, err := r.InvokeCallable(t.Native(), xs)
		if err != nil {
			return Null, err
		}

		return Wrap(res), nil
	}, nil
}

func (cc *compiler) array(n *Array) (evalFunc, error) {
	items, err := cc.nodes(n.Items)
	if err != nil {
		return nil, err
	}

	return func(f *frame) (Value, error) {
		xs, err := natives(f, items)
		if err != nil {
			return Null, err
		}

		return Value{kind: KindList, v: xs}, nil
	}, nil
}

func (cc *compiler) dictionary(n *Dictionary) (evalFunc, error) {
	keys := make([]evalFunc, len(n.Entries))
	vals := make([]evalFunc, len(n.Entries))

	for i, e := range n.Entries {
		k, err := cc.node(e.Key)
		if err != nil {
			return nil, err
		}

		v, err := cc.node(e.Value)
		if err != nil {
			return nil, err
		}

		keys[i], vals[i] = k, v
	}

	return func(f *frame) (Value, error) {
		d := NewDict()

		for i := range keys {
			k, v, err := operands(f, keys[i], vals[i])
			if err != nil {
				return Null, err
			}

			d.Set(k.Native(), v.Native())
		}

		return Value{kind: KindMap, v: d}, nil
	}, nil
}

func (cc *compiler) let(n *Let) (evalFunc, error) {
	inits := make([]evalFunc, len(n.Bindings))
	slots := make([]int, len(n.Bindings))

	for i, b := range n.Bindings {
		init, err := cc.node(b.Value)
		if err != nil {
			return nil, err
		}

		// Each binding takes a fresh slot; a redeclared name shadows the
		// earlier one from this point on.
		slots[i] = cc.nlocals
		cc.nlocals++
		cc.scope[b.Name] = slots[i]
		inits[i] = init
	}

	body, err := cc.node(n.Body)
	if err != nil {
		return nil, err
	}

	return func(f *frame) (Value, error) {
		for i, init := range inits {
			v, err := init(f)
			if err != nil {
				return Null, err
			}

			f.locals[slots[i]] = v
		}

		return body(f)
	}, nil
}
