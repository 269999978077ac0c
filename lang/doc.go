// Package lang parses and evaluates a small embeddable expression language.
//
// Expressions combine decimal arithmetic, boolean logic, ternary
// conditionals, member, method and indexer access on arbitrary Go values,
// list and dictionary literals, and optional local bindings. A [Parser]
// compiles each distinct source once into an immutable [Expression] that
// can be evaluated concurrently against any variable context.
//
// # Grammar
//
// Informal EBNF, lowest precedence first:
//
//	Root        → ( "var" Name "=" Conditional ";" )* Conditional Stop
//	Conditional → Or ( "?" Or ":" Conditional )?
//	Or          → And ( ( "||" | "or" ) And )*
//	And         → Eq ( ( "&&" | "and" ) Eq )*
//	Eq          → Add ( ( "==" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) Add )*
//	Add         → Mul ( ( "+" | "-" ) Mul )*
//	Mul         → Unary ( ( "*" | "/" | "%" ) Unary )*
//	Unary       → ( "-" | "!" ) Unary | Postfix
//	Postfix     → Value ( "." Name ( "(" Args ")" )? | "[" Args "]" | "(" Args ")" )*
//	Value       → Number | String | "true" | "false" | "null" | Name
//	            | "(" Conditional ")" | New
//	New         → "new" "[" "]" "{" Args "}"
//	            | "new" "dictionary" "{" ( "{" Conditional "," Conditional "}" ),* "}"
//
// Local bindings are accepted only with [WithBindings], and a single "="
// as equality only with [WithSingleEquals]. Strings are double-quoted with
// "" as the escaped quote. Numbers are exact decimals.
//
// # Example
//
//	p := lang.New()
//
//	v, err := p.EvalMap(ctx, `price * qty > 100 ? "bulk" : "retail"`,
//		map[string]any{"price": 12.5, "qty": 10})
//	// v == "bulk"
//
// # Values
//
// Values coming from Go are classified on entry: all Go numeric types join
// decimal arithmetic, strings concatenate with "+", time.Time and
// time.Duration support date arithmetic, slices and maps are indexable, and
// funcs are callable. Everything else is an opaque host value whose methods,
// fields and indexers are reached through the [Resolver].
//
// Equality, ordering and truthiness are decided by the [Comparer]. The
// default one coerces the operand of the looser kind to the kind of the
// other, orders null below everything, and compares lists element-wise.
package lang
