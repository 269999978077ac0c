package lang

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDepth bounds the nesting of sub-expressions accepted by the parser.
const MaxDepth = 512

// descent holds the state of one left-to-right parse.
//
// Every parse method takes the offset at which to begin and returns the
// offset just past what it consumed. Lookahead re-reads lexemes at a known
// offset, so no lexer state is shared between methods.
type descent struct {
	src          string
	bindings     bool
	singleEquals bool
	depth        int
	locals       map[string]bool
	vars         []string
	seen         map[string]bool
}

func parse(src string, bindings, singleEquals bool) (*AST, error) {
	p := &descent{
		src:          src,
		bindings:     bindings,
		singleEquals: singleEquals,
		locals:       make(map[string]bool),
		seen:         make(map[string]bool),
	}

	root, err := p.parseRoot()
	if err != nil {
		return nil, err
	}

	return &AST{Source: src, Root: root, Variables: p.vars}, nil
}

func (p *descent) lex(pos int) (Lexeme, error) { return NextLexeme(p.src, pos) }

func (p *descent) fail(pos int, msg string) error {
	return syntaxError(p.src, pos, msg)
}

// parseRoot parses: Binding* Conditional Stop.
func (p *descent) parseRoot() (Node, error) {
	var (
		binds []Binding
		end   int
	)

	if p.bindings {
		for {
			b, next, ok, err := p.parseBinding(end)
			if err != nil {
				return nil, err
			}

			if !ok {
				break
			}

			binds = append(binds, b)
			end = next
		}
	}

	body, end, err := p.parseConditional(end)
	if err != nil {
		return nil, err
	}

	last, err := p.lex(end)
	if err != nil {
		return nil, err
	}

	if last.Kind != LexStop {
		return nil, p.fail(end, "invalid expression")
	}

	if len(binds) == 0 {
		return body, nil
	}

	return &Let{Offset: binds[0].Offset, Bindings: binds, Body: body}, nil
}

// parseBinding parses: "var" Name "=" Conditional ";".
// It reports false when the input at start is not a binding.
func (p *descent) parseBinding(start int) (Binding, int, bool, error) {
	kw, err := p.lex(start)
	if err != nil || !kw.Is(LexName, "var") {
		return Binding{}, start, false, err
	}

	name, err := p.lex(kw.End)
	if err != nil {
		return Binding{}, start, false, err
	}

	if name.Kind != LexName {
		return Binding{}, start, false, p.fail(kw.End, "expected variable name")
	}

	eq, err := p.lex(name.End)
	if err != nil {
		return Binding{}, start, false, err
	}

	if !eq.Delim("=") {
		return Binding{}, start, false, p.fail(name.End, "expected '='")
	}

	value, end, err := p.parseConditional(eq.End)
	if err != nil {
		return Binding{}, start, false, err
	}

	semi, err := p.lex(end)
	if err != nil {
		return Binding{}, start, false, err
	}

	if !semi.Delim(";") {
		return Binding{}, start, false, p.fail(end, "expected ';'")
	}

	// The name is visible only after its own initializer.
	p.locals[name.Text] = true

	return Binding{Offset: kw.Start, Name: name.Text, Value: value}, semi.End, true, nil
}

// parseConditional parses: Or ("?" Or ":" Conditional)?.
func (p *descent) parseConditional(start int) (Node, int, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxDepth {
		return nil, start, p.fail(start, "expression nested too deeply")
	}

	test, end, err := p.parseOr(start)
	if err != nil {
		return nil, end, err
	}

	q, err := p.lex(end)
	if err != nil || !q.Delim("?") {
		return test, end, err
	}

	then, end, err := p.parseOr(q.End)
	if err != nil {
		return nil, end, err
	}

	colon, err := p.lex(end)
	if err != nil {
		return nil, end, err
	}

	if !colon.Delim(":") {
		return nil, end, p.fail(end, "expected ':'")
	}

	els, end, err := p.parseConditional(colon.End)
	if err != nil {
		return nil, end, err
	}

	return &Conditional{Offset: q.Start, Test: test, Then: then, Else: els}, end, nil
}

// logicalOp matches the keyword or the doubled delimiter of a logical
// operator at pos and returns the offset past it.
func (p *descent) logicalOp(pos int, word, delim string) (int, int, bool, error) {
	lx, err := p.lex(pos)
	if err != nil {
		return 0, 0, false, err
	}

	if lx.Is(LexName, word) {
		return lx.Start, lx.End, true, nil
	}

	if !lx.Delim(delim) {
		return 0, 0, false, nil
	}

	nx, err := p.lex(lx.End)
	if err != nil || !nx.Delim(delim) {
		return 0, 0, false, err
	}

	return lx.Start, nx.End, true, nil
}

// parseOr parses: And (("or" | "||") And)*.
func (p *descent) parseOr(start int) (Node, int, error) {
	left, end, err := p.parseAnd(start)
	if err != nil {
		return nil, end, err
	}

	for {
		at, next, ok, err := p.logicalOp(end, "or", "|")
		if err != nil || !ok {
			return left, end, err
		}

		right, e, err := p.parseAnd(next)
		if err != nil {
			return nil, e, err
		}

		left, end = &Binary{Offset: at, Op: "||", Left: left, Right: right}, e
	}
}

// parseAnd parses: Eq (("and" | "&&") Eq)*.
func (p *descent) parseAnd(start int) (Node, int, error) {
	left, end, err := p.parseEq(start)
	if err != nil {
		return nil, end, err
	}

	for {
		at, next, ok, err := p.logicalOp(end, "and", "&")
		if err != nil || !ok {
			return left, end, err
		}

		right, e, err := p.parseEq(next)
		if err != nil {
			return nil, e, err
		}

		left, end = &Binary{Offset: at, Op: "&&", Left: left, Right: right}, e
	}
}

var pairOps = map[string]string{
	"==": "==",
	"!=": "!=",
	"<>": "!=",
	"<=": "<=",
	">=": ">=",
}

// relOp matches an equality or relational operator at pos.
func (p *descent) relOp(pos int) (string, int, int, bool, error) {
	lx, err := p.lex(pos)
	if err != nil || lx.Kind != LexDelimiter {
		return "", 0, 0, false, err
	}

	nx, err := p.lex(lx.End)
	if err != nil {
		return "", 0, 0, false, err
	}

	if nx.Kind == LexDelimiter {
		if op, ok := pairOps[lx.Text+nx.Text]; ok {
			return op, lx.Start, nx.End, true, nil
		}
	}

	switch {
	case lx.Text == "<" || lx.Text == ">":
		return lx.Text, lx.Start, lx.End, true, nil
	case lx.Text == "=" && p.singleEquals:
		return "==", lx.Start, lx.End, true, nil
	}

	return "", 0, 0, false, nil
}

// parseEq parses: Additive (RelOp Additive)*.
func (p *descent) parseEq(start int) (Node, int, error) {
	left, end, err := p.parseAdditive(start)
	if err != nil {
		return nil, end, err
	}

	for {
		op, at, next, ok, err := p.relOp(end)
		if err != nil || !ok {
			return left, end, err
		}

		right, e, err := p.parseAdditive(next)
		if err != nil {
			return nil, e, err
		}

		left, end = &Binary{Offset: at, Op: op, Left: left, Right: right}, e
	}
}

// parseAdditive parses: Multiplicative (("+" | "-") Multiplicative)*.
func (p *descent) parseAdditive(start int) (Node, int, error) {
	left, end, err := p.parseMultiplicative(start)
	if err != nil {
		return nil, end, err
	}

	for {
		lx, err := p.lex(end)
		if err != nil {
			return nil, end, err
		}

		if !lx.Delim("+") && !lx.Delim("-") {
			return left, end, nil
		}

		right, e, err := p.parseMultiplicative(lx.End)
		if err != nil {
			return nil, e, err
		}

		left, end = &Binary{Offset: lx.Start, Op: lx.Text, Left: left, Right: right}, e
	}
}

// parseMultiplicative parses: Unary (("*" | "/" | "%") Unary)*.
func (p *descent) parseMultiplicative(start int) (Node, int, error) {
	left, end, err := p.parseUnary(start)
	if err != nil {
		return nil, end, err
	}

	for {
		lx, err := p.lex(end)
		if err != nil {
			return nil, end, err
		}

		if !lx.Delim("*") && !lx.Delim("/") && !lx.Delim("%") {
			return left, end, nil
		}

		right, e, err := p.parseUnary(lx.End)
		if err != nil {
			return nil, e, err
		}

		left, end = &Binary{Offset: lx.Start, Op: lx.Text, Left: left, Right: right}, e
	}
}

// parseUnary parses: ("-" | "!") Unary | Postfix.
func (p *descent) parseUnary(start int) (Node, int, error) {
	lx, err := p.lex(start)
	if err != nil {
		return nil, start, err
	}

	if !lx.Delim("-") && !lx.Delim("!") {
		return p.parsePostfix(start)
	}

	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxDepth {
		return nil, start, p.fail(start, "expression nested too deeply")
	}

	operand, end, err := p.parseUnary(lx.End)
	if err != nil {
		return nil, end, err
	}

	return &Unary{Offset: lx.Start, Op: lx.Text, Operand: operand}, end, nil
}

// parsePostfix parses: Value ("." Name | "." Name Args | Args | Index)*.
func (p *descent) parsePostfix(start int) (Node, int, error) {
	val, end, err := p.parseValue(start)
	if err != nil {
		return nil, end, err
	}

	for {
		lx, err := p.lex(end)
		if err != nil {
			return nil, end, err
		}

		switch {
		case lx.Delim("."):
			name, err := p.lex(lx.End)
			if err != nil {
				return nil, end, err
			}

			if name.Kind != LexName {
				return val, end, nil
			}

			open, err := p.lex(name.End)
			if err != nil {
				return nil, end, err
			}

			if !open.Delim("(") {
				val, end = &Member{Offset: lx.Start, Target: val, Name: name.Text}, name.End

				continue
			}

			args, e, err := p.parseArgs(open.End, ")")
			if err != nil {
				return nil, e, err
			}

			val, end = &Call{Offset: lx.Start, Target: val, Name: name.Text, Args: args}, e

		case lx.Delim("["):
			args, e, err := p.parseArgs(lx.End, "]")
			if err != nil {
				return nil, e, err
			}

			val, end = &Index{Offset: lx.Start, Target: val, Args: args}, e

		case lx.Delim("("):
			args, e, err := p.parseArgs(lx.End, ")")
			if err != nil {
				return nil, e, err
			}

			val, end = &Invoke{Offset: lx.Start, Target: val, Args: args}, e

		default:
			return val, end, nil
		}
	}
}

// parseArgs parses a comma-separated list of sub-expressions closed by the
// delimiter closer.
func (p *descent) parseArgs(start int, closer string) ([]Node, int, error) {
	var args []Node

	end := start

	for {
		lx, err := p.lex(end)
		if err != nil {
			return nil, end, err
		}

		switch {
		case lx.Delim(closer):
			return args, lx.End, nil

		case lx.Delim(","):
			if len(args) == 0 {
				return nil, lx.Start, p.fail(lx.Start, "expected method call parameter")
			}

			end = lx.End

		case len(args) > 0:
			return nil, lx.Start, p.fail(lx.Start, "expected '"+closer+"'")
		}

		arg, e, err := p.parseConditional(end)
		if err != nil {
			return nil, e, err
		}

		args = append(args, arg)
		end = e
	}
}

// parseValue parses a literal, group, variable or "new" initializer.
func (p *descent) parseValue(start int) (Node, int, error) {
	lx, err := p.lex(start)
	if err != nil {
		return nil, start, err
	}

	switch lx.Kind {
	case LexDelimiter:
		if !lx.Delim("(") {
			break
		}

		inner, end, err := p.parseConditional(lx.End)
		if err != nil {
			return nil, end, err
		}

		closer, err := p.lex(end)
		if err != nil {
			return nil, end, err
		}

		if !closer.Delim(")") {
			return nil, end, p.fail(closer.Start, "expected ')'")
		}

		return inner, closer.End, nil

	case LexNumber:
		d, err := decimal.NewFromString(lx.Text)
		if err != nil {
			return nil, lx.Start, p.fail(lx.Start, "invalid number")
		}

		return &Literal{Offset: lx.Start, Value: number(d)}, lx.End, nil

	case LexString:
		return &Literal{Offset: lx.Start, Value: text(lx.Unquote())}, lx.End, nil

	case LexName:
		switch lx.Text {
		case "true":
			return &Literal{Offset: lx.Start, Value: boolean(true)}, lx.End, nil
		case "false":
			return &Literal{Offset: lx.Start, Value: boolean(false)}, lx.End, nil
		case "null":
			return &Literal{Offset: lx.Start, Value: Null}, lx.End, nil
		case "new":
			return p.parseNew(lx.Start, lx.End)
		}

		if p.locals[lx.Text] {
			return &Variable{Offset: lx.Start, Name: lx.Text, Local: true}, lx.End, nil
		}

		if !p.seen[lx.Text] {
			p.seen[lx.Text] = true
			p.vars = append(p.vars, lx.Text)
		}

		return &Variable{Offset: lx.Start, Name: lx.Text}, lx.End, nil
	}

	return nil, lx.Start, p.fail(lx.Start, "expected value")
}

func (p *descent) expectDelim(pos int, delim string) (Lexeme, error) {
	lx, err := p.lex(pos)
	if err != nil {
		return lx, err
	}

	if !lx.Delim(delim) {
		return lx, p.fail(lx.Start, "expected '"+delim+"'")
	}

	return lx, nil
}

// parseNew parses: "new" "[" "]" "{" Args "}" | "new" "dictionary" "{"
// ("{" Key "," Value "}") ("," "{" Key "," Value "}")* "}".
func (p *descent) parseNew(at, start int) (Node, int, error) {
	lx, err := p.lex(start)
	if err != nil {
		return nil, start, err
	}

	switch {
	case lx.Delim("["):
		rb, err := p.expectDelim(lx.End, "]")
		if err != nil {
			return nil, rb.Start, err
		}

		lb, err := p.expectDelim(rb.End, "{")
		if err != nil {
			return nil, lb.Start, err
		}

		items, end, err := p.parseArgs(lb.End, "}")
		if err != nil {
			return nil, end, err
		}

		return &Array{Offset: at, Items: items}, end, nil

	case lx.Kind == LexName && strings.EqualFold(lx.Text, "dictionary"):
		return p.parseDictionary(at, lx.End)
	}

	return nil, start, p.fail(start, "unknown new instance initializer")
}

func (p *descent) parseDictionary(at, start int) (Node, int, error) {
	lb, err := p.expectDelim(start, "{")
	if err != nil {
		return nil, lb.Start, err
	}

	dict := &Dictionary{Offset: at}

	next, err := p.lex(lb.End)
	if err != nil {
		return nil, lb.End, err
	}

	if next.Delim("}") {
		return dict, next.End, nil
	}

	end := lb.End

	for {
		eb, err := p.expectDelim(end, "{")
		if err != nil {
			return nil, eb.Start, err
		}

		pair, e, err := p.parseArgs(eb.End, "}")
		if err != nil {
			return nil, e, err
		}

		if len(pair) != 2 {
			return nil, eb.Start, p.fail(eb.Start,
				"dictionary entry should have exactly 2 arguments")
		}

		dict.Entries = append(dict.Entries, Entry{Key: pair[0], Value: pair[1]})

		sep, err := p.lex(e)
		if err != nil {
			return nil, e, err
		}

		if !sep.Delim(",") {
			if !sep.Delim("}") {
				return nil, sep.Start, p.fail(sep.Start, "expected '}'")
			}

			return dict, sep.End, nil
		}

		end = sep.End
	}
}
