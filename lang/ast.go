package lang

import (
	"context"
	"io"
	"strings"
)

// AST is the parsed form of one expression.
type AST struct {
	// Source is the exact text that was parsed.
	Source string
	// Root is the top-level node.
	Root Node
	// Variables lists the free variables referenced by Root, distinct, in
	// order of first occurrence.
	Variables []string
}

// Node is an element of the syntax tree.
//
// String returns canonical source text that parses back into an equivalent
// tree.
type Node interface {
	Pos() int
	String() string
	node()
}

// Literal is a constant number, string, boolean or null.
type Literal struct {
	Offset int
	Value  Value
}

// Variable references a free variable or a local binding.
type Variable struct {
	Offset int
	Name   string
	Local  bool
}

// Unary applies "-" or "!" to its operand.
type Unary struct {
	Offset  int
	Op      string
	Operand Node
}

// Binary applies an arithmetic, relational or logical operator.
// Op is normalized: "and" is "&&", "or" is "||", "<>" and "=" are "!=" and
// "==".
type Binary struct {
	Offset int
	Op     string
	Left   Node
	Right  Node
}

// Conditional is the ternary test ? then : else.
type Conditional struct {
	Offset int
	Test   Node
	Then   Node
	Else   Node
}

// Member reads a property or field.
type Member struct {
	Offset int
	Target Node
	Name   string
}

// Call invokes a named method on Target.
type Call struct {
	Offset int
	Target Node
	Name   string
	Args   []Node
}

// Index applies the indexer of Target.
type Index struct {
	Offset int
	Target Node
	Args   []Node
}

// Invoke calls Target itself as a function.
type Invoke struct {
	Offset int
	Target Node
	Args   []Node
}

// Array is a sequence literal: new[]{ ... }.
type Array struct {
	Offset int
	Items  []Node
}

// Entry is one key/value pair of a [Dictionary].
type Entry struct {
	Key   Node
	Value Node
}

// Dictionary is an ordered map literal: new dictionary{ {k, v}, ... }.
type Dictionary struct {
	Offset  int
	Entries []Entry
}

// Binding is one "var name = value;" declaration.
type Binding struct {
	Offset int
	Name   string
	Value  Node
}

// Let is a chain of local bindings followed by the result expression.
type Let struct {
	Offset   int
	Bindings []Binding
	Body     Node
}

func (n *Literal) Pos() int     { return n.Offset }
func (n *Variable) Pos() int    { return n.Offset }
func (n *Unary) Pos() int       { return n.Offset }
func (n *Binary) Pos() int      { return n.Offset }
func (n *Conditional) Pos() int { return n.Offset }
func (n *Member) Pos() int      { return n.Offset }
func (n *Call) Pos() int        { return n.Offset }
func (n *Index) Pos() int       { return n.Offset }
func (n *Invoke) Pos() int      { return n.Offset }
func (n *Array) Pos() int       { return n.Offset }
func (n *Dictionary) Pos() int  { return n.Offset }
func (n *Let) Pos() int         { return n.Offset }

func (*Literal) node()     {}
func (*Variable) node()    {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Conditional) node() {}
func (*Member) node()      {}
func (*Call) node()        {}
func (*Index) node()       {}
func (*Invoke) node()      {}
func (*Array) node()       {}
func (*Dictionary) node()  {}
func (*Let) node()         {}

func (n *Literal) String() string {
	switch n.Value.Kind() {
	case KindNull:
		return "null"
	case KindString:
		s, _ := n.Value.Native().(string)

		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	default:
		return n.Value.String()
	}
}

func (n *Variable) String() string { return n.Name }

func (n *Unary) String() string { return n.Op + operand(n.Operand) }

func (n *Binary) String() string {
	return operand(n.Left) + " " + n.Op + " " + operand(n.Right)
}

func (n *Conditional) String() string {
	return operand(n.Test) + " ? " + operand(n.Then) + " : " + operand(n.Else)
}

func (n *Member) String() string { return target(n.Target) + "." + n.Name }

func (n *Call) String() string {
	return target(n.Target) + "." + n.Name + "(" + joinNodes(n.Args) + ")"
}

func (n *Index) String() string {
	return target(n.Target) + "[" + joinNodes(n.Args) + "]"
}

func (n *Invoke) String() string {
	return target(n.Target) + "(" + joinNodes(n.Args) + ")"
}

func (n *Array) String() string { return "new[]{" + joinNodes(n.Items) + "}" }

func (n *Dictionary) String() string {
	var sb strings.Builder

	sb.WriteString("new dictionary{")

	for i, e := range n.Entries {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString("{" + e.Key.String() + ", " + e.Value.String() + "}")
	}

	sb.WriteString("}")

	return sb.String()
}

func (n *Let) String() string {
	var sb strings.Builder

	for _, b := range n.Bindings {
		sb.WriteString("var " + b.Name + " = " + b.Value.String() + "; ")
	}

	sb.WriteString(n.Body.String())

	return sb.String()
}

// operand renders a child of an operator, grouping compound children.
func operand(n Node) string {
	switch n.(type) {
	case *Binary, *Conditional, *Let:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}

// target renders the receiver of a postfix operation.
func target(n Node) string {
	switch n.(type) {
	case *Binary, *Conditional, *Let, *Unary:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}

func joinNodes(nodes []Node) string {
	part := make([]string, len(nodes))
	for i, n := range nodes {
		part[i] = n.String()
	}

	return strings.Join(part, ", ")
}

// String returns the canonical source text of the expression.
func (ast *AST) String() string {
	if ast == nil || ast.Root == nil {
		return ""
	}

	return ast.Root.String()
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Print writes an indented tree representation of the AST.
func (ast *AST) Print(ctx context.Context, w io.Writer) {
	ast.PrintIndent(ctx, w, 0)
}

// PrintIndent writes an indented tree representation of the AST, starting at
// the given indentation depth.
func (ast *AST) PrintIndent(_ context.Context, w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	if len(ast.Variables) > 0 {
		put("\n", prefix+"Variables", strings.Join(ast.Variables, ", "))
	}

	if ast.Root != nil {
		printNode(w, ast.Root, indent)
	}
}

func printNode(w io.Writer, n Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch n := n.(type) {
	case *Literal:
		put("\n", prefix+"Literal", n.Value.Kind().String(), n.String())

	case *Variable:
		if n.Local {
			put("\n", prefix+"Local", n.Name)
		} else {
			put("\n", prefix+"Variable", n.Name)
		}

	case *Unary:
		put("\n", prefix+"Unary", n.Op)
		printNode(w, n.Operand, indent+1)

	case *Binary:
		put("\n", prefix+"Binary", n.Op)
		printNode(w, n.Left, indent+1)
		printNode(w, n.Right, indent+1)

	case *Conditional:
		put("\n", prefix+"Conditional")
		printNode(w, n.Test, indent+1)
		printNode(w, n.Then, indent+1)
		printNode(w, n.Else, indent+1)

	case *Member:
		put("\n", prefix+"Member", n.Name)
		printNode(w, n.Target, indent+1)

	case *Call:
		put("\n", prefix+"Call", n.Name)
		printNode(w, n.Target, indent+1)
		printNodes(w, "Args", n.Args, indent+1)

	case *Index:
		put("\n", prefix+"Index")
		printNode(w, n.Target, indent+1)
		printNodes(w, "Args", n.Args, indent+1)

	case *Invoke:
		put("\n", prefix+"Invoke")
		printNode(w, n.Target, indent+1)
		printNodes(w, "Args", n.Args, indent+1)

	case *Array:
		put("\n", prefix+"Array")
		printNodes(w, "Items", n.Items, indent+1)

	case *Dictionary:
		put("\n", prefix+"Dictionary")

		for _, e := range n.Entries {
			put("\n", prefix+"  Entry")
			printNode(w, e.Key, indent+2)
			printNode(w, e.Value, indent+2)
		}

	case *Let:
		put("\n", prefix+"Let")

		for _, b := range n.Bindings {
			put("\n", prefix+"  Var", b.Name)
			printNode(w, b.Value, indent+2)
		}

		printNode(w, n.Body, indent+1)
	}
}

func printNodes(w io.Writer, label string, nodes []Node, indent int) {
	prefix := strings.Repeat("  ", indent)

	if len(nodes) == 0 {
		writer(w)("\n", prefix+label, "(empty)")

		return
	}

	writer(w)("\n", prefix+label)

	for _, n := range nodes {
		printNode(w, n, indent+1)
	}
}
