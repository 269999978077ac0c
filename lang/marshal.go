package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for AST.
func (ast *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(ast.ToMap())
}

// ToMap converts the AST to a native Go map structure with keys "source",
// "variables" and "root".
func (ast *AST) ToMap() map[string]any {
	vars := make([]any, len(ast.Variables))
	for i, v := range ast.Variables {
		vars[i] = v
	}

	result := map[string]any{
		"source":    ast.Source,
		"variables": vars,
	}

	if ast.Root != nil {
		result["root"] = NodeMap(ast.Root)
	}

	return result
}

// NodeMap converts a node and its children to nested maps. Every map has a
// "node" key naming the node type and an "offset" key.
func NodeMap(n Node) map[string]any {
	m := map[string]any{"offset": n.Pos()}

	switch n := n.(type) {
	case *Literal:
		m["node"] = "literal"
		m["kind"] = n.Value.Kind().String()
		m["value"] = Plain(n.Value)

	case *Variable:
		m["node"] = "variable"
		m["name"] = n.Name

		if n.Local {
			m["local"] = true
		}

	case *Unary:
		m["node"] = "unary"
		m["op"] = n.Op
		m["operand"] = NodeMap(n.Operand)

	case *Binary:
		m["node"] = "binary"
		m["op"] = n.Op
		m["left"] = NodeMap(n.Left)
		m["right"] = NodeMap(n.Right)

	case *Conditional:
		m["node"] = "conditional"
		m["test"] = NodeMap(n.Test)
		m["then"] = NodeMap(n.Then)
		m["else"] = NodeMap(n.Else)

	case *Member:
		m["node"] = "member"
		m["name"] = n.Name
		m["target"] = NodeMap(n.Target)

	case *Call:
		m["node"] = "call"
		m["name"] = n.Name
		m["target"] = NodeMap(n.Target)
		m["args"] = nodeMaps(n.Args)

	case *Index:
		m["node"] = "index"
		m["target"] = NodeMap(n.Target)
		m["args"] = nodeMaps(n.Args)

	case *Invoke:
		m["node"] = "invoke"
		m["target"] = NodeMap(n.Target)
		m["args"] = nodeMaps(n.Args)

	case *Array:
		m["node"] = "array"
		m["items"] = nodeMaps(n.Items)

	case *Dictionary:
		entries := make([]any, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]any{
				"key":   NodeMap(e.Key),
				"value": NodeMap(e.Value),
			}
		}

		m["node"] = "dictionary"
		m["entries"] = entries

	case *Let:
		binds := make([]any, len(n.Bindings))
		for i, b := range n.Bindings {
			binds[i] = map[string]any{
				"name":   b.Name,
				"offset": b.Offset,
				"value":  NodeMap(b.Value),
			}
		}

		m["node"] = "let"
		m["bindings"] = binds
		m["body"] = NodeMap(n.Body)
	}

	return m
}

func nodeMaps(ns []Node) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = NodeMap(n)
	}

	return out
}
