package repl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // member chain, e.g. "env.Get"
	argIndex int    // 0-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// splitSignature splits "Name(a, b) out" into its name, parameters, and
// result. Commas inside quotes or nested brackets do not split parameters.
func splitSignature(sig string) (name string, params []string, result string) {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return sig, nil, ""
	}

	name = sig[:open]

	var (
		depth  int
		quoted bool
		from   = open + 1
	)

	for i := open + 1; i < len(sig); i++ {
		switch c := sig[i]; {
		case c == '"' && (i == 0 || sig[i-1] != '\\'):
			quoted = !quoted
		case quoted:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' && depth == 0:
			if p := strings.TrimSpace(sig[from:i]); p != "" {
				params = append(params, p)
			}

			return name, params, strings.TrimSpace(sig[i+1:])
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			params = append(params, strings.TrimSpace(sig[from:i]))
			from = i + 1
		}
	}

	return name, params, ""
}

// pickSignature returns the first overload that accepts argIndex+1
// arguments, or the first overload if none does.
func pickSignature(sigs []string, argIndex int) string {
	for _, sig := range sigs {
		_, params, _ := splitSignature(sig)

		n := len(params)
		if argIndex < n || (n > 0 && strings.HasPrefix(params[n-1], "...")) {
			return sig
		}
	}

	if len(sigs) == 0 {
		return ""
	}

	return sigs[0]
}

// renderSignatureHint renders sig with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every argument
// after it. more counts the overloads not shown.
func renderSignatureHint(sig string, argIndex, more int) string {
	if sig == "" {
		return ""
	}

	name, params, result := splitSignature(sig)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if argIndex == i || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if result != "" {
		b.WriteString(signatureStyle.Render(" " + result))
	}

	if more > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  (+%d more)", more)))
	}

	return b.String()
}
