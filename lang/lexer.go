package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LexemeKind classifies a [Lexeme].
type LexemeKind int

const (
	// LexStop marks the end of input.
	LexStop LexemeKind = iota
	// LexName is an identifier or keyword.
	LexName
	// LexDelimiter is a single punctuation character.
	LexDelimiter
	// LexString is a double-quoted string literal.
	LexString
	// LexNumber is a decimal number literal.
	LexNumber
)

// String returns a string representation of the lexeme kind.
func (k LexemeKind) String() string {
	switch k {
	case LexStop:
		return "Stop"
	case LexName:
		return "Name"
	case LexDelimiter:
		return "Delimiter"
	case LexString:
		return "String"
	case LexNumber:
		return "Number"
	default:
		return "Unknown"
	}
}

// Lexeme is a single token read from source text.
// Start and End are byte offsets; Text is the raw source slice.
type Lexeme struct {
	Kind  LexemeKind
	Start int
	End   int
	Text  string
}

// Is reports whether l is the delimiter or name s.
func (l Lexeme) Is(kind LexemeKind, s string) bool {
	return l.Kind == kind && l.Text == s
}

// Delim reports whether l is the delimiter s.
func (l Lexeme) Delim(s string) bool { return l.Is(LexDelimiter, s) }

// Unquote returns the content of a string lexeme with doubled quotes
// collapsed. It returns Text unchanged for other kinds.
func (l Lexeme) Unquote() string {
	if l.Kind != LexString || len(l.Text) < 2 {
		return l.Text
	}

	return strings.ReplaceAll(l.Text[1:len(l.Text)-1], `""`, `"`)
}

const delimiters = "()[]?:;.,=<>!&|*/%+-{}"

func isDelimiter(r rune) bool { return strings.ContainsRune(delimiters, r) }

func isSpace(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }

func isNameStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isNameContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// NextLexeme reads the lexeme that begins at or after byte offset pos in src.
// The result depends only on its arguments.
func NextLexeme(src string, pos int) (Lexeme, error) {
	pos = min(max(pos, 0), len(src))

	// Skip leading whitespace.
	for pos < len(src) {
		r, n := utf8.DecodeRuneInString(src[pos:])
		if !isSpace(r) {
			break
		}

		pos += n
	}

	if pos >= len(src) {
		return Lexeme{Kind: LexStop, Start: len(src), End: len(src)}, nil
	}

	r, n := utf8.DecodeRuneInString(src[pos:])

	switch {
	case isDelimiter(r):
		return Lexeme{
			Kind:  LexDelimiter,
			Start: pos,
			End:   pos + n,
			Text:  src[pos : pos+n],
		}, nil

	case r == '"':
		return lexString(src, pos)

	case isDigit(r):
		return lexNumber(src, pos), nil

	case isNameStart(r):
		end := pos + n
		for end < len(src) {
			r, n := utf8.DecodeRuneInString(src[end:])
			if !isNameContinue(r) {
				break
			}

			end += n
		}

		return Lexeme{Kind: LexName, Start: pos, End: end, Text: src[pos:end]}, nil
	}

	return Lexeme{}, syntaxError(src, pos, "unexpected character")
}

func lexString(src string, start int) (Lexeme, error) {
	for i := start + 1; i < len(src); i++ {
		if src[i] != '"' {
			continue
		}

		// A doubled quote is an escaped literal quote.
		if i+1 < len(src) && src[i+1] == '"' {
			i++

			continue
		}

		return Lexeme{
			Kind:  LexString,
			Start: start,
			End:   i + 1,
			Text:  src[start : i+1],
		}, nil
	}

	return Lexeme{}, syntaxError(src, start, "unterminated string constant")
}

func lexNumber(src string, start int) Lexeme {
	end := start
	for end < len(src) && isDigit(rune(src[end])) {
		end++
	}

	// A single decimal point is part of the number only when a digit
	// follows it, so "1.Foo" still reads as a member access.
	if end+1 < len(src) && src[end] == '.' && isDigit(rune(src[end+1])) {
		end++
		for end < len(src) && isDigit(rune(src[end])) {
			end++
		}
	}

	return Lexeme{Kind: LexNumber, Start: start, End: end, Text: src[start:end]}
}
