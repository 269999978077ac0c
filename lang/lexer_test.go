package lang

import (
	"errors"
	"testing"
)

func lexAll(t *testing.T, src string) []Lexeme {
	t.Helper()

	var out []Lexeme

	for pos := 0; ; {
		lx, err := NextLexeme(src, pos)
		if err != nil {
			t.Fatalf("NextLexeme(%q, %d): %v", src, pos, err)
		}

		out = append(out, lx)

		if lx.Kind == LexStop {
			return out
		}

		pos = lx.End
	}
}

func TestNextLexeme_Kinds(t *testing.T) {
	tests := []struct {
		src   string
		kinds []LexemeKind
		texts []string
	}{
		{
			src:   "a + 1",
			kinds: []LexemeKind{LexName, LexDelimiter, LexNumber, LexStop},
			texts: []string{"a", "+", "1", ""},
		},
		{
			src:   `x.Substring(2)`,
			kinds: []LexemeKind{LexName, LexDelimiter, LexName, LexDelimiter, LexNumber, LexDelimiter, LexStop},
			texts: []string{"x", ".", "Substring", "(", "2", ")", ""},
		},
		{
			src:   "3.14*r2",
			kinds: []LexemeKind{LexNumber, LexDelimiter, LexName, LexStop},
			texts: []string{"3.14", "*", "r2", ""},
		},
		{
			src:   "1.Foo",
			kinds: []LexemeKind{LexNumber, LexDelimiter, LexName, LexStop},
			texts: []string{"1", ".", "Foo", ""},
		},
		{
			src:   `"a ""quoted"" (str)"`,
			kinds: []LexemeKind{LexString, LexStop},
			texts: []string{`"a ""quoted"" (str)"`, ""},
		},
		{
			src:   "a<=b",
			kinds: []LexemeKind{LexName, LexDelimiter, LexDelimiter, LexName, LexStop},
			texts: []string{"a", "<", "=", "b", ""},
		},
		{
			src:   "  \t\n ",
			kinds: []LexemeKind{LexStop},
			texts: []string{""},
		},
		{
			src:   "_under_score9",
			kinds: []LexemeKind{LexName, LexStop},
			texts: []string{"_under_score9", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := lexAll(t, tt.src)
			if len(got) != len(tt.kinds) {
				t.Fatalf("got %d lexemes, want %d: %+v", len(got), len(tt.kinds), got)
			}

			for i, lx := range got {
				if lx.Kind != tt.kinds[i] {
					t.Errorf("lexeme %d: kind %v, want %v", i, lx.Kind, tt.kinds[i])
				}

				if lx.Text != tt.texts[i] {
					t.Errorf("lexeme %d: text %q, want %q", i, lx.Text, tt.texts[i])
				}
			}
		})
	}
}

func TestNextLexeme_Deterministic(t *testing.T) {
	src := `pi > one && name.ToUpper() == "X"`

	for pos := 0; pos <= len(src); pos++ {
		a, errA := NextLexeme(src, pos)
		b, errB := NextLexeme(src, pos)

		if a != b || (errA == nil) != (errB == nil) {
			t.Fatalf("position %d: %+v/%v != %+v/%v", pos, a, errA, b, errB)
		}
	}
}

func TestNextLexeme_Stop(t *testing.T) {
	src := "abc   "

	lx, err := NextLexeme(src, 3)
	if err != nil {
		t.Fatal(err)
	}

	if lx.Kind != LexStop || lx.Start != len(src) || lx.End != len(src) {
		t.Errorf("got %+v, want stop at %d", lx, len(src))
	}

	// Out of range positions are clamped.
	lx, err = NextLexeme(src, 100)
	if err != nil || lx.Kind != LexStop {
		t.Errorf("got %+v, %v", lx, err)
	}
}

func TestNextLexeme_Errors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
		msg    string
	}{
		{`"open`, 0, "unterminated string constant"},
		{`a + "x""`, 4, "unterminated string constant"},
		{"a # b", 2, "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var err error

			for pos := 0; err == nil; {
				var lx Lexeme

				lx, err = NextLexeme(tt.src, pos)
				if err == nil && lx.Kind == LexStop {
					t.Fatal("expected error, reached stop")
				}

				pos = lx.End
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}

			if se.Message != tt.msg || se.Offset != tt.offset || se.Source != tt.src {
				t.Errorf("got %+v", se)
			}
		})
	}
}

func TestLexeme_Unquote(t *testing.T) {
	lx, err := NextLexeme(`"say ""hi"""`, 0)
	if err != nil {
		t.Fatal(err)
	}

	if got := lx.Unquote(); got != `say "hi"` {
		t.Errorf("Unquote() = %q", got)
	}

	name := Lexeme{Kind: LexName, Text: "abc"}
	if got := name.Unquote(); got != "abc" {
		t.Errorf("Unquote() on name = %q", got)
	}
}
