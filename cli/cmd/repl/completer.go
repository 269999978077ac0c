package repl

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// isWordBoundary reports whether r separates words for completion: space,
// the member-access dot, operators, and punctuation.
func isWordBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}

	return strings.ContainsRune(`()[]{}?:;.,=<>!&|*/%+-"`, r)
}

// wordBounds returns the word at cursor and its byte offsets in input. The
// word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member chain leading up to the word at wordStart.
// For "x + env.Platform.O" with the word "O", it is "env.Platform". It is
// empty for words that are not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// completion is the fuzzy match state for the word under the cursor.
type completion struct {
	matches    fuzzy.Matches
	start, end int
}

// complete ranks the candidates for the word at cursor. Lines beginning
// with ':' complete command names in their first word.
func complete(
	ctx context.Context,
	s *Session,
	input string,
	cursor int,
) completion {
	word, start, end := wordBounds(input, cursor)
	c := completion{start: start, end: end}

	if strings.HasPrefix(input, commandPrefix) && start == len(commandPrefix) {
		if word != "" {
			c.matches = fuzzy.Find(word, commandNames())
		}

		return c
	}

	parent := parentPath(input, start)
	candidates := s.Candidates(ctx, parent)

	if len(candidates) == 0 {
		return c
	}

	// At the top level an empty word shows no bar, leaving room for the
	// hint. After a dot every member is listed.
	if word == "" {
		if parent == "" {
			return c
		}

		c.matches = make(fuzzy.Matches, len(candidates))
		for i, name := range candidates {
			c.matches[i] = fuzzy.Match{Str: name, Index: i}
		}

		return c
	}

	c.matches = fuzzy.Find(word, candidates)

	return c
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, highlight = selectedStyle, selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
