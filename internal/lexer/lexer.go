// Package lexer implements the engine's textual grammar (spec §4.1):
// delimiter-separated key=value pairs with balanced-brace nesting and
// configurable escaping. It has no teacher analog — the teacher's own
// parsers (internal/parser/toml, internal/parser/mysql in the source
// repo) lean on BurntSushi/toml and a SQL grammar library respectively,
// neither of which fits this small bespoke grammar — so it is written
// directly against the standard library, the way the teacher hand-rolls
// its own tokenizing helpers wherever no library fits.
package lexer

import (
	"strings"

	"ckv/internal/ckverrors"
)

// Exhausted is returned as the second value from NextToken when start was
// already at or past the end of input.
const Exhausted = -1

// NextToken reads one token from input starting at start, honoring
// balanced brace nesting and delim as the top-level separator. It returns
// the trimmed token text and the index just past the token (or Exhausted
// if start was already at end of input).
func NextToken(input string, delim byte, start int) (string, int, error) {
	n := len(input)
	i := start
	for i < n && isSpace(input[i]) {
		i++
	}
	if i >= n {
		return "", Exhausted, nil
	}

	if input[i] == '{' {
		depth := 0
		j := i
		for j < n {
			switch input[j] {
			case '{':
				if !escapedAt(input, j) {
					depth++
				}
			case '}':
				if !escapedAt(input, j) {
					depth--
					if depth == 0 {
						goto closed
					}
				}
			}
			j++
		}
		return "", 0, ckverrors.InvalidArg("lexer: mismatched curly braces")
	closed:
		inner := strings.TrimSpace(input[i+1 : j])
		k := j + 1
		if k < n && !isSpace(input[k]) && input[k] != delim {
			return "", 0, ckverrors.InvalidArg("lexer: unexpected chars after nested options")
		}
		for k < n && isSpace(input[k]) {
			k++
		}
		if k < n && input[k] == delim {
			k++
		}
		return inner, k, nil
	}

	j := i
	for j < n && (input[j] != delim || escapedAt(input, j)) {
		j++
	}
	token := strings.TrimSpace(input[i:j])
	end := j
	if end < n {
		end++ // skip the delimiter
	}
	return token, end, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// escapedAt reports whether input[i] is a literal character escaped by a
// backslash — an odd number of consecutive backslashes immediately
// preceding it — rather than a grammar-significant delimiter or brace
// (spec §4.2 "String" escaping). A byte the codec layer escaped on
// serialization must not be mistaken for structure when re-tokenized.
func escapedAt(input string, i int) bool {
	count := 0
	for k := i - 1; k >= 0 && input[k] == '\\'; k-- {
		count++
	}
	return count%2 == 1
}

// StringToMap parses input as a sequence of "key = value" pairs separated
// by ';', peeling any number of outer matched {} layers first, and
// trimming outer whitespace. It fails on empty keys or a value segment
// with no '='.
func StringToMap(input string) (map[string]string, error) {
	s := strings.TrimSpace(input)
	for {
		if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
			break
		}
		if !isFullyWrapped(s) {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	out := make(map[string]string)
	if s == "" {
		return out, nil
	}

	pos := 0
	for pos < len(s) {
		eq := strings.IndexByte(s[pos:], '=')
		if eq < 0 {
			return nil, ckverrors.InvalidArg("lexer: missing '=' in option pair %q", s[pos:])
		}
		key := strings.TrimSpace(s[pos : pos+eq])
		if key == "" {
			return nil, ckverrors.InvalidArg("lexer: empty option key")
		}
		valueStart := pos + eq + 1
		token, next, err := NextToken(s, ';', valueStart)
		if err != nil {
			return nil, err
		}
		out[key] = token
		if next == Exhausted {
			break
		}
		pos = next
	}
	return out, nil
}

// SplitTokens splits input into top-level tokens separated by delim,
// honoring balanced brace nesting the same way NextToken does (spec §4.3
// "Vector"). A trailing delimiter yields a final empty token rather than
// being silently absorbed, so callers can reject it when empty elements
// aren't valid.
func SplitTokens(input string, delim byte) ([]string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}
	var out []string
	pos := 0
	for {
		token, next, err := NextToken(s, delim, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, token)
		if next == Exhausted {
			break
		}
		if next >= len(s) {
			if s[next-1] == delim {
				out = append(out, "")
			}
			break
		}
		pos = next
	}
	return out, nil
}

// isFullyWrapped reports whether s, which starts with '{' and ends with
// '}', has those two braces matched to each other (rather than the
// closing brace of an earlier, already-closed group).
func isFullyWrapped(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if !escapedAt(s, i) {
				depth++
			}
		case '}':
			if !escapedAt(s, i) {
				depth--
				if depth == 0 {
					return i == len(s)-1
				}
			}
		}
	}
	return false
}
