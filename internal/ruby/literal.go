package ruby

import (
	"strings"
)

// LiteralKind classifies a protected span.
type LiteralKind uint8

const (
	// String is a "", '' or `` literal, interpolation included.
	String LiteralKind = iota + 1
	// Heredoc spans the opener through the terminator line.
	Heredoc
	// Percent is %w[], %i(), %q{} and friends.
	Percent
	// Regexp is a /.../flags literal.
	Regexp
	// Comment is a # comment up to the end of its line.
	Comment
)

// String returns the name of the kind.
func (k LiteralKind) String() string {
	switch k {
	case String:
		return "string"
	case Heredoc:
		return "heredoc"
	case Percent:
		return "percent"
	case Regexp:
		return "regexp"
	case Comment:
		return "comment"
	default:
		return "unknown"
	}
}

// Literal is a half-open byte range [Start, End) of the scanned source.
type Literal struct {
	Kind       LiteralKind
	Start, End int
}

// Text returns the literal's source text.
func (l Literal) Text(src string) string { return src[l.Start:l.End] }

// Literals returns the literal spans of src in source order. Spans never
// overlap. An unterminated string runs to the end of src.
func Literals(src string) []Literal {
	var out []Literal
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			end := scanQuoted(src, i, c)
			out = append(out, Literal{Kind: String, Start: i, End: end})
			i = end
		case c == '#':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			out = append(out, Literal{Kind: Comment, Start: i, End: end})
			i = end
		case c == '<' && strings.HasPrefix(src[i:], "<<"):
			if end, ok := scanHeredoc(src, i); ok {
				out = append(out, Literal{Kind: Heredoc, Start: i, End: end})
				i = end
				continue
			}
			i += 2
		case c == '%':
			if end, ok := scanPercent(src, i); ok {
				out = append(out, Literal{Kind: Percent, Start: i, End: end})
				i = end
				continue
			}
			i++
		case c == '/':
			if end, ok := scanRegexp(src, i); ok {
				out = append(out, Literal{Kind: Regexp, Start: i, End: end})
				i = end
				continue
			}
			i++
		default:
			i++
		}
	}
	return out
}

// Mask replaces every literal with a neutral stand-in so keyword and brace
// heuristics cannot match text inside strings. Comments are dropped.
func Mask(src string) string {
	lits := Literals(src)
	if len(lits) == 0 {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	prev := 0
	for _, l := range lits {
		b.WriteString(src[prev:l.Start])
		if l.Kind != Comment {
			b.WriteString(`""`)
		}
		prev = l.End
	}
	b.WriteString(src[prev:])
	return b.String()
}

func scanQuoted(src string, i int, q byte) int {
	j := i + 1
	for j < len(src) {
		c := src[j]
		switch {
		case c == '\\':
			j += 2
			continue
		case c == q:
			return j + 1
		case q != '\'' && c == '#' && j+1 < len(src) && src[j+1] == '{':
			j = scanInterpolation(src, j+2)
			continue
		}
		j++
	}
	return len(src)
}

// scanInterpolation skips a #{...} body starting right after the brace.
func scanInterpolation(src string, j int) int {
	depth := 1
	for j < len(src) {
		switch c := src[j]; c {
		case '"', '\'', '`':
			j = scanQuoted(src, j, c)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(src)
}

// scanHeredoc recognizes <<~ID, <<-ID, <<ID and their quoted forms. The span
// covers the rest of the opener line and the body through the terminator line.
func scanHeredoc(src string, i int) (int, bool) {
	j := i + 2
	squiggly := false
	if j < len(src) && (src[j] == '~' || src[j] == '-') {
		squiggly = true
		j++
	}
	var id string
	switch {
	case j < len(src) && (src[j] == '\'' || src[j] == '"'):
		q := src[j]
		k := strings.IndexByte(src[j+1:], q)
		if k <= 0 {
			return 0, false
		}
		id = src[j+1 : j+1+k]
	default:
		k := j
		for k < len(src) && isIdentByte(src[k]) {
			k++
		}
		id = src[j:k]
		// a bare <<id is an append unless the identifier is a constant
		if id == "" || (!squiggly && !isUpper(id[0])) {
			return 0, false
		}
	}
	if id == "" {
		return 0, false
	}
	nl := strings.IndexByte(src[i:], '\n')
	if nl < 0 {
		return 0, false
	}
	pos := i + nl + 1
	for pos <= len(src) {
		end := strings.IndexByte(src[pos:], '\n')
		var line string
		next := len(src)
		if end < 0 {
			line = src[pos:]
		} else {
			line = src[pos : pos+end]
			next = pos + end
		}
		if line == id || (squiggly && strings.TrimSpace(line) == id) {
			return next, true
		}
		if end < 0 {
			break
		}
		pos = next + 1
	}
	return 0, false
}

var percentClose = map[byte]byte{'[': ']', '(': ')', '{': '}', '<': '>'}

// scanPercent recognizes %w[...] style literals. The bare %[...] form is left
// alone because it is indistinguishable from modulo without a parser.
func scanPercent(src string, i int) (int, bool) {
	if i+2 >= len(src) || !strings.ContainsRune("qQwWiIrsx", rune(src[i+1])) {
		return 0, false
	}
	if i > 0 && isIdentByte(src[i-1]) {
		return 0, false
	}
	open := src[i+2]
	closer, paired := percentClose[open]
	if !paired {
		if open != '|' && open != '!' && open != '/' {
			return 0, false
		}
		closer = open
	}
	depth := 1
	for j := i + 3; j < len(src); j++ {
		switch c := src[j]; {
		case c == '\\':
			j++
		case paired && c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				end := j + 1
				if src[i+1] == 'r' {
					for end < len(src) && isLower(src[end]) {
						end++
					}
				}
				return end, true
			}
		}
	}
	return 0, false
}

// scanRegexp accepts /.../ only where an operand is expected: at the start, after
// an operator or opening bracket, or after a word followed by a space (a
// command-call argument such as `split /,/`). The body must not start with a
// space and must close on the same line.
func scanRegexp(src string, i int) (int, bool) {
	if i+1 >= len(src) || src[i+1] == ' ' || src[i+1] == '=' || src[i+1] == '\n' {
		return 0, false
	}
	k := i - 1
	for k >= 0 && (src[k] == ' ' || src[k] == '\t') {
		k--
	}
	if k >= 0 {
		p := src[k]
		switch {
		case strings.IndexByte("(,=!~|&{[;:?+-*%<>^\n", p) >= 0:
		case isIdentByte(p) && k < i-1:
		default:
			return 0, false
		}
	}
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch c := src[j]; {
		case c == '\\':
			j++
		case c == '\n':
			return 0, false
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			end := j + 1
			for end < len(src) && isLower(src[end]) {
				end++
			}
			return end, true
		}
	}
	return 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || isLower(c) || isUpper(c) || (c >= '0' && c <= '9')
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
