package format

import (
	"regexp"
	"strconv"
	"strings"

	"erbfmt/internal/ruby"
)

// Code normalizes the spacing of one Ruby fragment. String, heredoc, percent
// and regexp literals and comments come back byte for byte.
func Code(fragment string) string {
	return formatCode(fragment, "")
}

// formatCode is Code with cont prefixed to every continuation line.
func formatCode(fragment, cont string) string {
	src := strings.TrimSpace(fragment)
	if src == "" {
		return ""
	}
	// a NUL in the source would be taken for a placeholder
	if strings.IndexByte(src, placeholderMark) >= 0 {
		return src
	}
	text, lits := protect(src)
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if ln = normalizeLine(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return restore(strings.Join(out, "\n"+cont), lits)
}

const placeholderMark = '\x00'

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

// protect swaps every literal for a placeholder the passes cannot touch.
func protect(src string) (string, []string) {
	found := ruby.Literals(src)
	if len(found) == 0 {
		return src, nil
	}
	var b strings.Builder
	b.Grow(len(src))
	lits := make([]string, len(found))
	prev := 0
	for i, l := range found {
		b.WriteString(src[prev:l.Start])
		b.WriteString(placeholder(i))
		lits[i] = l.Text(src)
		prev = l.End
	}
	b.WriteString(src[prev:])
	return b.String(), lits
}

func restore(s string, lits []string) string {
	for i := len(lits) - 1; i >= 0; i-- {
		s = strings.Replace(s, placeholder(i), lits[i], 1)
	}
	return s
}

func normalizeLine(s string) string {
	s = spaceOperators(s)
	s = spaceBrackets(s)
	s = commaRe.ReplaceAllString(s, ", ")
	s = spaceColons(s)
	s = fixSpecial(s)
	s = tightenChains(s)
	return collapseSpaces(s)
}

// Longest first: a prefix match must not shadow a longer operator.
var multiOps = []string{
	"**=", "<=>", "===", "<<=", ">>=", "&&=", "||=",
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=",
	"|=", "&=", "^=", "<<", ">>", "=>", "=~", "!~", "**",
}

const singleOps = "=+-*/%<>&|^"

// unaryKeywords precede an operand, so `return -1` keeps its sign attached.
var unaryKeywords = map[string]bool{
	"return": true, "when": true, "if": true, "unless": true, "elsif": true,
	"while": true, "until": true, "and": true, "or": true, "not": true,
	"in": true, "then": true, "else": true, "case": true, "yield": true,
}

func spaceOperators(s string) string {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); {
		c := s[i]
		if c == placeholderMark {
			end := strings.IndexByte(s[i+1:], placeholderMark)
			if end < 0 {
				out = append(out, s[i:]...)
				break
			}
			out = append(out, s[i:i+end+2]...)
			i += end + 2
			continue
		}
		if c == '&' && i+1 < len(s) && s[i+1] == '.' {
			out = append(out, "&."...)
			i += 2
			continue
		}
		op := matchOperator(s[i:])
		if op == "" {
			out = append(out, c)
			i++
			continue
		}
		next := byte(0)
		if i+len(op) < len(s) {
			next = s[i+len(op)]
		}
		switch {
		case isUnaryOp(op) && unaryPosition(out) && isOperandStart(next):
			if n := len(out); n > 0 && !isSpaceByte(out[n-1]) && !strings.ContainsRune("([{", rune(out[n-1])) {
				out = append(out, ' ')
			}
			out = append(out, op...)
		case (op == "-" || op == "+") && isExponent(s, i):
			out = append(out, op...)
		default:
			out = append(out, ' ')
			out = append(out, op...)
			out = append(out, ' ')
		}
		i += len(op)
	}
	return collapseSpaces(string(out))
}

func matchOperator(s string) string {
	for _, op := range multiOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	if strings.IndexByte(singleOps, s[0]) >= 0 {
		return s[:1]
	}
	return ""
}

func isUnaryOp(op string) bool {
	switch op {
	case "-", "+", "*", "&", "**":
		return true
	}
	return false
}

// unaryPosition reports whether an operator written after out would be a
// prefix operator: nothing before it, an opening bracket, a separator, another
// operator, or a keyword.
func unaryPosition(out []byte) bool {
	j := len(out) - 1
	for j >= 0 && isSpaceByte(out[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	if strings.IndexByte("([{,|=<>+-*/%&^!?:", out[j]) >= 0 {
		return true
	}
	k := j
	for k >= 0 && isWordByte(out[k]) {
		k--
	}
	return unaryKeywords[string(out[k+1:j+1])]
}

func isOperandStart(c byte) bool {
	return isWordByte(c) || c == '@' || c == ':' || c == '(' || c == '[' || c == placeholderMark
}

// isExponent reports whether s[i] is the sign of a float exponent (`1e-5`).
func isExponent(s string, i int) bool {
	if i < 2 || i+1 >= len(s) || (s[i-1] != 'e' && s[i-1] != 'E') {
		return false
	}
	return isDigit(s[i-2]) && isDigit(s[i+1])
}

var (
	parenOpenRe  = regexp.MustCompile(`\(\s+`)
	parenCloseRe = regexp.MustCompile(`\s+\)`)
	brackOpenRe  = regexp.MustCompile(`\[\s+`)
	brackCloseRe = regexp.MustCompile(`\s+\]`)
	braceOpenRe  = regexp.MustCompile(`\{\s*`)
	braceCloseRe = regexp.MustCompile(`\s*\}`)
	emptyBraceRe = regexp.MustCompile(`\{\s+\}`)
	commaRe      = regexp.MustCompile(`[ \t]*,[ \t]*`)
)

func spaceBrackets(s string) string {
	s = parenOpenRe.ReplaceAllString(s, "(")
	s = parenCloseRe.ReplaceAllString(s, ")")
	s = brackOpenRe.ReplaceAllString(s, "[")
	s = brackCloseRe.ReplaceAllString(s, "]")
	s = braceOpenRe.ReplaceAllString(s, "{ ")
	s = braceCloseRe.ReplaceAllString(s, " }")
	return emptyBraceRe.ReplaceAllString(s, "{}")
}

// spaceColons writes `key: value` for a colon attached to an identifier.
// `A::B` and a spaced symbol argument (`yield :sidebar`) are left alone, as is
// anything after a ` ? ` on the line, where the colon belongs to a ternary.
func spaceColons(s string) string {
	for j := 1; j < len(s); j++ {
		if s[j] != ':' || s[j-1] == ':' || (j+1 < len(s) && s[j+1] == ':') {
			continue
		}
		k := j - 1
		for k >= 0 && isSpaceByte(s[k]) {
			k--
		}
		end := k + 1
		for k >= 0 && isWordByte(s[k]) {
			k--
		}
		start := k + 1
		if start == end || isDigit(s[start]) {
			continue
		}
		if start > 0 && !isKeyContext(s[start-1]) {
			continue
		}
		spaceBefore := end < j
		spaceAfter := j+1 < len(s) && isSpaceByte(s[j+1])
		if spaceBefore && !spaceAfter {
			continue
		}
		if strings.Contains(s[:start], " ? ") {
			continue
		}
		rest := strings.TrimLeft(s[j+1:], " \t")
		sep := ": "
		if rest == "" {
			sep = ":"
		}
		s = s[:end] + sep + rest
		j = end + len(sep) - 1
	}
	return s
}

func isKeyContext(c byte) bool {
	return c == '{' || c == '(' || c == ',' || c == '|' || isSpaceByte(c)
}

var (
	lambdaParenRe = regexp.MustCompile(`-\s*>\s*\(`)
	lambdaRe      = regexp.MustCompile(`-\s*>\s*([^\s(]|$)`)
	blockParamsRe = regexp.MustCompile(`\|\s+([^|]*[^|\s])\s+\|`)
	procBraceRe   = regexp.MustCompile(`\b(proc|lambda)\s*\{`)
	helperParenRe = regexp.MustCompile(`\b(link_to|button_to|mail_to|form_with|form_for|form_tag|content_for|content_tag|tag|image_tag|stylesheet_link_tag|javascript_include_tag|render|partial|collection)\s+\(`)
	chainDotRe    = regexp.MustCompile(`\s*\.\s*`)
	safeNavRe     = regexp.MustCompile(`\s*&\s*\.\s*`)
	optionalDotRe = regexp.MustCompile(`\?\s*\.`)
	rangeDotsRe   = regexp.MustCompile(`\s*\.\.(\.?)\s*`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
)

func fixSpecial(s string) string {
	s = lambdaParenRe.ReplaceAllString(s, "->(")
	s = lambdaRe.ReplaceAllString(s, "-> $1")
	s = blockParamsRe.ReplaceAllString(s, "|$1|")
	s = procBraceRe.ReplaceAllString(s, "$1 {")
	return helperParenRe.ReplaceAllString(s, "$1(")
}

// tightenChains removes spaces around method-call dots. Ranges keep their dots
// and a space-separated `..` stays spaced.
func tightenChains(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	if strings.Contains(s, "..") {
		// ranges are rare in templates; only tighten outside them
		parts := rangeDotsRe.Split(s, -1)
		seps := rangeDotsRe.FindAllString(s, -1)
		var b strings.Builder
		for i, p := range parts {
			b.WriteString(tightenChains(p))
			if i < len(seps) {
				b.WriteString(seps[i])
			}
		}
		return b.String()
	}
	s = safeNavRe.ReplaceAllString(s, "&.")
	s = chainDotRe.ReplaceAllString(s, ".")
	return optionalDotRe.ReplaceAllString(s, "?.")
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'z') || c == '?' || c == '!'
}
