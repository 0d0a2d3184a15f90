package lexer

import (
	"regexp"
	"strings"

	"erbfmt/internal/ruby"
	"erbfmt/internal/token"
)

// Keyword sets of the block heuristic. The heuristic is textual: it never
// parses Ruby, so a helper named like a keyword can be misclassified.
var (
	blockKeywords = []string{
		"if", "unless", "case", "for", "while", "until", "def", "class", "module",
		"begin", "do", "each", "map", "select", "reject", "times", "loop",
		"with_index", "find", "detect", "collect", "inject", "reduce",
	}
	terminatorKeywords   = []string{"end", "else", "elsif", "when", "rescue", "ensure"}
	continuationKeywords = []string{"else", "elsif", "when", "rescue", "ensure"}
)

var (
	blockHelperRe = regexp.MustCompile(`\b(form_with|form_for|form_tag|content_for|capture|link_to|button_to|mail_to|content_tag|tag)\b`)
	doWordRe      = regexp.MustCompile(`\sdo(\s|$)`)
	blockParamsRe = regexp.MustCompile(`\|[^|\n]*\|`)
	chainBlockRe  = regexp.MustCompile(`\.\w+[?!]?\s+(do\b|\{)`)
)

// Classify maps the inner text of a code tag (between `<%` and `%>`, trim
// markers already removed) to a token kind and its content.
func Classify(inner string) (token.Kind, string) {
	code := strings.TrimSpace(inner)
	switch {
	case strings.HasPrefix(code, "#"):
		return token.Comment, strings.TrimSpace(code[1:])
	case strings.HasPrefix(code, "="):
		out := strings.TrimSpace(code[1:])
		if IsBlockStart(out) {
			return token.CodeOutputBlockStart, out
		}
		return token.CodeOutput, out
	case IsBlockEnd(code):
		return token.CodeBlockEnd, code
	case IsBlockStart(code):
		return token.CodeBlockStart, code
	default:
		return token.CodeExpression, code
	}
}

// IsBlockEnd reports whether code closes the enclosing body: a terminator
// keyword, or a `}` closing a brace block opened by an earlier tag.
func IsBlockEnd(code string) bool {
	code = strings.TrimSpace(code)
	if hasLeadingKeyword(code, terminatorKeywords) {
		return true
	}
	return strings.HasPrefix(code, "}") && braceDepth(ruby.Mask(code)) < 0
}

// Continues reports whether a block end also opens a new body
// (`else`, `elsif`, `when`, `rescue`, `ensure`).
func Continues(code string) bool {
	return hasLeadingKeyword(strings.TrimSpace(code), continuationKeywords)
}

// IsBlockStart reports whether code opens a body that a later tag closes.
func IsBlockStart(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	m := ruby.Mask(code)
	if hasLeadingKeyword(m, blockKeywords) {
		return true
	}
	depth := braceDepth(m)
	opens := depth > 0
	inlineBrace := strings.Contains(m, "{") && depth <= 0

	if blockHelperRe.MatchString(m) && (doWordRe.MatchString(m) || opens) {
		return true
	}
	if strings.HasSuffix(m, " do") || strings.Contains(m, " do ") {
		return true
	}
	// `a || b` is not a parameter list
	if blockParamsRe.MatchString(strings.ReplaceAll(m, "||", "  ")) && !inlineBrace {
		return true
	}
	if sub := chainBlockRe.FindStringSubmatch(m); sub != nil {
		return sub[1] != "{" || opens
	}
	return false
}

func hasLeadingKeyword(code string, kws []string) bool {
	for _, kw := range kws {
		if code == kw || strings.HasPrefix(code, kw+" ") {
			return true
		}
	}
	return false
}

func braceDepth(masked string) int {
	return strings.Count(masked, "{") - strings.Count(masked, "}")
}
