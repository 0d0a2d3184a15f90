package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"golang.org/x/net/html"
)

// Lang is the language of a raw-text element body.
type Lang uint8

const (
	LangJS Lang = iota
	LangCSS
	LangJSON
	LangOther
)

var langNames = [...]string{
	LangJS:    "js",
	LangCSS:   "css",
	LangJSON:  "json",
	LangOther: "other",
}

func (l Lang) String() string {
	if int(l) < len(langNames) {
		return langNames[l]
	}
	return "Lang(?)"
}

// ScriptFormatter reprints the body of a <script> or <style> element. The
// result is indented from column zero; the printer shifts it to the element.
type ScriptFormatter interface {
	FormatScript(src string, lang Lang, opt Options) (string, error)
}

// ErrScriptRefused is returned by a delegate that will not touch a source.
var ErrScriptRefused = errors.New("script delegate refused source")

// scriptLang reads the language from a raw-text open tag such as
// `<script type="module">` or `<style>`.
func scriptLang(openTag string) Lang {
	z := html.NewTokenizer(strings.NewReader(openTag))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return LangOther
			}
			return LangJS
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) == "style" {
			return LangCSS
		}
		typ := ""
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "type" {
				typ = strings.ToLower(strings.TrimSpace(string(val)))
			}
		}
		return langOfType(typ)
	}
}

func langOfType(typ string) Lang {
	switch {
	case typ == "", typ == "module", strings.Contains(typ, "javascript"), strings.Contains(typ, "ecmascript"):
		return LangJS
	case typ == "application/json", strings.HasSuffix(typ, "+json"):
		return LangJSON
	default:
		return LangOther
	}
}

// DefaultScriptFormatter tries esbuild when the options allow it and falls
// back to brace re-indentation.
func DefaultScriptFormatter() ScriptFormatter {
	return chainFormatter{first: EsbuildFormatter{}, fallback: IndentFormatter{}}
}

type chainFormatter struct {
	first, fallback ScriptFormatter
}

func (c chainFormatter) FormatScript(src string, lang Lang, opt Options) (string, error) {
	if opt.ScriptDelegate && (lang == LangJS || lang == LangCSS) {
		out, err := c.first.FormatScript(src, lang, opt)
		if err == nil {
			return out, nil
		}
		fb, fbErr := c.fallback.FormatScript(src, lang, opt)
		if fbErr != nil {
			return "", fbErr
		}
		return fb, &DelegateError{Err: err}
	}
	return c.fallback.FormatScript(src, lang, opt)
}

// DelegateError accompanies a usable fallback result: the delegate failed and
// the fallback output was used instead.
type DelegateError struct {
	Err error
}

func (e *DelegateError) Error() string { return "script delegate: " + e.Err.Error() }
func (e *DelegateError) Unwrap() error { return e.Err }

// EsbuildFormatter parses and reprints JavaScript and CSS with esbuild.
// esbuild drops most comments, so sources with comments are refused, as are
// sources with ERB tags, which are not JavaScript at all.
type EsbuildFormatter struct{}

func (EsbuildFormatter) FormatScript(src string, lang Lang, opt Options) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("esbuild panic: %v", r)
		}
	}()

	var loader api.Loader
	switch lang {
	case LangJS:
		loader = api.LoaderJS
		if strings.Contains(src, "//") {
			return "", fmt.Errorf("%w: line comment", ErrScriptRefused)
		}
	case LangCSS:
		loader = api.LoaderCSS
	default:
		return "", fmt.Errorf("%w: %s", ErrScriptRefused, lang)
	}
	if strings.Contains(src, "/*") {
		return "", fmt.Errorf("%w: block comment", ErrScriptRefused)
	}
	if strings.Contains(src, "<%") {
		return "", fmt.Errorf("%w: erb tag", ErrScriptRefused)
	}
	// esbuild escapes "</script" inside strings, which would change the literal.
	if lower := strings.ToLower(src); strings.Contains(lower, "</script") || strings.Contains(lower, "</style") {
		return "", fmt.Errorf("%w: close tag in body", ErrScriptRefused)
	}

	res := api.Transform(src, api.TransformOptions{
		Loader:   loader,
		LogLevel: api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		msg := res.Errors[0]
		if msg.Location != nil {
			return "", fmt.Errorf("esbuild: %d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text)
		}
		return "", fmt.Errorf("esbuild: %s", msg.Text)
	}
	return reindentTwoSpace(strings.TrimRight(string(res.Code), "\n"), opt), nil
}

// reindentTwoSpace converts esbuild's fixed two-space layout to opt's unit.
func reindentTwoSpace(s string, opt Options) string {
	opt = opt.withDefaults()
	if !opt.UseTabs && opt.IndentWidth == 2 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		body := strings.TrimLeft(ln, " ")
		n := len(ln) - len(body)
		lines[i] = opt.indent(n/2) + strings.Repeat(" ", n%2) + body
	}
	return strings.Join(lines, "\n")
}

// IndentFormatter re-indents by brace structure without parsing. Lines that
// start inside a template literal are copied verbatim.
type IndentFormatter struct{}

func (IndentFormatter) FormatScript(src string, lang Lang, opt Options) (string, error) {
	if lang == LangOther {
		return dedent(src), nil
	}
	var (
		sc    jsScanner
		level int
		out   = make([]string, 0, strings.Count(src, "\n")+1)
	)
	for _, ln := range strings.Split(src, "\n") {
		if sc.tmpl {
			out = append(out, strings.TrimRight(ln, " \t"))
			sc.scan(ln)
			continue
		}
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" {
			out = append(out, "")
			continue
		}
		inComment := sc.blockComment
		first, last := sc.scan(trimmed)
		if !inComment && isCloser(first) {
			level = max(level-1, 0)
		}
		switch {
		case inComment && strings.HasPrefix(trimmed, "*"):
			out = append(out, opt.indent(level)+" "+trimmed)
		default:
			out = append(out, opt.indent(level)+trimmed)
		}
		if isOpener(last) {
			level++
		}
	}
	return strings.Join(out, "\n"), nil
}

func isOpener(c byte) bool { return c == '{' || c == '[' || c == '(' }
func isCloser(c byte) bool { return c == '}' || c == ']' || c == ')' }

// jsScanner tracks comment and template-literal state across lines.
type jsScanner struct {
	blockComment bool
	tmpl         bool
}

// scan returns the first and last significant code bytes of ln, skipping
// strings and comments; 0 when the line has none.
func (s *jsScanner) scan(ln string) (first, last byte) {
	for i := 0; i < len(ln); i++ {
		c := ln[i]
		switch {
		case s.blockComment:
			end := strings.Index(ln[i:], "*/")
			if end < 0 {
				return first, last
			}
			s.blockComment = false
			i += end + 1
			continue
		case s.tmpl:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.tmpl = false
			}
			continue
		}
		switch c {
		case ' ', '\t':
			continue
		case '/':
			if i+1 < len(ln) && ln[i+1] == '/' {
				return first, last
			}
			if i+1 < len(ln) && ln[i+1] == '*' {
				s.blockComment = true
				i++
				continue
			}
		case '"', '\'':
			i = skipQuoted(ln, i)
		case '`':
			s.tmpl = true
		}
		if first == 0 {
			first = c
		}
		last = c
	}
	return first, last
}

// skipQuoted returns the index of the quote closing the string at ln[i].
func skipQuoted(ln string, i int) int {
	q := ln[i]
	for j := i + 1; j < len(ln); j++ {
		switch ln[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(ln) - 1
}

// dedent removes the indentation shared by all non-blank lines after the
// first; the first line arrives already trimmed.
func dedent(src string) string {
	lines := strings.Split(src, "\n")
	common := -1
	for _, ln := range lines[1:] {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		n := len(ln) - len(strings.TrimLeft(ln, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, ln := range lines {
		switch {
		case strings.TrimSpace(ln) == "":
			lines[i] = ""
		case i > 0 && common > 0:
			lines[i] = strings.TrimRight(ln[common:], " \t")
		default:
			lines[i] = strings.TrimRight(ln, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
