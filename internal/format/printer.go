package format

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"erbfmt/internal/lexer"
	"erbfmt/internal/token"
	"erbfmt/internal/trace"
)

// ErrUnterminated reports a construct still open at end of input.
var ErrUnterminated = errors.New("unterminated construct")

// Formatter bundles options with the collaborators used while printing.
type Formatter struct {
	opt     Options
	tracer  trace.Tracer
	scripts ScriptFormatter
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithTracer sends degradation reports to t.
func WithTracer(t trace.Tracer) Option {
	return func(f *Formatter) {
		if t != nil {
			f.tracer = t
		}
	}
}

// WithScriptFormatter replaces the <script>/<style> body formatter.
func WithScriptFormatter(sf ScriptFormatter) Option {
	return func(f *Formatter) {
		if sf != nil {
			f.scripts = sf
		}
	}
}

// New creates a Formatter.
func New(opt Options, opts ...Option) *Formatter {
	f := &Formatter{
		opt:     opt.withDefaults(),
		tracer:  trace.Nop,
		scripts: DefaultScriptFormatter(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Format reformats an ERB template with default collaborators.
func Format(text string, opt Options) string {
	return New(opt).Format(text)
}

// Render prints an already tokenized template.
func Render(toks []token.Token, opt Options) (string, error) {
	return New(opt).Render(toks)
}

// FormatRange formats lines from..to (1-based, inclusive) of text.
func FormatRange(text string, from, to int, opt Options) string {
	return New(opt).FormatRange(text, from, to)
}

// Format never fails: when text cannot be formatted it is returned unchanged
// and the reason goes to the tracer.
func (f *Formatter) Format(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			trace.Log(f.tracer, trace.LevelError, trace.ScopeFile, "format: internal error", fmt.Sprint(r))
			out = text
		}
	}()
	toks := lexer.Tokenize(text)
	trace.Log(f.tracer, trace.LevelDebug, trace.ScopePass, "tokenize", fmt.Sprintf("%d tokens", len(toks)))
	res, err := f.Render(toks)
	if err != nil {
		trace.Log(f.tracer, trace.LevelWarn, trace.ScopeFile, "left unchanged", err.Error())
		return text
	}
	return res
}

// Render prints toks. It fails on an unterminated token.
func (f *Formatter) Render(toks []token.Token) (string, error) {
	for _, t := range toks {
		if t.Unterminated {
			return "", fmt.Errorf("%w at %d:%d", ErrUnterminated, t.Line, t.Column)
		}
	}
	size := 0
	for _, t := range toks {
		size += len(t.Content) + 8
	}
	p := &printer{
		f:     f,
		toks:  toks,
		w:     NewWriter(f.opt, size),
		lines: scanLines(toks),
	}
	p.print()
	return finalize(p.w.String()), nil
}

// FormatRange formats lines from..to (1-based, inclusive) and splices the
// result back; lines outside the range are untouched. The formatted range is
// shifted to the indentation of its first non-blank line.
func (f *Formatter) FormatRange(text string, from, to int) string {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	from = max(from, 1)
	to = min(to, len(lines))
	if from > to {
		return text
	}
	seg := strings.Join(lines[from-1:to], "")
	if strings.TrimSpace(seg) == "" {
		return text
	}
	out := f.Format(seg)
	if out == seg {
		return text
	}
	base := leadingIndent(seg)
	if base != "" {
		parts := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		for i, ln := range parts {
			if ln != "" {
				parts[i] = base + ln
			}
		}
		out = strings.Join(parts, "\n") + "\n"
	}
	if !strings.HasSuffix(seg, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return strings.Join(lines[:from-1], "") + out + strings.Join(lines[to:], "")
}

func leadingIndent(s string) string {
	for _, ln := range strings.Split(s, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		return ln[:len(ln)-len(strings.TrimLeft(ln, " \t"))]
	}
	return ""
}

// lineInfo summarizes the tokens that start on one source line.
type lineInfo struct {
	nonMarkup bool // a code, comment or script token
	opening   bool // a markup token starting with "<" but not "</"
	closing   bool // a markup token starting with "</"
}

func scanLines(toks []token.Token) map[int]lineInfo {
	lines := make(map[int]lineInfo)
	for _, t := range toks {
		li := lines[t.Line]
		switch t.Kind {
		case token.Markup:
			switch {
			case strings.HasPrefix(t.Content, "</"):
				li.closing = true
			case strings.HasPrefix(t.Content, "<"):
				li.opening = true
			}
		case token.BlankLine:
		default:
			li.nonMarkup = true
		}
		lines[t.Line] = li
	}
	return lines
}

type printer struct {
	f     *Formatter
	toks  []token.Token
	w     *Writer
	lines map[int]lineInfo

	prevBlank bool
	rawLang   Lang // language of the last raw-text open tag
}

func (p *printer) print() {
	for i := range p.toks {
		t := p.toks[i]
		if t.Kind == token.BlankLine {
			if p.f.opt.PreserveBlankLines && !p.prevBlank {
				p.w.Break()
				p.prevBlank = true
			}
			continue
		}
		p.prevBlank = false
		inline := p.inline(i)

		switch t.Kind {
		case token.Markup:
			p.printMarkup(t, inline)
		case token.CodeExpression, token.CodeOutput:
			p.printCode(t, inline)
		case token.CodeBlockStart, token.CodeOutputBlockStart:
			p.printCode(t, inline)
			p.w.IndentPush()
		case token.CodeBlockEnd:
			p.w.IndentPop()
			p.printCode(t, inline)
			if lexer.Continues(t.Content) {
				p.w.IndentPush()
			}
		case token.Comment:
			p.printComment(t, inline)
		case token.ScriptBlock:
			p.printScript(t, inline)
		}

		if !p.joinsNext(i, inline) {
			p.w.Newline()
		}
	}
}

// inline reports whether token i shares its output line with a neighbour:
// a markup token next to it on the same source line, or, for markup, a line
// holding an opening tag, a closing tag and some code.
func (p *printer) inline(i int) bool {
	t := p.toks[i]
	if i > 0 {
		if prev := p.toks[i-1]; prev.Line == t.Line && prev.Kind == token.Markup {
			return true
		}
	}
	if i+1 < len(p.toks) {
		if next := p.toks[i+1]; next.Line == t.Line && next.Kind == token.Markup {
			return true
		}
	}
	if t.Kind == token.Markup {
		li := p.lines[t.Line]
		return li.nonMarkup && li.opening && li.closing
	}
	return false
}

func (p *printer) joinsNext(i int, inline bool) bool {
	if !inline || i+1 >= len(p.toks) {
		return false
	}
	next := p.toks[i+1]
	return next.Kind != token.BlankLine && next.Line == p.toks[i].Line && p.inline(i+1)
}

func (p *printer) printMarkup(t token.Token, inline bool) {
	level := p.w.Indent()
	if inline && !strings.Contains(t.Content, "\n") {
		if t.SpaceBefore {
			p.w.Space()
		}
		p.w.WriteString(t.Content)
	} else {
		for j, ln := range layoutMarkup(t.Content, level) {
			if j > 0 {
				p.w.Newline()
			}
			p.w.SetIndent(ln.level)
			p.w.WriteString(ln.text)
		}
	}
	p.w.SetIndent(level + markupDelta(t.Content))

	if name := tagName(t.Content); name == "script" || name == "style" {
		p.rawLang = scriptLang(t.Content)
	}
}

func (p *printer) printCode(t token.Token, inline bool) {
	if inline && t.SpaceBefore {
		p.w.Space()
	}
	body := formatCode(t.Content, p.f.opt.indent(p.w.Indent()+1))
	p.writeTag(t, body)
}

func (p *printer) printComment(t token.Token, inline bool) {
	if inline && t.SpaceBefore {
		p.w.Space()
	}
	p.writeTag(t, strings.TrimSpace(t.Content))
}

func (p *printer) writeTag(t token.Token, body string) {
	if body == "" {
		p.w.WriteString(t.OpenDelim() + " " + t.CloseDelim())
		return
	}
	p.w.WriteString(t.OpenDelim() + " " + body + " " + t.CloseDelim())
}

func (p *printer) printScript(t token.Token, inline bool) {
	out, err := p.f.scripts.FormatScript(t.Content, p.rawLang, p.f.opt)
	var de *DelegateError
	switch {
	case err == nil:
	case errors.As(err, &de):
		trace.Log(p.f.tracer, trace.LevelDebug, trace.ScopePass, "script delegate fallback", de.Err.Error())
	default:
		trace.Log(p.f.tracer, trace.LevelWarn, trace.ScopePass, "script left as is", err.Error())
		out = t.Content
	}
	out = strings.TrimSpace(out)

	if inline && !p.w.AtLineStart() {
		if strings.Contains(out, "\n") {
			out = t.Content
		}
		p.w.WriteString(out)
		return
	}
	for j, ln := range strings.Split(out, "\n") {
		if j > 0 {
			p.w.Break()
		}
		p.w.WriteString(strings.TrimRight(ln, " \t"))
	}
}

var (
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// finalize strips trailing whitespace, collapses blank runs and leaves
// exactly one trailing newline.
func finalize(s string) string {
	s = trailingSpaceRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}
