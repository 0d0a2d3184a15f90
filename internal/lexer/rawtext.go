package lexer

import (
	"strings"

	"erbfmt/internal/token"
)

// rawTextElements have bodies that are not markup. Their bodies become
// ScriptBlock tokens.
var rawTextElements = []string{"script", "style"}

// rawTextElement returns the element name if s starts with its open tag.
func rawTextElement(s string) string {
	for _, name := range rawTextElements {
		if len(s) < len(name)+1 || s[0] != '<' || !strings.EqualFold(s[1:1+len(name)], name) {
			continue
		}
		if len(s) == len(name)+1 {
			return name
		}
		switch s[1+len(name)] {
		case '>', ' ', '\t':
			return name
		}
	}
	return ""
}

func (lx *lexer) openRawText(n int, line string, lead int, name string) {
	closer := "</" + name + ">"
	end := TagEnd(line[lead:])
	if end < 0 {
		lx.tag = tagState{inTag: true}
		i := lead + 1
		for i < len(line) {
			i = lx.tag.step(line, i)
		}
		lx.pend = pending{kind: pendMarkup, line: n, col: lead + 1, rawText: true, closer: closer, lines: []string{line[lead:]}}
		return
	}
	end += lead
	open := line[lead:end]
	lx.emit(token.Token{Kind: token.Markup, Content: open, Line: n, Column: lead + 1})
	if strings.HasSuffix(open, "/>") {
		lx.scanSegment(n, line, end, end, true)
		return
	}
	lx.rawTextBody(n, line, end, closer)
}

// rawTextBody handles the rest of the line after a raw-text open tag: either
// the whole element closes on this line or a pending region starts.
func (lx *lexer) rawTextBody(n int, line string, i int, closer string) {
	rest := line[i:]
	if j := indexFold(rest, closer); j >= 0 {
		if body := strings.TrimSpace(rest[:j]); body != "" {
			lx.emit(token.Token{Kind: token.ScriptBlock, Content: body, Line: n, Column: i + 1})
		}
		lx.closeRawText(n, line, i+j, closer)
		return
	}
	p := pending{kind: pendScript, closer: closer}
	if !isBlank(rest) {
		p.lines = []string{rest}
		p.line, p.col = n, i+1
	}
	lx.pend = p
}

// continueRawText takes one body line of an open raw-text region. Only a line
// that is the close tag alone ends it, so a "</script>" inside a string stays
// in the body.
func (lx *lexer) continueRawText(n int, line string) {
	trimmed := strings.TrimSpace(line)
	if !strings.EqualFold(trimmed, lx.pend.closer) {
		if lx.pend.line == 0 && !isBlank(line) {
			lx.pend.line, lx.pend.col = n, 1
		}
		lx.pend.lines = append(lx.pend.lines, line)
		return
	}
	p := lx.pend
	lx.pend = pending{}
	if body := strings.TrimSpace(strings.Join(p.lines, "\n")); body != "" {
		lx.emit(token.Token{Kind: token.ScriptBlock, Content: body, Line: p.line, Column: p.col})
	}
	lx.closeRawText(n, line, len(line)-len(strings.TrimLeft(line, " \t")), p.closer)
}

func (lx *lexer) closeRawText(n int, line string, at int, closer string) {
	end := at + len(closer)
	lx.emit(token.Token{Kind: token.Markup, Content: line[at:end], Line: n, Column: at + 1})
	lx.scanSegment(n, line, end, end, true)
}

// indexFold is strings.Index with ASCII case folding; sub must be lower case.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
