package lexer

import (
	"strings"

	"erbfmt/internal/token"
)

type pendingKind uint8

const (
	pendNone pendingKind = iota
	pendCode
	pendMarkup
	pendScript
)

// pending is the cross-line accumulator. At most one construct is open at a
// time, so code tags, markup tags and raw-text regions share one value.
type pending struct {
	kind  pendingKind
	lines []string
	line  int
	col   int
	space bool

	// pendMarkup: the open tag belongs to a raw-text element.
	rawText bool
	// pendMarkup with rawText, pendScript: the close tag to look for.
	closer string
}

// carried is a markup tag that closed mid-line; it prefixes the next markup
// piece emitted on that line.
type carried struct {
	lines []string
	line  int
	col   int
	space bool
}

type lexer struct {
	toks  []token.Token
	pend  pending
	tag   tagState
	carry *carried
}

// Tokenize splits text into tokens in source order. It never fails: a
// construct still open at end of input is flushed as one Markup token with
// Unterminated set and its raw text as content.
func Tokenize(text string) []token.Token {
	text = normalizeNewlines(text)
	lx := &lexer{toks: make([]token.Token, 0, strings.Count(text, "\n")+1)}
	for i, line := range strings.Split(text, "\n") {
		lx.scanLine(i+1, line)
	}
	lx.flush()
	return lx.toks
}

func (lx *lexer) emit(t token.Token) {
	lx.toks = append(lx.toks, t)
}

func (lx *lexer) scanLine(n int, line string) {
	// 1) открытый аккумулятор забирает строку целиком
	switch lx.pend.kind {
	case pendCode:
		lx.continueCode(n, line)
		return
	case pendMarkup:
		lx.continueMarkup(n, line)
		return
	case pendScript:
		lx.continueRawText(n, line)
		return
	}

	// 2) пустая строка
	if isBlank(line) {
		lx.emit(token.Token{Kind: token.BlankLine, Line: n, Column: 1})
		return
	}

	// 3) <script>/<style> в начале строки
	lead := len(line) - len(strings.TrimLeft(line, " \t"))
	if name := rawTextElement(line[lead:]); name != "" {
		lx.openRawText(n, line, lead, name)
		return
	}

	// 4) обычная строка: markup вперемешку с code tags
	lx.scanSegment(n, line, lead, lead, false)
}

// scanSegment splits line[start:] into markup pieces and code tags; i >= start
// is where scanning resumes (the bytes in between belong to the current piece).
// Code delimiters inside a markup tag (`<div class="<%= c %>">`) stay part of
// the tag. A tag still open at the end of the line makes the trailing piece a
// pending markup accumulator.
func (lx *lexer) scanSegment(n int, line string, start, i int, emitted bool) {
	for i < len(line) {
		if lx.tag.inTag {
			i = lx.tag.step(line, i)
			continue
		}
		switch {
		case strings.HasPrefix(line[i:], "<%%"):
			i += 3
		case strings.HasPrefix(line[i:], "<%"):
			if lx.emitMarkup(n, line, start, i, emitted) {
				emitted = true
			}
			space := emitted && i > 0 && isSpace(line[i-1])
			end := strings.Index(line[i+2:], "%>")
			if end < 0 {
				lx.pend = pending{kind: pendCode, line: n, col: i + 1, space: space, lines: []string{line[i+2:]}}
				return
			}
			lx.emitCode(line[i+2:i+2+end], n, i+1, space)
			emitted = true
			i += 2 + end + 2
			start = i
		case startsTagAt(line, i):
			lx.tag.inTag = true
			i++
		default:
			i++
		}
	}

	if !lx.tag.inTag {
		lx.emitMarkup(n, line, start, len(line), emitted)
		return
	}
	raw := line[start:]
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	p := pending{kind: pendMarkup, line: n, col: start + lead + 1, space: emitted && lead > 0, lines: []string{raw[lead:]}}
	if c := lx.carry; c != nil {
		p.lines = append(c.lines, raw)
		p.line, p.col, p.space = c.line, c.col, c.space
		lx.carry = nil
	}
	lx.pend = p
}

// emitMarkup emits line[from:to] as a trimmed Markup token, prefixed by a
// carried tag if there is one. It reports whether a token was emitted.
func (lx *lexer) emitMarkup(n int, line string, from, to int, emitted bool) bool {
	raw := line[from:to]
	if c := lx.carry; c != nil {
		lx.carry = nil
		content := strings.TrimSpace(strings.Join(c.lines, "\n") + "\n" + raw)
		lx.emit(token.Token{Kind: token.Markup, Content: content, Line: c.line, Column: c.col, SpaceBefore: c.space})
		return true
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return false
	}
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	lx.emit(token.Token{
		Kind:        token.Markup,
		Content:     content,
		Line:        n,
		Column:      from + lead + 1,
		SpaceBefore: emitted && lead > 0,
	})
	return true
}

// emitCode classifies the text between `<%` and `%>`.
func (lx *lexer) emitCode(inner string, line, col int, space bool) {
	t := token.Token{Line: line, Column: col, SpaceBefore: space}
	body := inner
	if strings.HasPrefix(body, "-") {
		t.TrimLeft = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "-") {
		t.TrimRight = true
		body = body[:len(body)-1]
	}
	if trimmed := strings.TrimSpace(body); strings.HasPrefix(trimmed, "==") {
		t.Raw = true
		body = trimmed[1:]
	}
	t.Kind, t.Content = Classify(body)
	lx.emit(t)
}

func (lx *lexer) continueCode(n int, line string) {
	end := strings.Index(line, "%>")
	if end < 0 {
		lx.pend.lines = append(lx.pend.lines, line)
		return
	}
	p := lx.pend
	lx.pend = pending{}
	p.lines = append(p.lines, line[:end])
	lx.emitCode(strings.Join(p.lines, "\n"), p.line, p.col, p.space)
	lx.scanSegment(n, line, end+2, end+2, true)
}

func (lx *lexer) continueMarkup(n int, line string) {
	i := 0
	for i < len(line) && lx.tag.inTag {
		i = lx.tag.step(line, i)
	}
	if lx.tag.inTag {
		lx.pend.lines = append(lx.pend.lines, line)
		return
	}
	p := lx.pend
	lx.pend = pending{}
	if p.rawText {
		p.lines = append(p.lines, line[:i])
		lx.emit(token.Token{Kind: token.Markup, Content: strings.TrimSpace(strings.Join(p.lines, "\n")), Line: p.line, Column: p.col, SpaceBefore: p.space})
		lx.rawTextBody(n, line, i, p.closer)
		return
	}
	// the whole closing line joins the tag, up to the next code tag
	lx.carry = &carried{lines: p.lines, line: p.line, col: p.col, space: p.space}
	lx.scanSegment(n, line, 0, i, true)
}

// flush degrades whatever is still open to a raw Markup token.
func (lx *lexer) flush() {
	p := lx.pend
	if p.kind == pendNone {
		return
	}
	lx.pend = pending{}
	raw := strings.Join(p.lines, "\n")
	if p.kind == pendCode {
		raw = "<%" + raw
	}
	lx.emit(token.Token{
		Kind:         token.Markup,
		Content:      strings.TrimSpace(raw),
		Line:         p.line,
		Column:       p.col,
		SpaceBefore:  p.space,
		Unterminated: true,
	})
}

// normalizeNewlines turns \r\n and lone \r into \n.
func normalizeNewlines(s string) string {
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
