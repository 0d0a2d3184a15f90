package format

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"erbfmt/internal/lexer"
)

// markupClass is the shape of one trimmed markup fragment.
type markupClass uint8

const (
	markupOther markupClass = iota
	markupOpening
	markupClosing
	markupSelfClosing
	markupText
)

var (
	closingTagRe = regexp.MustCompile(`^</[^>]+>$`)
	tagNameRe    = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9]*)`)
)

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

func isVoidElement(name string) bool {
	return voidElements[atom.Lookup([]byte(strings.ToLower(name)))]
}

// tagName returns the lowercased element name of an opening tag, or "".
func tagName(s string) string {
	m := tagNameRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func classifyMarkup(s string) markupClass {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return markupOther
	case closingTagRe.MatchString(s):
		return markupClosing
	case isOpeningTag(s) && strings.HasSuffix(s, "/>"):
		return markupSelfClosing
	case isOpeningTag(s):
		return markupOpening
	case s[0] != '<' && s[len(s)-1] != '>':
		return markupText
	default:
		return markupOther
	}
}

// isOpeningTag reports whether s is exactly one start tag. The closing '>' is
// found with the tag automaton, so '>' inside quotes or <% %> does not count.
func isOpeningTag(s string) bool {
	if len(s) < 2 || s[0] != '<' || s[1] == '/' || s[1] == '!' {
		return false
	}
	return lexer.TagEnd(s) == len(s)
}

// markupDelta is the indentation change caused by fragment s.
func markupDelta(s string) int {
	s = strings.TrimSpace(s)
	switch classifyMarkup(s) {
	case markupOpening:
		name := tagName(s)
		if name == "" || isVoidElement(name) {
			return 0
		}
		return 1
	case markupClosing:
		return -1
	case markupOther:
		return tagBalance(s)
	default:
		return 0
	}
}

// tagBalance counts start tags minus end tags in a mixed fragment such as
// `<p>Hello` or `</span></div>`. Void elements do not count.
func tagBalance(s string) int {
	z := html.NewTokenizer(strings.NewReader(s))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.StartTagToken:
			name, _ := z.TagName()
			if !isVoidElement(string(name)) {
				n++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if !isVoidElement(string(name)) {
				n--
			}
		}
	}
}

// markupLine is one physical output line of a fragment.
type markupLine struct {
	level int
	text  string
}

// layoutMarkup places fragment s, rendered while the indentation is level.
func layoutMarkup(s string, level int) []markupLine {
	s = strings.TrimSpace(s)
	cls := classifyMarkup(s)
	base := level
	switch cls {
	case markupClosing:
		base = max(level-1, 0)
	case markupText:
		base = level + 1
	}
	if !strings.Contains(s, "\n") {
		return []markupLine{{level: base, text: s}}
	}

	lines := strings.Split(s, "\n")
	out := make([]markupLine, 0, len(lines))
	tagLike := cls == markupOpening || cls == markupSelfClosing
	for i, ln := range lines {
		ln = strings.TrimSpace(ln)
		switch {
		case ln == "":
			continue
		case i == 0:
			out = append(out, markupLine{level: base, text: ln})
		case tagLike && (ln == ">" || ln == "/>"):
			out = append(out, markupLine{level: base, text: ln})
		case tagLike:
			out = append(out, markupLine{level: base + 1, text: ln})
		default:
			out = append(out, markupLine{level: base, text: ln})
		}
	}
	return out
}
