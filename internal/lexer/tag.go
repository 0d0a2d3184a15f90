package lexer

import "strings"

// tagState is the markup tag closure automaton. It tracks whether the scan is
// inside a tag, inside a quoted attribute value and inside a code tag, so that
// a '>' in `title="a > b"` or in `<%= a > b %>` does not close the tag.
type tagState struct {
	inTag  bool
	quote  byte
	inCode bool
}

// step advances the automaton over line[i] (or a whole `<% %>` span) and
// returns the index to continue from.
func (ts *tagState) step(line string, i int) int {
	if ts.inCode {
		end := strings.Index(line[i:], "%>")
		if end < 0 {
			return len(line)
		}
		ts.inCode = false
		return i + end + 2
	}
	if strings.HasPrefix(line[i:], "<%") {
		ts.inCode = true
		return i + 2
	}
	c := line[i]
	switch {
	case ts.quote != 0:
		if c == ts.quote {
			ts.quote = 0
		}
	case c == '"' || c == '\'':
		ts.quote = c
	case c == '>':
		ts.inTag = false
	}
	return i + 1
}

// startsTagAt reports whether line[i:] opens a tag: `<` followed by a letter,
// `/` or `!`.
func startsTagAt(line string, i int) bool {
	if line[i] != '<' || i+1 >= len(line) {
		return false
	}
	c := line[i+1]
	return c == '/' || c == '!' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

// TagEnd returns the index just past the '>' closing the tag that starts at
// s[0], or -1 if the tag does not close within s.
func TagEnd(s string) int {
	if s == "" || !startsTagAt(s, 0) {
		return -1
	}
	ts := tagState{inTag: true}
	i := 1
	for i < len(s) && ts.inTag {
		i = ts.step(s, i)
	}
	if ts.inTag {
		return -1
	}
	return i
}
