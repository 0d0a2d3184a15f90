package token

// Token is a single classified fragment of a template.
// Line and Column are 1-based and point at the first byte of the construct
// (the '<' of a tag or code delimiter).
type Token struct {
	Kind    Kind
	Content string
	Line    int
	Column  int

	// SpaceBefore is set when whitespace separated the token from the
	// previous token on the same source line.
	SpaceBefore bool

	// Delimiter spelling of code tags: `<%-`, `-%>` and `<%==`.
	TrimLeft  bool
	TrimRight bool
	Raw       bool

	// Unterminated marks the raw token flushed for a construct still open at
	// end of input.
	Unterminated bool
}

// IsMarkup reports whether the token is a Markup token.
func (t Token) IsMarkup() bool { return t.Kind == Markup }

// IsBlank reports whether the token is a BlankLine.
func (t Token) IsBlank() bool { return t.Kind == BlankLine }

// OpenDelim returns the opening delimiter of a code token, or "" for other kinds.
func (t Token) OpenDelim() string {
	if !t.Kind.IsCode() {
		return ""
	}
	d := "<%"
	if t.TrimLeft {
		d += "-"
	}
	switch {
	case t.Kind == Comment:
		d += "#"
	case t.Raw:
		d += "=="
	case t.Kind.IsOutput():
		d += "="
	}
	return d
}

// CloseDelim returns the closing delimiter of a code token, or "" for other kinds.
func (t Token) CloseDelim() string {
	if !t.Kind.IsCode() {
		return ""
	}
	if t.TrimRight {
		return "-%>"
	}
	return "%>"
}
