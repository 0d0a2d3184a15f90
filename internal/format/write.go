package format

// Writer accumulates formatted output. Indentation is written lazily, when the
// first byte of a line arrives, so an inline token is indented exactly when it
// opens its output line.
type Writer struct {
	opt     Options
	buf     []byte
	level   int
	pending bool // at line start, indent not yet written
}

// NewWriter creates a new formatting writer.
func NewWriter(opt Options, sizeHint int) *Writer {
	return &Writer{
		opt:     opt.withDefaults(),
		buf:     make([]byte, 0, sizeHint),
		pending: true,
	}
}

// String returns the accumulated formatted output.
func (w *Writer) String() string {
	return string(w.buf)
}

// WriteString appends s, indenting first if a line is open.
// Embedded newlines are copied as is: continuation lines carry their own indent.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	if w.pending {
		w.buf = append(w.buf, w.opt.indent(w.level)...)
	}
	w.buf = append(w.buf, s...)
	w.pending = s[len(s)-1] == '\n'
}

// Space writes a single space unless the line is empty or already ends in one.
func (w *Writer) Space() {
	if w.pending || len(w.buf) == 0 {
		return
	}
	switch w.buf[len(w.buf)-1] {
	case ' ', '\t', '\n':
		return
	}
	w.buf = append(w.buf, ' ')
}

// Newline ends the current line unless the output already ends with one.
func (w *Writer) Newline() {
	if n := len(w.buf); n > 0 && w.buf[n-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.pending = true
}

// Break always ends the line, so at line start it yields an empty line.
func (w *Writer) Break() {
	w.buf = append(w.buf, '\n')
	w.pending = true
}

// AtLineStart reports whether the next byte opens a new line.
func (w *Writer) AtLineStart() bool {
	return w.pending
}

// Indent returns the current indentation level.
func (w *Writer) Indent() int {
	return w.level
}

// SetIndent replaces the indentation level, clamping at zero.
func (w *Writer) SetIndent(level int) {
	w.level = max(level, 0)
}

func (w *Writer) IndentPush() { w.level++ }

func (w *Writer) IndentPop() {
	if w.level > 0 {
		w.level--
	}
}
