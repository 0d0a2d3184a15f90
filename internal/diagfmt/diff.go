package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	diffAddColor    = color.New(color.FgGreen)
	diffDelColor    = color.New(color.FgRed)
	diffHunkColor   = color.New(color.FgCyan)
	diffHeaderColor = color.New(color.Bold)
)

type diffLine struct {
	op   byte // ' ', '-', '+'
	text string
	old  int // 1-based line in before, for ' ' and '-'
	new  int // 1-based line in after, for ' ' and '+'
}

// lineDiff returns the line-level edit script between before and after.
func lineDiff(before, after string) []diffLine {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []diffLine
	oldLn, newLn := 1, 1
	for _, d := range diffs {
		for _, ln := range splitLines(d.Text) {
			switch d.Type {
			case diffpatch.DiffEqual:
				out = append(out, diffLine{op: ' ', text: ln, old: oldLn, new: newLn})
				oldLn++
				newLn++
			case diffpatch.DiffDelete:
				out = append(out, diffLine{op: '-', text: ln, old: oldLn, new: newLn})
				oldLn++
			case diffpatch.DiffInsert:
				out = append(out, diffLine{op: '+', text: ln, old: oldLn, new: newLn})
				newLn++
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

type hunk struct{ from, to int } // indices into the edit script, inclusive

func hunks(script []diffLine, context int) []hunk {
	var out []hunk
	for i, dl := range script {
		if dl.op == ' ' {
			continue
		}
		from, to := max(i-context, 0), min(i+context, len(script)-1)
		if n := len(out); n > 0 && from <= out[n-1].to+1 {
			out[n-1].to = to
			continue
		}
		out = append(out, hunk{from: from, to: to})
	}
	return out
}

// FormatDiff writes a unified diff of before and after labeled with path.
// Nothing is written when the texts are equal.
func FormatDiff(w io.Writer, path string, before, after []byte, opts PrettyOpts) error {
	if string(before) == string(after) {
		return nil
	}
	context := opts.Context
	if context <= 0 {
		context = DefaultContext
	}
	paint := func(c *color.Color, s string) string {
		if opts.Color {
			return c.Sprint(s)
		}
		return s
	}

	var b strings.Builder
	b.WriteString(paint(diffHeaderColor, "--- "+path) + "\n")
	b.WriteString(paint(diffHeaderColor, "+++ "+path+" (formatted)") + "\n")

	script := lineDiff(string(before), string(after))
	for _, h := range hunks(script, context) {
		var oldCount, newCount int
		for _, dl := range script[h.from : h.to+1] {
			if dl.op != '+' {
				oldCount++
			}
			if dl.op != '-' {
				newCount++
			}
		}
		first := script[h.from]
		b.WriteString(paint(diffHunkColor, fmt.Sprintf("@@ -%d,%d +%d,%d @@", first.old, oldCount, first.new, newCount)) + "\n")
		for _, dl := range script[h.from : h.to+1] {
			text := strings.TrimSuffix(dl.text, "\n")
			line := string(dl.op) + text
			switch dl.op {
			case '+':
				line = paint(diffAddColor, line)
			case '-':
				line = paint(diffDelColor, line)
			}
			b.WriteString(line)
			b.WriteByte('\n')
			if !strings.HasSuffix(dl.text, "\n") {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
