package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"erbfmt/internal/token"
)

// TokenOutput is the JSON shape of one token.
type TokenOutput struct {
	Kind         string `json:"kind"`
	Content      string `json:"content"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	Open         string `json:"open,omitempty"`
	Close        string `json:"close,omitempty"`
	SpaceBefore  bool   `json:"space_before,omitempty"`
	Unterminated bool   `json:"unterminated,omitempty"`
}

var (
	kindCodeColor   = color.New(color.FgCyan)
	kindMarkupColor = color.New(color.FgWhite)
	kindErrorColor  = color.New(color.FgRed, color.Bold)
	dimColor        = color.New(color.Faint)
)

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token, opts PrettyOpts) error {
	for i, tok := range tokens {
		kind := fmt.Sprintf("%-22s", tok.Kind.String())
		pos := fmt.Sprintf("%d:%d", tok.Line, tok.Column)
		text := strconv.Quote(tok.Content)
		if tok.Kind.IsCode() {
			text = tok.OpenDelim() + " " + text + " " + tok.CloseDelim()
		}
		if opts.Width > 0 {
			text = truncate(text, opts.Width)
		}

		var flags []string
		if tok.SpaceBefore {
			flags = append(flags, "space")
		}
		if tok.Unterminated {
			flags = append(flags, "unterminated")
		}

		if opts.Color {
			switch {
			case tok.Unterminated:
				kind = kindErrorColor.Sprint(kind)
			case tok.Kind.IsCode():
				kind = kindCodeColor.Sprint(kind)
			default:
				kind = kindMarkupColor.Sprint(kind)
			}
			pos = dimColor.Sprint(pos)
		}

		line := fmt.Sprintf("%3d: %s %-8s %s", i+1, kind, pos, text)
		if len(flags) > 0 {
			line += " (" + strings.Join(flags, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		out := TokenOutput{
			Kind:         tok.Kind.String(),
			Content:      tok.Content,
			Line:         tok.Line,
			Column:       tok.Column,
			SpaceBefore:  tok.SpaceBefore,
			Unterminated: tok.Unterminated,
		}
		if tok.Kind.IsCode() {
			out.Open, out.Close = tok.OpenDelim(), tok.CloseDelim()
		}
		output = append(output, out)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
