package testkit

import (
	"fmt"
	"strings"
	"unicode"
)

// CheckFormatInvariants verifies properties every reformatted document has:
// 1) output ends with exactly one newline
// 2) no line ends in spaces or tabs
// 3) no run of more than one blank line
// 4) non-whitespace characters survive in order (whitespace-only rewrites)
//
// Inputs the formatter left unchanged are accepted as is. Property 4 holds
// only without the script delegate, which may rewrite script bodies.
func CheckFormatInvariants(in, out string) error {
	if out == in {
		return nil
	}
	if !strings.HasSuffix(out, "\n") {
		return fmt.Errorf("output does not end with a newline: %q", tail(out))
	}
	if out != "\n" && strings.HasSuffix(out, "\n\n") {
		return fmt.Errorf("output ends with a blank line: %q", tail(out))
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	blank := 0
	for i, ln := range lines {
		if ln != strings.TrimRight(ln, " \t") {
			return fmt.Errorf("line %d has trailing whitespace: %q", i+1, ln)
		}
		if ln == "" {
			blank++
			if blank > 1 {
				return fmt.Errorf("line %d: more than one consecutive blank line", i+1)
			}
			continue
		}
		blank = 0
	}
	if a, b := squeeze(in), squeeze(out); a != b {
		at := 0
		for at < len(a) && at < len(b) && a[at] == b[at] {
			at++
		}
		return fmt.Errorf("non-whitespace content changed near %q", window(b, at))
	}
	return nil
}

// CheckIdempotent reports whether formatting out again yields out.
func CheckIdempotent(out string, format func(string) string) error {
	again := format(out)
	if again != out {
		return fmt.Errorf("second pass changed output:\nfirst  %q\nsecond %q", out, again)
	}
	return nil
}

func squeeze(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func tail(s string) string {
	if len(s) > 20 {
		return s[len(s)-20:]
	}
	return s
}

func window(s string, at int) string {
	from, to := max(at-10, 0), min(at+10, len(s))
	return s[from:to]
}
