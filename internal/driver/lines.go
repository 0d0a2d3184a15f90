package driver

import (
	"fmt"
	"strconv"
	"strings"
)

// LineRange is an inclusive 1-based line interval.
type LineRange struct {
	From int
	To   int
}

// ParseLineRange parses "from:to". Either side may be empty: ":20" starts at
// the first line and "5:" runs to the end.
func ParseLineRange(s string) (*LineRange, error) {
	fromStr, toStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return nil, fmt.Errorf("invalid line range %q (expected from:to)", s)
	}
	r := &LineRange{From: 1, To: -1}
	if fromStr != "" {
		n, err := strconv.Atoi(fromStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid line range start %q", fromStr)
		}
		r.From = n
	}
	if toStr != "" {
		n, err := strconv.Atoi(toStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid line range end %q", toStr)
		}
		r.To = n
	}
	if r.To != -1 && r.To < r.From {
		return nil, fmt.Errorf("invalid line range %q: end before start", s)
	}
	return r, nil
}

// clamp resolves an open end against the file length.
func (r LineRange) clamp(lineCount int) (from, to int) {
	to = r.To
	if to == -1 || to > lineCount {
		to = lineCount
	}
	return r.From, to
}

func (r LineRange) String() string {
	if r.To == -1 {
		return fmt.Sprintf("%d:", r.From)
	}
	return fmt.Sprintf("%d:%d", r.From, r.To)
}
