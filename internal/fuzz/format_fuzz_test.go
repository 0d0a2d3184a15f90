package fuzztests

import (
	"context"
	"testing"
	"time"

	"erbfmt/internal/format"
	"erbfmt/internal/source"
	"erbfmt/internal/testkit"
)

// formatTimeout is the maximum time allowed for formatting a single input.
// If formatting takes longer, it indicates a potential infinite loop.
const formatTimeout = 5 * time.Second

func fuzzOptions() format.Options {
	opt := format.DefaultOptions()
	opt.ScriptDelegate = false
	return opt
}

func FuzzFormatInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.erb", clampInput(input)))
		in := string(file.Content)

		out := format.Format(in, fuzzOptions())
		if err := testkit.CheckFormatInvariants(in, out); err != nil {
			t.Fatalf("input %q: %v", in, err)
		}
	})
}

// FuzzFormatNoHang runs the formatter under a deadline.
func FuzzFormatNoHang(f *testing.F) {
	addCorpusSeeds(f)

	f.Add([]byte("<% if a %><% if b %><% if c %>"))
	f.Add([]byte("<%%><%%><%%>"))
	f.Add([]byte("<script>`${`${`"))
	f.Add([]byte("<<<<<<<<<<>>>>>>>>"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), formatTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = format.Format(string(input), fuzzOptions())
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("format timeout after %v on input (len=%d): %q", formatTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
