package diagfmt

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color   bool
	Width   int // максимальная ширина текста токена, 0 - не ограничено
	Context int // unchanged lines around each diff hunk
}

// DefaultContext is the diff context used when PrettyOpts.Context is 0.
const DefaultContext = 3
