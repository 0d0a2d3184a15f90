package format

import "strings"

// Options control the layout of the formatted template.
type Options struct {
	IndentWidth        int  // spaces per level, ignored with UseTabs
	UseTabs            bool // indent with one tab per level
	PreserveBlankLines bool // keep single blank lines between tokens
	ScriptDelegate     bool // let esbuild reprint <script>/<style> bodies
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		IndentWidth:        2,
		PreserveBlankLines: true,
		ScriptDelegate:     true,
	}
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	return o
}

// unit returns one indentation step.
func (o Options) unit() string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", o.IndentWidth)
}

// indent returns the prefix for the given level.
func (o Options) indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(o.unit(), level)
}
