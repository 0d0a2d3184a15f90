// Package ruby locates the literal spans of an embedded Ruby fragment.
//
// It is not a Ruby lexer. It knows just enough of the surface syntax to find
// the text that whitespace normalization must never touch: quoted strings
// (with #{} interpolation), heredocs, percent literals, regular expressions
// and line comments.
package ruby
