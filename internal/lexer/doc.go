// Package lexer splits an ERB template into a flat token stream.
//
// Назначение: line-oriented scan with cross-line accumulation for code tags,
// markup tags and <script>/<style> regions that span several lines.
// Не делает: HTML or Ruby parsing; classification of code tags is the textual
// heuristic in classify.go.
// Зависимости: internal/token, internal/ruby.
package lexer
