// Package format reprints ERB templates with canonical indentation.
//
// Назначение: composer над потоком токенов из internal/lexer; markup-движок
// отступов, нормализация Ruby-фрагментов, форматирование <script>/<style>.
// Не делает: разбор HTML в дерево, выполнение Ruby, IO.
// Зависимости: internal/lexer, internal/ruby, internal/token, internal/trace.
//
// Format is total: a template that cannot be formatted comes back unchanged.
package format
