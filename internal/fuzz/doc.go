
// Package fuzztests houses Go fuzz harnesses for the template pipeline
// (source -> lexer -> format). Its goal is to smoke test robustness: no
// panics, no hangs, and well-formed output on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через FileSet, лексер и
// форматтер и проверять инварианты вывода из internal/testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/format,
// internal/testkit.

package fuzztests
