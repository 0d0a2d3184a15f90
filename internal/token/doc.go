// Package token defines the token kinds produced by the ERB tokenizer.
// Invariants:
//   - Tokens are ordered by source position; the stream has no tree structure.
//   - Content of code kinds is the trimmed inner text with delimiters and the
//     leading '=' / '#' marker stripped.
//   - Markup content may contain embedded newlines when a tag spans lines.
//   - Unterminated is set only on the single degraded token flushed at end of input.
package token
