package wordsort

import "strings"

// isSeparator reports whether r delimits words: ASCII whitespace, comma or
// semicolon.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v', ',', ';':
		return true
	}
	return false
}

// Tokenize splits raw text into trimmed, non-empty words in order of
// appearance. A run of separators counts as a single delimiter.
func Tokenize(raw string) []string {
	fields := strings.FieldsFunc(raw, isSeparator)
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
