package wordsort

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"mixed separators", "a, b;c\nd  e", []string{"a", "b", "c", "d", "e"}},
		{"tab", "pomme\tpoire", []string{"pomme", "poire"}},
		{"crlf", "un\r\ndeux\r\n", []string{"un", "deux"}},
		{"separator run", "a,,;; \n\tb", []string{"a", "b"}},
		{"surrounding blanks", "  mot  ", []string{"mot"}},
		{"nbsp trimmed", "x\u00a0,y", []string{"x", "y"}},
		{"keeps surface form", "École,été", []string{"École", "été"}},
		{"order of appearance", "c b a", []string{"c", "b", "a"}},
		{"empty", "", []string{}},
		{"only separators", ",;, ;", []string{}},
		{"only whitespace", "   \n  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
