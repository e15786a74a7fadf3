package wordsort

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacriticals is the Combining Diacritical Marks block. Marks of
// other scripts (Hebrew points, Indic vowel signs) are left alone.
var combiningDiacriticals = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Transform chains keep state between calls and cannot be shared.
// There is no NFC pass: stripped keys stay decomposed.
var accentChains = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacriticals)))
	},
}

// StripAccents decomposes s and removes combining diacritical marks
// (École -> Ecole, naïve -> naive).
func StripAccents(s string) string {
	if isASCII(s) {
		return s
	}
	t := accentChains.Get().(transform.Transformer)
	defer func() {
		t.Reset()
		accentChains.Put(t)
	}()
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ComputeKey derives the comparison key of token. Accents are stripped
// before lowercasing so that no mark is left on a case-changed letter.
func ComputeKey(token string, ignoreCase, ignoreAccents bool, tag language.Tag) string {
	return newKeyer(ignoreCase, ignoreAccents, tag).key(token)
}

// keyer reuses one caser across every token of an invocation.
type keyer struct {
	ignoreCase    bool
	ignoreAccents bool
	lower         cases.Caser
}

func newKeyer(ignoreCase, ignoreAccents bool, tag language.Tag) *keyer {
	k := &keyer{ignoreCase: ignoreCase, ignoreAccents: ignoreAccents}
	if ignoreCase {
		k.lower = cases.Lower(tag)
	}
	return k
}

func (k *keyer) key(token string) string {
	if k.ignoreAccents {
		token = StripAccents(token)
	}
	if k.ignoreCase {
		token = k.lower.String(token)
	}
	return token
}

// Deduplicate keeps the first token of each comparison key, in input order,
// with its original surface form.
func Deduplicate(tokens []string, opts Options, tag language.Tag) []string {
	k := newKeyer(opts.IgnoreCase, opts.IgnoreAccents, tag)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		key := k.key(tok)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
