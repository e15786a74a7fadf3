package wordsort

import (
	"bytes"
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// keyFunc maps a token to a byte key whose bytewise order is the sort order.
type keyFunc func(token string) []byte

// newKeyFunc selects the comparison rule for opts.
//
// With accents ignored, tokens are compared by code point after stripping,
// lowercased for tag when case is ignored too. That is the mapping the
// dedup key uses. With accents significant, a collator for tag is used:
// secondary strength when case is ignored, tertiary otherwise.
func newKeyFunc(opts Options, tag language.Tag) keyFunc {
	if opts.IgnoreAccents {
		if opts.IgnoreCase {
			k := newKeyer(true, true, tag)
			return func(token string) []byte {
				return []byte(k.key(token))
			}
		}
		return func(token string) []byte {
			return []byte(StripAccents(token))
		}
	}

	var c *collate.Collator
	if opts.IgnoreCase {
		c = collate.New(tag, collate.IgnoreCase)
	} else {
		c = collate.New(tag)
	}
	var buf collate.Buffer
	return func(token string) []byte {
		// Keys point into buf, which is never reset during one invocation.
		return c.KeyFromString(&buf, token)
	}
}

// Compare orders a and b under opts for the collation rules of tag.
func Compare(a, b string, opts Options, tag language.Tag) int {
	key := newKeyFunc(opts, tag)
	return bytes.Compare(key(a), key(b))
}

type keyedToken struct {
	token string
	key   []byte
}

// SortTokens sorts tokens in place. Equal keys keep their input order; a
// descending sort reverses the ascending result.
func SortTokens(tokens []string, opts Options, tag language.Tag) {
	key := newKeyFunc(opts, tag)
	keyed := make([]keyedToken, len(tokens))
	for i, tok := range tokens {
		keyed[i] = keyedToken{token: tok, key: key(tok)}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return bytes.Compare(keyed[i].key, keyed[j].key) < 0
	})

	for i := range keyed {
		tokens[i] = keyed[i].token
	}
	if !opts.Ascending {
		slices.Reverse(tokens)
	}
}
