// Package wordsort sorts lists of words under locale-aware case and accent
// rules.
//
// Sorting runs in three stages: Tokenize splits the raw text, Deduplicate
// collapses words sharing a comparison key (first occurrence wins), and
// SortTokens orders the survivors with a stable sort. A Sorter is safe for
// concurrent use; every stateful text transformer is local to one call.
package wordsort

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// Sorter runs the word sort pipeline with a fallback locale.
type Sorter struct {
	fallback string
	logger   *slog.Logger
}

// NewSorter returns a Sorter that falls back to fallbackLocale when a
// requested locale has no collation rules. An empty fallback means
// DefaultLocale.
func NewSorter(fallbackLocale string, logger *slog.Logger) *Sorter {
	if fallbackLocale == "" {
		fallbackLocale = DefaultLocale
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sorter{fallback: fallbackLocale, logger: logger}
}

var defaultSorter = NewSorter(DefaultLocale, nil)

// SortWords sorts raw with the default sorter.
func SortWords(raw string, opts Options) *Result {
	return defaultSorter.Sort(raw, opts)
}

// FallbackLocale returns the locale used when a request names none.
func (s *Sorter) FallbackLocale() string { return s.fallback }

// Sort tokenizes raw, optionally removes duplicates, and sorts the words.
// It never returns nil and never returns a partial word list.
func (s *Sorter) Sort(raw string, opts Options) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sort aborted", "panic", r)
			res = failureResult(fmt.Sprintf("internal error: %v", r))
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return emptyResult(ReasonEmptyInput)
	}
	tokens := Tokenize(raw)
	if len(tokens) == 0 {
		return emptyResult(ReasonNoValidWords)
	}

	tag, warnings, err := s.resolve(opts.Locale)
	if err != nil {
		return failureResult(err.Error())
	}

	n := len(tokens)
	if opts.RemoveDuplicates {
		tokens = Deduplicate(tokens, opts, tag)
	}
	SortTokens(tokens, opts, tag)

	return &Result{
		Status:   StatusSuccess,
		Words:    tokens,
		Count:    len(tokens),
		Tokens:   n,
		Locale:   tag.String(),
		Warnings: warnings,
	}
}

// resolve picks the collation locale for a request, falling back with a
// warning when the requested one is unavailable.
func (s *Sorter) resolve(requested string) (language.Tag, []string, error) {
	if requested != "" {
		tag, err := ResolveLocale(requested)
		if err == nil {
			return tag, nil, nil
		}
		s.logger.Warn("locale fallback", "requested", requested, "fallback", s.fallback, "error", err)
		tag, ferr := ResolveLocale(s.fallback)
		if ferr != nil {
			return language.Und, nil, fmt.Errorf("fallback locale: %w", ferr)
		}
		warning := fmt.Sprintf("locale %q unavailable, using %q", requested, tag.String())
		return tag, []string{warning}, nil
	}

	tag, err := ResolveLocale(s.fallback)
	if err != nil {
		return language.Und, nil, fmt.Errorf("default locale: %w", err)
	}
	return tag, nil, nil
}
