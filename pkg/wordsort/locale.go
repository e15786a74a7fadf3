package wordsort

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation locale used when none is requested.
const DefaultLocale = "fr"

// ErrLocaleUnavailable is returned when no collation table serves a locale.
var ErrLocaleUnavailable = errors.New("locale unavailable")

// collationTags are the tailored tables, without variants such as
// de-u-co-phonebk so that plain "de" gets standard order.
var (
	collationTags    = standardCollations()
	collationMatcher = language.NewMatcher(collationTags)
)

func standardCollations() []language.Tag {
	var out []language.Tag
	for _, t := range collate.Supported() {
		if t.TypeForKey("co") == "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveLocale parses a BCP 47 tag and maps it onto the closest tailored
// collation ("fr-BE" -> fr, "de-AT" -> de). A two-letter ISO 639-1 language
// without tailoring ("it", "pt-BR") resolves to its base and sorts with the
// root table. Anything else, including a weak match onto another language,
// is unavailable.
func ResolveLocale(requested string) (language.Tag, error) {
	tag, err := language.Parse(requested)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrLocaleUnavailable, requested, err)
	}
	base, baseConf := tag.Base()
	if baseConf == language.No {
		return language.Und, fmt.Errorf("%w: %q has no language", ErrLocaleUnavailable, requested)
	}

	_, idx, conf := collationMatcher.Match(tag)
	if conf != language.No {
		matched := collationTags[idx]
		matchedBase, _ := matched.Base()
		if conf >= language.High || matchedBase == base {
			return matched, nil
		}
	}
	if len(base.String()) == 2 {
		return language.Make(base.String()), nil
	}
	return language.Und, fmt.Errorf("%w: %q has no collation rules", ErrLocaleUnavailable, requested)
}

// Locales lists the locales with collation rules, sorted by tag.
func Locales() []string {
	out := make([]string, 0, len(collationTags))
	for _, t := range collationTags {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}
