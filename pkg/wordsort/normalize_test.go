package wordsort

import (
	"slices"
	"testing"

	"golang.org/x/text/language"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"École", "Ecole"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"FRANÇOIS", "FRANCOIS"},
		{"Ñoño", "Nono"},
		{"été", "ete"},
		{"ø", "ø"},
		{"한", "\u1112\u1161\u11ab"},
		{"l'œil-123", "l'œil-123"},
		{"simple", "simple"},
		{"", ""},
	}
	for _, tt := range tests {
		got := StripAccents(tt.input)
		if got != tt.want {
			t.Errorf("StripAccents(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestComputeKey(t *testing.T) {
	fr := language.French
	tests := []struct {
		token         string
		ignoreCase    bool
		ignoreAccents bool
		tag           language.Tag
		want          string
	}{
		{"École", false, false, fr, "École"},
		{"École", true, false, fr, "école"},
		{"École", false, true, fr, "Ecole"},
		{"École", true, true, fr, "ecole"},
		{"ISTANBUL", true, false, language.Turkish, "ıstanbul"},
		{"İstanbul", true, false, language.Turkish, "istanbul"},
		{"İstanbul", true, false, language.English, "i\u0307stanbul"},
		// The dot above is stripped before lowercasing.
		{"İstanbul", true, true, language.English, "istanbul"},
	}
	for _, tt := range tests {
		got := ComputeKey(tt.token, tt.ignoreCase, tt.ignoreAccents, tt.tag)
		if got != tt.want {
			t.Errorf("ComputeKey(%q, case=%v, accents=%v, %s) = %q, want %q",
				tt.token, tt.ignoreCase, tt.ignoreAccents, tt.tag, got, tt.want)
		}
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		opts  Options
		want  []string
	}{
		{
			"case and accents ignored keeps first",
			[]string{"École", "ecole", "Ecole"},
			Options{IgnoreCase: true, IgnoreAccents: true},
			[]string{"École"},
		},
		{
			"case only",
			[]string{"Mot", "mot", "MOT", "été", "Été"},
			Options{IgnoreCase: true},
			[]string{"Mot", "été"},
		},
		{
			"accents only",
			[]string{"été", "ete", "Été", "Ete"},
			Options{IgnoreAccents: true},
			[]string{"été", "Été"},
		},
		{
			"exact",
			[]string{"b", "a", "b", "A", "a"},
			Options{},
			[]string{"b", "a", "A"},
		},
		{
			"first occurrence order",
			[]string{"zèbre", "Alpha", "ZEBRE", "alpha", "milieu"},
			Options{IgnoreCase: true, IgnoreAccents: true},
			[]string{"zèbre", "Alpha", "milieu"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.input, tt.opts, language.French)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Deduplicate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFoldedKeysAgreeWithDedup(t *testing.T) {
	opts := Options{Ascending: true, IgnoreCase: true, IgnoreAccents: true}
	tests := []struct {
		a, b string
		tag  language.Tag
	}{
		{"straße", "strasse", language.German},
		{"STRASSE", "strasse", language.German},
		{"École", "ecole", language.French},
		{"İstanbul", "istanbul", language.Turkish},
		{"Σοφία", "σοφια", language.Greek},
	}
	for _, tt := range tests {
		sameKey := ComputeKey(tt.a, true, true, tt.tag) == ComputeKey(tt.b, true, true, tt.tag)
		tied := Compare(tt.a, tt.b, opts, tt.tag) == 0
		if sameKey != tied {
			t.Errorf("%q vs %q (%s): dedup equal=%v, sort tie=%v", tt.a, tt.b, tt.tag, sameKey, tied)
		}
	}

	res := SortWords("straße strasse", Options{Ascending: true, IgnoreCase: true, IgnoreAccents: true, RemoveDuplicates: true})
	if want := []string{"strasse", "straße"}; !slices.Equal(res.Words, want) {
		t.Errorf("Words = %q, want %q", res.Words, want)
	}
}
