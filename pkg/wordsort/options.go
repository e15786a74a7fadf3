package wordsort

// Options controls a single sort invocation. A zero Options sorts Z→A with
// case and accents significant; use DefaultOptions for the usual form state.
type Options struct {
	Ascending        bool   `json:"ascending" yaml:"ascending"`
	IgnoreCase       bool   `json:"ignore_case" yaml:"ignore_case"`
	IgnoreAccents    bool   `json:"ignore_accents" yaml:"ignore_accents"`
	RemoveDuplicates bool   `json:"remove_duplicates" yaml:"remove_duplicates"`
	Locale           string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// DefaultOptions returns A→Z, case and accents ignored, duplicates kept.
func DefaultOptions() Options {
	return Options{
		Ascending:     true,
		IgnoreCase:    true,
		IgnoreAccents: true,
	}
}

// Strength names the comparison rule selected by the case/accent flags.
func (o Options) Strength() string {
	switch {
	case o.IgnoreAccents && o.IgnoreCase:
		return "folded"
	case o.IgnoreAccents:
		return "stripped"
	case o.IgnoreCase:
		return "secondary"
	default:
		return "tertiary"
	}
}
