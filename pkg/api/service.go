// Package api exposes the word sorter over HTTP and MCP. Both transports
// dispatch to the same kit.Endpoints.
package api

import (
	"log/slog"

	"github.com/hazyhaar/wordsort/pkg/history"
	"github.com/hazyhaar/wordsort/pkg/preset"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

// DefaultMaxBodyBytes bounds request bodies when the service sets no limit.
const DefaultMaxBodyBytes = 1 << 20

// Service bundles what the endpoints need. History may be nil.
type Service struct {
	Sorter       *wordsort.Sorter
	Presets      *preset.Registry
	History      *history.Store
	Logger       *slog.Logger
	MaxBodyBytes int64
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) maxBody() int64 {
	if s.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return s.MaxBodyBytes
}

// optionOverrides carries the options a caller set explicitly. Nil fields
// keep the preset value.
type optionOverrides struct {
	Ascending        *bool   `json:"ascending,omitempty"`
	IgnoreCase       *bool   `json:"ignore_case,omitempty"`
	IgnoreAccents    *bool   `json:"ignore_accents,omitempty"`
	RemoveDuplicates *bool   `json:"remove_duplicates,omitempty"`
	Locale           *string `json:"locale,omitempty"`
}

func (o optionOverrides) apply(base wordsort.Options) wordsort.Options {
	if o.Ascending != nil {
		base.Ascending = *o.Ascending
	}
	if o.IgnoreCase != nil {
		base.IgnoreCase = *o.IgnoreCase
	}
	if o.IgnoreAccents != nil {
		base.IgnoreAccents = *o.IgnoreAccents
	}
	if o.RemoveDuplicates != nil {
		base.RemoveDuplicates = *o.RemoveDuplicates
	}
	if o.Locale != nil {
		base.Locale = *o.Locale
	}
	return base
}

// resolveOptions starts from the named preset ("default" when empty) and
// applies the overrides.
func (s *Service) resolveOptions(presetID string, o optionOverrides) (wordsort.Options, error) {
	if presetID == "" {
		presetID = "default"
	}
	p, err := s.Presets.Get(presetID)
	if err != nil {
		return wordsort.Options{}, err
	}
	return o.apply(p.Options), nil
}

func negate(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := !*b
	return &v
}
