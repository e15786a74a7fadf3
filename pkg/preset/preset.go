// Package preset holds named sort option sets loaded from YAML files.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hazyhaar/wordsort/pkg/wordsort"
	"gopkg.in/yaml.v3"
)

// Preset is a named set of sort options.
type Preset struct {
	ID          string           `yaml:"id" json:"id"`
	Description string           `yaml:"description" json:"description"`
	Builtin     bool             `yaml:"-" json:"builtin"`
	Options     wordsort.Options `yaml:",inline" json:"options"`
}

// ErrNotFound is returned by Get for an unknown preset ID.
var ErrNotFound = errors.New("preset not found")

// LoadFile parses a single preset file. Options absent from the file take
// the values of base.
func LoadFile(path string, base wordsort.Options) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	p := Preset{Options: base}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("preset %s: missing id", path)
	}
	return &p, nil
}

// Builtins returns the presets that exist without any file.
func Builtins(defaults wordsort.Options) []*Preset {
	return []*Preset{
		{ID: "default", Description: "Configured defaults", Builtin: true, Options: defaults},
		{ID: "strict", Description: "Case and accents significant, duplicates kept", Builtin: true,
			Options: wordsort.Options{Ascending: true}},
		{ID: "dictionary", Description: "Case ignored, accents significant, duplicates removed", Builtin: true,
			Options: wordsort.Options{Ascending: true, IgnoreCase: true, RemoveDuplicates: true}},
	}
}

// Registry holds the loaded presets.
type Registry struct {
	mu       sync.RWMutex
	presets  map[string]*Preset
	dir      string
	defaults wordsort.Options
}

// NewRegistry creates a registry for dir with only the built-in presets.
func NewRegistry(dir string, defaults wordsort.Options) *Registry {
	r := &Registry{dir: dir, defaults: defaults}
	r.presets = r.builtins()
	return r
}

func (r *Registry) builtins() map[string]*Preset {
	m := make(map[string]*Preset)
	for _, p := range Builtins(r.defaults) {
		m[p.ID] = p
	}
	return m
}

// Load scans the directory for *.yaml and *.yml files. A missing directory
// leaves only the built-ins. Files may override built-in IDs.
func (r *Registry) Load() error {
	next := r.builtins()

	if r.dir != "" {
		entries, err := os.ReadDir(r.dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read presets dir %s: %w", r.dir, err)
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			p, err := LoadFile(filepath.Join(r.dir, e.Name()), r.defaults)
			if err != nil {
				return err
			}
			next[p.ID] = p
		}
	}

	r.mu.Lock()
	r.presets = next
	r.mu.Unlock()
	return nil
}

// Reload re-reads the directory (SIGHUP).
func (r *Registry) Reload() error {
	return r.Load()
}

// Get returns the preset with the given ID.
func (r *Registry) Get(id string) (*Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, nil
}

// List returns all presets sorted by ID.
func (r *Registry) List() []*Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of presets, built-ins included.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}
