// Package registry holds the ordered table of sub-charts composed into the
// umbrella chart.
package registry

import (
	"fmt"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
)

// Package is a sub-chart generator's output: metadata, default values, and
// a way to materialize the full chart directory.
type Package interface {
	// Metadata returns the chart metadata.
	Metadata() *chart.Metadata
	// Values returns the chart's default values.
	Values() map[string]interface{}
	// Write writes Chart.yaml, values.yaml and templates/ into dir.
	Write(dir string) error
}

// Factory creates a fresh Package on every call.
type Factory func() Package

// Entry pairs a logical sub-chart name with its factory.
type Entry struct {
	Name string
	New  Factory
}

// Registry is an ordered list of entries. Order is composition order.
type Registry struct {
	entries []Entry
}

// New creates a registry from entries, validating each one.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{}

	for _, e := range entries {
		if err := r.Register(e.Name, e.New); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends an entry. Names must be usable as a single path element.
// Duplicate names are allowed; the later entry's values win during
// composition.
func (r *Registry) Register(name string, f Factory) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if f == nil {
		return fmt.Errorf("sub-chart %q: nil factory", name)
	}

	r.entries = append(r.entries, Entry{Name: name, New: f})

	return nil
}

// Entries returns the entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)

	return out
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}

	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// ValidateName rejects names that cannot be used as a directory name or a
// values key.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("sub-chart name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid sub-chart name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("sub-chart name %q must not contain path separators", name)
	}

	return nil
}
