// Package chartmeta provides a convenient wrapper around Helm chart metadata.
package chartmeta

import (
	"fmt"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
)

// DefaultVersion is recorded for charts whose metadata carries no version.
const DefaultVersion = "0.1.0"

// DependencyMeta describes a chart dependency.
type DependencyMeta struct {
	Name       string
	Version    string
	Repository string
}

// ChartMeta wraps key metadata of a chart.
type ChartMeta struct {
	Name         string
	Version      string
	AppVersion   string
	Description  string
	Type         string
	Dependencies []DependencyMeta
}

// FromMetadata extracts a ChartMeta from Helm chart metadata.
func FromMetadata(md *chart.Metadata) *ChartMeta {
	if md == nil {
		return &ChartMeta{}
	}

	meta := &ChartMeta{
		Name:        md.Name,
		Version:     md.Version,
		AppVersion:  md.AppVersion,
		Description: md.Description,
		Type:        md.Type,
	}

	for _, dep := range md.Dependencies {
		if dep == nil {
			continue
		}

		meta.Dependencies = append(meta.Dependencies, DependencyMeta{
			Name:       dep.Name,
			Version:    dep.Version,
			Repository: dep.Repository,
		})
	}

	return meta
}

// FromChart extracts metadata from a loaded Helm chart.
func FromChart(ch *chart.Chart) *ChartMeta {
	if ch == nil {
		return &ChartMeta{}
	}

	return FromMetadata(ch.Metadata)
}

// Load reads a Chart.yaml file from disk.
func Load(path string) (*ChartMeta, error) {
	md, err := chartutil.LoadChartfile(path)
	if err != nil {
		return nil, fmt.Errorf("loading chart metadata %s: %w", path, err)
	}

	return FromMetadata(md), nil
}

// EffectiveVersion returns the chart version, or DefaultVersion when unset.
func (m *ChartMeta) EffectiveVersion() string {
	return NormalizeVersion(m.Version)
}

// IsLibrary returns true if the chart is of type "library".
func (m *ChartMeta) IsLibrary() bool {
	return m.Type == "library"
}

// HasDependencies returns true if the chart declares any dependencies.
func (m *ChartMeta) HasDependencies() bool {
	return len(m.Dependencies) > 0
}

// DependencyNames returns the names of all declared dependencies.
func (m *ChartMeta) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))

	for _, dep := range m.Dependencies {
		names = append(names, dep.Name)
	}

	return names
}

// NormalizeVersion maps an unset (empty or blank) version to
// DefaultVersion. Any other version is returned as written.
func NormalizeVersion(v string) string {
	if strings.TrimSpace(v) == "" {
		return DefaultVersion
	}

	return v
}
