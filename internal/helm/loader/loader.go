// Package loader reads a synthesized umbrella chart back into memory, from
// its directory or from a packaged archive, and packages directories into
// archives.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	helmloader "helm.sh/helm/v3/pkg/chart/loader"

	"helm.sh/helm/v3/pkg/chart"
)

// SourceType identifies what a chart reference points at.
type SourceType int

const (
	// SourceUnknown indicates the reference is neither a chart directory
	// nor an archive.
	SourceUnknown SourceType = iota
	// SourceDirectory is a local directory containing Chart.yaml.
	SourceDirectory
	// SourceArchive is a .tgz or .tar.gz packaged chart.
	SourceArchive
)

func (s SourceType) String() string {
	switch s {
	case SourceDirectory:
		return "directory"
	case SourceArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// DefaultMaxArchiveSize is 100 MB.
const DefaultMaxArchiveSize int64 = 100 * 1024 * 1024

// Options configures chart loading.
type Options struct {
	// MaxArchiveSize limits archive size in bytes. Zero means
	// DefaultMaxArchiveSize.
	MaxArchiveSize int64
}

func (o Options) maxArchiveSize() int64 {
	if o.MaxArchiveSize > 0 {
		return o.MaxArchiveSize
	}

	return DefaultMaxArchiveSize
}

// Detect classifies ref by file name and file system state.
func Detect(ref string) (SourceType, error) {
	if ref == "" {
		return SourceUnknown, fmt.Errorf("empty chart reference")
	}

	if strings.HasSuffix(ref, ".tgz") || strings.HasSuffix(ref, ".tar.gz") {
		return SourceArchive, nil
	}

	info, err := os.Stat(ref)
	if err != nil {
		return SourceUnknown, fmt.Errorf("chart %q: %w", ref, err)
	}

	if info.IsDir() {
		return SourceDirectory, nil
	}

	return SourceUnknown, fmt.Errorf("cannot determine chart source type for %q", ref)
}

// Load reads the chart at ref, a chart directory or a packaged archive,
// including its vendored sub-charts.
func Load(ctx context.Context, ref string, opts Options) (*chart.Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading chart %q: %w", ref, err)
	}

	st, err := Detect(ref)
	if err != nil {
		return nil, err
	}

	switch st {
	case SourceDirectory:
		return LoadDir(ref)
	case SourceArchive:
		return LoadArchive(ref, opts)
	default:
		return nil, fmt.Errorf("unsupported chart source type: %s", st)
	}
}

// LoadDir reads a chart from a local directory.
func LoadDir(dir string) (*chart.Chart, error) {
	if _, err := os.Stat(filepath.Join(dir, "Chart.yaml")); err != nil {
		return nil, fmt.Errorf("chart directory %q has no Chart.yaml: %w", dir, err)
	}

	ch, err := helmloader.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading chart from %q: %w", dir, err)
	}

	return ch, nil
}
