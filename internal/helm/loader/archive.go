package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"helm.sh/helm/v3/pkg/chart"
	helmloader "helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"

	"github.com/KenkoGeek/timonel-examples/internal/output"
)

// LoadArchive reads a chart from a .tgz archive, decompressing it in memory.
func LoadArchive(path string, opts Options) (*chart.Chart, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("archive %q: %w", path, err)
	}

	if maxSize := opts.maxArchiveSize(); info.Size() > maxSize {
		return nil, fmt.Errorf("archive %q is %d bytes, exceeding maximum %d bytes", path, info.Size(), maxSize)
	}

	f, err := os.Open(path) //nolint:gosec // path is a user-provided chart archive
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return LoadArchiveFrom(f, opts)
}

// LoadArchiveFrom reads a chart from a stream holding a .tgz archive.
func LoadArchiveFrom(r io.Reader, opts Options) (*chart.Chart, error) {
	maxSize := opts.maxArchiveSize()

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("archive exceeds maximum size of %d bytes", maxSize)
	}

	ch, err := helmloader.LoadArchive(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading chart archive: %w", err)
	}

	return ch, nil
}

// Package writes the chart in dir as <name>-<version>.tgz into destDir,
// like `helm package`, and returns the archive path. Vendored sub-charts
// are included.
func Package(dir, destDir string) (string, error) {
	ch, err := LoadDir(dir)
	if err != nil {
		return "", err
	}

	if err := ch.Validate(); err != nil {
		return "", fmt.Errorf("chart %q: %w", dir, err)
	}

	if err := output.EnsureDir(destDir); err != nil {
		return "", err
	}

	path, err := chartutil.Save(ch, destDir)
	if err != nil {
		return "", fmt.Errorf("packaging %q: %w", dir, err)
	}

	return path, nil
}
