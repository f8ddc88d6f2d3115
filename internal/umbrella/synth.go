package umbrella

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/registry"
	"github.com/KenkoGeek/timonel-examples/internal/values"
)

// DefaultOutputDir is used when Synth is given an empty output directory.
const DefaultOutputDir = "dist"

// Options configures a synthesis run.
type Options struct {
	// Mode is the caller's explicit mode. Empty or unrecognized values fall
	// through to the environment and then to mode.Default.
	Mode mode.Mode

	// Registry lists the sub-charts in composition order. Required.
	Registry *registry.Registry

	// Lookup is the environment snapshot consulted for mode.EnvVar.
	// Defaults to the process environment.
	Lookup mode.LookupFunc

	// StagingDir holds temporary chart output. Defaults to os.TempDir().
	StagingDir string

	// Logger defaults to the logger carried by the context.
	Logger *slog.Logger
}

// Dependency is one entry of the umbrella's Chart.yaml dependency list.
type Dependency struct {
	Name       string `yaml:"name" json:"name"`
	Version    string `yaml:"version" json:"version"`
	Repository string `yaml:"repository" json:"repository"`
}

// Result summarizes a completed run.
type Result struct {
	OutputDir  string
	Mode       mode.Mode
	ModeSource mode.Source

	// Dependencies is the dependency list written to Chart.yaml
	// (dependencies mode only).
	Dependencies []Dependency
	// Inlined lists sub-charts whose templates were copied (inline mode only).
	Inlined []string
	// Merged lists sub-charts whose values were nested into values.yaml.
	Merged []string
}

// Synth builds the umbrella chart in outDir. See the package documentation
// for the produced layout.
func Synth(ctx context.Context, outDir string, opts Options) (*Result, error) {
	if outDir == "" {
		outDir = DefaultOutputDir
	}

	if opts.Registry == nil {
		return nil, fmt.Errorf("synthesizing %s: no sub-chart registry", outDir)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = mode.OSLookup
	}

	m, source := mode.Resolve(string(opts.Mode), lookup)
	if opts.Mode != "" && source != mode.SourceExplicit {
		logger.Warn("ignoring unrecognized mode", slog.String("mode", string(opts.Mode)))
	}

	logger.Info("synthesizing umbrella chart",
		slog.String("output", outDir),
		slog.String("mode", m.String()),
		slog.String("modeSource", string(source)),
	)

	staging := opts.StagingDir
	if staging == "" {
		staging = os.TempDir()
	}

	if err := output.EnsureDir(staging); err != nil {
		return nil, err
	}

	baseDir, err := os.MkdirTemp(staging, "umbrella-base-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(baseDir) //nolint:errcheck // best-effort cleanup of our own temp dir

	if err := NewChart().Write(baseDir); err != nil {
		return nil, fmt.Errorf("bootstrapping umbrella chart: %w", err)
	}

	chartDoc, err := values.Read(filepath.Join(baseDir, chartbuilder.ChartFile))
	if err != nil {
		return nil, err
	}

	valuesDoc, err := values.Read(filepath.Join(baseDir, chartbuilder.ValuesFile))
	if err != nil {
		return nil, err
	}

	c := newComposer(m, outDir, staging, opts.Registry, chartDoc, valuesDoc, logger)

	if err := c.prepare(); err != nil {
		return nil, err
	}

	for _, e := range opts.Registry.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("synthesis cancelled: %w", err)
		}

		if err := c.compose(e); err != nil {
			return nil, err
		}
	}

	if err := c.finish(); err != nil {
		return nil, err
	}

	if _, err := output.CopyFlat(
		filepath.Join(baseDir, chartbuilder.TemplatesDir),
		filepath.Join(outDir, chartbuilder.TemplatesDir),
		logger,
	); err != nil {
		return nil, fmt.Errorf("copying umbrella templates: %w", err)
	}

	if err := writeManifests(outDir, chartDoc, valuesDoc, logger); err != nil {
		return nil, err
	}

	c.result.OutputDir = outDir
	c.result.ModeSource = source

	return c.result, nil
}
