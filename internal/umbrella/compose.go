package umbrella

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/helm/chartmeta"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/registry"
	"github.com/KenkoGeek/timonel-examples/internal/values"
)

// DependenciesKey is the Chart.yaml field holding the dependency list.
const DependenciesKey = "dependencies"

// stagePrefix names the per-sub-chart staging directory in inline mode.
const stagePrefix = "umbrella-inline-"

// composer owns the umbrella's in-memory documents for one run and is the
// only writer to them.
type composer struct {
	mode         mode.Mode
	chartsDir    string
	templatesDir string
	stagingDir   string
	names        map[string]bool
	reserved     map[string]bool

	chart  *values.Document
	values *values.Document

	result *Result
	logger *slog.Logger
}

func newComposer(
	m mode.Mode,
	outDir, stagingDir string,
	reg *registry.Registry,
	chartDoc, valuesDoc *values.Document,
	logger *slog.Logger,
) *composer {
	names := make(map[string]bool, reg.Len())
	for _, n := range reg.Names() {
		names[n] = true
	}

	reserved := make(map[string]bool, valuesDoc.Len())
	for _, k := range valuesDoc.Keys() {
		reserved[k] = true
	}

	return &composer{
		mode:         m,
		chartsDir:    filepath.Join(outDir, chartbuilder.ChartsDir),
		templatesDir: filepath.Join(outDir, chartbuilder.TemplatesDir),
		stagingDir:   stagingDir,
		names:        names,
		reserved:     reserved,
		chart:        chartDoc,
		values:       valuesDoc,
		result:       &Result{Mode: m},
		logger:       logger,
	}
}

// prepare removes artifacts a previous run in either mode left behind,
// before any sub-chart is written.
func (c *composer) prepare() error {
	switch c.mode {
	case mode.Dependencies:
		if err := output.EnsureDir(c.chartsDir); err != nil {
			return err
		}

		pruned, err := output.PruneDir(c.chartsDir, c.names)
		if err != nil {
			return err
		}

		for _, name := range pruned {
			c.logger.Info("removed unregistered sub-chart", slog.String("path", filepath.Join(c.chartsDir, name)))
		}

		// The umbrella's own templates are flat, so every subdirectory is a
		// sub-chart inlined by an earlier run.
		if err := c.pruneTemplates(nil); err != nil {
			return err
		}

		c.result.Dependencies = []Dependency{}

	case mode.Inline:
		removed, err := output.RemoveTree(c.chartsDir)
		if err != nil {
			return err
		}

		if removed {
			c.logger.Info("removed vendored sub-charts", slog.String("path", c.chartsDir))
		}

		if err := c.pruneTemplates(c.names); err != nil {
			return err
		}

		c.chart.Delete(DependenciesKey)

	default:
		return fmt.Errorf("unsupported composition mode %q", c.mode)
	}

	return nil
}

// pruneTemplates removes inlined sub-chart directories under templates/
// whose name is not in keep.
func (c *composer) pruneTemplates(keep map[string]bool) error {
	removed, err := output.PruneSubdirs(c.templatesDir, keep)
	if err != nil {
		return err
	}

	for _, name := range removed {
		c.logger.Info("removed inlined templates", slog.String("path", filepath.Join(c.templatesDir, name)))
	}

	return nil
}

// compose adds one registry entry to the umbrella.
func (c *composer) compose(e registry.Entry) error {
	if c.reserved[e.Name] {
		return fmt.Errorf("sub-chart %q collides with umbrella value %q", e.Name, e.Name)
	}

	pkg := e.New()
	if pkg == nil {
		return fmt.Errorf("sub-chart %q: factory returned nil", e.Name)
	}

	if c.mode == mode.Inline {
		return c.composeInline(e.Name, pkg)
	}

	return c.composeDependency(e.Name, pkg)
}

func (c *composer) composeDependency(name string, pkg registry.Package) error {
	target := filepath.Join(c.chartsDir, name)

	if _, err := output.RemoveTree(target); err != nil {
		return err
	}

	if err := pkg.Write(target); err != nil {
		return fmt.Errorf("writing sub-chart %q: %w", name, err)
	}

	meta, err := chartmeta.Load(filepath.Join(target, chartbuilder.ChartFile))
	if err != nil {
		return fmt.Errorf("sub-chart %q: %w", name, err)
	}

	dep := Dependency{
		Name:       name,
		Version:    meta.EffectiveVersion(),
		Repository: "file://./" + chartbuilder.ChartsDir + "/" + name,
	}
	c.result.Dependencies = append(c.result.Dependencies, dep)

	merged, err := c.mergeValues(name, filepath.Join(target, chartbuilder.ValuesFile))
	if err != nil {
		return err
	}

	c.logger.Debug("composed sub-chart",
		slog.String("name", name),
		slog.String("mode", string(c.mode)),
		slog.String("version", dep.Version),
		slog.Bool("values", merged),
	)

	return nil
}

func (c *composer) composeInline(name string, pkg registry.Package) (err error) {
	stage := filepath.Join(c.stagingDir, stagePrefix+name)

	if _, err := output.RemoveTree(stage); err != nil {
		return err
	}

	defer func() {
		if _, rmErr := output.RemoveTree(stage); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	if err := pkg.Write(stage); err != nil {
		return fmt.Errorf("writing sub-chart %q: %w", name, err)
	}

	dst := filepath.Join(c.templatesDir, name)

	if _, err := output.RemoveTree(dst); err != nil {
		return err
	}

	copied, err := output.CopyFlat(filepath.Join(stage, chartbuilder.TemplatesDir), dst, c.logger)
	if err != nil {
		return fmt.Errorf("inlining sub-chart %q: %w", name, err)
	}

	if copied > 0 {
		c.result.Inlined = append(c.result.Inlined, name)
	}

	merged, err := c.mergeValues(name, filepath.Join(stage, chartbuilder.ValuesFile))
	if err != nil {
		return err
	}

	c.logger.Debug("composed sub-chart",
		slog.String("name", name),
		slog.String("mode", string(c.mode)),
		slog.Int("templates", copied),
		slog.Bool("values", merged),
	)

	return nil
}

// mergeValues nests the sub-chart's values under name when non-empty.
func (c *composer) mergeValues(name, path string) (bool, error) {
	sub, err := values.Read(path)
	if err != nil {
		return false, fmt.Errorf("sub-chart %q: %w", name, err)
	}

	if sub.IsEmpty() {
		return false, nil
	}

	if err := c.values.Set(name, sub); err != nil {
		return false, fmt.Errorf("sub-chart %q: %w", name, err)
	}

	c.result.Merged = append(c.result.Merged, name)

	return true, nil
}

// finish records the dependency list in the umbrella metadata.
func (c *composer) finish() error {
	if c.mode != mode.Dependencies {
		return nil
	}

	if err := c.chart.Set(DependenciesKey, c.result.Dependencies); err != nil {
		return fmt.Errorf("recording dependencies: %w", err)
	}

	return nil
}
