// Package renderer renders a synthesized chart directory with the Helm SDK
// engine, the way `helm template` would.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"

	"github.com/KenkoGeek/timonel-examples/internal/helm/loader"
)

// Options configures rendering.
type Options struct {
	ReleaseName string
	Namespace   string
	Strict      bool
	Overrides   Overrides
}

// DefaultOptions returns the options `helm template` uses without flags.
func DefaultOptions() Options {
	return Options{
		ReleaseName: "release",
		Namespace:   "default",
	}
}

// Manifest is the output of one template.
type Manifest struct {
	// Path is the template path, e.g. "platform/charts/cache/templates/service.yaml".
	Path    string
	Content string
}

// Renderer renders charts with fixed release options.
type Renderer struct {
	opts Options
}

// New creates a Renderer, filling empty release name and namespace.
func New(opts Options) *Renderer {
	def := DefaultOptions()

	if opts.ReleaseName == "" {
		opts.ReleaseName = def.ReleaseName
	}

	if opts.Namespace == "" {
		opts.Namespace = def.Namespace
	}

	return &Renderer{opts: opts}
}

// RenderPath loads the chart at path, a chart directory or a packaged
// archive, including vendored sub-charts, and renders it.
func (r *Renderer) RenderPath(ctx context.Context, path string) ([]Manifest, error) {
	ch, err := loader.Load(ctx, path, loader.Options{})
	if err != nil {
		return nil, err
	}

	return r.Render(ctx, ch)
}

// Render executes the chart templates. Empty output and NOTES.txt are
// dropped; the rest is sorted by template path.
func (r *Renderer) Render(ctx context.Context, ch *chart.Chart) ([]Manifest, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("rendering cancelled: %w", ctx.Err())
	default:
	}

	vals, err := r.opts.Overrides.Build()
	if err != nil {
		return nil, err
	}

	options := chartutil.ReleaseOptions{
		Name:      r.opts.ReleaseName,
		Namespace: r.opts.Namespace,
		Revision:  1,
		IsInstall: true,
	}

	renderValues, err := chartutil.ToRenderValues(ch, vals, options, nil)
	if err != nil {
		return nil, fmt.Errorf("preparing render values: %w", err)
	}

	eng := engine.Engine{Strict: r.opts.Strict}

	rendered, err := eng.Render(ch, renderValues)
	if err != nil {
		return nil, fmt.Errorf("rendering templates: %w", err)
	}

	return collect(rendered), nil
}

func collect(rendered map[string]string) []Manifest {
	paths := make([]string, 0, len(rendered))
	for p := range rendered {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	var out []Manifest

	for _, p := range paths {
		if strings.HasSuffix(p, "NOTES.txt") {
			continue
		}

		content := strings.TrimSpace(rendered[p])
		if content == "" {
			continue
		}

		out = append(out, Manifest{Path: p, Content: content})
	}

	return out
}

// Combine joins manifests into one multi-document YAML stream, each
// preceded by a "# Source:" comment like `helm template` prints.
func Combine(manifests []Manifest) []byte {
	var buf bytes.Buffer

	for _, m := range manifests {
		buf.WriteString("---\n# Source: ")
		buf.WriteString(m.Path)
		buf.WriteByte('\n')
		buf.WriteString(m.Content)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
