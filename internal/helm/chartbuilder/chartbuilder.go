// Package chartbuilder assembles Helm charts in code and writes them to disk
// as a regular chart directory (Chart.yaml, values.yaml, templates/).
//
// Manifests are Kubernetes objects whose string fields may hold Helm template
// expressions (see the expr package). When written, a scalar consisting of a
// single expression is emitted unquoted so the rendered value keeps its type.
package chartbuilder

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartmeta"
	"github.com/KenkoGeek/timonel-examples/internal/helm/expr"
	"github.com/KenkoGeek/timonel-examples/internal/maputil"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/values"
)

// Standard file and directory names inside a chart.
const (
	ChartFile    = "Chart.yaml"
	ValuesFile   = "values.yaml"
	TemplatesDir = "templates"
	ChartsDir    = "charts"
)

// Manifest is one template file of the chart.
type Manifest struct {
	// Name is the template file name without extension.
	Name string
	// Object is the manifest body.
	Object map[string]interface{}
	// Condition is a values path; when set the manifest renders only if
	// the value is truthy.
	Condition string

	err error
}

// ManifestOption configures a Manifest.
type ManifestOption func(*Manifest)

// WithCondition gates the manifest on the values path key.
func WithCondition(key string) ManifestOption {
	return func(m *Manifest) {
		m.Condition = key
	}
}

// WithField sets the field at path in the converted manifest to value.
// It is how template expressions reach fields that are not strings in the
// typed object, such as a Deployment's replica count.
func WithField(value string, path ...string) ManifestOption {
	return func(m *Manifest) {
		if m.err != nil {
			return
		}

		if err := unstructured.SetNestedField(m.Object, value, path...); err != nil {
			m.err = fmt.Errorf("setting %s: %w", strings.Join(path, "."), err)
		}
	}
}

// Chart is a chart under construction.
type Chart struct {
	meta      *chart.Metadata
	values    map[string]interface{}
	manifests []Manifest
}

// New creates a chart with the given metadata and default values. Both are
// copied.
func New(meta *chart.Metadata, vals map[string]interface{}) *Chart {
	return &Chart{
		meta:   copyMetadata(meta),
		values: copyMap(vals),
	}
}

// Metadata returns a copy of the chart metadata.
func (c *Chart) Metadata() *chart.Metadata {
	return copyMetadata(c.meta)
}

// Values returns a deep copy of the default values.
func (c *Chart) Values() map[string]interface{} {
	return copyMap(c.values)
}

// Manifests returns the manifests added so far.
func (c *Chart) Manifests() []Manifest {
	out := make([]Manifest, len(c.manifests))
	copy(out, c.manifests)

	return out
}

// AddManifest adds a template named name. obj may be a
// map[string]interface{}, an *unstructured.Unstructured, or any typed
// Kubernetes object.
func (c *Chart) AddManifest(name string, obj interface{}, opts ...ManifestOption) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid manifest name %q", name)
	}

	for _, m := range c.manifests {
		if m.Name == name {
			return fmt.Errorf("duplicate manifest name %q", name)
		}
	}

	content, err := toMap(obj)
	if err != nil {
		return fmt.Errorf("manifest %q: %w", name, err)
	}

	m := Manifest{Name: name, Object: content}
	for _, opt := range opts {
		opt(&m)
	}

	if m.err != nil {
		return fmt.Errorf("manifest %q: %w", name, m.err)
	}

	c.manifests = append(c.manifests, m)

	return nil
}

// MustAddManifest is AddManifest for static chart definitions; it panics on
// error.
func (c *Chart) MustAddManifest(name string, obj interface{}, opts ...ManifestOption) *Chart {
	if err := c.AddManifest(name, obj, opts...); err != nil {
		panic(err)
	}

	return c
}

// Write materializes the chart in dir: Chart.yaml, values.yaml, and, when
// the chart has manifests, templates/<name>.yaml for each of them.
func (c *Chart) Write(dir string) error {
	meta := c.Metadata()
	if meta.APIVersion == "" {
		meta.APIVersion = chart.APIVersionV2
	}

	meta.Version = chartmeta.NormalizeVersion(meta.Version)

	if err := meta.Validate(); err != nil {
		return fmt.Errorf("chart %q: %w", meta.Name, err)
	}

	if err := output.EnsureDir(dir); err != nil {
		return err
	}

	if err := chartutil.SaveChartfile(filepath.Join(dir, ChartFile), meta); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Join(dir, ChartFile), err)
	}

	doc, err := values.FromMap(c.values)
	if err != nil {
		return fmt.Errorf("chart %q: %w", meta.Name, err)
	}

	if err := values.Write(filepath.Join(dir, ValuesFile), doc); err != nil {
		return err
	}

	for _, m := range c.manifests {
		data, err := RenderManifest(m)
		if err != nil {
			return fmt.Errorf("chart %q: %w", meta.Name, err)
		}

		path := filepath.Join(dir, TemplatesDir, m.Name+".yaml")
		if err := output.NewFileWriter(path).Write(data); err != nil {
			return err
		}
	}

	return nil
}

// quotedExpr matches a quoted YAML scalar that is exactly one template
// expression.
var quotedExpr = regexp.MustCompile(`'\{\{[^'\n]*\}\}'|"\{\{(?:[^"\\\n]|\\.)*\}\}"`)

// RenderManifest returns the template file content for m.
func RenderManifest(m Manifest) ([]byte, error) {
	data, err := yaml.Marshal(m.Object)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest %q: %w", m.Name, err)
	}

	body := quotedExpr.ReplaceAllStringFunc(string(data), unquoteExpr)

	if m.Condition == "" {
		return []byte(body), nil
	}

	open, end := expr.IfValue(m.Condition)

	return []byte(open + "\n" + body + end + "\n"), nil
}

// unquoteExpr strips the YAML quotes around one expression scalar.
func unquoteExpr(q string) string {
	if q[0] == '"' {
		if s, err := strconv.Unquote(q); err == nil {
			return s
		}

		return q
	}

	return q[1 : len(q)-1]
}

// toMap converts a supported object into a fresh map.
func toMap(obj interface{}) (map[string]interface{}, error) {
	switch o := obj.(type) {
	case nil:
		return nil, fmt.Errorf("nil object")
	case map[string]interface{}:
		return copyMap(o), nil
	case *unstructured.Unstructured:
		return copyMap(o.Object), nil
	}

	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("converting object: %w", err)
	}

	// Typed objects carry server-populated fields that have no place in a template.
	unstructured.RemoveNestedField(content, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(content, "spec", "template", "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(content, "status")

	return content, nil
}

func copyMetadata(md *chart.Metadata) *chart.Metadata {
	if md == nil {
		return &chart.Metadata{}
	}

	c := *md

	if md.Dependencies != nil {
		c.Dependencies = make([]*chart.Dependency, len(md.Dependencies))
		for i, d := range md.Dependencies {
			if d != nil {
				dc := *d
				c.Dependencies[i] = &dc
			}
		}
	}

	return &c
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}

	return maputil.DeepCopyMap(m)
}
