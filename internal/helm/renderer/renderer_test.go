package renderer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/chart"

	"github.com/KenkoGeek/timonel-examples/internal/helm/loader"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
	"github.com/KenkoGeek/timonel-examples/internal/umbrella"
	"github.com/KenkoGeek/timonel-examples/internal/workloads"
)

func newTestChart() *chart.Chart {
	return &chart.Chart{
		Metadata: &chart.Metadata{Name: "web", Version: "1.0.0", APIVersion: "v2"},
		Values:   map[string]interface{}{"replicas": 1},
		Templates: []*chart.File{
			{Name: "templates/deployment.yaml", Data: []byte("kind: Deployment\nnamespace: {{ .Release.Namespace }}\nreplicas: {{ .Values.replicas }}\n")},
			{Name: "templates/empty.yaml", Data: []byte("{{- if false }}\nkind: Never\n{{- end }}\n")},
			{Name: "templates/NOTES.txt", Data: []byte("thanks")},
		},
	}
}

// synthesize builds the real umbrella chart into a temp directory.
func synthesize(t *testing.T, m mode.Mode) string {
	t.Helper()

	out := filepath.Join(t.TempDir(), "dist")
	_, err := umbrella.Synth(context.Background(), out, umbrella.Options{
		Mode:       m,
		Registry:   workloads.Registry(),
		Lookup:     mode.MapLookup(nil),
		StagingDir: t.TempDir(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return out
}

func byPath(manifests []Manifest) map[string]string {
	out := make(map[string]string, len(manifests))
	for _, m := range manifests {
		out[m.Path] = m.Content
	}

	return out
}

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

func TestRender_DropsEmptyAndNotes(t *testing.T) {
	out, err := New(Options{Namespace: "apps"}).Render(context.Background(), newTestChart())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "web/templates/deployment.yaml", out[0].Path)
	assert.Contains(t, out[0].Content, "namespace: apps")
	assert.Contains(t, out[0].Content, "replicas: 1")
}

func TestRender_SetOverride(t *testing.T) {
	r := New(Options{Overrides: Overrides{Values: []string{"replicas=4"}}})

	out, err := r.Render(context.Background(), newTestChart())
	require.NoError(t, err)
	assert.Contains(t, out[0].Content, "replicas: 4")
}

func TestRender_ValueFileThenSet(t *testing.T) {
	f := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(f, []byte("replicas: 3\n"), 0o600))

	out, err := New(Options{Overrides: Overrides{ValueFiles: []string{f}}}).Render(context.Background(), newTestChart())
	require.NoError(t, err)
	assert.Contains(t, out[0].Content, "replicas: 3")

	out, err = New(Options{Overrides: Overrides{ValueFiles: []string{f}, Values: []string{"replicas=5"}}}).Render(context.Background(), newTestChart())
	require.NoError(t, err)
	assert.Contains(t, out[0].Content, "replicas: 5")
}

func TestRender_BadSet(t *testing.T) {
	_, err := New(Options{Overrides: Overrides{Values: []string{"noequals"}}}).Render(context.Background(), newTestChart())
	assert.Error(t, err)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultOptions()).Render(ctx, newTestChart())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCombine(t *testing.T) {
	got := string(Combine([]Manifest{{Path: "a/templates/x.yaml", Content: "kind: A"}, {Path: "a/templates/y.yaml", Content: "kind: B"}}))
	assert.Equal(t, "---\n# Source: a/templates/x.yaml\nkind: A\n---\n# Source: a/templates/y.yaml\nkind: B\n", got)
}

// ---------------------------------------------------------------------------
// RenderPath on synthesized umbrella charts
// ---------------------------------------------------------------------------

func TestRenderPath_UmbrellaNamespaceGated(t *testing.T) {
	dir := synthesize(t, mode.Dependencies)

	out, err := New(DefaultOptions()).RenderPath(context.Background(), dir)
	require.NoError(t, err)
	assert.NotContains(t, byPath(out), "platform/templates/namespace.yaml")
}

func TestRenderPath_UmbrellaNamespaceOverride(t *testing.T) {
	dir := synthesize(t, mode.Dependencies)

	r := New(Options{
		Namespace: "release-ns",
		Overrides: Overrides{Values: []string{"createNamespace=true", "namespace=apps"}},
	})

	out, err := r.RenderPath(context.Background(), dir)
	require.NoError(t, err)

	ns := byPath(out)["platform/templates/namespace.yaml"]
	assert.Contains(t, ns, "kind: Namespace")
	assert.Contains(t, ns, "name: apps")
}

func TestRenderPath_UmbrellaNamespaceFallsBackToRelease(t *testing.T) {
	dir := synthesize(t, mode.Dependencies)

	r := New(Options{
		Namespace: "release-ns",
		Overrides: Overrides{Values: []string{"createNamespace=true", "namespace="}},
	})

	out, err := r.RenderPath(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, byPath(out)["platform/templates/namespace.yaml"], "name: release-ns")
}

func TestRenderPath_DependenciesScopeSubChartValues(t *testing.T) {
	dir := synthesize(t, mode.Dependencies)

	r := New(Options{Overrides: Overrides{Values: []string{"frontend.replicas=5"}}})

	out, err := r.RenderPath(context.Background(), dir)
	require.NoError(t, err)

	deploy := byPath(out)["platform/charts/frontend/templates/deployment.yaml"]
	assert.Contains(t, deploy, "replicas: 5")
	assert.Contains(t, deploy, "image: nginx:1.27.0")

	cache := byPath(out)["platform/charts/cache/templates/configmap.yaml"]
	assert.True(t, strings.Contains(cache, "maxmemory 128mb"), cache)
}

func TestRenderPath_InlineIncludesCopiedTemplates(t *testing.T) {
	dir := synthesize(t, mode.Inline)

	out, err := New(DefaultOptions()).RenderPath(context.Background(), dir)
	require.NoError(t, err)

	paths := byPath(out)
	assert.Contains(t, paths, "platform/templates/frontend/service.yaml")
	assert.Contains(t, paths, "platform/templates/cache/service.yaml")
}

func TestRenderPath_InlineWorkloadsFallBackToDefaults(t *testing.T) {
	dir := synthesize(t, mode.Inline)

	out, err := New(DefaultOptions()).RenderPath(context.Background(), dir)
	require.NoError(t, err)

	paths := byPath(out)

	frontend := paths["platform/templates/frontend/deployment.yaml"]
	assert.Contains(t, frontend, "replicas: 2\n")
	assert.Contains(t, frontend, "image: nginx:1.27.0\n")

	cache := paths["platform/templates/cache/deployment.yaml"]
	assert.Contains(t, cache, "image: redis:7.2.5\n")
	assert.Contains(t, paths["platform/templates/cache/configmap.yaml"], "maxmemory 128mb")
}

func TestRenderPath_PackagedArchive(t *testing.T) {
	archive, err := loader.Package(synthesize(t, mode.Dependencies), t.TempDir())
	require.NoError(t, err)

	out, err := New(DefaultOptions()).RenderPath(context.Background(), archive)
	require.NoError(t, err)
	assert.Contains(t, byPath(out), "platform/charts/cache/templates/service.yaml")
}

func TestRenderPath_Missing(t *testing.T) {
	_, err := New(DefaultOptions()).RenderPath(context.Background(), filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}
