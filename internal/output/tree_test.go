package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ---------------------------------------------------------------------------
// RemoveTree
// ---------------------------------------------------------------------------

func TestRemoveTree_Existing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	writeFile(t, filepath.Join(dir, "web", "Chart.yaml"), "name: web\n")

	removed, err := RemoveTree(dir)
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := Exists(dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemoveTree_Missing(t *testing.T) {
	removed, err := RemoveTree(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.False(t, removed)
}

// ---------------------------------------------------------------------------
// PruneDir
// ---------------------------------------------------------------------------

func TestPruneDir_KeepsListedEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "web", "Chart.yaml"), "name: web\n")
	writeFile(t, filepath.Join(dir, "stale", "Chart.yaml"), "name: stale\n")

	removed, err := PruneDir(dir, map[string]bool{"web": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, removed)

	_, err = os.Stat(filepath.Join(dir, "web", "Chart.yaml"))
	assert.NoError(t, err)
}

func TestPruneDir_MissingDir(t *testing.T) {
	removed, err := PruneDir(filepath.Join(t.TempDir(), "charts"), nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestPruneSubdirs_KeepsFilesAndListedDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "namespace.yaml"), "kind: Namespace\n")
	writeFile(t, filepath.Join(dir, "web", "service.yaml"), "kind: Service\n")
	writeFile(t, filepath.Join(dir, "old", "job.yaml"), "kind: Job\n")

	removed, err := PruneSubdirs(dir, map[string]bool{"web": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	assert.FileExists(t, filepath.Join(dir, "namespace.yaml"))
	assert.FileExists(t, filepath.Join(dir, "web", "service.yaml"))
	assert.NoDirExists(t, filepath.Join(dir, "old"))

	removed, err = PruneSubdirs(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, removed)
	assert.FileExists(t, filepath.Join(dir, "namespace.yaml"))
}

func TestSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "namespace.yaml"), "kind: Namespace\n")
	writeFile(t, filepath.Join(dir, "web", "service.yaml"), "kind: Service\n")
	writeFile(t, filepath.Join(dir, "cache", "service.yaml"), "kind: Service\n")

	names, err := Subdirs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "web"}, names)

	names, err = Subdirs(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

// ---------------------------------------------------------------------------
// CopyFlat
// ---------------------------------------------------------------------------

func TestCopyFlat_CopiesFiles(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "templates", "web")

	writeFile(t, filepath.Join(src, "deployment.yaml"), "kind: Deployment\n")
	writeFile(t, filepath.Join(src, "service.yaml"), "kind: Service\n")

	n, err := CopyFlat(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(filepath.Join(dst, "service.yaml")) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "kind: Service\n", string(got))
}

func TestCopyFlat_SkipsNestedDirectories(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(src, "a.yaml"), "a\n")
	writeFile(t, filepath.Join(src, "nested", "b.yaml"), "b\n")

	n, err := CopyFlat(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(dst, "nested"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFlat_EmptySourceCreatesNothing(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	n, err := CopyFlat(src, dst, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	exists, err := Exists(dst)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopyFlat_MissingSource(t *testing.T) {
	n, err := CopyFlat(filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ---------------------------------------------------------------------------
// CopyTree
// ---------------------------------------------------------------------------

func TestCopyTree_Recursive(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Chart.yaml"), "name: platform\n")
	writeFile(t, filepath.Join(src, "charts", "cache", "values.yaml"), "image: redis\n")

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "charts", "cache", "values.yaml")) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "image: redis\n", string(got))
	assert.FileExists(t, filepath.Join(dst, "Chart.yaml"))
}

func TestCopyTree_MissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(filepath.Join(t.TempDir(), "missing"), dst))

	exists, err := Exists(dst)
	require.NoError(t, err)
	assert.False(t, exists)
}
