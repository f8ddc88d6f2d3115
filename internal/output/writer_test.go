package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// StreamWriter
// ---------------------------------------------------------------------------

func TestStdoutWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewStdoutWriter(&buf).Write([]byte("kind: Service\n")))
	assert.Equal(t, "kind: Service\n", buf.String())
	assert.NotNil(t, NewStdoutWriter(nil).out)
}

// ---------------------------------------------------------------------------
// FileWriter
// ---------------------------------------------------------------------------

func TestFileWriter_CreatesParentsWithMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platform", "templates", "namespace.yaml")

	require.NoError(t, NewFileWriter(path).Write([]byte("kind: Namespace\n")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "kind: Namespace\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultFileMode, info.Mode().Perm())
}

func TestFileWriter_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")

	require.NoError(t, NewFileWriter(path, WithFileMode(0o600)).Write([]byte("a: 1\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replicas: 1\n"), 0o600))

	require.NoError(t, NewFileWriter(path).Write([]byte("replicas: 2\n")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "replicas: 2\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileWriter_UnchangedContentIsNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: platform\n"), 0o600))

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, NewFileWriter(path).Write([]byte("name: platform\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_Path(t *testing.T) {
	assert.Equal(t, "dist/values.yaml", NewFileWriter("dist/values.yaml").Path())
}

func TestFileWriter_InvalidPath(t *testing.T) {
	err := NewFileWriter("/dev/null/impossible/path.yaml").Write([]byte("data"))
	assert.Error(t, err)
}
