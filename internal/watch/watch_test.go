package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var (
		calls atomic.Int32
		mu    sync.Mutex
		last  string
	)

	d := NewDebouncer(30*time.Millisecond, nil, func(path string) {
		mu.Lock()
		last = path
		mu.Unlock()
		calls.Add(1)
	})
	defer d.Stop()

	for _, p := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		d.Trigger(p)
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "c.yaml", last)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(30*time.Millisecond, nil, func(string) { calls.Add(1) })
	d.Trigger("values.yaml")
	d.Stop()
	d.Trigger("values.yaml")

	assert.Never(t, func() bool { return calls.Load() > 0 }, 120*time.Millisecond, 10*time.Millisecond)
}

func TestDebouncer_RecoversFromPanic(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(10*time.Millisecond, nil, func(string) {
		calls.Add(1)
		panic("boom")
	})
	defer d.Stop()

	d.Trigger("a")
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger("b")
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Event filter
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		file string
		op   fsnotify.Op
		want bool
	}{
		{"values write", "values.yaml", fsnotify.Write, true},
		{"template create", "templates/deployment.yaml", fsnotify.Create, true},
		{"remove", "Chart.yaml", fsnotify.Remove, true},
		{"rename", "charts/cache.tgz", fsnotify.Rename, true},
		{"chmod only", "values.yaml", fsnotify.Chmod, false},
		{"hidden", ".values.yaml.tmp", fsnotify.Write, false},
		{"vim swap", "values.yaml.swp", fsnotify.Write, false},
		{"backup", "values.yaml~", fsnotify.Write, false},
		{"emacs lock", "#values.yaml#", fsnotify.Write, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevant(fsnotify.Event{Name: tt.file, Op: tt.op}))
		})
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func startRun(t *testing.T, opts Options, runFn RunFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- Run(ctx, opts, runFn) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestRun_RendersInitiallyAndOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Chart.yaml"), "name: umbrella\n")
	writeFile(t, filepath.Join(dir, "templates", "cm.yaml"), "kind: ConfigMap\n")

	extra := filepath.Join(t.TempDir(), "prod.yaml")
	writeFile(t, extra, "replicas: 3\n")

	var calls atomic.Int32

	out := &syncBuffer{}
	opts := Options{Dir: dir, ExtraFiles: []string{extra}, Debounce: 20 * time.Millisecond, Out: out}

	startRun(t, opts, func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "initial: rendered 1 documents")
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "templates", "cm.yaml"), "kind: ConfigMap\nmetadata: {}\n")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, extra, "replicas: 4\n")
	require.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 10*time.Millisecond)

	// A directory created after start is watched too.
	writeFile(t, filepath.Join(dir, "charts", "cache", "values.yaml"), "image: redis\n")
	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 10*time.Millisecond)
}

func TestRun_IgnoredFileDoesNotRender(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Chart.yaml"), "name: umbrella\n")

	rendered := filepath.Join(dir, "rendered.yaml")

	var calls atomic.Int32

	opts := Options{Dir: dir, Ignore: []string{rendered}, Debounce: 20 * time.Millisecond}

	startRun(t, opts, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	})

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, rendered, "---\n")
	assert.Never(t, func() bool { return calls.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestRun_FailedRenderKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "values.yaml"), "a: 1\n")

	var calls atomic.Int32

	out := &syncBuffer{}
	opts := Options{Dir: dir, Debounce: 20 * time.Millisecond, Out: out}

	startRun(t, opts, func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("template: bad pipeline")
		}

		return 2, nil
	})

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "initial: render failed: template: bad pipeline")
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "values.yaml"), "a: 2\n")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "rendered 2 documents")
	}, time.Second, 10*time.Millisecond)
}

func TestRun_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Options{Dir: dir}, func(context.Context) (int, error) { return 0, nil })
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "missing")},
		func(context.Context) (int, error) { return 0, nil })
	require.Error(t, err)
}
