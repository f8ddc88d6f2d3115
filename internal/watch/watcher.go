package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one render and returns the number of documents it
// produced.
type RunFunc func(ctx context.Context) (int, error)

// Options configures Run.
type Options struct {
	// Dir is the chart directory, watched recursively.
	Dir string

	// ExtraFiles are watched individually, typically -f values files.
	ExtraFiles []string

	// Ignore lists files whose events never trigger a render, such as
	// the render output itself when it lives inside Dir.
	Ignore []string

	// Debounce is the quiet period before a render. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	Logger *slog.Logger

	// Out receives one status line per render.
	Out io.Writer
}

// Run renders once, then renders again after every relevant change until
// ctx is cancelled. A failed render is reported on Out and does not stop
// the loop.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	ignore, err := absSet(opts.Ignore)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", opts.Dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for _, f := range opts.ExtraFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", f, err)
		}

		if err := watcher.Add(abs); err != nil {
			return fmt.Errorf("watching %s: %w", abs, err)
		}
	}

	opts.Logger.Info("watching chart",
		slog.String("dir", dir),
		slog.Int("extraFiles", len(opts.ExtraFiles)),
		slog.Duration("debounce", opts.Debounce))

	// Renders never overlap: a change landing mid-render waits for it.
	var mu sync.Mutex

	render := func(trigger string) {
		mu.Lock()
		defer mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		report(ctx, opts, runFn, trigger)
	}

	render("initial")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, render)

	// Stop pending renders and wait for one in flight before returning.
	defer func() {
		debouncer.Stop()
		mu.Lock()
		mu.Unlock() //nolint:staticcheck // empty section waits for the in-flight render
	}()

	for {
		select {
		case <-ctx.Done():
			opts.Logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) || ignore[event.Name] {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						opts.Logger.Warn("cannot watch new directory",
							slog.String("path", event.Name), slog.String("error", err.Error()))
					}
				}
			}

			debouncer.Trigger(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func report(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	n, err := runFn(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}

		fmt.Fprintf(opts.Out, "[%s] %s: render failed: %v\n", now, trigger, err)

		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s: rendered %d documents\n", now, trigger, n)
}

// addRecursive watches root and every directory below it, skipping
// hidden directories.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

// isRelevant drops chmod-only events and editor scratch files.
func isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	switch {
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "#"):
		return false
	case strings.HasSuffix(name, "~"), strings.HasSuffix(name, ".swp"):
		return false
	}

	return true
}

func absSet(paths []string) (map[string]bool, error) {
	set := make(map[string]bool, len(paths))

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", p, err)
		}

		set[abs] = true
	}

	return set, nil
}
