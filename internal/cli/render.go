package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/helm/renderer"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/watch"
)

type renderOptions struct {
	releaseName string
	namespace   string
	strict      bool
	timeout     time.Duration
	valueFiles  []string
	values      []string
	outputFile  string
	watch       bool
	debounce    time.Duration
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Render a synthesized umbrella chart like helm template",
		Long: `Render loads the umbrella chart in dir, including vendored sub-charts,
and prints the rendered manifests as one multi-document YAML stream.
Empty templates and NOTES.txt are skipped; documents are sorted by
template path.

With --watch, render runs again whenever a file under dir or a -f values
file changes, until interrupted. Status lines go to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd, args, opts)
		},
	}

	registerRenderingFlags(cmd, opts)
	registerValuesFlags(cmd, opts)
	f := cmd.Flags()
	f.StringVar(&opts.outputFile, "output-file", "", "write manifests to a file instead of stdout")
	f.BoolVar(&opts.watch, "watch", false, "re-render when the chart or a values file changes")
	f.DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before a watched change re-renders")

	return cmd
}

func runRender(ctx context.Context, cmd *cobra.Command, args []string, opts *renderOptions) error {
	dir := chartDir(config.FromContext(ctx), args)

	var w output.Writer = output.NewStdoutWriter(cmd.OutOrStdout())
	if opts.outputFile != "" {
		w = output.NewFileWriter(opts.outputFile, output.WithLogger(logging.FromContext(ctx)))
	}

	renderOnce := func(ctx context.Context) (int, error) {
		manifests, err := renderChart(ctx, dir, opts)
		if err != nil {
			return 0, err
		}

		if err := w.Write(renderer.Combine(manifests)); err != nil {
			return 0, err
		}

		return len(manifests), nil
	}

	if opts.watch {
		return watchRender(ctx, cmd, dir, opts, renderOnce)
	}

	if _, err := renderOnce(ctx); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	return nil
}

func watchRender(ctx context.Context, cmd *cobra.Command, dir string, opts *renderOptions, runFn watch.RunFunc) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--watch needs a chart directory, got %s", dir)}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchOpts := watch.Options{
		Dir:        dir,
		ExtraFiles: opts.valueFiles,
		Debounce:   opts.debounce,
		Logger:     logging.FromContext(ctx),
		Out:        cmd.ErrOrStderr(),
	}

	if opts.outputFile != "" {
		watchOpts.Ignore = []string{opts.outputFile}
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	return nil
}

// renderChart renders the chart or archive at path with the release and
// values options in opts.
func renderChart(ctx context.Context, path string, opts *renderOptions) ([]renderer.Manifest, error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	r := renderer.New(renderer.Options{
		ReleaseName: opts.releaseName,
		Namespace:   opts.namespace,
		Strict:      opts.strict,
		Overrides: renderer.Overrides{
			ValueFiles: opts.valueFiles,
			Values:     opts.values,
		},
	})

	return r.RenderPath(ctx, path)
}
