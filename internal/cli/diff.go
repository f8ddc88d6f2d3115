package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/plan"
)

type diffOptions struct {
	synthOptions

	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff [dir]",
		Short: "Show what synth would change without writing",
		Long: `Diff synthesizes the umbrella chart into a temporary directory and
prints a unified diff of every file against dir. dir itself is not
modified.

Exit codes:
  0  No differences, or differences without --exit-code
  1  Error
  4  Differences found and --exit-code is set`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args, opts)
		},
	}

	registerModeFlag(cmd, &opts.synthOptions)
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with code 4 when there are differences")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string, opts *diffOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	dir := chartDir(cfg, args)

	tmp, err := os.MkdirTemp(cfg.StagingDir, "umbrella-diff-")
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("creating diff directory: %w", err)}
	}
	defer os.RemoveAll(tmp) //nolint:errcheck // best-effort cleanup of our own temp dir

	proposed := filepath.Join(tmp, filepath.Base(filepath.Clean(dir)))

	// Seed the proposal with the current tree so mode-switch cleanup shows
	// up as removals.
	if err := output.CopyTree(dir, proposed); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if _, err := synthesize(cmd, proposed, &opts.synthOptions); err != nil {
		return err
	}

	result, err := plan.DiffTrees(dir, proposed)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	plan.WriteTreeDiff(cmd.OutOrStdout(), result, !cfg.NoColor)

	if opts.exitCode && result.HasDifferences() {
		return &ExitError{
			Code: ExitDiff,
			Err:  fmt.Errorf("%d file(s) differ", len(result.Changes)),
		}
	}

	return nil
}
