package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
	"github.com/KenkoGeek/timonel-examples/internal/umbrella"
	"github.com/KenkoGeek/timonel-examples/internal/workloads"
)

type synthOptions struct {
	mode string
}

func newSynthCommand() *cobra.Command {
	opts := &synthOptions{}

	cmd := &cobra.Command{
		Use:   "synth [dir]",
		Short: "Write the umbrella chart",
		Long: `Synth writes the umbrella chart to dir (default: the configured output
directory). Running it twice with the same mode produces identical files;
switching modes removes the other mode's artifacts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(cmd, args, opts)
		},
	}

	registerModeFlag(cmd, opts)

	return cmd
}

func runSynth(cmd *cobra.Command, args []string, opts *synthOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	res, err := synthesize(cmd, chartDir(cfg, args), opts)
	if err != nil {
		return err
	}

	if cfg.Quiet {
		return nil
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Synthesized %s (mode: %s, from %s)\n", res.OutputDir, res.Mode, res.ModeSource)

	switch res.Mode {
	case mode.Dependencies:
		for _, d := range res.Dependencies {
			_, _ = fmt.Fprintf(w, "  %s %s -> %s\n", d.Name, d.Version, d.Repository)
		}
	case mode.Inline:
		if len(res.Inlined) > 0 {
			_, _ = fmt.Fprintf(w, "  inlined: %s\n", strings.Join(res.Inlined, ", "))
		}
	}

	return nil
}

// synthesize runs one synthesis into dir with the compiled-in registry.
func synthesize(cmd *cobra.Command, dir string, opts *synthOptions) (*umbrella.Result, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	res, err := umbrella.Synth(ctx, dir, umbrella.Options{
		Mode:       mode.Mode(opts.mode),
		Registry:   workloads.Registry(),
		Lookup:     mode.OSLookup,
		StagingDir: cfg.StagingDir,
		Logger:     logging.FromContext(ctx),
	})
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	return res, nil
}
