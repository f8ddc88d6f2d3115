// Package cli implements the umbrella command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
)

// Process exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
	ExitVerify  = 3
	ExitDiff    = 4
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute runs the command tree with the process arguments and returns the
// exit code. Errors are printed to stderr as they are.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	_, _ = fmt.Fprintln(stderr, err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// NewRootCommand constructs the top-level command. Run without a
// subcommand it synthesizes the umbrella chart, like `umbrella synth`.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		synth   synthOptions
	)

	cmd := &cobra.Command{
		Use:   "umbrella [dir]",
		Short: "Synthesize a Helm umbrella chart from compiled-in sub-charts",
		Long: `umbrella writes a Helm umbrella chart that aggregates a fixed set of
sub-charts, either as vendored dependencies under charts/ or by copying
their templates into the umbrella's own templates/ directory.

The composition mode comes from --mode, then the UMBRELLA_MODE environment
variable, and defaults to "dependencies". Unrecognized values fall through
to the next source.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("output", cfg.Output),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(cmd, args, &synth)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .umbrella.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.StringP("output", "o", config.DefaultOutput, "umbrella chart directory when no [dir] argument is given")
	pf.String("staging-dir", "", "directory for temporary sub-chart output (default: system temp dir)")

	registerModeFlag(cmd, &synth)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newSynthCommand(),
		newRenderCommand(),
		newVerifyCommand(),
		newResourcesCommand(),
		newDiffCommand(),
		newListCommand(),
		newPackageCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// chartDir returns the directory a command operates on: the positional
// argument when given, otherwise the configured output directory.
func chartDir(cfg *config.Config, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}

	return cfg.Output
}
