package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/helm/deps"
	"github.com/KenkoGeek/timonel-examples/internal/k8s"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
)

type verifyOptions struct {
	renderOptions
	render bool
}

func newVerifyCommand() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check a synthesized umbrella chart for consistency",
		Long: `Verify detects the mode the chart in dir was synthesized in and checks
that it is self-consistent: in dependencies mode every declared
dependency is vendored under charts/ with a matching version and nothing
else is; in inline mode charts/ must not exist.

With --render the chart is also rendered and the resulting objects are
checked, helm test hooks aside: every object needs a name, no object may be rendered twice, and
container images must carry a tag other than latest.

Exit codes:
  0  Chart is consistent
  1  Chart could not be read
  3  Problems found`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.render, "render", false, "also render the chart and check the rendered objects")
	registerRenderingFlags(cmd, &opts.renderOptions)
	registerValuesFlags(cmd, &opts.renderOptions)

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, opts *verifyOptions) error {
	ctx := cmd.Context()
	dir := chartDir(config.FromContext(ctx), args)

	report, err := deps.Verify(dir, logging.FromContext(ctx))
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	problems := append([]string(nil), report.Problems...)
	rendered := -1

	if opts.render {
		resources, err := renderResources(ctx, dir, &opts.renderOptions)
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}

		rendered = len(resources)
		problems = append(problems, k8s.Check(k8s.WithoutTests(resources))...)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Chart:  %s\nMode:   %s\n", report.Dir, report.Mode)

	if rendered >= 0 {
		_, _ = fmt.Fprintf(w, "Objects: %d\n", rendered)
	}

	if len(report.Dependencies.Dependencies) > 0 {
		_, _ = fmt.Fprintln(w)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tDECLARED\tVENDORED\tSTATUS")

		for _, d := range report.Dependencies.Dependencies {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, orDash(d.Version), orDash(d.Actual), d.Status)
		}

		_ = tw.Flush()
	}

	if len(problems) == 0 {
		_, _ = fmt.Fprintln(w, "\nOK")
		return nil
	}

	_, _ = fmt.Fprintln(w, "\nProblems:")
	for _, p := range problems {
		_, _ = fmt.Fprintf(w, "  - %s\n", p)
	}

	return &ExitError{
		Code: ExitVerify,
		Err:  fmt.Errorf("verification of %s failed: %d problem(s)", dir, len(problems)),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
