package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/helm/loader"
	"github.com/KenkoGeek/timonel-examples/internal/logging"
)

func newPackageCommand() *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "package [dir]",
		Short: "Package a synthesized umbrella chart into a versioned archive",
		Long: `Package writes the chart in dir, including vendored sub-charts, to
<name>-<version>.tgz like helm package. The archive can be passed to
render in place of a directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := chartDir(config.FromContext(ctx), args)

			path, err := loader.Package(dir, destination)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			logging.FromContext(ctx).Debug("packaged chart", slog.String("dir", dir), slog.String("archive", path))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "destination", "d", ".", "directory to write the archive to")

	return cmd
}
