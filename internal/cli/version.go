package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/umbrella"
	"github.com/KenkoGeek/timonel-examples/internal/version"
)

// versionReport is the --json form of `umbrella version`: build metadata
// plus the version of the chart the binary synthesizes.
type versionReport struct {
	version.Info
	Chart        string `json:"chart"`
	ChartVersion string `json:"chartVersion"`
}

func newVersionCommand() *cobra.Command {
	var jsonOutput, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the binary's version, commit, build date, and platform, followed
by the name and version of the umbrella chart it synthesizes.`,
		Args: cobra.NoArgs,
		// Runs without loading configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			w := cmd.OutOrStdout()

			switch {
			case short:
				_, err := fmt.Fprintln(w, info.Version)
				return err
			case jsonOutput:
				data, err := json.MarshalIndent(versionReport{
					Info:         info,
					Chart:        umbrella.ChartName,
					ChartVersion: umbrella.ChartVersion,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling version info: %w", err)
				}

				_, err = fmt.Fprintln(w, string(data))

				return err
			}

			_, err := fmt.Fprintf(w, "%s\nchart: %s %s\n", info, umbrella.ChartName, umbrella.ChartVersion)

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")

	return cmd
}
