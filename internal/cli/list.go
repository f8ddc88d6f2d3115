package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartmeta"
	"github.com/KenkoGeek/timonel-examples/internal/registry"
	"github.com/KenkoGeek/timonel-examples/internal/workloads"
)

// listEntry is one row of `umbrella list`.
type listEntry struct {
	Name        string `json:"name"`
	Chart       string `json:"chart"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

func newListCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the sub-charts in composition order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := listEntries(workloads.Registry())
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			if jsonOutput {
				return writeListJSON(cmd.OutOrStdout(), entries)
			}

			return writeListTable(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func listEntries(reg *registry.Registry) ([]listEntry, error) {
	out := make([]listEntry, 0, reg.Len())

	for _, e := range reg.Entries() {
		pkg := e.New()
		if pkg == nil {
			return nil, fmt.Errorf("sub-chart %q: factory returned nil", e.Name)
		}

		meta := chartmeta.FromMetadata(pkg.Metadata())

		out = append(out, listEntry{
			Name:        e.Name,
			Chart:       meta.Name,
			Version:     meta.EffectiveVersion(),
			Description: meta.Description,
		})
	}

	return out, nil
}

func writeListTable(w io.Writer, entries []listEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tCHART\tVERSION\tDESCRIPTION")

	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Chart, e.Version, e.Description)
	}

	return tw.Flush()
}

func writeListJSON(w io.Writer, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sub-chart list: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
