package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/config"
	"github.com/KenkoGeek/timonel-examples/internal/helm/renderer"
	"github.com/KenkoGeek/timonel-examples/internal/k8s"
)

type resourcesOptions struct {
	renderOptions
	jsonOutput bool
}

// resourceEntry is one row of `umbrella resources`.
type resourceEntry struct {
	APIVersion string   `json:"apiVersion"`
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Namespace  string   `json:"namespace,omitempty"`
	Chart      string   `json:"chart,omitempty"`
	Source     string   `json:"source"`
	Images     []string `json:"images,omitempty"`
	Hooks      []string `json:"hooks,omitempty"`
}

func newResourcesCommand() *cobra.Command {
	opts := &resourcesOptions{}

	cmd := &cobra.Command{
		Use:   "resources [dir]",
		Short: "List the Kubernetes resources an umbrella chart renders",
		Long: `Resources renders the umbrella chart in dir and lists every Kubernetes
object it produces together with the sub-chart it came from and the
container images it runs. Helm hooks are listed with their hook types.
Objects from the umbrella's own templates have
no sub-chart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resources, err := renderResources(ctx, chartDir(config.FromContext(ctx), args), &opts.renderOptions)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			entries := resourceEntries(resources)

			if opts.jsonOutput {
				return writeResourcesJSON(cmd.OutOrStdout(), entries)
			}

			return writeResourcesTable(cmd.OutOrStdout(), entries)
		},
	}

	registerRenderingFlags(cmd, &opts.renderOptions)
	registerValuesFlags(cmd, &opts.renderOptions)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")

	return cmd
}

// renderResources renders the chart at path and parses every manifest.
func renderResources(ctx context.Context, path string, opts *renderOptions) ([]*k8s.Resource, error) {
	manifests, err := renderChart(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	return parseManifests(manifests)
}

func parseManifests(manifests []renderer.Manifest) ([]*k8s.Resource, error) {
	var out []*k8s.Resource

	for _, m := range manifests {
		resources, err := k8s.Parse(m.Path, []byte(m.Content))
		if err != nil {
			return nil, err
		}

		out = append(out, resources...)
	}

	return out, nil
}

func resourceEntries(resources []*k8s.Resource) []resourceEntry {
	out := make([]resourceEntry, 0, len(resources))

	for _, r := range resources {
		out = append(out, resourceEntry{
			APIVersion: r.APIVersion(),
			Kind:       r.Kind(),
			Name:       r.Name,
			Namespace:  r.Namespace,
			Chart:      r.SourceChart(),
			Source:     r.SourcePath,
			Images:     r.Images(),
			Hooks:      hookNames(r),
		})
	}

	return out
}

func hookNames(r *k8s.Resource) []string {
	hooks := r.Hooks()
	if len(hooks) == 0 {
		return nil
	}

	out := make([]string, len(hooks))
	for i, h := range hooks {
		out[i] = string(h)
	}

	return out
}

func writeResourcesTable(w io.Writer, entries []resourceEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tNAME\tNAMESPACE\tCHART\tHOOKS\tIMAGES")

	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Kind, e.Name, orDash(e.Namespace), orDash(e.Chart),
			orDash(strings.Join(e.Hooks, ",")), orDash(strings.Join(e.Images, ",")))
	}

	return tw.Flush()
}

func writeResourcesJSON(w io.Writer, entries []resourceEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling resource list: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
