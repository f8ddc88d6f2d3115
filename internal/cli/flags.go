package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/KenkoGeek/timonel-examples/internal/helm/renderer"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
)

// registerModeFlag adds --mode to a command that synthesizes.
func registerModeFlag(cmd *cobra.Command, opts *synthOptions) {
	cmd.Flags().StringVar(&opts.mode, "mode", "",
		"composition mode: "+string(mode.Dependencies)+", "+string(mode.Inline)+
			" (default: $"+mode.EnvVar+", then "+string(mode.Default)+")")
}

// registerRenderingFlags adds the release options used by helm rendering.
func registerRenderingFlags(cmd *cobra.Command, opts *renderOptions) {
	def := renderer.DefaultOptions()

	f := cmd.Flags()
	f.StringVar(&opts.releaseName, "release-name", def.ReleaseName, "Helm release name for rendering")
	f.StringVar(&opts.namespace, "namespace", def.Namespace, "Kubernetes namespace for rendering")
	f.BoolVar(&opts.strict, "strict", false, "fail on missing template values")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "template rendering timeout")
}

// registerValuesFlags adds the Helm --values/--set family of flags.
func registerValuesFlags(cmd *cobra.Command, opts *renderOptions) {
	f := cmd.Flags()
	f.StringArrayVarP(&opts.valueFiles, "values", "f", nil, "values YAML files")
	f.StringArrayVar(&opts.values, "set", nil, "set values (key=value)")
}
