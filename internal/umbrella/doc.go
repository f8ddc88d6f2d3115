// Package umbrella synthesizes the umbrella chart from the registered
// sub-charts.
//
// Synth bootstraps the umbrella's own chart, then composes every registry
// entry in order under one of two modes:
//
//   - dependencies: each sub-chart is written to charts/<name>/ and listed
//     in Chart.yaml as a file:// dependency.
//   - inline: each sub-chart is rendered into a staging directory and its
//     templates are copied into templates/<name>/; Chart.yaml lists no
//     dependencies and charts/ is removed.
//
// In both modes a sub-chart's non-empty default values are nested under
// its name in the umbrella values.yaml.
//
// Output structure:
//
//	output-dir/
//	├── Chart.yaml
//	├── values.yaml
//	├── templates/
//	│   ├── namespace.yaml
//	│   └── <name>/          # inline mode
//	└── charts/<name>/       # dependencies mode
//
// Chart.yaml and values.yaml are written last, so a failed run leaves the
// previous run's copies in place. The charts/ and templates/ subtrees may
// be partially updated; re-run after a failure.
//
// Runs against the same output directory must not overlap.
package umbrella
