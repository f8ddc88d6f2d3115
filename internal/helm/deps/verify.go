package deps

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/helm/chartmeta"
	"github.com/KenkoGeek/timonel-examples/internal/helm/loader"
	"github.com/KenkoGeek/timonel-examples/internal/mode"
	"github.com/KenkoGeek/timonel-examples/internal/output"
	"github.com/KenkoGeek/timonel-examples/internal/values"
)

// dependenciesKey is the Chart.yaml field holding the dependency list.
const dependenciesKey = "dependencies"

// Report is the outcome of verifying a synthesized chart directory.
type Report struct {
	Dir  string
	Mode mode.Mode
	// Dependencies is the analysis of declared and vendored sub-charts.
	Dependencies *Result
	// Problems lists every inconsistency found, one line each.
	Problems []string
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// DetectMode reports the mode a chart directory was last synthesized in. A
// dependency list in Chart.yaml, even an empty one, means dependencies mode.
func DetectMode(dir string) (mode.Mode, error) {
	doc, err := values.Read(filepath.Join(dir, chartbuilder.ChartFile))
	if err != nil {
		return "", err
	}

	if doc.IsEmpty() {
		return "", fmt.Errorf("no %s in %q", chartbuilder.ChartFile, dir)
	}

	if doc.Has(dependenciesKey) {
		return mode.Dependencies, nil
	}

	return mode.Inline, nil
}

// Verify loads the chart in dir and checks it is consistent with the mode
// it was synthesized in. Errors are returned only when the chart cannot be
// read at all; inconsistencies are reported in Report.Problems.
func Verify(dir string, logger *slog.Logger) (*Report, error) {
	m, err := DetectMode(dir)
	if err != nil {
		return nil, err
	}

	ch, err := loader.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Dir:          dir,
		Mode:         m,
		Dependencies: Analyze(ch, logger),
	}

	if chartmeta.FromChart(ch).IsLibrary() {
		report.Problems = append(report.Problems,
			fmt.Sprintf("chart %q is a library chart and renders nothing", ch.Name()))
	}

	if m == mode.Inline {
		chartsDir := filepath.Join(dir, chartbuilder.ChartsDir)

		exists, err := output.Exists(chartsDir)
		if err != nil {
			return nil, err
		}

		if exists {
			report.Problems = append(report.Problems,
				fmt.Sprintf("inline chart has a %s/ directory", chartbuilder.ChartsDir))
		}
	}

	if m == mode.Dependencies {
		inlined, err := output.Subdirs(filepath.Join(dir, chartbuilder.TemplatesDir))
		if err != nil {
			return nil, err
		}

		for _, name := range inlined {
			report.Problems = append(report.Problems,
				fmt.Sprintf("dependencies chart has inlined templates in %s/%s/", chartbuilder.TemplatesDir, name))
		}
	}

	for _, d := range report.Dependencies.Dependencies {
		switch d.Status {
		case StatusMissing:
			report.Problems = append(report.Problems,
				fmt.Sprintf("dependency %q is declared but not vendored", d.Name))
		case StatusVersionMismatch:
			report.Problems = append(report.Problems,
				fmt.Sprintf("dependency %q: vendored version %s does not satisfy %s", d.Name, d.Actual, d.Version))
		case StatusUndeclared:
			if m == mode.Dependencies {
				report.Problems = append(report.Problems,
					fmt.Sprintf("vendored chart %q is not declared", d.Name))
			}
		}
	}

	PrintSummary(report.Dependencies, logger)

	logger.Debug("verified chart",
		slog.String("dir", dir),
		slog.String("mode", m.String()),
		slog.Int("problems", len(report.Problems)),
	)

	return report, nil
}
