package umbrella

import (
	"log/slog"
	"path/filepath"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/values"
)

// writeManifests persists the umbrella's Chart.yaml and values.yaml,
// replacing whatever a previous run wrote.
func writeManifests(outDir string, chartDoc, valuesDoc *values.Document, logger *slog.Logger) error {
	chartPath := filepath.Join(outDir, chartbuilder.ChartFile)
	if err := values.Write(chartPath, chartDoc); err != nil {
		return err
	}

	valuesPath := filepath.Join(outDir, chartbuilder.ValuesFile)
	if err := values.Write(valuesPath, valuesDoc); err != nil {
		return err
	}

	logger.Info("wrote umbrella manifests",
		slog.String("chart", chartPath),
		slog.String("values", valuesPath),
	)

	return nil
}
