package deps

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"helm.sh/helm/v3/pkg/chart"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func umbrellaChart(deps ...*chart.Dependency) *chart.Chart {
	return &chart.Chart{
		Metadata: &chart.Metadata{
			Name:         "platform",
			Version:      "0.1.0",
			Dependencies: deps,
		},
	}
}

func vendor(ch *chart.Chart, name, version string) {
	ch.AddDependency(&chart.Chart{
		Metadata: &chart.Metadata{Name: name, Version: version},
	})
}

func TestAnalyze_NoDependencies(t *testing.T) {
	logger, _ := testLogger()

	result := Analyze(umbrellaChart(), logger)
	assert.True(t, result.AllResolved)
	assert.Empty(t, result.Dependencies)
}

func TestAnalyze_AllVendored(t *testing.T) {
	logger, _ := testLogger()
	ch := umbrellaChart(&chart.Dependency{Name: "frontend", Version: "0.2.0", Repository: "file://./charts/frontend"})
	vendor(ch, "frontend", "0.2.0")

	result := Analyze(ch, logger)
	assert.True(t, result.AllResolved)
	assert.Len(t, result.Dependencies, 1)
	assert.Equal(t, StatusOK, result.Dependencies[0].Status)
	assert.Equal(t, "0.2.0", result.Dependencies[0].Actual)
}

func TestAnalyze_MissingDependency(t *testing.T) {
	logger, logBuf := testLogger()
	ch := umbrellaChart(&chart.Dependency{Name: "cache", Version: "0.1.0", Repository: "file://./charts/cache"})

	result := Analyze(ch, logger)
	assert.False(t, result.AllResolved)
	assert.Len(t, result.Dependencies, 1)
	assert.Equal(t, StatusMissing, result.Dependencies[0].Status)
	assert.Contains(t, logBuf.String(), "subchart dependency not vendored")
}

func TestAnalyze_VersionMismatch(t *testing.T) {
	logger, logBuf := testLogger()
	ch := umbrellaChart(&chart.Dependency{Name: "frontend", Version: "0.2.0"})
	vendor(ch, "frontend", "0.1.9")

	result := Analyze(ch, logger)
	assert.False(t, result.AllResolved)
	assert.Equal(t, StatusVersionMismatch, result.Dependencies[0].Status)
	assert.Equal(t, "0.1.9", result.Dependencies[0].Actual)
	assert.Contains(t, logBuf.String(), "subchart version mismatch")
}

func TestAnalyze_ConstraintSatisfied(t *testing.T) {
	logger, _ := testLogger()
	ch := umbrellaChart(&chart.Dependency{Name: "frontend", Version: "~0.2.0"})
	vendor(ch, "frontend", "0.2.4")

	result := Analyze(ch, logger)
	assert.True(t, result.AllResolved)
}

func TestAnalyze_Undeclared(t *testing.T) {
	logger, logBuf := testLogger()
	ch := umbrellaChart(&chart.Dependency{Name: "frontend", Version: "0.2.0"})
	vendor(ch, "frontend", "0.2.0")
	vendor(ch, "zeta", "1.0.0")
	vendor(ch, "legacy", "1.0.0")

	result := Analyze(ch, logger)
	assert.False(t, result.AllResolved)
	assert.Equal(t, []string{"legacy", "zeta"}, Names(result, StatusUndeclared))
	assert.Contains(t, logBuf.String(), "vendored subchart is not declared")
}

func TestAnalyze_PreservesDeclarationOrder(t *testing.T) {
	logger, _ := testLogger()
	ch := umbrellaChart(
		&chart.Dependency{Name: "frontend", Version: "0.2.0"},
		&chart.Dependency{Name: "cache", Version: "0.1.0"},
		&chart.Dependency{Name: "api", Version: "1.0.0"},
	)
	vendor(ch, "frontend", "0.2.0")
	vendor(ch, "api", "1.0.0")

	result := Analyze(ch, logger)
	assert.False(t, result.AllResolved)
	assert.Len(t, result.Dependencies, 3)
	assert.Equal(t, StatusOK, result.Dependencies[0].Status)
	assert.Equal(t, StatusMissing, result.Dependencies[1].Status)
	assert.Equal(t, StatusOK, result.Dependencies[2].Status)
}

func TestNames(t *testing.T) {
	result := &Result{
		Dependencies: []DependencyInfo{
			{Name: "a", Status: StatusOK},
			{Name: "b", Status: StatusMissing},
			{Name: "c", Status: StatusOK},
			{Name: "d", Status: StatusMissing},
		},
	}
	assert.Equal(t, []string{"b", "d"}, Names(result, StatusMissing))
	assert.Empty(t, Names(result, StatusUndeclared))
}

func TestVersionSatisfied(t *testing.T) {
	tests := []struct {
		constraint string
		actual     string
		expected   bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.0.0", "1.0.1", false},
		{"1.x", "1.2.3", true},
		{"1.x", "2.0.0", false},
		{"~1.2.0", "1.2.9", true},
		{"~1.2.0", "1.3.0", false},
		{"^1.0.0", "1.9.9", true},
		{"^1.0.0", "2.0.0", false},
		{">=1.0.0 <2.0.0", "1.5.0", true},
		{">=1.0.0 <2.0.0", "2.0.0", false},
		{"1.0.0 || 2.0.0", "2.0.0", true},
		{"2.0.0", "not-semver", false},
		{"not-constraint", "1.0.0", false},
	}
	for _, tc := range tests {
		t.Run(tc.constraint+"_"+tc.actual, func(t *testing.T) {
			assert.Equal(t, tc.expected, versionSatisfied(tc.constraint, tc.actual))
		})
	}
}

func TestPrintSummary(t *testing.T) {
	logger, logBuf := testLogger()
	result := &Result{
		Dependencies: []DependencyInfo{
			{Name: "frontend", Status: StatusOK, Actual: "0.2.0"},
			{Name: "cache", Status: StatusMissing, Version: "0.1.0", Repository: "file://./charts/cache"},
			{Name: "api", Status: StatusVersionMismatch, Version: "2.0.0", Actual: "1.9.0"},
			{Name: "old", Status: StatusUndeclared, Actual: "1.0.0"},
		},
	}

	PrintSummary(result, logger)
	output := logBuf.String()
	assert.Contains(t, output, "dependency resolved")
	assert.Contains(t, output, "dependency missing")
	assert.Contains(t, output, "dependency version mismatch")
	assert.Contains(t, output, "dependency not declared")
}
