// Package deps checks a synthesized umbrella chart against the sub-charts
// vendored next to it.
package deps

import (
	"log/slog"
	"sort"

	"github.com/Masterminds/semver/v3"
	"helm.sh/helm/v3/pkg/chart"
)

// Status represents the state of a dependency.
type Status string

const (
	// StatusOK means the dependency is vendored in charts/.
	StatusOK Status = "ok"
	// StatusMissing means the dependency is declared but not vendored.
	StatusMissing Status = "missing"
	// StatusVersionMismatch means the vendored version doesn't satisfy the
	// declared one.
	StatusVersionMismatch Status = "version-mismatch"
	// StatusUndeclared means a chart is vendored but not declared.
	StatusUndeclared Status = "undeclared"
)

// DependencyInfo describes a chart dependency and its resolution status.
type DependencyInfo struct {
	Name       string
	Version    string
	Repository string
	Status     Status
	Actual     string // Actual version found (if vendored).
}

// Result contains the outcome of dependency analysis.
type Result struct {
	Dependencies []DependencyInfo
	AllResolved  bool
}

// Analyze inspects a chart's declared dependencies against what is vendored
// in the charts/ directory. Declared entries come first in declaration
// order, followed by undeclared vendored charts sorted by name.
func Analyze(ch *chart.Chart, logger *slog.Logger) *Result {
	result := &Result{AllResolved: true}

	vendored := make(map[string]*chart.Chart, len(ch.Dependencies()))
	for _, sub := range ch.Dependencies() {
		if sub.Metadata != nil {
			vendored[sub.Metadata.Name] = sub
		}
	}

	declared := make(map[string]bool)

	if ch.Metadata != nil {
		for _, dep := range ch.Metadata.Dependencies {
			declared[dep.Name] = true
			result.add(checkDeclared(dep, vendored[dep.Name], logger))
		}
	}

	var stray []string

	for name := range vendored {
		if !declared[name] {
			stray = append(stray, name)
		}
	}

	sort.Strings(stray)

	for _, name := range stray {
		logger.Warn("vendored subchart is not declared", slog.String("dependency", name))
		result.add(DependencyInfo{
			Name:   name,
			Actual: vendored[name].Metadata.Version,
			Status: StatusUndeclared,
		})
	}

	return result
}

func (r *Result) add(info DependencyInfo) {
	if info.Status != StatusOK {
		r.AllResolved = false
	}

	r.Dependencies = append(r.Dependencies, info)
}

func checkDeclared(dep *chart.Dependency, sub *chart.Chart, logger *slog.Logger) DependencyInfo {
	info := DependencyInfo{
		Name:       dep.Name,
		Version:    dep.Version,
		Repository: dep.Repository,
	}

	if sub == nil {
		info.Status = StatusMissing

		logger.Warn("subchart dependency not vendored",
			slog.String("dependency", dep.Name),
			slog.String("version", dep.Version),
			slog.String("repository", dep.Repository),
		)

		return info
	}

	info.Actual = sub.Metadata.Version

	if dep.Version != "" && !versionSatisfied(dep.Version, sub.Metadata.Version) {
		info.Status = StatusVersionMismatch

		logger.Warn("subchart version mismatch",
			slog.String("dependency", dep.Name),
			slog.String("expected", dep.Version),
			slog.String("actual", sub.Metadata.Version),
		)

		return info
	}

	info.Status = StatusOK

	return info
}

// versionSatisfied checks if actual version satisfies the declared constraint
// using the Masterminds/semver library (the same one used by Helm itself).
func versionSatisfied(constraint, actual string) bool {
	if constraint == actual {
		return true
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}

	v, err := semver.NewVersion(actual)
	if err != nil {
		return false
	}

	return c.Check(v)
}

// Names returns the names of dependencies with the given status.
func Names(result *Result, status Status) []string {
	var names []string

	for _, d := range result.Dependencies {
		if d.Status == status {
			names = append(names, d.Name)
		}
	}

	return names
}

// PrintSummary writes a dependency resolution summary to the logger.
func PrintSummary(result *Result, logger *slog.Logger) {
	for _, d := range result.Dependencies {
		switch d.Status {
		case StatusOK:
			logger.Info("dependency resolved",
				slog.String("name", d.Name),
				slog.String("version", d.Actual),
			)
		case StatusMissing:
			logger.Error("dependency missing",
				slog.String("name", d.Name),
				slog.String("version", d.Version),
				slog.String("repository", d.Repository),
			)
		case StatusVersionMismatch:
			logger.Warn("dependency version mismatch",
				slog.String("name", d.Name),
				slog.String("expected", d.Version),
				slog.String("actual", d.Actual),
			)
		case StatusUndeclared:
			logger.Warn("dependency not declared",
				slog.String("name", d.Name),
				slog.String("version", d.Actual),
			)
		}
	}
}
