// Package mode resolves how sub-charts are composed into the umbrella chart.
package mode

import "os"

// Mode is the composition strategy for one synthesis run.
type Mode string

const (
	// Dependencies keeps every sub-chart as an independent chart under
	// charts/ and lists it in the umbrella's Chart.yaml dependencies.
	Dependencies Mode = "dependencies"
	// Inline copies every sub-chart's templates into templates/<name>/ of
	// the umbrella and records no dependencies.
	Inline Mode = "inline"

	// Default is used when neither the caller nor the environment picks a mode.
	Default = Dependencies
)

// EnvVar is the environment variable consulted when no explicit mode is given.
const EnvVar = "UMBRELLA_MODE"

// Source identifies which layer of the resolution chain decided the mode.
type Source string

const (
	// SourceExplicit means the caller passed a recognized mode.
	SourceExplicit Source = "explicit"
	// SourceEnvironment means the mode came from EnvVar.
	SourceEnvironment Source = "environment"
	// SourceDefault means neither layer held a recognized mode.
	SourceDefault Source = "default"
)

// LookupFunc reads one variable from an environment snapshot.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the real process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup returns a LookupFunc over a fixed map.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Parse returns the Mode named by s. Only the exact names are recognized.
func Parse(s string) (Mode, bool) {
	switch Mode(s) {
	case Dependencies, Inline:
		return Mode(s), true
	default:
		return "", false
	}
}

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	_, ok := Parse(string(m))
	return ok
}

func (m Mode) String() string { return string(m) }

// Resolve picks the mode from explicit, then from EnvVar in lookup, then
// Default. Unrecognized values at any layer are ignored, never reported.
// A nil lookup means an empty environment.
func Resolve(explicit string, lookup LookupFunc) (Mode, Source) {
	if m, ok := Parse(explicit); ok {
		return m, SourceExplicit
	}

	if lookup != nil {
		if v, found := lookup(EnvVar); found {
			if m, ok := Parse(v); ok {
				return m, SourceEnvironment
			}
		}
	}

	return Default, SourceDefault
}
