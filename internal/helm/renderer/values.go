package renderer

import (
	"fmt"

	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/strvals"
)

// Overrides are user-supplied values layered over the chart defaults:
// value files first (last wins), then --set expressions.
type Overrides struct {
	ValueFiles []string
	Values     []string
}

// Build merges the overrides into one values map. Chart defaults are
// coalesced later by the engine.
func (o Overrides) Build() (map[string]interface{}, error) {
	base := map[string]interface{}{}

	for _, f := range o.ValueFiles {
		fileVals, err := chartutil.ReadValuesFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading values file %q: %w", f, err)
		}

		base = chartutil.CoalesceTables(fileVals.AsMap(), base)
	}

	for _, v := range o.Values {
		if err := strvals.ParseInto(v, base); err != nil {
			return nil, fmt.Errorf("parsing --set %q: %w", v, err)
		}
	}

	return base, nil
}
