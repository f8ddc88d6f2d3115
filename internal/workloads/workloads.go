// Package workloads wires the concrete sub-charts into the registry the
// umbrella chart is composed from.
package workloads

import (
	"github.com/KenkoGeek/timonel-examples/internal/registry"
	"github.com/KenkoGeek/timonel-examples/internal/workloads/cache"
	"github.com/KenkoGeek/timonel-examples/internal/workloads/frontend"
)

// Registry returns the sub-charts in composition order.
func Registry() *registry.Registry {
	r, err := registry.New(
		registry.Entry{Name: frontend.Name, New: func() registry.Package { return frontend.New() }},
		registry.Entry{Name: cache.Name, New: func() registry.Package { return cache.New() }},
	)
	if err != nil {
		// Static names; only a programming error gets here.
		panic(err)
	}

	return r
}
