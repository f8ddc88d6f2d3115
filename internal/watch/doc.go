// Package watch re-renders a chart whenever files under its directory or
// any extra values file change. Bursts of events are coalesced by a
// Debouncer so an editor save triggers one render.
package watch
