// Package compute provides the row-sweep backends used by the per-cell
// updates in package physics.
//
// Every update in the engines reads only state that the current phase does
// not write, so a sweep can be split into row bands without changing the
// result:
//
//   - [Serial]: one band on the calling goroutine
//   - [CPUBackend]: one band per worker, joined with an errgroup
package compute
