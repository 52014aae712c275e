// Package physics provides the simulation engines behind the effects.
//
//   - [WaveField]: integer ripple field sampled as a displaced texture
//   - [Grid]: toroidal pressure/velocity relaxation lattice
//   - [Advector]: fixed particle population carried through a [Grid]
//
// Engines own their storage and are stepped by one goroutine. Per-cell
// sweeps go through a [compute.Backend]; the parallel backend gives results
// identical to the serial one.
//
// # Frame Order
//
// A swarm frame applies the disturbance, relaxes the grid, then advects:
//
//	_ = grid.ApplyDisturbance(p, v, physics.DefaultPenRadius)
//	grid.Step()
//	adv.Advect(grid, 1)
package physics
