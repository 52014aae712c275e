// Package analysis characterises the energy series of a finished run.
//
//   - [PowerSpectrum]: magnitude spectrum of the mean-removed series
//   - [Dominant]: strongest non-zero frequency bin
//   - [RingDown]: exponential decay rate after the last disturbance
//
// A ripple released once and left alone rings down at a rate set by its
// damping shift:
//
//	rd, err := analysis.RingDown(energy, lastInput)
//	if err == nil {
//	    fmt.Printf("energy halves every %.1f frames\n", rd.HalfLife)
//	}
package analysis
