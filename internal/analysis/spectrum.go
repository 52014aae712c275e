package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrTooShort = errors.New("analysis: series too short")

// PowerSpectrum returns |X_k| for k in [0, n/2) of the series with its
// mean removed, so bin 0 carries no offset.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	mean := stat.Mean(series, nil)
	centred := make([]float64, len(series))
	for i, v := range series {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// Peak is one spectral line.
type Peak struct {
	Bin       int
	Frequency float64 // cycles per frame
	Period    float64 // frames
	Power     float64
}

// Dominant finds the strongest bin above zero.
func Dominant(series []float64) (Peak, error) {
	ps := PowerSpectrum(series)
	if len(ps) < 2 {
		return Peak{}, ErrTooShort
	}
	bin := floats.MaxIdx(ps[1:]) + 1
	freq := float64(bin) / float64(len(series))
	return Peak{Bin: bin, Frequency: freq, Period: 1 / freq, Power: ps[bin]}, nil
}

// Decay describes an exponential ring-down E(t) = E0 * Factor^t.
type Decay struct {
	Factor   float64 // per frame
	HalfLife float64 // frames, +Inf when the energy does not fall
	Samples  int
}

// RingDown fits ln(energy) against frame from start onward. Frames with no
// energy end the fit, since a settled field carries no more information.
func RingDown(energy []float64, start int) (Decay, error) {
	if start < 0 {
		start = 0
	}
	var xs, ys []float64
	for i := start; i < len(energy); i++ {
		if energy[i] <= 0 {
			break
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Log(energy[i]))
	}
	if len(xs) < 3 {
		return Decay{}, ErrTooShort
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	d := Decay{Factor: math.Exp(slope), HalfLife: math.Inf(1), Samples: len(xs)}
	if slope < 0 {
		d.HalfLife = -math.Ln2 / slope
	}
	return d, nil
}
