package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ripplesim/internal/sim"
)

// Energy records the per-frame engine energy. Its value is the mean over
// the observed frames.
type Energy struct {
	name    string
	history []float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	e.history = append(e.history, f.Energy)
}

func (e *Energy) Value() float64 {
	if len(e.history) == 0 {
		return 0
	}
	return floats.Sum(e.history) / float64(len(e.history))
}

// Peak is the largest energy seen.
func (e *Energy) Peak() float64 {
	if len(e.history) == 0 {
		return 0
	}
	return floats.Max(e.history)
}

// History returns a copy of the recorded energies.
func (e *Energy) History() []float64 {
	out := make([]float64, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Energy) Reset() {
	e.history = e.history[:0]
}

// Summary holds the usual statistics of an energy series.
type Summary struct {
	Mean, Peak, Final float64
	PeakFrame         int
}

// Summarize computes a Summary; an empty series gives the zero value.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	return Summary{
		Mean:      floats.Sum(series) / float64(len(series)),
		Peak:      floats.Max(series),
		Final:     series[len(series)-1],
		PeakFrame: floats.MaxIdx(series),
	}
}
