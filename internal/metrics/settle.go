package metrics

import "github.com/san-kum/ripplesim/internal/sim"

// Settle measures how many frames the engine needs to fall to threshold
// after the last accepted disturbance. Its value is -1 while the engine is
// still above threshold.
type Settle struct {
	name      string
	threshold float64
	lastInput int
	settledAt int
}

func NewSettle(threshold float64) *Settle {
	s := &Settle{name: "settle_frames", threshold: threshold}
	s.Reset()
	return s
}

func (s *Settle) Name() string { return s.name }

func (s *Settle) Observe(f sim.Frame) {
	if f.Injected > 0 {
		s.lastInput = f.Index
		s.settledAt = -1
	}
	if s.settledAt < 0 && f.Energy <= s.threshold {
		s.settledAt = f.Index
	}
}

func (s *Settle) Value() float64 {
	if s.settledAt < 0 {
		return -1
	}
	return float64(s.settledAt - s.lastInput)
}

func (s *Settle) Reset() {
	s.lastInput = 0
	s.settledAt = -1
}
