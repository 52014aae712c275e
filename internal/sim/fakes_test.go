package sim_test

import (
	"errors"
	"sync"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/sim"
)

type call struct {
	op string
	d  dynamo.Disturbance
}

// recorder logs every engine call in order.
type recorder struct {
	mu      sync.Mutex
	calls   []call
	energy  float64
	reject  func(dynamo.Disturbance) bool
	stepErr error
}

func (r *recorder) Inject(d dynamo.Disturbance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject != nil && r.reject(d) {
		return &dynamo.BoundsError{Op: "disturb", X: d.Point.X, Y: d.Point.Y, Width: 10, Height: 10}
	}
	r.calls = append(r.calls, call{op: "inject", d: d})
	r.energy += d.Point.X
	return nil
}

func (r *recorder) Step(dt float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stepErr != nil {
		return r.stepErr
	}
	r.calls = append(r.calls, call{op: "step"})
	r.energy /= 2
	return nil
}

func (r *recorder) Lift() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "lift"})
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.energy = 0
}

func (r *recorder) Energy() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.energy
}

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.op
	}
	return out
}

func (r *recorder) injected() []dynamo.Disturbance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dynamo.Disturbance
	for _, c := range r.calls {
		if c.op == "inject" {
			out = append(out, c.d)
		}
	}
	return out
}

var errBoom = errors.New("boom")

type scripted map[int][]dynamo.Disturbance

func (s scripted) Disturbances(frame int) []dynamo.Disturbance { return s[frame] }

type counter struct {
	name   string
	frames int
}

func (c *counter) Name() string        { return c.name }
func (c *counter) Observe(f sim.Frame) { c.frames++ }
func (c *counter) Value() float64      { return float64(c.frames) }
func (c *counter) Reset()              { c.frames = 0 }
