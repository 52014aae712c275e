package physics

import (
	"iter"
	"math"
	"math/rand"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

const (
	DefaultParticleCount   = 5000
	DefaultBlendRate       = 0.05
	DefaultParticleDamping = 0.5

	shimmerJitter = 0.5
)

// Particle is a massless tracer. PX, PY hold the position before the last
// Advect and give the trail its start.
type Particle struct {
	X, Y   float64
	PX, PY float64
	VX, VY float64
}

// Segment is one trail stroke from (X0, Y0) to (X1, Y1).
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// Weights are the blend weights of the three velocity samples around a
// particle. The containing cell stands in for the missing fourth corner.
type Weights struct {
	SelfX, SelfY float64
	Right, Down  float64
}

// BlendWeights returns the weights for fractional cell offsets ax, ay.
func BlendWeights(ax, ay float64) Weights {
	return Weights{SelfX: 1 - ax, SelfY: 1 - ay, Right: ax, Down: ay}
}

// TotalX is the summed weight on the x component: 1 + ay.
func (w Weights) TotalX() float64 { return w.SelfX + w.Right + w.Down }

// TotalY is the summed weight on the y component: 1 + ax.
func (w Weights) TotalY() float64 { return w.SelfY + w.Right + w.Down }

// Advector moves a fixed population of particles through a Grid.
type Advector struct {
	Blend   float64
	Damping float64

	width, height float64
	particles     []Particle
	rng           *rand.Rand
}

func NewAdvector(count int, width, height float64, rng *rand.Rand) (*Advector, error) {
	if count <= 0 {
		return nil, dynamo.Invalid("particles", "must be positive, got %d", count)
	}
	if !finite(width, height) || width <= 0 || height <= 0 {
		return nil, dynamo.Invalid("bounds", "must be positive, got %gx%g", width, height)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	a := &Advector{
		Blend:     DefaultBlendRate,
		Damping:   DefaultParticleDamping,
		width:     width,
		height:    height,
		particles: make([]Particle, count),
		rng:       rng,
	}
	for i := range a.particles {
		a.respawn(&a.particles[i])
	}
	return a, nil
}

func (a *Advector) Len() int { return len(a.particles) }

func (a *Advector) respawn(p *Particle) {
	p.X = a.rng.Float64() * a.width
	p.Y = a.rng.Float64() * a.height
	p.PX, p.PY = p.X, p.Y
	p.VX, p.VY = 0, 0
}

// Advect moves every particle one frame through g. Particles outside the
// grid are respawned at a random position with zero velocity.
func (a *Advector) Advect(g *Grid, dt float64) {
	cs := g.CellSize()
	for i := range a.particles {
		p := &a.particles[i]
		if !g.Contains(p.X, p.Y) {
			a.respawn(p)
			continue
		}
		p.PX, p.PY = p.X, p.Y

		col := min(int(p.X/cs), g.Cols()-1)
		row := min(int(p.Y/cs), g.Rows()-1)
		ci := g.index(col, row)
		c := &g.cells[ci]
		right, down := g.at(ci, Right), g.at(ci, Down)

		w := BlendWeights(math.Mod(p.X, cs)/cs, math.Mod(p.Y, cs)/cs)
		p.VX += (w.SelfX*c.VX + w.Right*right.VX + w.Down*down.VX) * a.Blend
		p.VY += (w.SelfY*c.VY + w.Right*right.VY + w.Down*down.VY) * a.Blend

		p.X += p.VX * dt
		p.Y += p.VY * dt

		p.VX *= a.Damping
		p.VY *= a.Damping
	}
}

// Particle returns a copy of particle i.
func (a *Advector) Particle(i int) (Particle, error) {
	if i < 0 || i >= len(a.particles) {
		return Particle{}, &dynamo.BoundsError{Op: "particle", X: float64(i), Width: float64(len(a.particles)), Height: 1}
	}
	return a.particles[i], nil
}

// Place moves particle i to (x, y) and sets its velocity. It is meant for
// seeding scenarios and tests; no bounds check is made on the position.
func (a *Advector) Place(i int, p Particle) error {
	if i < 0 || i >= len(a.particles) {
		return &dynamo.BoundsError{Op: "place", X: float64(i), Width: float64(len(a.particles)), Height: 1}
	}
	a.particles[i] = p
	return nil
}

// Particles iterates over copies of the particles.
func (a *Advector) Particles() iter.Seq2[int, Particle] {
	return func(yield func(int, Particle) bool) {
		for i, p := range a.particles {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Segments yields one trail stroke per particle. A particle that moved less
// than a random jitter in [0, 0.5) yields a tiny diagonal stroke at its
// position instead, so resting particles shimmer. rng belongs to the
// renderer; particles are not modified.
func (a *Advector) Segments(rng *rand.Rand) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, p := range a.particles {
			limit := rng.Float64() * shimmerJitter
			s := Segment{X0: p.X, Y0: p.Y, X1: p.PX, Y1: p.PY}
			if math.Hypot(p.PX-p.X, p.PY-p.Y) <= limit {
				s.X1, s.Y1 = p.X+limit, p.Y+limit
			}
			if !yield(s) {
				return
			}
		}
	}
}

// MeanSpeed is the average particle speed.
func (a *Advector) MeanSpeed() float64 {
	total := 0.0
	for _, p := range a.particles {
		total += math.Hypot(p.VX, p.VY)
	}
	return total / float64(len(a.particles))
}

func (a *Advector) Reset() {
	for i := range a.particles {
		a.respawn(&a.particles[i])
	}
}
