package effect

import (
	"iter"
	"math/rand"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/physics"
)

// Swarm drives a Grid and the particles advected through it.
//
// A disturbance without velocity takes its velocity from the previous
// pointer position of the same stroke; the first point of a stroke only
// puts the pen down. Lift ends the stroke.
type Swarm struct {
	grid      *physics.Grid
	particles *physics.Advector
	penRadius float64

	last   dynamo.Vec2
	penned bool
}

func NewSwarm(cfg config.SwarmConfig, backend compute.Backend, rng *rand.Rand) (*Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := physics.NewGrid(cfg.Cols(), cfg.Rows(), cfg.CellSize, cfg.Damping)
	if err != nil {
		return nil, err
	}
	if backend != nil {
		grid.SetBackend(backend)
	}
	adv, err := physics.NewAdvector(cfg.Particles, grid.Width(), grid.Height(), rng)
	if err != nil {
		return nil, err
	}
	adv.Blend = cfg.Blend
	adv.Damping = cfg.ParticleDamping

	return &Swarm{grid: grid, particles: adv, penRadius: cfg.PenRadius}, nil
}

func (s *Swarm) Name() string                { return "swarm" }
func (s *Swarm) Grid() *physics.Grid         { return s.grid }
func (s *Swarm) Advector() *physics.Advector { return s.particles }
func (s *Swarm) Width() float64              { return s.grid.Width() }
func (s *Swarm) Height() float64             { return s.grid.Height() }
func (s *Swarm) Energy() float64             { return s.grid.KineticEnergy() }
func (s *Swarm) PenDown() bool               { return s.penned }

func (s *Swarm) Particles() iter.Seq2[int, physics.Particle] { return s.particles.Particles() }

func (s *Swarm) Segments(rng *rand.Rand) iter.Seq[physics.Segment] {
	return s.particles.Segments(rng)
}

// Lift ends the current stroke.
func (s *Swarm) Lift() { s.penned = false }

func (s *Swarm) Inject(d dynamo.Disturbance) error {
	if !d.Point.IsValid() || (d.HasVelocity && !d.Velocity.IsValid()) {
		return dynamo.ErrInvalidInput
	}
	p := clampPoint(d.Point, s.Width(), s.Height())

	v := d.Velocity
	if !d.HasVelocity {
		if !s.penned {
			s.last, s.penned = p, true
			return nil
		}
		v = p.Sub(s.last)
	}
	s.last, s.penned = p, true

	return s.grid.ApplyDisturbance(p, v, s.penRadius)
}

// Step relaxes the grid, then moves the particles through the new
// velocities.
func (s *Swarm) Step(dt float64) error {
	s.grid.Step()
	s.particles.Advect(s.grid, dt)
	return nil
}

func (s *Swarm) Reset() {
	s.grid.Reset()
	s.particles.Reset()
	s.penned = false
}
