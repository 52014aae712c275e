package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/physics"
)

const (
	DefaultEffect       = "swarm"
	DefaultSeed         = 1
	DefaultFrames       = 600
	DefaultDt           = 1.0
	DefaultRippleWidth  = 400
	DefaultRippleHeight = 400
	DefaultRainInterval = 23
	DefaultSwarmWidth   = 900
	DefaultSwarmHeight  = 600
)

type Config struct {
	Effect  string       `yaml:"effect"`
	Seed    int64        `yaml:"seed"`
	Frames  int          `yaml:"frames"`
	Dt      float64      `yaml:"dt"`
	Workers int          `yaml:"workers"`
	Ripple  RippleConfig `yaml:"ripple"`
	Swarm   SwarmConfig  `yaml:"swarm"`
}

type RippleConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	DampingShift uint   `yaml:"damping_shift"`
	Radius       int    `yaml:"radius"`
	Magnitude    int32  `yaml:"magnitude"`
	Texture      string `yaml:"texture"`
	RainInterval int    `yaml:"rain_interval"`
}

type SwarmConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	CellSize        float64 `yaml:"cell_size"`
	Particles       int     `yaml:"particles"`
	PenRadius       float64 `yaml:"pen_radius"`
	Damping         float64 `yaml:"damping"`
	Blend           float64 `yaml:"blend"`
	ParticleDamping float64 `yaml:"particle_damping"`
}

func DefaultConfig() *Config {
	return &Config{
		Effect: DefaultEffect,
		Seed:   DefaultSeed,
		Frames: DefaultFrames,
		Dt:     DefaultDt,
		Ripple: RippleConfig{
			Width:        DefaultRippleWidth,
			Height:       DefaultRippleHeight,
			DampingShift: physics.DefaultDampingShift,
			Radius:       physics.DefaultRippleRadius,
			Magnitude:    physics.DefaultRippleHeight,
			RainInterval: DefaultRainInterval,
		},
		Swarm: SwarmConfig{
			Width:           DefaultSwarmWidth,
			Height:          DefaultSwarmHeight,
			CellSize:        physics.DefaultCellSize,
			Particles:       physics.DefaultParticleCount,
			PenRadius:       physics.DefaultPenRadius,
			Damping:         physics.DefaultGridDamping,
			Blend:           physics.DefaultBlendRate,
			ParticleDamping: physics.DefaultParticleDamping,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; presets are shared and must not be mutated.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks the fields of the selected effect plus the shared ones.
func (c *Config) Validate() error {
	if c.Frames < 0 {
		return dynamo.Invalid("frames", "must not be negative, got %d", c.Frames)
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return dynamo.Invalid("dt", "must be positive, got %g", c.Dt)
	}
	switch c.Effect {
	case "ripple":
		return c.Ripple.Validate()
	case "swarm":
		return c.Swarm.Validate()
	default:
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownEffect, c.Effect)
	}
}

func (r RippleConfig) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return dynamo.Invalid("ripple.width", "canvas must be positive, got %dx%d", r.Width, r.Height)
	}
	if r.DampingShift < 1 || r.DampingShift > 16 {
		return dynamo.Invalid("ripple.damping_shift", "must be in [1, 16], got %d", r.DampingShift)
	}
	if r.Radius <= 0 {
		return dynamo.Invalid("ripple.radius", "must be positive, got %d", r.Radius)
	}
	if r.RainInterval < 0 {
		return dynamo.Invalid("ripple.rain_interval", "must not be negative, got %d", r.RainInterval)
	}
	return nil
}

func (s SwarmConfig) Validate() error {
	if !(s.CellSize > 0) {
		return dynamo.Invalid("swarm.cell_size", "must be positive, got %g", s.CellSize)
	}
	if !(s.Width > 0) || !(s.Height > 0) {
		return dynamo.Invalid("swarm.width", "canvas must be positive, got %gx%g", s.Width, s.Height)
	}
	if math.Mod(s.Width, s.CellSize) != 0 || math.Mod(s.Height, s.CellSize) != 0 {
		return dynamo.Invalid("swarm.cell_size", "%g does not divide canvas %gx%g", s.CellSize, s.Width, s.Height)
	}
	if s.Particles <= 0 {
		return dynamo.Invalid("swarm.particles", "must be positive, got %d", s.Particles)
	}
	if !(s.PenRadius > 0) || math.IsInf(s.PenRadius, 1) {
		return dynamo.Invalid("swarm.pen_radius", "must be positive and finite, got %g", s.PenRadius)
	}
	// ranges are written so NaN fails them
	if !(s.Damping >= physics.MinGridDamping && s.Damping <= physics.MaxGridDamping) {
		return dynamo.Invalid("swarm.damping", "must be in [%g, %g], got %g", physics.MinGridDamping, physics.MaxGridDamping, s.Damping)
	}
	if !(s.Blend >= 0 && s.Blend <= 1) {
		return dynamo.Invalid("swarm.blend", "must be in [0, 1], got %g", s.Blend)
	}
	if !(s.ParticleDamping >= 0 && s.ParticleDamping <= 1) {
		return dynamo.Invalid("swarm.particle_damping", "must be in [0, 1], got %g", s.ParticleDamping)
	}
	return nil
}

// Cols and Rows give the grid dimensions of a validated swarm config.
func (s SwarmConfig) Cols() int { return int(s.Width / s.CellSize) }
func (s SwarmConfig) Rows() int { return int(s.Height / s.CellSize) }
