package config

import "sort"

func ripple(mod func(*RippleConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Effect = "ripple"
	mod(&cfg.Ripple)
	return cfg
}

func swarm(mod func(*SwarmConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Effect = "swarm"
	mod(&cfg.Swarm)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"ripple": {
		"pond": ripple(func(r *RippleConfig) {
			r.RainInterval = DefaultRainInterval
		}),
		"syrup": ripple(func(r *RippleConfig) {
			r.DampingShift = 3
			r.RainInterval = 60
		}),
		"storm": ripple(func(r *RippleConfig) {
			r.DampingShift = 7
			r.Radius = 2
			r.RainInterval = 4
		}),
		"still": ripple(func(r *RippleConfig) {
			r.RainInterval = 0
		}),
	},
	"swarm": {
		"default": swarm(func(s *SwarmConfig) {
			s.Width, s.Height = DefaultSwarmWidth, DefaultSwarmHeight
		}),
		"dense": swarm(func(s *SwarmConfig) {
			s.Particles = 20000
			s.Blend = 0.08
		}),
		"coarse": swarm(func(s *SwarmConfig) {
			s.CellSize = 20
			s.PenRadius = 80
		}),
		"viscous": swarm(func(s *SwarmConfig) {
			s.Damping = 0.95
			s.ParticleDamping = 0.3
		}),
		"small": swarm(func(s *SwarmConfig) {
			s.Width, s.Height = 300, 200
			s.Particles = 1000
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(effect, preset string) *Config {
	effectPresets, ok := Presets[effect]
	if !ok {
		return nil
	}
	cfg, ok := effectPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(effect string) []string {
	effectPresets, ok := Presets[effect]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(effectPresets))
	for name := range effectPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
