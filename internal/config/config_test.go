package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Effect != "swarm" {
		t.Errorf("expected effect swarm, got %s", cfg.Effect)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Swarm.Damping != 0.98 {
		t.Errorf("expected grid damping 0.98, got %g", cfg.Swarm.Damping)
	}
	if cfg.Ripple.DampingShift != 5 || cfg.Ripple.Magnitude != 512 {
		t.Errorf("unexpected ripple defaults %+v", cfg.Ripple)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Swarm.Cols() != 90 || cfg.Swarm.Rows() != 60 {
		t.Errorf("expected 90x60 grid, got %dx%d", cfg.Swarm.Cols(), cfg.Swarm.Rows())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, "dt"},
		{"negative frames", func(c *Config) { c.Frames = -1 }, "frames"},
		{"cell size does not divide", func(c *Config) { c.Swarm.CellSize = 7 }, "swarm.cell_size"},
		{"zero cell size", func(c *Config) { c.Swarm.CellSize = 0 }, "swarm.cell_size"},
		{"no particles", func(c *Config) { c.Swarm.Particles = 0 }, "swarm.particles"},
		{"damping too low", func(c *Config) { c.Swarm.Damping = 0.5 }, "swarm.damping"},
		{"damping too high", func(c *Config) { c.Swarm.Damping = 1 }, "swarm.damping"},
		{"zero pen", func(c *Config) { c.Swarm.PenRadius = 0 }, "swarm.pen_radius"},
		{"blend above one", func(c *Config) { c.Swarm.Blend = 2 }, "swarm.blend"},
		{"blend NaN", func(c *Config) { c.Swarm.Blend = math.NaN() }, "swarm.blend"},
		{"particle damping NaN", func(c *Config) { c.Swarm.ParticleDamping = math.NaN() }, "swarm.particle_damping"},
		{"damping NaN", func(c *Config) { c.Swarm.Damping = math.NaN() }, "swarm.damping"},
		{"infinite pen", func(c *Config) { c.Swarm.PenRadius = math.Inf(1) }, "swarm.pen_radius"},
		{"ripple shift", func(c *Config) { c.Effect = "ripple"; c.Ripple.DampingShift = 0 }, "ripple.damping_shift"},
		{"ripple width", func(c *Config) { c.Effect = "ripple"; c.Ripple.Width = 0 }, "ripple.width"},
		{"ripple radius", func(c *Config) { c.Effect = "ripple"; c.Ripple.Radius = -1 }, "ripple.radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			err := cfg.Validate()

			var cerr *dynamo.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Error("expected ErrInvalidConfig in chain")
			}
		})
	}
}

func TestValidateUnknownEffect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Effect = "smoke"
	if err := cfg.Validate(); !errors.Is(err, dynamo.ErrUnknownEffect) {
		t.Errorf("expected ErrUnknownEffect, got %v", err)
	}
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "effect: ripple\nframes: 50\nripple:\n  width: 64\n  damping_shift: 4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Effect != "ripple" || cfg.Frames != 50 {
		t.Errorf("unexpected top level %+v", cfg)
	}
	if cfg.Ripple.Width != 64 || cfg.Ripple.DampingShift != 4 {
		t.Errorf("unexpected ripple %+v", cfg.Ripple)
	}
	if cfg.Ripple.Height != DefaultRippleHeight || cfg.Ripple.Radius != 3 {
		t.Errorf("unset fields should keep defaults, got %+v", cfg.Ripple)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("swarm:\n  cell_size: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.yaml")
	if err := os.WriteFile(path, []byte("swarm:\n  blend: .nan\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ce *dynamo.ConfigError
	if !errors.As(err, &ce) || ce.Field != "swarm.blend" {
		t.Errorf("expected swarm.blend config error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("swarm", "coarse")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("swarm", "coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Swarm.CellSize != 20 {
		t.Errorf("expected cell size 20, got %g", cfg.Swarm.CellSize)
	}

	cfg.Swarm.CellSize = 99
	if GetPreset("swarm", "coarse").Swarm.CellSize != 20 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("swarm", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent effect")
	}
}

func TestPresetsValidate(t *testing.T) {
	for effect, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", effect, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("ripple")
	if len(presets) != 4 || presets[0] != "pond" {
		t.Errorf("expected sorted ripple presets, got %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent effect")
	}
}
