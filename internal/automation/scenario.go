package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/effect"
	"github.com/san-kum/ripplesim/internal/metrics"
	"github.com/san-kum/ripplesim/internal/sim"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: an effect preset driven by pointer strokes.
type ScenarioStep struct {
	Effect  string   `yaml:"effect"`
	Preset  string   `yaml:"preset"`
	Frames  int      `yaml:"frames"`
	Seed    int64    `yaml:"seed"`
	Rain    *int     `yaml:"rain"`
	Strokes []Stroke `yaml:"strokes"`
	SaveAs  string   `yaml:"save_as"`
}

// Stroke is a pointer path. One point is delivered every Every frames
// starting at frame Start; each carries the per-frame velocity from the
// previous point.
type Stroke struct {
	Start  int          `yaml:"start"`
	Every  int          `yaml:"every"`
	Points [][2]float64 `yaml:"points"`
}

// StepResult pairs a finished step with its run.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	for i, step := range scenario.Steps {
		if step.Frames <= 0 {
			return nil, dynamo.Invalid(fmt.Sprintf("steps[%d].frames", i), "must be positive, got %d", step.Frames)
		}
		for j, s := range step.Strokes {
			if s.Start < 0 || s.Every < 0 {
				return nil, dynamo.Invalid(fmt.Sprintf("steps[%d].strokes[%d]", i, j), "start and every must not be negative")
			}
		}
	}

	return &scenario, nil
}

// Config resolves the step's preset and overrides.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
		if s.Effect == "ripple" {
			name = "pond"
		}
	}
	cfg := config.GetPreset(s.Effect, name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: preset %s/%s", dynamo.ErrUnknownEffect, s.Effect, name)
	}
	cfg.Frames = s.Frames
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Rain != nil {
		cfg.Ripple.RainInterval = *s.Rain
	}
	return cfg, cfg.Validate()
}

// Script replays strokes as a sim.Source.
type Script struct {
	plan map[int][]dynamo.Disturbance
}

func NewScript(strokes []Stroke) *Script {
	plan := make(map[int][]dynamo.Disturbance)
	for _, s := range strokes {
		every := max(s.Every, 1)
		for i, p := range s.Points {
			d := dynamo.Moving(p[0], p[1], 0, 0)
			if i > 0 {
				prev := s.Points[i-1]
				d.Velocity = dynamo.Vec2{X: (p[0] - prev[0]) / float64(every), Y: (p[1] - prev[1]) / float64(every)}
			}
			frame := s.Start + i*every
			plan[frame] = append(plan[frame], d)
		}
	}
	return &Script{plan: plan}
}

func (s *Script) Disturbances(frame int) []dynamo.Disturbance { return s.plan[frame] }

// Sources returns the scripted inputs a config implies on its own.
func Sources(cfg *config.Config, e effect.Effect) []sim.Source {
	if cfg.Effect == "ripple" && cfg.Ripple.RainInterval > 0 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		return []sim.Source{NewRain(cfg.Ripple.RainInterval, e.Width(), e.Height(), rng)}
	}
	return nil
}

// RunScenario executes every step in order.
func RunScenario(ctx context.Context, scenario *Scenario, registry *effect.Registry, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "effect", step.Effect)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		eff, err := registry.Build(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		s := sim.New(eff, sim.WithLogger(logger))
		for _, src := range Sources(cfg, eff) {
			s.AddSource(src)
		}
		s.AddSource(NewScript(step.Strokes))
		for _, m := range metrics.Defaults() {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}
