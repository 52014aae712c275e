package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/effect"
	"github.com/san-kum/ripplesim/internal/metrics"
	"github.com/san-kum/ripplesim/internal/sim"
)

// ParameterSweep runs one effect across a range of values of a single
// parameter, disturbing the centre of the canvas once at frame 0.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

// SweepResult holds the outcome of one sweep point.
type SweepResult struct {
	ParamValue   float64
	Peak         float64
	Final        float64
	SettleFrames float64
}

// Setters lists the parameters a sweep can vary.
var Setters = map[string]func(*config.Config, float64){
	"ripple.damping_shift": func(c *config.Config, v float64) { c.Ripple.DampingShift = uint(v) },
	"ripple.radius":        func(c *config.Config, v float64) { c.Ripple.Radius = int(v) },
	"swarm.damping":        func(c *config.Config, v float64) { c.Swarm.Damping = v },
	"swarm.pen_radius":     func(c *config.Config, v float64) { c.Swarm.PenRadius = v },
	"swarm.blend":          func(c *config.Config, v float64) { c.Swarm.Blend = v },
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *effect.Registry, logger *slog.Logger) ([]SweepResult, error) {
	set, ok := Setters[sweep.Param]
	if !ok {
		return nil, dynamo.Invalid("param", "cannot sweep %q", sweep.Param)
	}
	if effectName, _, _ := strings.Cut(sweep.Param, "."); effectName != sweep.Base.Effect {
		return nil, dynamo.Invalid("param", "%q does not apply to effect %q", sweep.Param, sweep.Base.Effect)
	}
	if sweep.NumSteps < 2 {
		return nil, dynamo.Invalid("steps", "need at least 2, got %d", sweep.NumSteps)
	}
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		set(cfg, paramVal)
		if err := cfg.Validate(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, paramVal, err)
		}

		eff, err := registry.Build(cfg)
		if err != nil {
			return results, err
		}
		energy, settle := metrics.NewEnergy(), metrics.NewSettle(0)
		s := sim.New(eff, sim.WithLogger(logger))
		s.AddMetric(energy)
		s.AddMetric(settle)
		s.Mailbox().Post(dynamo.Moving(eff.Width()/2, eff.Height()/2, 5, 2))

		result, err := s.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt})
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:   paramVal,
			Peak:         energy.Peak(),
			Final:        result.Final,
			SettleFrames: settle.Value(),
		})
		logger.Info("sweep point", "param", sweep.Param, "value", paramVal, "step", i+1, "of", sweep.NumSteps)
	}

	return results, nil
}
