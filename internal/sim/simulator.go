package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

// Simulator is the frame driver. Every Tick drains the mailbox and the
// sources into the engine, then steps it exactly once.
type Simulator struct {
	engine    dynamo.Engine
	mailbox   *Mailbox
	sources   []Source
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	frame    int
	injected int
	rejected int
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithMailbox(m *Mailbox) Option {
	return func(s *Simulator) { s.mailbox = m }
}

func New(engine dynamo.Engine, opts ...Option) *Simulator {
	s := &Simulator{
		engine:    engine,
		mailbox:   NewMailbox(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) AddSource(src Source)   { s.sources = append(s.sources, src) }
func (s *Simulator) Mailbox() *Mailbox      { return s.mailbox }
func (s *Simulator) Engine() dynamo.Engine  { return s.engine }
func (s *Simulator) Frame() int             { return s.frame }

// Tick advances one frame. Rejected disturbances are logged and counted;
// the frame is stepped regardless. Only a failing Step is returned.
func (s *Simulator) Tick(dt float64) (Frame, error) {
	if s.engine == nil {
		return Frame{}, dynamo.ErrNoEngine
	}
	f := Frame{Index: s.frame}

	d := s.mailbox.Take()
	if d.LiftBefore {
		s.lift()
	}
	if d.Ok {
		s.inject(&f, d.Disturbance)
	}
	if d.LiftAfter {
		s.lift()
	}
	for _, src := range s.sources {
		for _, dist := range src.Disturbances(s.frame) {
			s.inject(&f, dist)
		}
	}

	if err := s.engine.Step(dt); err != nil {
		return f, fmt.Errorf("frame %d: %w", s.frame, err)
	}

	if er, ok := s.engine.(dynamo.EnergyReporter); ok {
		f.Energy = er.Energy()
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}

	s.frame++
	s.injected += f.Injected
	s.rejected += f.Rejected
	return f, nil
}

func (s *Simulator) inject(f *Frame, d dynamo.Disturbance) {
	if err := s.engine.Inject(d); err != nil {
		f.Rejected++
		s.logger.Warn("disturbance rejected", "frame", s.frame, "point", d.Point.String(), "err", err)
		return
	}
	f.Injected++
}

func (s *Simulator) lift() {
	if l, ok := s.engine.(Lifter); ok {
		l.Lift()
	}
}

// Run ticks cfg.Frames frames, stopping early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if s.engine == nil {
		return nil, dynamo.ErrNoEngine
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	result := &Result{
		Frames:  make([]Frame, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}

	s.logger.Info("run started", "frames", cfg.Frames, "dt", cfg.Dt)
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			s.summarise(result)
			return result, ctx.Err()
		default:
		}

		f, err := s.Tick(cfg.Dt)
		if err != nil {
			s.summarise(result)
			return result, err
		}
		result.Frames = append(result.Frames, f)
		result.Injected += f.Injected
		result.Rejected += f.Rejected
	}
	s.summarise(result)
	s.logger.Info("run finished",
		"frames", len(result.Frames),
		"injected", result.Injected,
		"rejected", result.Rejected,
		"energy", result.Final)

	return result, nil
}

func (s *Simulator) summarise(r *Result) {
	if n := len(r.Frames); n > 0 {
		r.Final = r.Frames[n-1].Energy
	}
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// Reset rewinds the engine and the frame counter.
func (s *Simulator) Reset() {
	if s.engine != nil {
		s.engine.Reset()
	}
	s.mailbox.Take()
	s.frame, s.injected, s.rejected = 0, 0, 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Totals reports the disturbances injected and rejected since the last
// Reset.
func (s *Simulator) Totals() (injected, rejected int) {
	return s.injected, s.rejected
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return dynamo.Invalid("frames", "must be positive, got %d", cfg.Frames)
	}
	if !(cfg.Dt > 0) {
		return dynamo.Invalid("dt", "must be positive, got %g", cfg.Dt)
	}
	return nil
}
