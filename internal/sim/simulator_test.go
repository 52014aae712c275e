package sim_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/sim"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Simulator", func() {
	var (
		engine *recorder
		s      *sim.Simulator
	)

	BeforeEach(func() {
		engine = &recorder{}
		s = sim.New(engine, sim.WithLogger(quiet))
	})

	Describe("Tick", func() {
		It("fails without an engine", func() {
			_, err := sim.New(nil, sim.WithLogger(quiet)).Tick(1)
			Expect(err).To(MatchError(dynamo.ErrNoEngine))
		})

		It("injects the mailbox, then the sources, then steps once", func() {
			s.AddSource(scripted{0: {dynamo.At(7, 7)}})
			s.Mailbox().Post(dynamo.At(3, 3))

			f, err := s.Tick(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.ops()).To(Equal([]string{"inject", "inject", "step"}))
			Expect(engine.injected()[0].Point).To(Equal(dynamo.Vec2{X: 3, Y: 3}))
			Expect(f.Injected).To(Equal(2))
			Expect(f.Index).To(Equal(0))
			Expect(s.Frame()).To(Equal(1))
		})

		It("applies the latest posted disturbance exactly once", func() {
			s.Mailbox().Post(dynamo.At(1, 0))
			s.Mailbox().Post(dynamo.At(2, 0))

			_, _ = s.Tick(1)
			_, _ = s.Tick(1)

			Expect(engine.injected()).To(HaveLen(1))
			Expect(engine.injected()[0].Point.X).To(Equal(2.0))
			Expect(engine.ops()).To(Equal([]string{"inject", "step", "step"}))
		})

		It("orders stroke releases around the disturbance", func() {
			s.Mailbox().Post(dynamo.At(1, 0))
			s.Mailbox().Release()
			_, _ = s.Tick(1)
			Expect(engine.ops()).To(Equal([]string{"inject", "lift", "step"}))

			engine.Reset()
			s.Mailbox().Release()
			s.Mailbox().Post(dynamo.At(2, 0))
			_, _ = s.Tick(1)
			Expect(engine.ops()).To(Equal([]string{"lift", "inject", "step"}))
		})

		It("logs and counts rejected disturbances but still steps", func() {
			var buf bytes.Buffer
			s = sim.New(engine, sim.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
			engine.reject = func(d dynamo.Disturbance) bool { return d.Point.X < 0 }

			s.Mailbox().Post(dynamo.At(-1, 0))
			f, err := s.Tick(1)

			Expect(err).NotTo(HaveOccurred())
			Expect(f.Rejected).To(Equal(1))
			Expect(engine.ops()).To(Equal([]string{"step"}))
			Expect(buf.String()).To(ContainSubstring("disturbance rejected"))

			_, rejected := s.Totals()
			Expect(rejected).To(Equal(1))
		})

		It("returns step failures", func() {
			engine.stepErr = errBoom
			_, err := s.Tick(1)
			Expect(err).To(MatchError(errBoom))
			Expect(s.Frame()).To(Equal(0))
		})

		It("reports engine energy", func() {
			s.Mailbox().Post(dynamo.At(8, 0))
			f, _ := s.Tick(1)
			Expect(f.Energy).To(Equal(4.0))
		})
	})

	Describe("Run", func() {
		It("rejects invalid configs", func() {
			_, err := s.Run(context.Background(), sim.Config{Frames: 0, Dt: 1})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

			_, err = s.Run(context.Background(), sim.Config{Frames: 10, Dt: 0})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("runs every frame through metrics and observers", func() {
			m := &counter{name: "frames"}
			s.AddMetric(m)
			seen := 0
			s.AddObserver(sim.ObserverFunc(func(f sim.Frame) { seen++ }))
			s.AddSource(scripted{2: {dynamo.At(16, 0)}, 4: {dynamo.At(-1, 0)}})
			engine.reject = func(d dynamo.Disturbance) bool { return d.Point.X < 0 }

			result, err := s.Run(context.Background(), sim.Config{Frames: 10, Dt: 1})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Frames).To(HaveLen(10))
			Expect(result.Metrics).To(HaveKeyWithValue("frames", 10.0))
			Expect(seen).To(Equal(10))
			Expect(result.Injected).To(Equal(1))
			Expect(result.Rejected).To(Equal(1))
			Expect(result.Frames[2].Energy).To(Equal(8.0))
			Expect(result.Final).To(Equal(result.Frames[9].Energy))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := s.Run(ctx, sim.Config{Frames: 100, Dt: 1})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.Frames).To(BeEmpty())
		})
	})

	It("resets the engine and counters", func() {
		s.Mailbox().Post(dynamo.At(1, 0))
		_, _ = s.Tick(1)
		s.Mailbox().Post(dynamo.At(2, 0))

		s.Reset()

		Expect(s.Frame()).To(Equal(0))
		Expect(s.Mailbox().Take().Ok).To(BeFalse())
		Expect(engine.ops()).To(BeEmpty())
	})
})
