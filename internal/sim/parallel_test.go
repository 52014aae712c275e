package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/sim"
)

var _ = Describe("Ensemble", func() {
	build := func(seed int64) (*sim.Simulator, error) {
		s := sim.New(&recorder{}, sim.WithLogger(quiet))
		s.AddSource(scripted{0: {dynamo.At(float64(seed), 0)}})
		return s, nil
	}

	It("runs one independent simulator per seed", func() {
		e := sim.NewEnsemble(build, 4, 10)
		e.SetLimit(2)

		results, err := e.Run(context.Background(), sim.Config{Frames: 3, Dt: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Frames).To(HaveLen(3))
			Expect(r.Frames[0].Energy).To(Equal(float64(10+i) / 2))
		}
	})

	It("fails when a member cannot be built", func() {
		failing := func(seed int64) (*sim.Simulator, error) {
			if seed == 2 {
				return nil, errBoom
			}
			return build(seed)
		}

		_, err := sim.NewEnsemble(failing, 4, 0).Run(context.Background(), sim.Config{Frames: 3, Dt: 1})
		Expect(err).To(MatchError(errBoom))
	})
})
