package sim_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/sim"
)

var _ = Describe("Mailbox", func() {
	var box *sim.Mailbox

	BeforeEach(func() {
		box = sim.NewMailbox()
	})

	It("is empty until something is posted", func() {
		Expect(box.Take().Ok).To(BeFalse())
	})

	It("keeps only the latest disturbance", func() {
		box.Post(dynamo.At(1, 1))
		box.Post(dynamo.At(2, 2))
		box.Post(dynamo.Moving(3, 3, 1, 0))

		d := box.Take()
		Expect(d.Ok).To(BeTrue())
		Expect(d.Disturbance).To(Equal(dynamo.Moving(3, 3, 1, 0)))

		posted, dropped := box.Stats()
		Expect(posted).To(Equal(3))
		Expect(dropped).To(Equal(2))
	})

	It("delivers a disturbance once", func() {
		box.Post(dynamo.At(5, 5))
		Expect(box.Take().Ok).To(BeTrue())
		Expect(box.Take().Ok).To(BeFalse())
	})

	It("lifts after a pending disturbance", func() {
		box.Post(dynamo.At(5, 5))
		box.Release()

		d := box.Take()
		Expect(d.Ok).To(BeTrue())
		Expect(d.LiftBefore).To(BeFalse())
		Expect(d.LiftAfter).To(BeTrue())
	})

	It("lifts before a disturbance posted after the release", func() {
		box.Post(dynamo.At(1, 1))
		box.Release()
		box.Post(dynamo.At(9, 9))

		d := box.Take()
		Expect(d.Disturbance.Point).To(Equal(dynamo.Vec2{X: 9, Y: 9}))
		Expect(d.LiftBefore).To(BeTrue())
		Expect(d.LiftAfter).To(BeFalse())
	})

	It("accepts posts from many goroutines", func() {
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				box.Post(dynamo.At(float64(i), 0))
			}()
		}
		wg.Wait()

		Expect(box.Take().Ok).To(BeTrue())
		Expect(box.Take().Ok).To(BeFalse())
		posted, dropped := box.Stats()
		Expect(posted).To(Equal(64))
		Expect(dropped).To(Equal(63))
	})
})
