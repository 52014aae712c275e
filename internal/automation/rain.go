package automation

import (
	"math/rand"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

// Rain drops a disturbance at a random point every Interval frames,
// starting with frame 0.
type Rain struct {
	Interval      int
	width, height float64
	rng           *rand.Rand
}

func NewRain(interval int, width, height float64, rng *rand.Rand) *Rain {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Rain{Interval: interval, width: width, height: height, rng: rng}
}

func (r *Rain) Disturbances(frame int) []dynamo.Disturbance {
	if r.Interval <= 0 || frame%r.Interval != 0 {
		return nil
	}
	return []dynamo.Disturbance{dynamo.At(r.rng.Float64()*r.width, r.rng.Float64()*r.height)}
}
