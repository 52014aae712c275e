package metrics

import "github.com/san-kum/ripplesim/internal/sim"

// Rejections is the fraction of disturbances the engine refused.
type Rejections struct {
	name     string
	injected int
	rejected int
}

func NewRejections() *Rejections {
	return &Rejections{name: "rejected_ratio"}
}

func (r *Rejections) Name() string { return r.name }

func (r *Rejections) Observe(f sim.Frame) {
	r.injected += f.Injected
	r.rejected += f.Rejected
}

func (r *Rejections) Value() float64 {
	total := r.injected + r.rejected
	if total == 0 {
		return 0
	}
	return float64(r.rejected) / float64(total)
}

func (r *Rejections) Reset() {
	r.injected = 0
	r.rejected = 0
}

// Defaults returns the metrics every run records.
func Defaults() []sim.Metric {
	return []sim.Metric{NewEnergy(), NewSettle(0), NewRejections()}
}
