package compute

// Backend runs a row sweep. Rows must return only after fn has completed
// for every row in [0, n), which makes each call a barrier between update
// phases.
type Backend interface {
	Name() string
	Rows(n int, fn func(lo, hi int))
}

// Select returns the serial backend for workers == 0 and a parallel CPU
// backend otherwise. Negative workers means one per CPU.
func Select(workers int) Backend {
	if workers == 0 {
		return Serial{}
	}
	return NewCPUBackend(workers)
}

// Serial sweeps every row on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) Rows(n int, fn func(lo, hi int)) {
	if n > 0 {
		fn(0, n)
	}
}
