package sim

import "github.com/san-kum/ripplesim/internal/dynamo"

// Frame summarises one Tick.
type Frame struct {
	Index    int
	Energy   float64
	Injected int
	Rejected int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Source produces the scripted disturbances of one frame.
type Source interface {
	Disturbances(frame int) []dynamo.Disturbance
}

// Lifter is implemented by engines that track pointer strokes.
type Lifter interface {
	Lift()
}

type Config struct {
	Frames int
	Dt     float64
}

type Result struct {
	Frames   []Frame
	Metrics  map[string]float64
	Injected int
	Rejected int
	Final    float64
}
