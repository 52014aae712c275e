package dynamo

import (
	"fmt"
	"math"
)

// Vec2 is a point or velocity in canvas coordinates.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsValid() bool        { return !isBad(v.X) && !isBad(v.Y) }
func (v Vec2) String() string       { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }
func isBad(f float64) bool          { return math.IsNaN(f) || math.IsInf(f, 0) }

// Disturbance is a transient input: a point and an optional velocity.
// It is applied at most once and never retained by an engine.
type Disturbance struct {
	Point       Vec2
	Velocity    Vec2
	HasVelocity bool
}

// At builds a disturbance without velocity.
func At(x, y float64) Disturbance {
	return Disturbance{Point: Vec2{x, y}}
}

// Moving builds a disturbance carrying a velocity.
func Moving(x, y, vx, vy float64) Disturbance {
	return Disturbance{Point: Vec2{x, y}, Velocity: Vec2{vx, vy}, HasVelocity: true}
}

// Engine is advanced once per frame by an external driver.
type Engine interface {
	Inject(d Disturbance) error
	Step(dt float64) error
	Reset()
}

// EnergyReporter is implemented by engines that can summarise their
// activity as a single non-negative number.
type EnergyReporter interface {
	Energy() float64
}

// Bounds is the canvas extent an engine accepts disturbances in.
type Bounds interface {
	Width() float64
	Height() float64
}
