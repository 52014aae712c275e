// Package effect adapts the physics engines to the frame driver.
//
// An [Effect] takes canvas-space disturbances, clamps pointer input onto
// the canvas and advances its engine in the fixed frame order.
package effect

import (
	"math"

	"github.com/san-kum/ripplesim/internal/dynamo"
)

type Effect interface {
	dynamo.Engine
	dynamo.EnergyReporter
	dynamo.Bounds
	Name() string
}

// clampPoint pulls p onto [0, w) x [0, h).
func clampPoint(p dynamo.Vec2, w, h float64) dynamo.Vec2 {
	return dynamo.Vec2{
		X: math.Max(0, math.Min(p.X, math.Nextafter(w, 0))),
		Y: math.Max(0, math.Min(p.Y, math.Nextafter(h, 0))),
	}
}
