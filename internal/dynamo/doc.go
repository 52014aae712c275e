// Package dynamo provides the core primitives shared by the simulation
// engines.
//
// The package defines the small vocabulary every effect speaks:
//
//   - [Vec2]: a point or velocity in canvas coordinates
//   - [Disturbance]: one external input, consumed once
//   - [Engine]: anything advanced once per frame and fed disturbances
//
// # Example
//
//	field, _ := physics.NewWaveField(400, 400, 5)
//	_ = field.Disturb(200, 200, 3, 512)
//	field.Step()
//
// # Thread Safety
//
// Engines are NOT thread-safe. Producers running on other goroutines hand
// disturbances to a [sim.Mailbox], which the frame driver drains once per
// frame.
package dynamo
