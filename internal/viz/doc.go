// Package viz renders the effects in the terminal.
//
// [Canvas] is a braille dot canvas. [Model] is the Bubble Tea live view:
// the mouse disturbs the running effect, the side panel plots its energy.
// [RunInteractive] opens a preset picker in front of it.
//
// # Key Bindings
//
//	Mouse - Press or drag to disturb, release to lift the pen
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset the effect
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	S     - Save a PNG snapshot
//	?     - Show help overlay
//
// # Recording
//
// G records the braille canvas as a GIF animation, written to the current
// directory when recording stops.
package viz
