package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a configuration that cannot build an engine.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrOutOfBounds indicates a coordinate outside the field or grid.
	ErrOutOfBounds = errors.New("dynamo: coordinate out of bounds")

	// ErrUnknownEffect indicates a registry lookup for an unregistered effect.
	ErrUnknownEffect = errors.New("dynamo: unknown effect")

	// ErrNoEngine indicates a driver used without an engine.
	ErrNoEngine = errors.New("dynamo: no engine")

	// ErrInvalidInput indicates a NaN or Inf disturbance.
	ErrInvalidInput = errors.New("dynamo: invalid input (NaN or Inf detected)")
)

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Invalid is shorthand for a ConfigError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// BoundsError reports a rejected coordinate together with the valid extent.
type BoundsError struct {
	Op            string
	X, Y          float64
	Width, Height float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %s at (%g, %g) outside [0, %g) x [0, %g)",
		ErrOutOfBounds, e.Op, e.X, e.Y, e.Width, e.Height)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}
