package physics

import (
	"math"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		v, size, expected float64
	}{
		{3, 10, 3},
		{-1, 10, 9},
		{10, 10, 0},
		{25, 10, 5},
		{-20, 10, 0},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.size); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Wrap(%g, %g): expected %g, got %g", tt.v, tt.size, tt.expected, got)
		}
	}
}

func TestWrappedDelta(t *testing.T) {
	tests := []struct {
		a, b, size, expected float64
	}{
		{9, 0, 10, -1},
		{0, 9, 10, 1},
		{5, 5, 10, 0},
		{2, 7, 10, -5},
		{0, 150, 300, -150},
	}
	for _, tt := range tests {
		if got := WrappedDelta(tt.a, tt.b, tt.size); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("WrappedDelta(%g, %g, %g): expected %g, got %g", tt.a, tt.b, tt.size, tt.expected, got)
		}
	}
}

func TestClampAndTrunc(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp out of range")
	}
	if ClampInt(-4, 0, 3) != 0 || ClampInt(9, 0, 3) != 3 {
		t.Error("ClampInt out of range")
	}
	if Trunc(-2.7) != -2 || Trunc(2.7) != 2 {
		t.Error("Trunc must round toward zero")
	}
}
