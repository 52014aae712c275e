package physics

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Trunc drops the fractional part of v, rounding toward zero.
func Trunc(v float64) int {
	return int(math.Trunc(v))
}

// Wrap maps v onto [0, size).
func Wrap(v, size float64) float64 {
	r := math.Mod(v, size)
	if r < 0 {
		r += size
	}
	if r >= size {
		r = 0
	}
	return r
}

// WrappedDelta is the shortest signed difference a-b on a ring of the given
// size, in [-size/2, size/2].
func WrappedDelta(a, b, size float64) float64 {
	d := math.Mod(a-b, size)
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
