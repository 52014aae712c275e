package physics

import (
	"image"
	"image/draw"
	"math"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/dynamo"
)

const (
	DefaultDampingShift = 5
	DefaultRippleRadius = 3
	DefaultRippleHeight = 512

	// displacementScale is the energy at which a pixel samples the texture
	// centre; a still surface maps each pixel onto itself.
	displacementScale = 1024
	maxDampingShift   = 16
)

// WaveField implements a 2D integer ripple field with finite differences.
//
// Both time buffers live in one slice. Each half carries a zero padding row
// above and below the field so vertical neighbours never need a bounds test.
type WaveField struct {
	width, height int
	shift         uint
	buf           []int32
	src, dst      int
	shadow        []int32
	texture       *image.RGBA
	frame         *image.RGBA
	backend       compute.Backend
}

func NewWaveField(width, height int, dampingShift uint) (*WaveField, error) {
	if width <= 0 {
		return nil, dynamo.Invalid("width", "must be positive, got %d", width)
	}
	if height <= 0 {
		return nil, dynamo.Invalid("height", "must be positive, got %d", height)
	}
	if dampingShift < 1 || dampingShift > maxDampingShift {
		return nil, dynamo.Invalid("damping_shift", "must be in [1, %d], got %d", maxDampingShift, dampingShift)
	}

	half := width * (height + 2)
	rect := image.Rect(0, 0, width, height)
	return &WaveField{
		width:   width,
		height:  height,
		shift:   dampingShift,
		buf:     make([]int32, half*2),
		src:     width,
		dst:     half + width,
		shadow:  make([]int32, width*height),
		texture: image.NewRGBA(rect),
		frame:   image.NewRGBA(rect),
		backend: compute.Serial{},
	}, nil
}

func (f *WaveField) Size() (int, int)             { return f.width, f.height }
func (f *WaveField) DampingShift() uint           { return f.shift }
func (f *WaveField) SetBackend(b compute.Backend) { f.backend = b }
func (f *WaveField) Frame() image.Image           { return f.frame }
func (f *WaveField) Texture() image.Image         { return f.texture }
func (f *WaveField) Energy() float64              { return f.TotalEnergy() }
func (f *WaveField) index(x, y int) int           { return y*f.width + x }
func (f *WaveField) inside(x, y float64) bool     { return x >= 0 && y >= 0 && x < float64(f.width) && y < float64(f.height) }
func (f *WaveField) bounds(op string, x, y float64) error {
	return &dynamo.BoundsError{Op: op, X: x, Y: y, Width: float64(f.width), Height: float64(f.height)}
}

// SetTexture copies img into the field's texture. Pixels outside img stay
// transparent; callers scale mismatched images first. The next Step
// resamples every pixel.
func (f *WaveField) SetTexture(img image.Image) {
	draw.Draw(f.texture, f.texture.Rect, image.Transparent, image.Point{}, draw.Src)
	draw.Draw(f.texture, f.texture.Rect, img, img.Bounds().Min, draw.Src)
	copy(f.frame.Pix, f.texture.Pix)
	clear(f.shadow)
}

// Disturb adds magnitude to the (2*radius)^2 square whose top-left corner is
// radius cells above and left of the truncated point. Cells of the square
// that fall outside the field are dropped; a centre outside the field is
// rejected.
func (f *WaveField) Disturb(x, y float64, radius int, magnitude int32) error {
	if !finite(x, y) {
		return dynamo.ErrInvalidInput
	}
	if radius <= 0 {
		return dynamo.Invalid("radius", "must be positive, got %d", radius)
	}
	if !f.inside(x, y) {
		return f.bounds("disturb", x, y)
	}

	cx, cy := Trunc(x), Trunc(y)
	x0, x1 := max(cx-radius, 0), min(cx+radius, f.width)
	y0, y1 := max(cy-radius, 0), min(cy+radius, f.height)

	for j := y0; j < y1; j++ {
		row := f.dst + j*f.width
		for k := x0; k < x1; k++ {
			f.buf[row+k] += magnitude
		}
	}
	return nil
}

// Step advances the field one frame and refreshes the frame buffer.
func (f *WaveField) Step() {
	f.src, f.dst = f.dst, f.src
	f.backend.Rows(f.height, f.sweep)
}

func (f *WaveField) sweep(lo, hi int) {
	w, h := f.width, f.height
	cx, cy := w>>1, h>>1
	buf, shadow := f.buf, f.shadow
	tex, out := f.texture.Pix, f.frame.Pix

	for y := lo; y < hi; y++ {
		src := f.src + y*w
		dst := f.dst + y*w
		for x := 0; x < w; x++ {
			i := src + x
			sum := buf[i-w] + buf[i+w]
			if x > 0 {
				sum += buf[i-1]
			}
			if x < w-1 {
				sum += buf[i+1]
			}

			e := sum>>1 - buf[dst+x]
			e -= e >> f.shift
			buf[dst+x] = e

			d := displacementScale - e
			k := y*w + x
			if shadow[k] == d {
				continue
			}
			shadow[k] = d

			a := ClampInt((x-cx)*int(d)/displacementScale+cx, 0, w-1)
			b := ClampInt((y-cy)*int(d)/displacementScale+cy, 0, h-1)
			from := (b*w + a) * 4
			to := k * 4
			out[to] = tex[from]
			out[to+1] = tex[from+1]
			out[to+2] = tex[from+2]
		}
	}
}

// EnergyAt returns the latest energy at (x, y).
func (f *WaveField) EnergyAt(x, y int) (int32, error) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, f.bounds("energy", float64(x), float64(y))
	}
	return f.buf[f.dst+f.index(x, y)], nil
}

// DisplacementAt returns the displacement computed for (x, y) by the last
// Step, or zero before the first one.
func (f *WaveField) DisplacementAt(x, y int) (int32, error) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, f.bounds("displacement", float64(x), float64(y))
	}
	return f.shadow[f.index(x, y)], nil
}

// TotalEnergy sums the absolute energy of the latest buffer.
func (f *WaveField) TotalEnergy() float64 {
	total := 0.0
	latest := f.buf[f.dst : f.dst+f.width*f.height]
	for _, e := range latest {
		total += math.Abs(float64(e))
	}
	return total
}

// Quiescent reports whether both buffers are entirely zero, after which
// Step leaves the field unchanged until the next disturbance.
func (f *WaveField) Quiescent() bool {
	for _, e := range f.buf {
		if e != 0 {
			return false
		}
	}
	return true
}

func (f *WaveField) Reset() {
	clear(f.buf)
	clear(f.shadow)
	copy(f.frame.Pix, f.texture.Pix)
}
