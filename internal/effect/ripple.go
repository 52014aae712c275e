package effect

import (
	"image"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/physics"
	"github.com/san-kum/ripplesim/internal/texture"
)

// Ripple drives a WaveField. Every disturbance drops one square of the
// configured radius and magnitude; velocity is ignored.
type Ripple struct {
	field     *physics.WaveField
	radius    int
	magnitude int32
}

func NewRipple(cfg config.RippleConfig, backend compute.Backend) (*Ripple, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	field, err := physics.NewWaveField(cfg.Width, cfg.Height, cfg.DampingShift)
	if err != nil {
		return nil, err
	}
	tex, err := texture.Resolve(cfg.Texture, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	field.SetTexture(tex)
	if backend != nil {
		field.SetBackend(backend)
	}
	return &Ripple{field: field, radius: cfg.Radius, magnitude: cfg.Magnitude}, nil
}

func (r *Ripple) Name() string              { return "ripple" }
func (r *Ripple) Field() *physics.WaveField { return r.field }
func (r *Ripple) Frame() image.Image        { return r.field.Frame() }
func (r *Ripple) Energy() float64           { return r.field.TotalEnergy() }
func (r *Ripple) Reset()                    { r.field.Reset() }

func (r *Ripple) Width() float64 {
	w, _ := r.field.Size()
	return float64(w)
}

func (r *Ripple) Height() float64 {
	_, h := r.field.Size()
	return float64(h)
}

func (r *Ripple) Inject(d dynamo.Disturbance) error {
	if !d.Point.IsValid() {
		return dynamo.ErrInvalidInput
	}
	p := clampPoint(d.Point, r.Width(), r.Height())
	return r.field.Disturb(p.X, p.Y, r.radius, r.magnitude)
}

// Step advances one frame. The ripple recurrence is frame based, so dt is
// unused.
func (r *Ripple) Step(dt float64) error {
	r.field.Step()
	return nil
}
