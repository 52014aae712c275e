// Package export writes effect frames and particle trails to image files.
package export

import (
	"fmt"
	"image"
	"image/color"
	"iter"
	"math"

	"github.com/fogleman/gg"
	"github.com/mazznoer/colorgrad"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/physics"
)

const trailLineWidth = 1.0

// TrailGradient is the stroke gradient of particle trails, laid along the
// axis from (95, 15) to (15, 102) in canvas units.
func TrailGradient() (colorgrad.Gradient, error) {
	return colorgrad.NewGradient().
		HtmlColors("yellow", "red", "purple", "magenta", "blue").
		Domain(0, 0.5, 0.75, 0.9, 1).
		Build()
}

var gradientFrom, gradientTo = dynamo.Vec2{X: 95, Y: 15}, dynamo.Vec2{X: 15, Y: 102}

// gradientPos projects (x, y) onto the gradient axis, clamped to [0, 1].
func gradientPos(x, y float64) float64 {
	ax, ay := gradientTo.X-gradientFrom.X, gradientTo.Y-gradientFrom.Y
	t := ((x-gradientFrom.X)*ax + (y-gradientFrom.Y)*ay) / (ax*ax + ay*ay)
	return math.Max(0, math.Min(1, t))
}

// Trails draws one stroke per segment on a transparent width x height
// canvas.
func Trails(segments iter.Seq[physics.Segment], width, height int) (image.Image, error) {
	grad, err := TrailGradient()
	if err != nil {
		return nil, fmt.Errorf("trail gradient: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetLineWidth(trailLineWidth)
	for s := range segments {
		dc.SetColor(grad.At(gradientPos(s.X0, s.Y0)))
		dc.DrawLine(s.X0, s.Y0, s.X1, s.Y1)
		dc.Stroke()
	}
	return dc.Image(), nil
}

// Composite draws trails over a solid background.
func Composite(trails image.Image, background color.Color) image.Image {
	b := trails.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(background)
	dc.Clear()
	dc.DrawImage(trails, 0, 0)
	return dc.Image()
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
