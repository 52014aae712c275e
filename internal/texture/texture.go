// Package texture builds the static images a ripple field refracts.
package texture

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

const (
	Background = "#a2ddf8"
	Stripe     = "#07b"

	stripeWidth = 20.0
	stripeAngle = -math.Pi / 4
)

// Stripes draws dark diagonal bands over a light background.
func Stripes(width, height int) *image.RGBA {
	dc := gg.NewContext(width, height)
	dc.SetHexColor(Background)
	dc.Clear()

	d := float64(width + height)
	dc.SetHexColor(Stripe)
	dc.Push()
	dc.Rotate(stripeAngle)
	for v := -d; v < d; v += stripeWidth * 2 {
		dc.DrawRectangle(-d, v, d*2, stripeWidth)
	}
	dc.Fill()
	dc.Pop()

	return toRGBA(dc.Image())
}

// Load decodes a PNG or JPEG from disk.
func Load(path string) (image.Image, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	return img, nil
}

// Fit stretches img over a width x height canvas.
func Fit(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Src, nil)
	return dst
}

// Resolve loads path fitted to the canvas, or draws the stripes when path
// is empty.
func Resolve(path string, width, height int) (*image.RGBA, error) {
	if path == "" {
		return Stripes(width, height), nil
	}
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Fit(img, width, height), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	return Fit(img, img.Bounds().Dx(), img.Bounds().Dy())
}
