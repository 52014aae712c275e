package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/ripplesim/internal/viz"
)

// CanvasSVG writes a braille canvas as an svg of dots, scale pixels per
// sub-pixel.
func CanvasSVG(w io.Writer, canvas *viz.Canvas, scale float64, fg, bg string) error {
	sw, sh := canvas.SubSize()
	width, height := float64(sw)*scale, float64(sh)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, bg, fg)

	r := scale * 0.4
	for x, y := range canvas.Dots() {
		fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
			float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
	}

	fmt.Fprint(bw, "</g>\n</svg>\n")
	return bw.Flush()
}
