package thumbnail

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Fit returns the size of a w×h image scaled to fit in a max×max box with its
// aspect ratio preserved. Images already inside the box keep their size.
func Fit(w, h, max int) (int, int) {
	if w <= 0 || h <= 0 || max <= 0 {
		return 0, 0
	}
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, scaleSide(h, max, w)
	}
	return scaleSide(w, max, h), max
}

func scaleSide(side, max, longest int) int {
	n := int(math.Round(float64(side) * float64(max) / float64(longest)))
	if n < 1 {
		return 1
	}
	return n
}

// Render scales src to fit in a max×max box and flattens it onto an opaque
// white background.
func Render(src image.Image, max int) *image.RGBA {
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), max)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
