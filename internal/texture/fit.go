package texture

import (
	"image"

	"golang.org/x/image/draw"
)

// Fit rescales img to exactly w x h with CatmullRom filtering. The result is
// premultiplied, so transparent edges do not darken. Images that already have
// the requested size are returned unchanged.
func Fit(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h && b.Min == (image.Point{}) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
