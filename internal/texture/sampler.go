package texture

import (
	"image"

	"scanline-renderer/internal/mathutil"
)

// Sample performs bilinear filtering with UV wrapping and returns premultiplied
// RGBA in [0,1]. v runs upwards: v=0 is the bottom row.
// Accesses img.Pix directly for performance.
func Sample(img *image.RGBA, u, v float64) [4]float32 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	// Wrap UVs
	u = u - float64(int(u))
	if u < 0 {
		u += 1.0
	}
	v = v - float64(int(v))
	if v < 0 {
		v += 1.0
	}
	v = 1 - v

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := float32(fx - float64(x0))
	dy := float32(fy - float64(y0))

	stride := img.Stride
	pix := img.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy) / 255
	w10 := dx * (1 - dy) / 255
	w01 := (1 - dx) * dy / 255
	w11 := dx * dy / 255

	var out [4]float32
	for c := 0; c < 4; c++ {
		out[c] = float32(pix[i00+c])*w00 + float32(pix[i10+c])*w10 + float32(pix[i01+c])*w01 + float32(pix[i11+c])*w11
	}
	return out
}

// Fetch returns the premultiplied RGBA texel at (x, y), clamped to the image.
func Fetch(img *image.RGBA, x, y int) [4]float32 {
	b := img.Rect
	x = mathutil.ClampInt(x, b.Min.X, b.Max.X-1)
	y = mathutil.ClampInt(y, b.Min.Y, b.Max.Y-1)
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return [4]float32{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
}
