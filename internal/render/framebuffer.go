package render

import (
	"image"

	"github.com/chewxy/math32"
)

// FrameBuffer receives finished scanlines. Color holds 8-bit premultiplied
// RGBA, row-major. Float, when allocated, mirrors the same values before
// quantization.
type FrameBuffer struct {
	Width, Height int
	Color         []uint8
	Float         []float32
}

// NewFrameBuffer allocates a cleared frame buffer, with a float mirror when
// float is set.
func NewFrameBuffer(width, height int, float bool) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  width,
		Height: height,
		Color:  make([]uint8, width*height*4),
	}
	if float {
		fb.Float = make([]float32, width*height*4)
	}
	return fb
}

// Image wraps Color without copying.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

// writeRow stores one row of premultiplied display values.
func (fb *FrameBuffer) writeRow(y int, px []float32) {
	off := y * fb.Width * 4
	for i, v := range px {
		fb.Color[off+i] = quantize(v)
	}
	if fb.Float != nil {
		copy(fb.Float[off:off+len(px)], px)
	}
}

func quantize(v float32) uint8 {
	switch {
	case v <= 0 || math32.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
