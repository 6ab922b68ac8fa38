package shade

import (
	"github.com/chewxy/math32"

	"scanline-renderer/internal/config"
	"scanline-renderer/internal/mathutil"
)

// MistFactor returns how much of a point at view distance dist and view-space
// height is hidden by mist: 0 is clear, 1 is fully hidden. Mist thins out above
// the configured height.
func (s *Shader) MistFactor(dist, height float64) float32 {
	mist := &s.cfg.Mist
	if !mist.Enabled {
		return 0
	}
	var f float32
	if mist.Dist <= 0 {
		if dist > mist.Start {
			f = 1
		}
	} else {
		f = mathutil.Clamp01f(float32((dist - mist.Start) / mist.Dist))
	}

	switch mist.Kind {
	case config.MistQuadratic:
		f *= f
	case config.MistSqrt:
		f = math32.Sqrt(f)
	}

	if mist.Height > 0 && height > 0 {
		f *= mathutil.Clamp01f(float32(1 - height/mist.Height))
	}
	return mathutil.Clamp01f(f * mist.Intensity)
}
