package shade

import (
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"

	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

const hashSize = 512

// hashTable holds fixed pseudo-random values in [0,1) for halo decorations, so
// a halo's rings and lines depend only on its seed.
var hashTable [hashSize]float32

func init() {
	r := rand.New(rand.NewPCG(0x5eed, 0x4a10))
	for i := range hashTable {
		hashTable[i] = r.Float32()
	}
}

func hash(seed, i, k int) float32 {
	return hashTable[(seed*31+i*7+k*131)&(hashSize-1)]
}

// ShadeHalo shades halo idx at the centre of pixel (x, y) and returns straight
// RGBA. opaqueDist is the view distance of the nearest opaque surface at the
// pixel, +Inf when there is none; a halo close in front of it fades out over
// the halo's SoftDepth.
func (s *Shader) ShadeHalo(x, y int, idx scene.Index, opaqueDist float64) [4]float32 {
	h := s.sc.HaloOf(idx)
	if h == nil || h.Clipped || h.Radius <= 0 {
		return [4]float32{}
	}
	px, py := s.frame(float64(x)+0.5, float64(y)+0.5)
	dx, dy := px-h.X, py-h.Y
	d2 := dx*dx + dy*dy
	r2 := h.Radius * h.Radius
	if d2 >= r2 {
		return [4]float32{}
	}
	rc := float32(math.Sqrt(d2 / r2))

	// hardness curve: 1 at the centre, 0 at the rim
	f := 1 - rc*rc
	switch {
	case h.Hard >= 30:
		f = math32.Sqrt(f)
		if h.Hard >= 40 {
			f = math32.Sin(f * math32.Pi / 2)
			if h.Hard >= 50 {
				f = math32.Sqrt(f)
			}
		}
	case h.Hard < 20:
		f *= f
	}

	angle := float32(math.Atan2(dy, dx))
	if h.Stars > 0 {
		star := math32.Abs(math32.Cos(angle * float32(h.Stars) / 2))
		star = math32.Pow(star, 8)
		f *= mathutil.Clamp01f(1 - rc/(0.15+0.85*star))
	}

	alpha := f
	if h.Rings > 0 {
		var ring float32
		const width = 0.04
		for i := 0; i < h.Rings; i++ {
			rr := 0.15 + 0.8*hash(h.Seed, i, 0)
			if v := 1 - math32.Abs(rc-rr)/width; v > 0 {
				ring += v * v
			}
		}
		alpha += 0.5 * ring
	}
	if h.Lines > 0 {
		var line float32
		dist := float32(math.Sqrt(d2))
		width := float32(0.02*h.Radius) + 0.5
		for i := 0; i < h.Lines; i++ {
			a := 2 * math32.Pi * hash(h.Seed, i, 1)
			perp := math32.Abs(math32.Sin(angle-a)) * dist
			if math32.Cos(angle-a) < 0 {
				continue
			}
			if v := 1 - perp/width; v > 0 {
				line += v * (1 - rc)
			}
		}
		alpha += line
	}

	alpha *= h.Opacity()
	if h.SoftDepth > 0 && !math.IsInf(opaqueDist, 1) {
		gap := opaqueDist - h.Dist
		alpha *= mathutil.Clamp01f(float32(gap / h.SoftDepth))
	}
	alpha *= 1 - s.MistFactor(h.Dist, h.Co[1])

	alpha = mathutil.Clamp01f(alpha)
	if math32.IsNaN(alpha) {
		return [4]float32{}
	}
	return [4]float32{h.Color[0], h.Color[1], h.Color[2], alpha}
}
