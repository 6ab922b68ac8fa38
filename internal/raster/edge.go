package raster

import (
	"math"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// RasterizeEdge draws the wire edge v1-v2 for subsample s with a DDA along its
// dominant axis, inserting one record per step. Depth is interpolated linearly
// and biased by zofs. It returns false for zero-length edges.
func (r *Rasterizer) RasterizeEdge(b *abuf.Band, idx scene.Index, v1, v2 mathutil.Vec3, zofs float64, s int) bool {
	jx, jy := r.cfg.Jitter[s][0], r.cfg.Jitter[s][1]
	dx := v2[0] - v1[0]
	dy := v2[1] - v1[1]
	if math.Abs(dx) < 1e-9 && math.Abs(dy) < 1e-9 {
		return false
	}
	y0, y1 := b.Bounds()
	w := b.Width()

	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			v1, v2 = v2, v1
			dx, dy = -dx, -dy
		}
		xs, xe := span(v1[0]-jx-0.5, v2[0]-jx+0.5, 0, w)
		for x := xs; x < xe; x++ {
			t := mathutil.Clamp01((float64(x) + jx - v1[0]) / dx)
			y := int(math.Floor(v1[1] + t*dy - jy + 0.5))
			if y < y0 || y >= y1 {
				continue
			}
			b.Insert(x, y, idx, v1[2]+t*(v2[2]-v1[2])-zofs, s)
		}
		return true
	}

	if dy < 0 {
		v1, v2 = v2, v1
		dx, dy = -dx, -dy
	}
	ys, ye := span(v1[1]-jy-0.5, v2[1]-jy+0.5, y0, y1)
	for y := ys; y < ye; y++ {
		t := mathutil.Clamp01((float64(y) + jy - v1[1]) / dy)
		x := int(math.Floor(v1[0] + t*dx - jx + 0.5))
		if x < 0 || x >= w {
			continue
		}
		b.Insert(x, y, idx, v1[2]+t*(v2[2]-v1[2])-zofs, s)
	}
	return true
}
