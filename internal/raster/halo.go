package raster

import (
	"math"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/scene"
)

// RasterizeHalos inserts every halo once into b over its bounding box, clipped
// to the band, with every subsample bit set. Halos are flat billboards, so
// they are not jittered per subsample.
func (r *Rasterizer) RasterizeHalos(b *abuf.Band) {
	y0, y1 := b.Bounds()
	w := b.Width()
	full := r.cfg.FullMask
	for i := range r.halos {
		h := &r.halos[i]
		if h.rx < 0 {
			continue
		}
		xs, xe := span(math.Floor(h.x-h.rx), math.Floor(h.x+h.rx)+1, 0, w)
		ys, ye := span(math.Floor(h.y-h.ry), math.Floor(h.y+h.ry)+1, y0, y1)
		idx := scene.HaloIndex(i)
		for y := ys; y < ye; y++ {
			for x := xs; x < xe; x++ {
				b.InsertMask(x, y, idx, h.z, full)
			}
		}
	}
}
