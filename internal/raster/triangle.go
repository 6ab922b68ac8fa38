package raster

import (
	"math"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// Plane is the depth plane z = A*x + B*y + C of a triangle in raster space.
type Plane struct {
	A, B, C float64
	OK      bool
}

// PlaneOf fits a depth plane through three raster-space vertices. ok is false
// when the triangle has no screen area.
func PlaneOf(v1, v2, v3 mathutil.Vec3) (Plane, bool) {
	n := v2.Sub(v1).Cross(v3.Sub(v1))
	if math.Abs(n[2]) < 1e-12 || math.IsNaN(n[2]) {
		return Plane{}, false
	}
	a := -n[0] / n[2]
	b := -n[1] / n[2]
	return Plane{A: a, B: b, C: v1[2] - a*v1[0] - b*v1[1], OK: true}, true
}

// At evaluates the plane.
func (p Plane) At(x, y float64) float64 { return p.A*x + p.B*y + p.C }

// RasterizeFace inserts subsample s of triangle (v1, v2, v3) into every pixel of b
// whose jittered sample position it covers, at the interpolated depth minus zofs.
// Coverage is half-open on both axes, so triangles sharing an edge never both
// cover a sample on it. It returns false for degenerate triangles.
func (r *Rasterizer) RasterizeFace(b *abuf.Band, idx scene.Index, v1, v2, v3 mathutil.Vec3, zofs float64, s int) bool {
	pl, ok := PlaneOf(v1, v2, v3)
	if !ok {
		return false
	}
	r.fillTriangle(b, idx, [3]mathutil.Vec3{v1, v2, v3}, pl, zofs, s)
	return true
}

// fillTriangle walks the rows of the band between the top and bottom vertex and
// fills the span between the long edge and the active short edge.
func (r *Rasterizer) fillTriangle(b *abuf.Band, idx scene.Index, v [3]mathutil.Vec3, pl Plane, zofs float64, s int) {
	// Sort by y: top, mid, bottom
	t, m, bt := v[0], v[1], v[2]
	if m[1] < t[1] {
		t, m = m, t
	}
	if bt[1] < m[1] {
		m, bt = bt, m
	}
	if m[1] < t[1] {
		t, m = m, t
	}
	if bt[1] <= t[1] {
		return
	}

	jx, jy := r.cfg.Jitter[s][0], r.cfg.Jitter[s][1]
	y0, y1 := b.Bounds()
	rowStart, rowEnd := span(t[1]-jy, bt[1]-jy, y0, y1)
	w := b.Width()

	for y := rowStart; y < rowEnd; y++ {
		sy := float64(y) + jy
		xl := edgeX(t, bt, sy)
		var xr float64
		if sy < m[1] {
			xr = edgeX(t, m, sy)
		} else {
			xr = edgeX(m, bt, sy)
		}
		if xl > xr {
			xl, xr = xr, xl
		}
		xs, xe := span(xl-jx, xr-jx, 0, w)
		for x := xs; x < xe; x++ {
			z := pl.At(float64(x)+jx, sy) - zofs
			b.Insert(x, y, idx, z, s)
		}
	}
}

// edgeX returns the x where edge p-q crosses the horizontal line at y.
func edgeX(p, q mathutil.Vec3, y float64) float64 {
	dy := q[1] - p[1]
	if dy == 0 {
		return p[0]
	}
	return p[0] + (y-p[1])*(q[0]-p[0])/dy
}

// span returns the integers i in [lo, hi) with from <= i < to, as a half-open range.
func span(from, to float64, lo, hi int) (int, int) {
	from = math.Max(from, float64(lo))
	to = math.Min(to, float64(hi))
	if !(from < to) {
		return lo, lo
	}
	return int(math.Ceil(from)), int(math.Ceil(to))
}
