// Package raster scan-converts faces, wire edges and halos into A-buffer
// records, one band of scanlines at a time.
package raster

import (
	"math"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// Stats counts primitives skipped or rasterized for one field.
type Stats struct {
	Triangles  int // filled triangles
	Edges      int // wire edges
	Halos      int
	Degenerate int // zero-area triangles, zero-length edges, zero-radius halos
	Clipped    int // primitives behind the near plane
	Malformed  int // faces with bad vertex counts or references
}

// Rasterizer fills A-buffer bands from a projected scene. Vertices are mapped to
// raster space once, so a field of an interlaced frame has its own Rasterizer.
// It only reads the scene and may be shared by readers once built.
type Rasterizer struct {
	cfg    *config.RenderConfig
	sc     *scene.Scene
	parity int

	faces []faceSetup
	halos []haloSetup
	stats Stats
}

type triangle struct {
	idx   scene.Index
	v     [3]mathutil.Vec3
	plane Plane
}

type edge struct {
	idx  scene.Index
	a, b mathutil.Vec3
}

type faceSetup struct {
	tris       []triangle
	edges      []edge
	zofs       float64
	ymin, ymax float64
}

type haloSetup struct {
	x, y, z float64
	rx, ry  float64
}

// New prepares the scene for rasterizing the field with the given parity
// (always 0 for progressive frames). The scene must already be projected.
func New(cfg *config.RenderConfig, sc *scene.Scene, parity int) *Rasterizer {
	r := &Rasterizer{
		cfg:    cfg,
		sc:     sc,
		parity: parity,
		faces:  make([]faceSetup, len(sc.Faces)),
		halos:  make([]haloSetup, len(sc.Halos)),
	}

	verts := make([]mathutil.Vec3, len(sc.Verts))
	for i, v := range sc.Verts {
		verts[i] = mathutil.Vec3{v.Win[0], cfg.RasterY(v.Win[1], parity), v.Win[2]}
	}

	for i := range sc.Faces {
		r.setupFace(i, verts)
	}
	for i := range sc.Halos {
		r.setupHalo(i)
	}
	return r
}

func (r *Rasterizer) setupFace(i int, verts []mathutil.Vec3) {
	f := &r.sc.Faces[i]
	fs := &r.faces[i]

	n := len(f.Verts)
	if n != 3 && n != 4 {
		r.stats.Malformed++
		return
	}
	nearest := math.Inf(1)
	for _, v := range f.Verts {
		if v < 0 || v >= len(verts) {
			r.stats.Malformed++
			return
		}
		if r.sc.Verts[v].Clipped {
			r.stats.Clipped++
			return
		}
		nearest = min(nearest, r.sc.Verts[v].Dist)
	}

	wire := false
	if m := r.sc.MaterialOf(scene.FaceIndex(i)); m != nil {
		wire = m.Kind == scene.KindWire
		fs.zofs = r.zAdvantage(nearest, m.ZOffset)
	}

	fs.ymin, fs.ymax = math.Inf(1), math.Inf(-1)
	for _, v := range f.Verts {
		fs.ymin = min(fs.ymin, verts[v][1])
		fs.ymax = max(fs.ymax, verts[v][1])
	}

	c := func(k int) mathutil.Vec3 { return verts[f.Verts[k]] }
	if wire {
		idx := scene.FaceIndex(i)
		for k := 0; k < n; k++ {
			if n == 4 && k >= 2 {
				idx = scene.QuadHalfIndex(i)
			}
			fs.edges = append(fs.edges, edge{idx: idx, a: c(k), b: c((k + 1) % n)})
		}
		r.stats.Edges += n
	}

	add := func(idx scene.Index, a, b, cc mathutil.Vec3) {
		pl, ok := PlaneOf(a, b, cc)
		if !ok && !wire {
			r.stats.Degenerate++
			return
		}
		fs.tris = append(fs.tris, triangle{idx: idx, v: [3]mathutil.Vec3{a, b, cc}, plane: pl})
		if !wire {
			r.stats.Triangles++
		}
	}
	add(scene.FaceIndex(i), c(0), c(1), c(2))
	if n == 4 {
		add(scene.QuadHalfIndex(i), c(0), c(2), c(3))
	}
}

// zAdvantage converts a view-space nudge towards the camera into a depth bias
// at distance d. It only changes sort order, never coverage.
func (r *Rasterizer) zAdvantage(d, offset float64) float64 {
	if offset == 0 {
		return 0
	}
	cam := &r.sc.Camera
	near := max(d-offset, cam.Near)
	return math.Abs(cam.Depth(d) - cam.Depth(near))
}

func (r *Rasterizer) setupHalo(i int) {
	h := &r.sc.Halos[i]
	if h.Clipped {
		r.stats.Clipped++
		r.halos[i].rx = -1
		return
	}
	if h.Radius <= 0 || math.IsNaN(h.Radius) {
		r.stats.Degenerate++
		r.halos[i].rx = -1
		return
	}
	r.halos[i] = haloSetup{
		x:  h.X,
		y:  r.cfg.RasterY(h.Y, r.parity),
		z:  h.Z,
		rx: h.Radius,
		ry: h.Radius / float64(r.cfg.FieldStep()),
	}
	r.stats.Halos++
}

// Stats returns the primitive counts gathered when the Rasterizer was built.
func (r *Rasterizer) Stats() Stats { return r.stats }

// FillBand rasterizes every face for every subsample and then every halo into b,
// which must have been Reset to the rows to fill. Faces are visited in scene
// order so records of equal depth keep scene order.
func (r *Rasterizer) FillBand(b *abuf.Band) {
	y0, y1 := b.Bounds()
	lo, hi := float64(y0)-1, float64(y1)+1

	for i := range r.faces {
		fs := &r.faces[i]
		if len(fs.tris) == 0 && len(fs.edges) == 0 {
			continue
		}
		if fs.ymax < lo || fs.ymin > hi {
			continue
		}
		for s := 0; s < r.cfg.OSA; s++ {
			if len(fs.edges) > 0 {
				for _, e := range fs.edges {
					r.RasterizeEdge(b, e.idx, e.a, e.b, fs.zofs, s)
				}
				continue
			}
			for k := range fs.tris {
				t := &fs.tris[k]
				r.fillTriangle(b, t.idx, t.v, t.plane, fs.zofs, s)
			}
		}
	}
	r.RasterizeHalos(b)
}

// Depth returns the raster depth of primitive idx at raster position (x, y),
// including its z-advantage bias. ok is false for the sky and for primitives
// without a usable plane.
func (r *Rasterizer) Depth(idx scene.Index, x, y float64) (z float64, ok bool) {
	if h := idx.Halo(); h >= 0 {
		if h >= len(r.halos) || r.halos[h].rx < 0 {
			return 0, false
		}
		return r.halos[h].z, true
	}
	f := idx.Face()
	if f < 0 || f >= len(r.faces) {
		return 0, false
	}
	fs := &r.faces[f]
	for k := range fs.tris {
		t := &fs.tris[k]
		if t.idx == idx && t.plane.OK {
			return t.plane.At(x, y) - fs.zofs, true
		}
	}
	return 0, false
}
