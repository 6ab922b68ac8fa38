package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

func testConfig(t *testing.T, c config.Config) *config.RenderConfig {
	t.Helper()
	c.Resolve(config.Flags{})
	rc, err := c.Build()
	require.NoError(t, err)
	return rc
}

func vert(x, y, z float64) scene.Vertex {
	return scene.Vertex{Win: mathutil.Vec3{x, y, z}, Dist: z}
}

func orthoScene(verts []scene.Vertex, faces ...scene.Face) *scene.Scene {
	return &scene.Scene{
		Camera:    scene.Camera{Ortho: true, Near: 0.1},
		Verts:     verts,
		Faces:     faces,
		Materials: []scene.Material{{}, {ZOffset: 0.5}, {Kind: scene.KindWire}},
	}
}

func fill(r *Rasterizer, w, h int) *abuf.Band {
	b := abuf.NewBand(w, h, 0)
	b.Reset(0, h)
	r.FillBand(b)
	return b
}

func TestSharedEdgeCoveredOnce(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 8, Height: 8, OSA: 1})
	sc := orthoScene(
		[]scene.Vertex{vert(1, 1, 2), vert(5, 1, 2), vert(5, 5, 2), vert(1, 5, 2)},
		scene.Face{Verts: []int{0, 1, 2, 3}},
	)
	b := fill(New(cfg, sc, 0), 8, 8)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			recs := b.Pixel(x, y, nil)
			inside := x >= 1 && x < 5 && y >= 1 && y < 5
			if !inside {
				assert.Empty(t, recs, "pixel %d,%d", x, y)
				continue
			}
			require.Len(t, recs, 1, "pixel %d,%d", x, y)
			assert.Equal(t, 2.0, recs[0].MinZ)
		}
	}
}

func TestDegenerateSkipped(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 8, Height: 8, OSA: 1})
	sc := orthoScene(
		[]scene.Vertex{vert(1, 1, 2), vert(3, 3, 2), vert(6, 6, 2), vert(2, 4, 1)},
		scene.Face{Verts: []int{0, 1, 2}},
		scene.Face{Verts: []int{0, 1}},
		scene.Face{Verts: []int{0, 1, 7}},
	)
	r := New(cfg, sc, 0)
	b := fill(r, 8, 8)
	assert.Zero(t, b.Len())

	st := r.Stats()
	assert.Equal(t, 1, st.Degenerate)
	assert.Equal(t, 2, st.Malformed)
	assert.Zero(t, st.Triangles)

	assert.False(t, r.RasterizeFace(b, scene.FaceIndex(0), sc.Verts[0].Win, sc.Verts[1].Win, sc.Verts[2].Win, 0, 0))
	assert.False(t, r.RasterizeEdge(b, scene.FaceIndex(0), sc.Verts[0].Win, sc.Verts[0].Win, 0, 0))
}

func TestClippedFaceSkipped(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 8, Height: 8, OSA: 1})
	sc := orthoScene(
		[]scene.Vertex{vert(1, 1, 2), vert(5, 1, 2), vert(5, 5, 2)},
		scene.Face{Verts: []int{0, 1, 2}},
	)
	sc.Verts[1].Clipped = true
	r := New(cfg, sc, 0)
	assert.Zero(t, fill(r, 8, 8).Len())
	assert.Equal(t, 1, r.Stats().Clipped)
}

func TestDepthPlane(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 16, Height: 16, OSA: 4})
	// z = 0.5*x + 0.25*y + 1
	z := func(x, y float64) float64 { return 0.5*x + 0.25*y + 1 }
	sc := orthoScene(
		[]scene.Vertex{vert(0, 0, z(0, 0)), vert(12, 0, z(12, 0)), vert(0, 12, z(0, 12))},
		scene.Face{Verts: []int{0, 1, 2}},
	)
	r := New(cfg, sc, 0)
	b := fill(r, 16, 16)

	got, ok := r.Depth(scene.FaceIndex(0), 3.3, 2.2)
	require.True(t, ok)
	assert.InDelta(t, z(3.3, 2.2), got, 1e-9)

	recs := b.Pixel(2, 3, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, cfg.FullMask, recs[0].Mask)
	assert.GreaterOrEqual(t, recs[0].MinZ, z(2, 3))
	assert.LessOrEqual(t, recs[0].MaxZ, z(3, 4))
	assert.Less(t, recs[0].MinZ, recs[0].MaxZ)

	_, ok = r.Depth(0, 1, 1)
	assert.False(t, ok)
}

func TestZAdvantageBias(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 8, Height: 8, OSA: 1})
	sc := orthoScene(
		[]scene.Vertex{vert(0, 0, 4), vert(8, 0, 4), vert(0, 8, 4)},
		scene.Face{Verts: []int{0, 1, 2}, Material: 1},
	)
	r := New(cfg, sc, 0)
	b := fill(r, 8, 8)
	recs := b.Pixel(1, 1, nil)
	require.Len(t, recs, 1)
	assert.InDelta(t, 3.5, recs[0].MinZ, 1e-12)

	got, ok := r.Depth(scene.FaceIndex(0), 1.5, 1.5)
	require.True(t, ok)
	assert.InDelta(t, 3.5, got, 1e-12)
}

func TestWireEdges(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 10, Height: 10, OSA: 1})
	sc := orthoScene(
		[]scene.Vertex{vert(1, 1, 2), vert(8, 1, 2), vert(8, 8, 2), vert(1, 8, 2)},
		scene.Face{Verts: []int{0, 1, 2, 3}, Material: 2},
	)
	r := New(cfg, sc, 0)
	b := fill(r, 10, 10)
	assert.Equal(t, 4, r.Stats().Edges)

	// the outline is drawn, the interior and the diagonal are not
	assert.NotEmpty(t, b.Pixel(4, 1, nil))
	assert.NotEmpty(t, b.Pixel(8, 4, nil))
	assert.NotEmpty(t, b.Pixel(4, 8, nil))
	assert.NotEmpty(t, b.Pixel(1, 4, nil))
	assert.Empty(t, b.Pixel(4, 4, nil))
	assert.Empty(t, b.Pixel(5, 5, nil))

	top := b.Pixel(4, 1, nil)
	assert.Equal(t, scene.FaceIndex(0), top[0].Index)
	bottom := b.Pixel(4, 8, nil)
	assert.Equal(t, scene.QuadHalfIndex(0), bottom[0].Index)
}

func TestHalosFullMaskClippedToBand(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 10, Height: 10, OSA: 5})
	sc := &scene.Scene{
		Camera: scene.Camera{Ortho: true},
		Halos:  []scene.Halo{{X: 5, Y: 5, Z: 3, Radius: 2}, {X: 1, Y: 1, Z: 1, Radius: 0}},
	}
	r := New(cfg, sc, 0)
	assert.Equal(t, 1, r.Stats().Halos)
	assert.Equal(t, 1, r.Stats().Degenerate)

	b := abuf.NewBand(10, 2, 0)
	b.Reset(6, 8)
	r.FillBand(b)
	for x := 0; x < 10; x++ {
		recs := b.Pixel(x, 6, nil)
		if x < 3 || x > 7 {
			assert.Empty(t, recs)
			continue
		}
		require.Len(t, recs, 1)
		assert.Equal(t, cfg.FullMask, recs[0].Mask)
		assert.Equal(t, scene.HaloIndex(0), recs[0].Index)
		assert.Equal(t, 3.0, recs[0].MinZ)
	}
	assert.Empty(t, b.Pixel(5, 8, nil))

	z, ok := r.Depth(scene.HaloIndex(0), 0, 0)
	require.True(t, ok)
	assert.Equal(t, 3.0, z)
	_, ok = r.Depth(scene.HaloIndex(1), 0, 0)
	assert.False(t, ok)
}

func TestFieldRasterSpace(t *testing.T) {
	cfg := testConfig(t, config.Config{Width: 8, Height: 8, OSA: 1, Fields: true})
	sc := orthoScene(
		[]scene.Vertex{vert(0, 0, 2), vert(8, 0, 2), vert(8, 8, 2), vert(0, 8, 2)},
		scene.Face{Verts: []int{0, 1, 2, 3}},
	)
	for _, parity := range []int{0, 1} {
		r := New(cfg, sc, parity)
		b := fill(r, 8, 4)
		for y := 0; y < 4; y++ {
			assert.Len(t, b.Pixel(3, y, nil), 1, "parity %d row %d", parity, y)
		}
		assert.Equal(t, 32, b.Len())
	}
}
