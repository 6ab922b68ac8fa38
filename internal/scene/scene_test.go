package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanline-renderer/internal/mathutil"
)

func TestIndexEncoding(t *testing.T) {
	assert.True(t, Index(0).IsSky())
	assert.Equal(t, -1, Index(0).Face())
	assert.Equal(t, -1, Index(0).Halo())

	f := FaceIndex(41)
	assert.Equal(t, 41, f.Face())
	assert.Equal(t, -1, f.Halo())
	assert.False(t, f.IsQuadHalf())

	q := QuadHalfIndex(41)
	assert.Equal(t, 41, q.Face())
	assert.True(t, q.IsQuadHalf())
	assert.NotEqual(t, f, q)

	h := HaloIndex(3)
	assert.True(t, h.IsHalo())
	assert.False(t, h.IsQuadHalf())
	assert.Equal(t, 3, h.Halo())
	assert.Equal(t, -1, h.Face())
}

func TestEnumText(t *testing.T) {
	var b Blend
	require.NoError(t, b.UnmarshalText([]byte("Erase")))
	assert.Equal(t, BlendErase, b)
	out, err := BlendEnv.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "env", string(out))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("")))
	assert.Equal(t, KindSolid, k)
	assert.ErrorIs(t, k.UnmarshalText([]byte("volume")), ErrInvalid)

	var l LampKind
	require.NoError(t, l.UnmarshalText([]byte("spot")))
	assert.Equal(t, LampSpot, l)
	assert.Equal(t, "unknown(9)", LampKind(9).String())
}

func TestCameraRoundTrip(t *testing.T) {
	for _, ortho := range []bool{false, true} {
		cam := Camera{Lens: 35, Ortho: ortho, OrthoScale: 4, Near: 0.1}
		cam.setup(200, 100)
		p := mathutil.Vec3{0.7, -0.3, -5}
		win, d, ok := cam.ToScreen(p)
		require.True(t, ok)
		assert.InDelta(t, 5.0, d, 1e-12)
		back := cam.Unproject(win[0], win[1], win[2])
		for i := range p {
			assert.InDelta(t, p[i], back[i], 1e-9, "ortho=%v axis %d", ortho, i)
		}
		assert.InDelta(t, d, cam.Distance(cam.Depth(d)), 1e-12)
	}
}

func TestCameraDepthOrdersNearFirst(t *testing.T) {
	cam := Camera{Lens: 35}
	assert.Less(t, cam.Depth(2), cam.Depth(3))
	ortho := Camera{Ortho: true}
	assert.Less(t, ortho.Depth(2), ortho.Depth(3))
}

func TestCameraNearClip(t *testing.T) {
	cam := Camera{Lens: 35, Near: 1}
	cam.setup(10, 10)
	_, _, ok := cam.ToScreen(mathutil.Vec3{0, 0, -0.5})
	assert.False(t, ok)
	win, _, ok := cam.ToScreen(mathutil.Vec3{0, 0, -2})
	require.True(t, ok)
	assert.Equal(t, 5.0, win[0])
	assert.Equal(t, 5.0, win[1])
}

func TestProject(t *testing.T) {
	s := &Scene{
		Camera: Camera{Ortho: true, OrthoScale: 2, Near: 0.1},
		Verts: []Vertex{
			{Co: mathutil.Vec3{-1, -1, -2}},
			{Co: mathutil.Vec3{1, -1, -2}},
			{Co: mathutil.Vec3{1, 1, -2}},
			{Co: mathutil.Vec3{-1, 1, -2}},
		},
		Faces:     []Face{{Verts: []int{0, 1, 2, 3}}},
		Materials: []Material{{}},
		Halos:     []Halo{{Co: mathutil.Vec3{0, 0, -3}, Size: 0.5}},
		Lamps:     []Lamp{{Kind: LampPoint, Co: mathutil.Vec3{0, 0, 1}}, {Kind: LampSpot, Co: mathutil.Vec3{0, 0, -1}}},
	}
	s.Project(20, 20)

	assert.Equal(t, mathutil.Vec3{0, 20, 2}, s.Verts[0].Win)
	assert.Equal(t, mathutil.Vec3{20, 0, 2}, s.Verts[2].Win)
	assert.InDelta(t, 1.0, s.Faces[0].Normal[2], 1e-12)

	h := s.Halos[0]
	assert.False(t, h.Clipped)
	assert.Equal(t, 10.0, h.X)
	assert.Equal(t, 10.0, h.Y)
	assert.Equal(t, 5.0, h.Radius)

	assert.False(t, s.Lamps[0].Visible)
	assert.True(t, s.Lamps[1].Visible)
}

func TestCorners(t *testing.T) {
	s := &Scene{
		Verts: make([]Vertex, 4),
		Faces: []Face{{Verts: []int{0, 1, 2, 3}}, {Verts: []int{0, 1, 9}}, {Verts: []int{0, 1}}},
	}
	a, b, c, ok := s.Corners(FaceIndex(0))
	require.True(t, ok)
	assert.Equal(t, [3]int{0, 1, 2}, [3]int{a, b, c})
	a, b, c, ok = s.Corners(QuadHalfIndex(0))
	require.True(t, ok)
	assert.Equal(t, [3]int{0, 2, 3}, [3]int{a, b, c})

	_, _, _, ok = s.Corners(FaceIndex(1))
	assert.False(t, ok)
	_, _, _, ok = s.Corners(FaceIndex(2))
	assert.False(t, ok)
	_, _, _, ok = s.Corners(FaceIndex(7))
	assert.False(t, ok)
	_, _, _, ok = s.Corners(HaloIndex(0))
	assert.False(t, ok)
}

func TestMaterialDefaults(t *testing.T) {
	var m Material
	assert.Equal(t, float32(1), m.Opacity())
	assert.True(t, m.Opaque())
	m.Alpha = F32(0.5)
	assert.Equal(t, float32(0.5), m.Opacity())
	assert.False(t, m.Opaque())
	assert.False(t, (&Material{Blend: BlendEnv}).Opaque())

	var h Halo
	assert.Equal(t, float32(1), h.Opacity())
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"s.json": `{"camera": {"lens": 50}, "verts": [{"co": [0,0,-1]}, {"co": [1,0,-1]}, {"co": [0,1,-1]}],
			"faces": [{"verts": [0,1,2]}], "materials": [{"blend": "env", "texture": "wood.png", "alpha": 0.25}],
			"world": {"image": "/abs/sky.png"}}`,
		"s.toml": `
[camera]
lens = 50.0

[[verts]]
co = [0.0, 0.0, -1.0]
[[verts]]
co = [1.0, 0.0, -1.0]
[[verts]]
co = [0.0, 1.0, -1.0]

[[faces]]
verts = [0, 1, 2]

[[materials]]
blend = "env"
texture = "wood.png"
alpha = 0.25

[world]
image = "/abs/sky.png"
`,
		"s.yaml": `
camera: {lens: 50}
verts:
  - co: [0, 0, -1]
  - co: [1, 0, -1]
  - co: [0, 1, -1]
faces:
  - verts: [0, 1, 2]
materials:
  - blend: env
    texture: wood.png
    alpha: 0.25
world:
  image: /abs/sky.png
`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			s, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, 50.0, s.Camera.Lens)
			assert.Equal(t, 0.1, s.Camera.Near)
			require.Len(t, s.Verts, 3)
			require.Len(t, s.Materials, 1)
			assert.Equal(t, BlendEnv, s.Materials[0].Blend)
			assert.Equal(t, float32(0.25), s.Materials[0].Opacity())
			assert.Equal(t, float32(50), s.Materials[0].Hardness)
			assert.Equal(t, filepath.Join(dir, "wood.png"), s.Materials[0].Texture)
			assert.Equal(t, "/abs/sky.png", s.World.Image)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestLoadBadBlend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"materials": [{"blend": "screen"}]}`), 0o644))
	_, err := Load(p)
	assert.ErrorContains(t, err, "scene: load")
}

func TestValidate(t *testing.T) {
	s := &Scene{
		Verts:     make([]Vertex, 3),
		Materials: []Material{{}},
		Faces: []Face{
			{Verts: []int{0, 1, 2}},
			{Verts: []int{0, 1}},
			{Verts: []int{0, 1, 5}},
			{Verts: []int{0, 1, 2}, Material: 3},
		},
		Halos: []Halo{{Size: 0}},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "face 1 has 2 vertices")
	assert.ErrorContains(t, err, "face 2 references vertex 5")
	assert.ErrorContains(t, err, "face 3 references material 3")
	assert.ErrorContains(t, err, "halo 0 has size 0")
}
