package scene

import (
	"scanline-renderer/internal/mathutil"
)

// Scene is one frame of render input: view-space geometry, halos, lamps and
// world settings. It is read-only while a render is in flight; Project is the
// only method that writes to it.
type Scene struct {
	Camera    Camera     `json:"camera" toml:"camera" yaml:"camera"`
	World     World      `json:"world" toml:"world" yaml:"world"`
	Verts     []Vertex   `json:"verts" toml:"verts" yaml:"verts"`
	Faces     []Face     `json:"faces" toml:"faces" yaml:"faces"`
	Materials []Material `json:"materials" toml:"materials" yaml:"materials"`
	Halos     []Halo     `json:"halos" toml:"halos" yaml:"halos"`
	Lamps     []Lamp     `json:"lamps" toml:"lamps" yaml:"lamps"`
}

// Vertex is a view-space vertex (camera at the origin looking down -Z, +Y up).
type Vertex struct {
	Co mathutil.Vec3 `json:"co" toml:"co" yaml:"co"`
	No mathutil.Vec3 `json:"no" toml:"no" yaml:"no"`
	UV [2]float64    `json:"uv" toml:"uv" yaml:"uv"`

	// Win is the screen position (x right, y down, in pixels) and depth, set by Project.
	Win mathutil.Vec3 `json:"-" toml:"-" yaml:"-"`
	// Dist is the distance along the view axis, set by Project.
	Dist float64 `json:"-" toml:"-" yaml:"-"`
	// Clipped is set by Project for vertices behind the near plane.
	Clipped bool `json:"-" toml:"-" yaml:"-"`
}

// Face is a triangle or quad referencing Verts.
type Face struct {
	Verts    []int `json:"verts" toml:"verts" yaml:"verts"`
	Material int   `json:"material" toml:"material" yaml:"material"`
	Smooth   bool  `json:"smooth" toml:"smooth" yaml:"smooth"`

	// Normal is the view-space face normal, set by Project.
	Normal mathutil.Vec3 `json:"-" toml:"-" yaml:"-"`
}

// IsQuad reports whether the face has four corners.
func (f *Face) IsQuad() bool { return len(f.Verts) == 4 }

// Material holds the per-face appearance parameters the renderer needs.
type Material struct {
	Name     string     `json:"name" toml:"name" yaml:"name"`
	Kind     Kind       `json:"kind" toml:"kind" yaml:"kind"`
	Color    [3]float32 `json:"color" toml:"color" yaml:"color"`
	// Alpha is nil when omitted, meaning fully opaque; see Opacity.
	Alpha    *float32   `json:"alpha" toml:"alpha" yaml:"alpha"`
	Ambient  float32    `json:"ambient" toml:"ambient" yaml:"ambient"`
	Emit     float32    `json:"emit" toml:"emit" yaml:"emit"`
	Specular float32    `json:"specular" toml:"specular" yaml:"specular"`
	Hardness float32    `json:"hardness" toml:"hardness" yaml:"hardness"`

	// Blend selects how the face composites over what lies behind it.
	Blend Blend `json:"blend" toml:"blend" yaml:"blend"`
	// Add turns alpha blending into additive glow: 0 is plain over, 1 is pure add.
	Add float32 `json:"add" toml:"add" yaml:"add"`
	// ZOffset nudges transparent faces towards the camera in sort order (view units).
	ZOffset float64 `json:"z_offset" toml:"z_offset" yaml:"z_offset"`

	FullOSA      bool    `json:"full_osa" toml:"full_osa" yaml:"full_osa"`
	Translucency float32 `json:"translucency" toml:"translucency" yaml:"translucency"`
	RayMirror    float32 `json:"ray_mirror" toml:"ray_mirror" yaml:"ray_mirror"`
	NoMist       bool    `json:"no_mist" toml:"no_mist" yaml:"no_mist"`
	Shadeless    bool    `json:"shadeless" toml:"shadeless" yaml:"shadeless"`
	Texture      string  `json:"texture" toml:"texture" yaml:"texture"`
}

// Opacity returns the material alpha, 1 when unset.
func (m *Material) Opacity() float32 {
	if m.Alpha == nil {
		return 1
	}
	return *m.Alpha
}

// Opaque reports whether nothing behind a face with this material can show through.
func (m *Material) Opaque() bool {
	return m.Kind == KindSolid && m.Blend == BlendAlpha && m.Opacity() >= 1 && m.Add == 0 && m.Texture == ""
}

// F32 returns a pointer to v, for optional fields such as Material.Alpha.
func F32(v float32) *float32 { return &v }

// Halo is a screen-aligned billboard.
type Halo struct {
	Co    mathutil.Vec3 `json:"co" toml:"co" yaml:"co"`
	Size  float64       `json:"size" toml:"size" yaml:"size"`
	Color [3]float32    `json:"color" toml:"color" yaml:"color"`
	// Alpha is the peak opacity at the centre; nil means 1.
	Alpha *float32 `json:"alpha" toml:"alpha" yaml:"alpha"`
	// Hard is the falloff hardness, 1..127; higher values give a flatter core.
	Hard      int     `json:"hard" toml:"hard" yaml:"hard"`
	Add       float32 `json:"add" toml:"add" yaml:"add"`
	Rings     int     `json:"rings" toml:"rings" yaml:"rings"`
	Lines     int     `json:"lines" toml:"lines" yaml:"lines"`
	Stars     int     `json:"stars" toml:"stars" yaml:"stars"`
	Seed      int     `json:"seed" toml:"seed" yaml:"seed"`
	SoftDepth float64 `json:"soft_depth" toml:"soft_depth" yaml:"soft_depth"`

	// Screen centre, depth, pixel radius and view distance, set by Project.
	X, Y, Z float64 `json:"-" toml:"-" yaml:"-"`
	Radius  float64 `json:"-" toml:"-" yaml:"-"`
	Dist    float64 `json:"-" toml:"-" yaml:"-"`
	Clipped bool    `json:"-" toml:"-" yaml:"-"`
}

// Opacity returns the halo peak alpha, 1 when unset.
func (h *Halo) Opacity() float32 {
	if h.Alpha == nil {
		return 1
	}
	return *h.Alpha
}

// Lamp is a light source in view space.
type Lamp struct {
	Kind     LampKind      `json:"kind" toml:"kind" yaml:"kind"`
	Co       mathutil.Vec3 `json:"co" toml:"co" yaml:"co"`
	Dir      mathutil.Vec3 `json:"dir" toml:"dir" yaml:"dir"`
	Color    [3]float32    `json:"color" toml:"color" yaml:"color"`
	Energy   float32       `json:"energy" toml:"energy" yaml:"energy"`
	Dist     float64       `json:"dist" toml:"dist" yaml:"dist"`
	SpotSize float64       `json:"spot_size" toml:"spot_size" yaml:"spot_size"`
	// SpotBlend softens the spot cone edge, 0..1.
	SpotBlend float64 `json:"spot_blend" toml:"spot_blend" yaml:"spot_blend"`
	// Halo is the strength of the screen-space glow drawn around the lamp.
	Halo float32 `json:"halo" toml:"halo" yaml:"halo"`

	X, Y    float64 `json:"-" toml:"-" yaml:"-"`
	Visible bool    `json:"-" toml:"-" yaml:"-"`
}

// World holds background and ambient settings.
type World struct {
	Horizon [3]float32 `json:"horizon" toml:"horizon" yaml:"horizon"`
	Zenith  [3]float32 `json:"zenith" toml:"zenith" yaml:"zenith"`
	Ambient [3]float32 `json:"ambient" toml:"ambient" yaml:"ambient"`
	Blend   bool       `json:"blend" toml:"blend" yaml:"blend"`
	Real    bool       `json:"real" toml:"real" yaml:"real"`
	Paper   bool       `json:"paper" toml:"paper" yaml:"paper"`
	// Pitch tilts the sky relative to the view, in degrees.
	Pitch float64 `json:"pitch" toml:"pitch" yaml:"pitch"`
	// Image is a background picture, resolved relative to the scene file.
	Image   string `json:"image" toml:"image" yaml:"image"`
	Texture string `json:"texture" toml:"texture" yaml:"texture"`
	// Transparent renders the sky with zero alpha.
	Transparent bool `json:"transparent" toml:"transparent" yaml:"transparent"`
}

// MaterialOf returns the material of the primitive behind idx, or nil for halos,
// the sky, and faces whose material reference is out of range.
func (s *Scene) MaterialOf(idx Index) *Material {
	f := idx.Face()
	if f < 0 || f >= len(s.Faces) {
		return nil
	}
	m := s.Faces[f].Material
	if m < 0 || m >= len(s.Materials) {
		return nil
	}
	return &s.Materials[m]
}

// HaloOf returns the halo behind idx or nil.
func (s *Scene) HaloOf(idx Index) *Halo {
	h := idx.Halo()
	if h < 0 || h >= len(s.Halos) {
		return nil
	}
	return &s.Halos[h]
}

// Corners returns the three vertex indices of the triangle behind idx.
// ok is false for halos, the sky and malformed faces.
func (s *Scene) Corners(idx Index) (a, b, c int, ok bool) {
	fi := idx.Face()
	if fi < 0 || fi >= len(s.Faces) {
		return 0, 0, 0, false
	}
	f := &s.Faces[fi]
	n := len(s.Verts)
	for _, v := range f.Verts {
		if v < 0 || v >= n {
			return 0, 0, 0, false
		}
	}
	switch {
	case len(f.Verts) == 3 && !idx.IsQuadHalf():
		return f.Verts[0], f.Verts[1], f.Verts[2], true
	case len(f.Verts) == 4 && !idx.IsQuadHalf():
		return f.Verts[0], f.Verts[1], f.Verts[2], true
	case len(f.Verts) == 4:
		return f.Verts[0], f.Verts[2], f.Verts[3], true
	}
	return 0, 0, 0, false
}
