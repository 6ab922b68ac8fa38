package scene

import "scanline-renderer/internal/mathutil"

// Camera describes the view projection. View space has the camera at the origin
// looking down -Z with +Y up; screen space has x to the right and y down, in pixels.
type Camera struct {
	// Lens is the focal length in millimetres on a 32mm wide sensor.
	Lens       float64 `json:"lens" toml:"lens" yaml:"lens"`
	Ortho      bool    `json:"ortho" toml:"ortho" yaml:"ortho"`
	OrthoScale float64 `json:"ortho_scale" toml:"ortho_scale" yaml:"ortho_scale"`
	// Panorama maps the sky over a full turn horizontally.
	Panorama bool    `json:"panorama" toml:"panorama" yaml:"panorama"`
	Near     float64 `json:"near" toml:"near" yaml:"near"`

	cx, cy, scale float64
}

func (c *Camera) setup(width, height int) {
	c.cx = float64(width) / 2
	c.cy = float64(height) / 2
	if c.Ortho {
		c.scale = float64(width) / c.OrthoScale
	} else {
		c.scale = float64(width) / 2 * c.Lens / 16
	}
}

// Scale returns pixels per view unit at distance 1 (perspective) or per view unit (ortho).
func (c *Camera) Scale() float64 { return c.scale }

// Depth maps a positive view distance to the value stored in the A-buffer.
// Perspective depth is -1/d, which interpolates linearly in screen space.
// Smaller values are always nearer.
func (c *Camera) Depth(d float64) float64 {
	if c.Ortho {
		return d
	}
	if d <= 0 {
		return 0
	}
	return -1 / d
}

// Distance is the inverse of Depth.
func (c *Camera) Distance(z float64) float64 {
	if c.Ortho {
		return z
	}
	if z >= 0 {
		return 0
	}
	return -1 / z
}

// ToScreen projects a view-space point and returns its screen position, buffer depth
// and view distance. ok is false for points closer than the near plane.
func (c *Camera) ToScreen(p mathutil.Vec3) (win mathutil.Vec3, dist float64, ok bool) {
	dist = -p[2]
	if dist < c.Near {
		return mathutil.Vec3{}, dist, false
	}
	f := c.scale
	if !c.Ortho {
		f /= dist
	}
	return mathutil.Vec3{c.cx + p[0]*f, c.cy - p[1]*f, c.Depth(dist)}, dist, true
}

// Unproject returns the view-space point at screen position (sx, sy) and buffer depth z.
func (c *Camera) Unproject(sx, sy, z float64) mathutil.Vec3 {
	d := c.Distance(z)
	f := 1 / c.scale
	if !c.Ortho {
		f *= d
	}
	return mathutil.Vec3{(sx - c.cx) * f, -(sy - c.cy) * f, -d}
}

// Ray returns the eye ray through screen position (sx, sy). For perspective
// cameras the origin is the eye and dir has unit length along -Z; for ortho
// cameras the origin lies on the image plane and dir is -Z.
func (c *Camera) Ray(sx, sy float64) (origin, dir mathutil.Vec3) {
	px := (sx - c.cx) / c.scale
	py := -(sy - c.cy) / c.scale
	if c.Ortho {
		return mathutil.Vec3{px, py, 0}, mathutil.Vec3{0, 0, -1}
	}
	return mathutil.Vec3{}, mathutil.Vec3{px, py, -1}
}

// ViewDir returns the normalized direction from the eye through screen position (sx, sy).
func (c *Camera) ViewDir(sx, sy float64) mathutil.Vec3 {
	_, d := c.Ray(sx, sy)
	return d.Normalize()
}
