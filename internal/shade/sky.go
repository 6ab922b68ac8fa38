package shade

import (
	"math"

	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/texture"
)

// ShadeSky returns the straight RGBA background at the centre of pixel (x, y).
// A background image is fetched directly at the frame row; otherwise the sky
// blends horizon to zenith by view direction.
func (s *Shader) ShadeSky(x, y int) [4]float32 {
	w := &s.sc.World
	if w.Transparent {
		return [4]float32{}
	}
	px, py := s.frame(float64(x)+0.5, float64(y)+0.5)

	if s.background != nil {
		p := texture.Fetch(s.background, x, int(math.Floor(py)))
		if p[3] > 0 {
			return [4]float32{p[0] / p[3], p[1] / p[3], p[2] / p[3], p[3]}
		}
		return [4]float32{}
	}

	dir := s.skyDir(px, py)
	rgb := w.Horizon
	if w.Blend {
		var t float32
		switch {
		case w.Paper:
			t = mathutil.Clamp01f(float32(1 - py/float64(s.cfg.Height)))
		case w.Real:
			t = float32(math.Abs(dir[1]))
		default:
			t = mathutil.Clamp01f(float32(0.5 + dir[1]))
		}
		for i := range rgb {
			rgb[i] = w.Horizon[i]*(1-t) + w.Zenith[i]*t
		}
	}

	if w.Texture != "" && s.tex != nil {
		u := 0.5 + math.Atan2(dir[0], -dir[2])/(2*math.Pi)
		v := 0.5 + math.Asin(mathutil.Clamp(dir[1], -1, 1))/math.Pi
		if t, ok := s.tex.Texture(w.Texture, u, v); ok && t[3] > 0 {
			for i := range rgb {
				rgb[i] = rgb[i]*(1-t[3]) + t[i]
			}
		}
	}
	return [4]float32{rgb[0], rgb[1], rgb[2], 1}
}

// skyDir is the view direction through a frame position, tilted by the world
// pitch. Panorama cameras spread the frame width over a full turn.
func (s *Shader) skyDir(px, py float64) mathutil.Vec3 {
	cam := &s.sc.Camera
	rot := mathutil.Mat3Identity()
	dir := cam.ViewDir(px, py)
	if cam.Panorama {
		yaw := (px/float64(s.cfg.Width) - 0.5) * 2 * math.Pi
		dir = cam.ViewDir(float64(s.cfg.Width)/2, py)
		rot = mathutil.RotY(-yaw)
	}
	if p := s.sc.World.Pitch; p != 0 {
		rot = mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(p)), rot)
	}
	return rot.MulVec3(dir)
}

// LampHaloGlow returns the additive screen-space glow of visible lamps with a
// halo strength at the centre of pixel (x, y), as premultiplied RGBA.
func (s *Shader) LampHaloGlow(x, y int) [4]float32 {
	var out [4]float32
	if !s.cfg.LampHalo {
		return out
	}
	px, py := s.frame(float64(x)+0.5, float64(y)+0.5)
	spread := 0.05 * float64(s.cfg.Width)
	for i := range s.sc.Lamps {
		l := &s.sc.Lamps[i]
		if !l.Visible || l.Halo <= 0 {
			continue
		}
		dx, dy := (px-l.X)/spread, (py-l.Y)/spread
		g := l.Halo * l.Energy / float32(1+dx*dx+dy*dy)
		for c := 0; c < 3; c++ {
			out[c] += l.Color[c] * g
		}
	}
	out[3] = mathutil.Clamp01f(max(out[0], out[1], out[2]))
	return out
}
