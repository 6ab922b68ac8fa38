package shade

import (
	"math"

	"github.com/chewxy/math32"

	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// ShadeSurfacePoint shades face idx at pixel (x, y) of the current field and
// returns straight RGBA in linear light. The point is placed at the centroid of
// the subsamples in mask, so a single bit shades exactly that subsample.
func (s *Shader) ShadeSurfacePoint(x, y int, idx scene.Index, mask uint16) [4]float32 {
	m := s.sc.MaterialOf(idx)
	a, b, c, ok := s.sc.Corners(idx)
	if m == nil || !ok {
		return [4]float32{}
	}
	ox, oy := s.cfg.Centroid(mask)
	sx, sy := s.frame(float64(x)+ox, float64(y)+oy)

	pt, ok := s.surfacePoint(sx, sy, m, &s.sc.Faces[idx.Face()], a, b, c)
	if !ok {
		return [4]float32{}
	}
	alpha := m.Opacity()
	if m.Texture != "" && s.tex != nil {
		if t, ok := s.tex.Texture(m.Texture, pt.UV[0], pt.UV[1]); ok && t[3] > 0 {
			for i := range pt.Color {
				pt.Color[i] *= t[i] / t[3]
			}
			alpha *= t[3]
		}
	}

	var rgb [3]float32
	if m.Shadeless {
		rgb = pt.Color
	} else {
		front := s.lamps.Shade(&pt)
		rgb = lit(&pt, front, m)
		alpha *= front.Alpha
		if m.Translucency > 0 {
			back := pt
			back.Normal = pt.Normal.Neg()
			back.Backface = !pt.Backface
			tr := mathutil.Clamp01f(m.Translucency)
			rgbBack := lit(&back, s.lamps.Shade(&back), m)
			for i := range rgb {
				rgb[i] = rgb[i]*(1-tr) + rgbBack[i]*tr
			}
		}
	}

	if s.cfg.RayTrace && s.ray != nil && m.RayMirror > 0 {
		if mir, ok := s.ray.Trace(&pt); ok {
			rm := mathutil.Clamp01f(m.RayMirror)
			for i := range rgb {
				rgb[i] = rgb[i]*(1-rm) + mir[i]*rm
			}
		}
	}

	if !m.NoMist {
		alpha *= 1 - s.MistFactor(-pt.Co[2], pt.Co[1])
	}

	out := [4]float32{rgb[0], rgb[1], rgb[2], mathutil.Clamp01f(alpha)}
	for _, v := range out {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return [4]float32{}
		}
	}
	return out
}

func lit(p *Point, l Light, m *scene.Material) [3]float32 {
	var rgb [3]float32
	for i := range rgb {
		rgb[i] = p.Color[i]*(l.Diffuse[i]+m.Emit) + l.Specular[i]
	}
	return rgb
}

// surfacePoint intersects the eye ray through frame position (sx, sy) with the
// triangle's plane and interpolates the vertex attributes there. Barycentric
// weights are computed in view space, so the result is perspective-correct.
func (s *Shader) surfacePoint(sx, sy float64, m *scene.Material, f *scene.Face, a, b, c int) (Point, bool) {
	va, vb, vc := &s.sc.Verts[a], &s.sc.Verts[b], &s.sc.Verts[c]
	n := vb.Co.Sub(va.Co).Cross(vc.Co.Sub(va.Co))
	nn := n.Dot(n)
	if nn == 0 || math.IsNaN(nn) {
		return Point{}, false
	}

	origin, dir := s.sc.Camera.Ray(sx, sy)
	var p mathutil.Vec3
	if den := n.Dot(dir); math.Abs(den) > 1e-12*math.Sqrt(nn) {
		t := n.Dot(va.Co.Sub(origin)) / den
		p = origin.Add(dir.Scale(t))
	} else {
		// edge-on: fall back to the vertex nearest on screen
		p = nearest(sx, sy, va, vb, vc).Co
	}

	wa := n.Dot(vb.Co.Sub(p).Cross(vc.Co.Sub(p))) / nn
	wb := n.Dot(vc.Co.Sub(p).Cross(va.Co.Sub(p))) / nn
	wc := 1 - wa - wb

	pt := Point{
		Co:       p,
		UV:       [2]float64{wa*va.UV[0] + wb*vb.UV[0] + wc*vc.UV[0], wa*va.UV[1] + wb*vb.UV[1] + wc*vc.UV[1]},
		Color:    m.Color,
		Material: m,
	}
	if s.sc.Camera.Ortho {
		pt.View = mathutil.Vec3{0, 0, -1}
	} else {
		pt.View = p.Normalize()
	}

	face := n.Scale(1 / math.Sqrt(nn))
	pt.Normal = face
	if f.Smooth {
		if sm := mathutil.Weighted(va.No, vb.No, vc.No, wa, wb, wc); sm.Len() > 0 {
			pt.Normal = sm.Normalize()
		}
	}
	if face.Dot(pt.View) > 0 {
		pt.Normal = pt.Normal.Neg()
		pt.Backface = true
	}
	return pt, true
}

func nearest(sx, sy float64, vs ...*scene.Vertex) *scene.Vertex {
	best, bestD := vs[0], math.Inf(1)
	for _, v := range vs {
		dx, dy := v.Win[0]-sx, v.Win[1]-sy
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = v, d
		}
	}
	return best
}
