package shade

import (
	"math"

	"github.com/chewxy/math32"

	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// Lamps is the default LampShader: Lambert diffuse plus Blinn-Phong specular
// for every scene lamp, over the world ambient colour.
type Lamps struct {
	lamps   []scene.Lamp
	ambient [3]float32
}

// NewLamps builds the lamp loop for sc. A scene without lamps is lit by
// DefaultRig.
func NewLamps(sc *scene.Scene) *Lamps {
	lamps := sc.Lamps
	if len(lamps) == 0 {
		lamps = DefaultRig()
	}
	return &Lamps{lamps: lamps, ambient: sc.World.Ambient}
}

// DefaultRig returns a key sun, a cool rim sun and a hemisphere fill, the
// studio setup used when a scene brings no lamps of its own.
func DefaultRig() []scene.Lamp {
	key := mathutil.Vec3{180, 260, 140}.Normalize().Neg()
	rim := mathutil.Vec3{-160, 130, -210}.Normalize().Neg()
	return []scene.Lamp{
		{Kind: scene.LampSun, Dir: key, Color: [3]float32{1, 1, 1}, Energy: 0.9},
		{Kind: scene.LampSun, Dir: rim, Color: [3]float32{0.8, 0.85, 1}, Energy: 0.35},
		{Kind: scene.LampHemi, Dir: mathutil.Vec3{0, -1, 0}, Color: [3]float32{1, 1, 1}, Energy: 0.25},
	}
}

// Shade implements LampShader.
func (ls *Lamps) Shade(p *Point) Light {
	out := Light{Alpha: 1}
	m := p.Material
	amb := float32(0)
	spec, hard := float32(0.5), float32(50)
	if m != nil {
		amb, spec, hard = m.Ambient, m.Specular, m.Hardness
	}
	for i := range out.Diffuse {
		out.Diffuse[i] = ls.ambient[i] * amb
	}

	for i := range ls.lamps {
		l := &ls.lamps[i]
		dir, atten := lampVector(l, p.Co)
		if atten <= 0 {
			continue
		}
		ndl := float32(p.Normal.Dot(dir))
		energy := l.Energy * atten

		if l.Kind == scene.LampHemi {
			// Hemisphere fill
			hemi := 0.5*ndl + 0.5
			for c := range out.Diffuse {
				out.Diffuse[c] += l.Color[c] * energy * hemi
			}
			continue
		}
		if ndl <= 0 {
			continue
		}
		for c := range out.Diffuse {
			out.Diffuse[c] += l.Color[c] * energy * ndl
		}

		// Blinn-Phong specular
		if spec > 0 {
			half := dir.Sub(p.View).Normalize()
			ndh := float32(p.Normal.Dot(half))
			if ndh > 0 {
				s := math32.Pow(ndh, hard) * spec * energy
				for c := range out.Specular {
					out.Specular[c] += l.Color[c] * s
				}
			}
		}
	}
	return out
}

// lampVector returns the unit direction from co towards the lamp and the
// distance and cone attenuation of the lamp at co.
func lampVector(l *scene.Lamp, co mathutil.Vec3) (mathutil.Vec3, float32) {
	switch l.Kind {
	case scene.LampSun, scene.LampHemi:
		d := l.Dir
		if d.Len() == 0 {
			d = mathutil.Vec3{0, 0, -1}
		}
		return d.Normalize().Neg(), 1
	}

	toLamp := l.Co.Sub(co)
	dist := toLamp.Len()
	if dist == 0 {
		return mathutil.Vec3{0, 0, 1}, 0
	}
	dir := toLamp.Scale(1 / dist)
	atten := float32(1)
	if l.Dist > 0 {
		atten = float32(l.Dist / (l.Dist + dist))
	}
	if l.Kind != scene.LampSpot {
		return dir, atten
	}

	axis := l.Dir
	if axis.Len() == 0 {
		axis = mathutil.Vec3{0, 0, -1}
	}
	cosAng := -dir.Dot(axis.Normalize())
	cosCone := math.Cos(mathutil.Deg2Rad(l.SpotSize) / 2)
	if cosAng <= cosCone {
		return dir, 0
	}
	// soft edge over the outer SpotBlend fraction of the cone
	t := (cosAng - cosCone) / (1 - cosCone)
	if b := l.SpotBlend; b > 0 && t < b {
		x := t / b
		atten *= float32(x * x * (3 - 2*x))
	}
	return dir, atten
}
