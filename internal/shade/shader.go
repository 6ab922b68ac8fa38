// Package shade computes the colour of surface points, halos and the sky at
// screen positions. Shaders never fail: anything that cannot be resolved shades
// as transparent black.
package shade

import (
	"image"

	"scanline-renderer/internal/config"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
	"scanline-renderer/internal/texture"
)

// Point is a surface point handed to the lighting and ray collaborators.
type Point struct {
	Co       mathutil.Vec3 // view space
	Normal   mathutil.Vec3 // unit, facing the viewer
	View     mathutil.Vec3 // unit, from the eye towards Co
	UV       [2]float64
	Color    [3]float32 // base colour after texturing
	Material *scene.Material
	Backface bool
}

// Light is the result of a lamp loop: colour is Color*Diffuse + Specular.
type Light struct {
	Diffuse  [3]float32
	Specular [3]float32
	// Alpha scales the surface alpha, 1 for ordinary lamps.
	Alpha float32
}

// LampShader accumulates the light falling on a surface point.
type LampShader interface {
	Shade(p *Point) Light
}

// RayTracer returns the mirrored colour seen from a surface point.
type RayTracer interface {
	Trace(p *Point) (color [3]float32, ok bool)
}

// Texturer looks up a named texture at (u, v) and returns premultiplied RGBA.
type Texturer interface {
	Texture(name string, u, v float64) ([4]float32, bool)
}

// Shader evaluates surfaces, halos and the sky for one render. It is read-only
// after New and safe for concurrent use; ForField returns a copy bound to one
// field of an interlaced frame.
type Shader struct {
	cfg *config.RenderConfig
	sc  *scene.Scene

	lamps      LampShader
	ray        RayTracer
	tex        Texturer
	background *image.RGBA

	parity int
}

// Option configures a Shader.
type Option func(*Shader)

// WithLamps replaces the default lamp loop.
func WithLamps(l LampShader) Option { return func(s *Shader) { s.lamps = l } }

// WithRayTracer enables mirror reflections through rt when the render config
// asks for ray tracing.
func WithRayTracer(rt RayTracer) Option { return func(s *Shader) { s.ray = rt } }

// WithTexturer sets the texture collaborator.
func WithTexturer(t Texturer) Option { return func(s *Shader) { s.tex = t } }

// WithResolver uses r for image textures and for the world background image.
func WithResolver(r texture.Resolver) Option {
	return func(s *Shader) {
		s.tex = ImageTextures{Resolver: r}
		if s.sc.World.Image == "" {
			return
		}
		if img := r.Resolve(s.sc.World.Image); img != nil {
			s.background = texture.Fit(img, s.cfg.Width, s.cfg.Height)
		}
	}
}

// New returns a Shader for a projected scene.
func New(cfg *config.RenderConfig, sc *scene.Scene, opts ...Option) *Shader {
	s := &Shader{cfg: cfg, sc: sc}
	for _, o := range opts {
		o(s)
	}
	if s.lamps == nil {
		s.lamps = NewLamps(sc)
	}
	return s
}

// ForField returns a Shader that maps raster rows of the given field parity
// back to frame rows.
func (s *Shader) ForField(parity int) *Shader {
	c := *s
	c.parity = parity
	return &c
}

// frame maps a raster-space position to frame space.
func (s *Shader) frame(x, y float64) (float64, float64) {
	return x, s.cfg.FrameY(y, s.parity)
}

// ImageTextures is the default Texturer, sampling decoded images bilinearly.
type ImageTextures struct {
	Resolver texture.Resolver
}

// Texture implements Texturer.
func (t ImageTextures) Texture(name string, u, v float64) ([4]float32, bool) {
	if t.Resolver == nil {
		return [4]float32{}, false
	}
	img := t.Resolver.Resolve(name)
	if img == nil {
		return [4]float32{}, false
	}
	return texture.Sample(img, u, v), true
}
