// Package vis turns a pixel's A-buffer records into a shaded, depth-ordered
// paint stack and composites it front to back for every subsample.
package vis

import (
	"cmp"
	"math"
	"slices"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/scene"
)

// Color is premultiplied linear RGBA.
type Color [4]float32

// Kind tags what produced a stack entry.
type Kind uint8

const (
	KindPoly Kind = iota
	KindHalo
	KindSky
)

// Entry is one shaded layer of a pixel's paint stack.
type Entry struct {
	Kind  Kind
	Color Color
	Index scene.Index
	Mask  uint16
	// Conflict is the number of entries before this one in its conflict run:
	// a run of entries whose depth ranges overlap and must be reordered per
	// subsample. Zero starts a new run.
	Conflict   int
	MinZ, MaxZ float64
	Blend      scene.Blend
	Add        float32
}

// Shader is what the builder needs from the pixel shaders. Colours are straight
// RGBA; the builder premultiplies them.
type Shader interface {
	ShadeSurfacePoint(x, y int, idx scene.Index, mask uint16) [4]float32
	ShadeHalo(x, y int, idx scene.Index, opaqueDist float64) [4]float32
	ShadeSky(x, y int) [4]float32
	LampHaloGlow(x, y int) [4]float32
}

// Stats counts clamps and work done by a Builder or an Integrator.
type Stats struct {
	Pixels       int
	Entries      int
	StackClamped int // records dropped because the stack was full
	Conflicts    int // conflict runs that were resorted per subsample
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Pixels += o.Pixels
	s.Entries += o.Entries
	s.StackClamped += o.StackClamped
	s.Conflicts += o.Conflicts
}

// Builder builds paint stacks. It keeps scratch buffers between pixels, so
// each goroutine needs its own Builder.
type Builder struct {
	cfg    *config.RenderConfig
	sc     *scene.Scene
	shader Shader

	recs  []abuf.Record
	stack []Entry
	stats Stats
}

// NewBuilder returns a Builder shading through sh.
func NewBuilder(cfg *config.RenderConfig, sc *scene.Scene, sh Shader) *Builder {
	return &Builder{
		cfg:    cfg,
		sc:     sc,
		shader: sh,
		recs:   make([]abuf.Record, 0, cfg.StackCap),
		stack:  make([]Entry, 0, cfg.StackCap+1),
	}
}

// Stats returns the counters accumulated since the Builder was created.
func (b *Builder) Stats() Stats { return b.stats }

// Build returns the paint stack of pixel (x, y), nearest first and always
// ending in a sky entry. Records of equal MinZ keep their insertion order.
// The returned slice is reused by the next call.
func (b *Builder) Build(x, y int, records []abuf.Record) []Entry {
	b.stats.Pixels++
	recs := append(b.recs[:0], records...)
	slices.SortStableFunc(recs, func(a, c abuf.Record) int { return cmp.Compare(a.MinZ, c.MinZ) })
	if n := b.cfg.StackCap; n > 0 && len(recs) > n {
		b.stats.StackClamped += len(recs) - n
		recs = recs[:n]
	}
	b.recs = recs

	opaqueDist := b.nearestOpaque(recs)

	stack := b.stack[:0]
	for i := range recs {
		r := &recs[i]
		if r.Index.IsHalo() {
			e := Entry{Kind: KindHalo, Index: r.Index, Mask: r.Mask, MinZ: r.MinZ, MaxZ: r.MaxZ}
			if h := b.sc.HaloOf(r.Index); h != nil {
				e.Add = h.Add
			}
			e.Color = premultiply(b.shader.ShadeHalo(x, y, r.Index, opaqueDist))
			stack = append(stack, e)
			continue
		}

		e := Entry{Kind: KindPoly, Index: r.Index, MinZ: r.MinZ, MaxZ: r.MaxZ}
		m := b.sc.MaterialOf(r.Index)
		if m != nil {
			e.Blend, e.Add = m.Blend, m.Add
		}
		if m != nil && m.FullOSA && b.cfg.OSA > 1 {
			for s := 0; s < b.cfg.OSA; s++ {
				bit := uint16(1) << s
				if r.Mask&bit == 0 {
					continue
				}
				e.Mask = bit
				e.Color = b.surface(x, y, r.Index, bit, e.Blend)
				stack = append(stack, e)
			}
			continue
		}
		e.Mask = r.Mask
		e.Color = b.surface(x, y, r.Index, r.Mask, e.Blend)
		stack = append(stack, e)
	}

	markConflicts(stack)

	sky := Entry{Kind: KindSky, Mask: b.cfg.FullMask, MinZ: math.Inf(1), MaxZ: math.Inf(1)}
	sky.Color = premultiply(b.shader.ShadeSky(x, y))
	if b.cfg.LampHalo {
		g := b.shader.LampHaloGlow(x, y)
		for c := 0; c < 3; c++ {
			sky.Color[c] += g[c]
		}
		sky.Color[3] = max(sky.Color[3], g[3])
	}
	stack = append(stack, sky)

	b.stats.Entries += len(stack)
	b.stack = stack
	return stack
}

func (b *Builder) surface(x, y int, idx scene.Index, mask uint16, blend scene.Blend) Color {
	c := b.shader.ShadeSurfacePoint(x, y, idx, mask)
	if blend == scene.BlendEnv {
		c[3] = 1
	}
	return premultiply(c)
}

// nearestOpaque returns the view distance of the first record that fully
// covers the pixel with an opaque material, or +Inf.
func (b *Builder) nearestOpaque(recs []abuf.Record) float64 {
	for i := range recs {
		r := &recs[i]
		if r.Mask != b.cfg.FullMask {
			continue
		}
		if m := b.sc.MaterialOf(r.Index); m != nil && m.Opaque() {
			return b.sc.Camera.Distance(r.MinZ)
		}
	}
	return math.Inf(1)
}

// markConflicts sets Entry.Conflict on a stack sorted by MinZ. An entry joins
// the current run when it starts before the deepest MaxZ seen in the run.
func markConflicts(stack []Entry) {
	start := 0
	runMax := math.Inf(-1)
	for i := range stack {
		e := &stack[i]
		if i > 0 && e.MinZ < runMax {
			e.Conflict = i - start
			runMax = max(runMax, e.MaxZ)
			continue
		}
		start = i
		e.Conflict = 0
		runMax = e.MaxZ
	}
}

func premultiply(c [4]float32) Color {
	a := c[3]
	return Color{c[0] * a, c[1] * a, c[2] * a, a}
}
