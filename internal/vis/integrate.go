package vis

import (
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/mathutil"
	"scanline-renderer/internal/scene"
)

// Planes evaluates the depth of a primitive at a raster-space position.
type Planes interface {
	Depth(idx scene.Index, x, y float64) (float64, bool)
}

// Integrator composites paint stacks per subsample. Like Builder it holds
// scratch state and belongs to one goroutine.
type Integrator struct {
	cfg    *config.RenderConfig
	planes Planes

	order []int
	depth []float64
	stats Stats
}

// NewIntegrator returns an Integrator that reorders conflict runs using planes.
// A nil planes keeps every run in MinZ order.
func NewIntegrator(cfg *config.RenderConfig, planes Planes) *Integrator {
	return &Integrator{
		cfg:    cfg,
		planes: planes,
		order:  make([]int, 0, cfg.StackCap+1),
		depth:  make([]float64, cfg.StackCap+1),
	}
}

// Stats returns the counters accumulated since the Integrator was created.
func (it *Integrator) Stats() Stats { return it.stats }

// Integrate writes the composited colour of every subsample of pixel (x, y)
// into acc, which must hold at least cfg.OSA colours.
func (it *Integrator) Integrate(x, y int, stack []Entry, acc []Color) {
	for s := 0; s < it.cfg.OSA; s++ {
		j := it.cfg.Jitter[s]
		acc[s] = it.sample(stack, s, float64(x)+j[0], float64(y)+j[1])
	}
}

func (it *Integrator) sample(stack []Entry, s int, sx, sy float64) Color {
	var c Color
	for i := 0; i < len(stack); {
		end := runEnd(stack, i)
		for _, k := range it.sortRun(stack, i, end, s, sx, sy) {
			dropRest := over(&c, &stack[k])
			if c[3] >= it.cfg.AlphaThreshold {
				return c
			}
			if dropRest {
				break
			}
		}
		i = end
	}
	return c
}

func runEnd(stack []Entry, i int) int {
	j := i + 1
	for j < len(stack) && stack[j].Conflict > 0 {
		j++
	}
	return j
}

// sortRun collects the entries of stack[i:end] covering subsample s and, when
// more than one remains, orders them by their depth at (sx, sy). Equal depths
// keep stack order. The result is valid until the next call.
func (it *Integrator) sortRun(stack []Entry, i, end, s int, sx, sy float64) []int {
	bit := uint16(1) << s
	order := it.order[:0]
	for k := i; k < end; k++ {
		if stack[k].Mask&bit != 0 {
			order = append(order, k)
		}
	}
	it.order = order
	if len(order) < 2 {
		return order
	}

	it.stats.Conflicts++
	if len(it.depth) < len(order) {
		it.depth = make([]float64, len(order))
	}
	depth := it.depth[:len(order)]
	for n, k := range order {
		e := &stack[k]
		depth[n] = e.MinZ
		if it.planes != nil && e.Kind == KindPoly {
			if z, ok := it.planes.Depth(e.Index, sx, sy); ok {
				depth[n] = z
			}
		}
	}
	for a := 1; a < len(order); a++ {
		for b := a; b > 0 && depth[b] < depth[b-1]; b-- {
			depth[b], depth[b-1] = depth[b-1], depth[b]
			order[b], order[b-1] = order[b-1], order[b]
		}
	}
	return order
}

// over composites e behind the accumulated colour c. It reports whether the
// rest of e's conflict run is hidden.
func over(c *Color, e *Entry) bool {
	t := 1 - c[3]
	// an additive factor outside [0,1] would push alpha out of range
	add := mathutil.Clamp01f(e.Add)
	c[0] += t * e.Color[0]
	c[1] += t * e.Color[1]
	c[2] += t * e.Color[2]
	if e.Kind != KindPoly {
		c[3] += t * e.Color[3] * (1 - add)
		return false
	}
	switch e.Blend {
	case scene.BlendEnv:
		c[3] = 1
		return true
	case scene.BlendErase:
		c[3] += t * e.Color[3]
		return true
	}
	c[3] += t * e.Color[3] * (1 - add)
	return false
}
