package render

import (
	"github.com/chewxy/math32"

	"scanline-renderer/internal/config"
	"scanline-renderer/internal/vis"
)

// stride is the number of floats per pixel in row buffers: premultiplied
// RGBA plus the accumulated filter weight.
const stride = 5

// kernel spreads subsamples onto pixel centres. Box filtering keeps every
// sample in its own pixel; the Gaussian also reaches the eight neighbours.
type kernel struct {
	gauss   bool
	twoSig2 float32
	cut2    float32
}

func newKernel(cfg *config.RenderConfig) kernel {
	sigma := float32(0.5 * cfg.FilterSize)
	cut := float32(1.5 * cfg.FilterSize)
	return kernel{gauss: cfg.Gauss, twoSig2: 2 * sigma * sigma, cut2: cut * cut}
}

func (k kernel) weight(dx, dy float32) float32 {
	d2 := dx*dx + dy*dy
	if d2 > k.cut2 {
		return 0
	}
	return math32.Exp(-d2 / k.twoSig2)
}

// rowSet is a private three-row accumulation window [y-1, y+1] owned by the
// goroutine computing row y.
type rowSet struct {
	width int
	rows  [3][]float32
}

func newRowSet(width int) *rowSet {
	rs := &rowSet{width: width}
	for i := range rs.rows {
		rs.rows[i] = make([]float32, width*stride)
	}
	return rs
}

func (rs *rowSet) clear() {
	for i := range rs.rows {
		clear(rs.rows[i])
	}
}

// splat adds the subsample colours of pixel x, centred in rows[1].
func (rs *rowSet) splat(k kernel, jitter [][2]float64, x int, acc []vis.Color) {
	for s, c := range acc {
		if !k.gauss {
			accumulate(rs.rows[1], x, c, 1)
			continue
		}
		jx, jy := float32(jitter[s][0])-0.5, float32(jitter[s][1])-0.5
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				px := x + dx
				if px < 0 || px >= rs.width {
					continue
				}
				if w := k.weight(jx-float32(dx), jy-float32(dy)); w > 0 {
					accumulate(rs.rows[dy+1], px, c, w)
				}
			}
		}
	}
}

func accumulate(row []float32, x int, c vis.Color, w float32) {
	p := row[x*stride : x*stride+stride]
	p[0] += c[0] * w
	p[1] += c[1] * w
	p[2] += c[2] * w
	p[3] += c[3] * w
	p[4] += w
}

// ring holds the four rows that can still receive contributions while a row
// pair is in flight. Row y lives in slot y&3.
type ring struct {
	slots [4][]float32
}

func newRing(width int) *ring {
	g := &ring{}
	for i := range g.slots {
		g.slots[i] = make([]float32, width*stride)
	}
	return g
}

func (g *ring) slot(y int) []float32 { return g.slots[y&3] }

// merge folds the private window of row y into the ring, dropping rows
// outside [0, rows).
func (g *ring) merge(y int, rs *rowSet, rows int) {
	for k, src := range rs.rows {
		ry := y - 1 + k
		if ry < 0 || ry >= rows {
			continue
		}
		dst := g.slot(ry)
		for i, v := range src {
			dst[i] += v
		}
	}
}

// resolve normalises the settled row y into premultiplied linear RGBA and
// clears its slot for reuse.
func (g *ring) resolve(y int, out []float32) {
	src := g.slot(y)
	for x := 0; x < len(out)/4; x++ {
		p := src[x*stride : x*stride+stride]
		o := out[x*4 : x*4+4]
		if p[4] <= 0 {
			clear(o)
			continue
		}
		inv := 1 / p[4]
		o[0], o[1], o[2], o[3] = p[0]*inv, p[1]*inv, p[2]*inv, min(p[3]*inv, 1)
	}
	clear(src)
}
