// Package render drives a frame through the pipeline: it fills A-buffer bands,
// shades and composites rows two at a time, reconstructs pixels from their
// subsamples and writes finished rows to a frame buffer in order.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"scanline-renderer/internal/abuf"
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/raster"
	"scanline-renderer/internal/scene"
	"scanline-renderer/internal/shade"
	"scanline-renderer/internal/vis"
)

// ErrFrameSize is returned when the frame buffer does not match the render size.
var ErrFrameSize = errors.New("render: frame buffer size mismatch")

// Status reports how a render ended.
type Status int

const (
	StatusDone Status = iota
	StatusCancelled
)

func (s Status) String() string {
	if s == StatusCancelled {
		return "cancelled"
	}
	return "done"
}

// Stats gathers the skip and clamp counters of one render.
type Stats struct {
	Raster  raster.Stats
	Vis     vis.Stats
	Dropped int // A-buffer records dropped because a band was full
	Bands   int
}

// Result is the outcome of Render. Rows counts frame rows written.
type Result struct {
	Status Status
	Rows   int
	Stats  Stats
}

// Renderer renders one projected scene. A Renderer is not safe for concurrent
// Render calls.
type Renderer struct {
	cfg    *config.RenderConfig
	sc     *scene.Scene
	shader *shade.Shader
	kernel kernel

	brk       func() bool
	shadeOpts []shade.Option
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBreak installs a poll checked once per row pair; returning true stops
// the render.
func WithBreak(fn func() bool) Option { return func(r *Renderer) { r.brk = fn } }

// WithShading passes options through to the pixel shaders.
func WithShading(opts ...shade.Option) Option {
	return func(r *Renderer) { r.shadeOpts = append(r.shadeOpts, opts...) }
}

// New projects sc for the configured frame size and returns a Renderer for it.
func New(cfg *config.RenderConfig, sc *scene.Scene, opts ...Option) *Renderer {
	r := &Renderer{cfg: cfg, sc: sc, kernel: newKernel(cfg)}
	for _, o := range opts {
		o(r)
	}
	sc.Project(cfg.Width, cfg.Height)
	r.shader = shade.New(cfg, sc, r.shadeOpts...)
	return r
}

// lane is the per-goroutine state for computing one row.
type lane struct {
	builder *vis.Builder
	integ   *vis.Integrator
	rows    *rowSet
	recs    []abuf.Record
	acc     []vis.Color
}

func (r *Renderer) newLane(sh *shade.Shader, rast *raster.Rasterizer) *lane {
	return &lane{
		builder: vis.NewBuilder(r.cfg, r.sc, sh),
		integ:   vis.NewIntegrator(r.cfg, rast),
		rows:    newRowSet(r.cfg.Width),
		recs:    make([]abuf.Record, 0, r.cfg.StackCap),
		acc:     make([]vis.Color, r.cfg.OSA),
	}
}

// row shades raster row y of the resident band into the lane's private window.
func (r *Renderer) row(l *lane, band *abuf.Band, y int) {
	l.rows.clear()
	for x := 0; x < r.cfg.Width; x++ {
		l.recs = band.Pixel(x, y, l.recs[:0])
		stack := l.builder.Build(x, y, l.recs)
		l.integ.Integrate(x, y, stack, l.acc)
		l.rows.splat(r.kernel, r.cfg.Jitter, x, l.acc)
	}
}

// Render draws the frame into fb. Cancellation through ctx or the break poll
// is not an error: the rows finished so far are kept, the rest of fb is left
// untouched and the result has StatusCancelled.
func (r *Renderer) Render(ctx context.Context, fb *FrameBuffer) (Result, error) {
	cfg := r.cfg
	if fb == nil || fb.Width != cfg.Width || fb.Height != cfg.Height || len(fb.Color) < cfg.Width*cfg.Height*4 {
		return Result{}, fmt.Errorf("%w: want %dx%d", ErrFrameSize, cfg.Width, cfg.Height)
	}
	if fb.Float != nil && len(fb.Float) < len(fb.Color) {
		return Result{}, fmt.Errorf("%w: float buffer too short", ErrFrameSize)
	}

	log := Logger()
	start := time.Now()
	log.Info("render start", "width", cfg.Width, "height", cfg.Height, "osa", cfg.OSA,
		"fields", cfg.Fields, "threads", cfg.Threads)

	var res Result
	band := abuf.NewBand(cfg.Width, cfg.BandHeight, cfg.Width*cfg.BandHeight*cfg.RecordsPerPixel)
	for _, parity := range cfg.Parities() {
		if !r.field(ctx, fb, band, parity, &res) {
			res.Status = StatusCancelled
			break
		}
	}
	res.Stats.Dropped = band.Dropped()

	rs, vs := res.Stats.Raster, res.Stats.Vis
	log.Debug("render stats",
		"bands", res.Stats.Bands,
		"triangles", rs.Triangles, "edges", rs.Edges, "halos", rs.Halos,
		"degenerate", rs.Degenerate, "clipped", rs.Clipped, "malformed", rs.Malformed,
		"records_dropped", res.Stats.Dropped, "stack_clamped", vs.StackClamped,
		"conflicts", vs.Conflicts, "entries", vs.Entries)
	if res.Status == StatusCancelled {
		log.Warn("render cancelled", "rows", res.Rows, "elapsed", time.Since(start))
	} else {
		log.Info("render done", "rows", res.Rows, "elapsed", time.Since(start))
	}
	return res, nil
}

func (r *Renderer) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return r.brk != nil && r.brk()
}

// field renders every raster row of one field. Rows are computed in pairs:
// the second row of a pair runs on its own goroutine and both are joined
// before the next pair starts. It returns false when cancelled.
func (r *Renderer) field(ctx context.Context, fb *FrameBuffer, band *abuf.Band, parity int, res *Result) bool {
	cfg := r.cfg
	rows := cfg.Rows(parity)
	rast := raster.New(cfg, r.sc, parity)
	sh := r.shader.ForField(parity)
	lanes := [2]*lane{r.newLane(sh, rast), r.newLane(sh, rast)}
	g := newRing(cfg.Width)
	out := make([]float32, cfg.Width*4)

	defer func() {
		addRaster(&res.Stats.Raster, rast.Stats())
		for _, l := range lanes {
			res.Stats.Vis.Add(l.builder.Stats())
			res.Stats.Vis.Add(l.integ.Stats())
		}
	}()

	emitted := 0
	emit := func(upTo int) {
		for ; emitted < upTo; emitted++ {
			r.emit(fb, g, emitted, parity, out)
			res.Rows++
		}
	}

	band.Reset(0, 0)
	for y := 0; y < rows; y += 2 {
		if r.stopped(ctx) {
			return false
		}
		if !band.Contains(y) {
			band.Reset(y, y+cfg.BandHeight)
			rast.FillBand(band)
			res.Stats.Bands++
		}

		pair := y+1 < rows
		switch {
		case pair && cfg.Threads:
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.row(lanes[1], band, y+1)
			}()
			r.row(lanes[0], band, y)
			wg.Wait()
		case pair:
			r.row(lanes[0], band, y)
			r.row(lanes[1], band, y+1)
		default:
			r.row(lanes[0], band, y)
		}

		g.merge(y, lanes[0].rows, rows)
		if pair {
			g.merge(y+1, lanes[1].rows, rows)
		}
		// everything up to y has received all of its contributions; a box
		// filter never reaches across rows, so y+1 is settled as well
		if cfg.Gauss {
			emit(y + 1)
		} else {
			emit(min(y+2, rows))
		}
	}
	emit(rows)
	return true
}

// emit converts settled raster row y to display values and writes it to its
// frame row.
func (r *Renderer) emit(fb *FrameBuffer, g *ring, y, parity int, out []float32) {
	cfg := r.cfg
	g.resolve(y, out)
	for x := 0; x < cfg.Width; x++ {
		o := out[x*4 : x*4+4]
		a := o[3]
		if a <= 0 {
			clear(o)
			continue
		}
		for c := 0; c < 3; c++ {
			v := shade.ToneMap(cfg, o[c]/a)
			o[c] = cfg.Gamma(v) * a
		}
	}
	fy := y
	if cfg.Fields {
		fy = 2*y + parity
	}
	fb.writeRow(fy, out)
}

func addRaster(dst *raster.Stats, s raster.Stats) {
	dst.Triangles += s.Triangles
	dst.Edges += s.Edges
	dst.Halos += s.Halos
	dst.Degenerate += s.Degenerate
	dst.Clipped += s.Clipped
	dst.Malformed += s.Malformed
}
