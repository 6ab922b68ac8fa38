package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"scanline-renderer/internal/config"
	"scanline-renderer/internal/render"
	"scanline-renderer/internal/scene"
	"scanline-renderer/internal/shade"
	"scanline-renderer/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Render      *config.RenderConfig
	OutputDir   string
	Format      string
	TexResolver texture.Resolver
	Workers     int
	// Progress receives a line every two seconds while jobs run; nil disables it.
	Progress io.Writer
}

// Job is one scene file to render.
type Job struct {
	Name  string
	Scene string
}

// JobsFromPaths names each scene after its file name without extension.
func JobsFromPaths(paths []string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		jobs[i] = Job{Name: strings.TrimSuffix(base, filepath.Ext(base)), Scene: p}
	}
	return jobs
}

// Result holds the outcome of processing one job.
type Result struct {
	Name     string
	Image    string // output path relative to OutputDir
	Rows     int
	Success  bool
	Error    string
	Stats    render.Stats
	Duration time.Duration
}

// Run renders all jobs using a worker pool. Once ctx is done, jobs still
// queued fail with the context error and running renders stop at their next
// row pair.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.2f scenes/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	res := Result{Name: job.Name}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	start := time.Now()
	sc, err := scene.Load(job.Scene)
	if err != nil {
		return fail(err)
	}
	if err := sc.Validate(); err != nil {
		// malformed faces are skipped by the rasterizer
		render.Logger().Warn("scene has malformed geometry", "scene", job.Scene, "err", err)
	}

	var opts []render.Option
	if cfg.TexResolver != nil {
		opts = append(opts, render.WithShading(shade.WithResolver(cfg.TexResolver)))
	}
	fb := render.NewFrameBuffer(cfg.Render.Width, cfg.Render.Height, cfg.Render.FloatBuffer)
	out, err := render.New(cfg.Render, sc, opts...).Render(ctx, fb)
	res.Rows, res.Stats = out.Rows, out.Stats
	if err != nil {
		return fail(err)
	}
	if out.Status == render.StatusCancelled {
		return fail(fmt.Errorf("%s: render cancelled after %d rows", job.Name, out.Rows))
	}

	format := strings.ToLower(cfg.Format)
	res.Image = job.Name + "." + format
	outPath := filepath.Join(cfg.OutputDir, res.Image)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fail(err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fail(err)
	}
	if err := Encode(f, fb.Image(), format); err != nil {
		f.Close()
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}

	res.Success = true
	res.Duration = time.Since(start)
	return res
}
