package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"scanline-renderer/internal/batch"
	"scanline-renderer/internal/config"
	"scanline-renderer/internal/render"
	"scanline-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .toml or .yaml config file")
	outputDir := flag.String("output", "", "Output directory (default: ./renders)")
	format := flag.String("format", "", "Output format: webp, tga or png (default: webp)")
	textureDir := flag.String("textures", "", "Directory searched for textures by name")
	workers := flag.Int("workers", 0, "Number of scenes rendered at once (default: NumCPU)")
	width := flag.Int("width", 0, "Image width in pixels (default: 320)")
	height := flag.Int("height", 0, "Image height in pixels (default: 240)")
	osa := flag.Int("osa", 0, "Subsamples per pixel, 1-16 (default: 8)")
	verbose := flag.Bool("v", false, "Log render diagnostics to stderr")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] scene.json [scene.toml ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		Format:     *format,
		TextureDir: *textureDir,
		Workers:    *workers,
		Width:      *width,
		Height:     *height,
		OSA:        *osa,
	})

	rc, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	texIndex := texture.BuildIndex(cfg.TextureDir)
	texCache := texture.NewCache(texIndex)

	jobs := batch.JobsFromPaths(flag.Args())

	fmt.Printf("Scanline renderer → %s\n", cfg.Format)
	fmt.Printf("Scenes: %d, Workers: %d, Size: %dx%d, OSA: %d\n", len(jobs), cfg.Workers, rc.Width, rc.Height, rc.OSA)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results := batch.Run(ctx, batch.Config{
		Render:      rc,
		OutputDir:   cfg.OutputDir,
		Format:      cfg.Format,
		TexResolver: texCache,
		Workers:     cfg.Workers,
		Progress:    os.Stdout,
	}, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			failures = append(failures, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range failures[:min(len(failures), 20)] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, jobs, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
