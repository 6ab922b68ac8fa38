package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrInvalid is wrapped by every validation error returned from Build.
var ErrInvalid = errors.New("config: invalid")

// MaxOSA is the largest supported oversample count (one bit per sample in a uint16 mask).
const MaxOSA = 16

// Config holds all configurable render and output settings as read from disk.
type Config struct {
	// Image
	Width  int `json:"width" toml:"width" yaml:"width"`
	Height int `json:"height" toml:"height" yaml:"height"`

	// Oversampling and reconstruction
	OSA        int     `json:"osa" toml:"osa" yaml:"osa"`
	Gauss      bool    `json:"gauss" toml:"gauss" yaml:"gauss"`
	FilterSize float64 `json:"filter_size" toml:"filter_size" yaml:"filter_size"`
	Gamma      float64 `json:"gamma" toml:"gamma" yaml:"gamma"`

	// Pipeline
	BandHeight      int     `json:"band_height" toml:"band_height" yaml:"band_height"`
	Threads         *bool   `json:"threads" toml:"threads" yaml:"threads"`
	StackCap        int     `json:"stack_cap" toml:"stack_cap" yaml:"stack_cap"`
	RecordsPerPixel int     `json:"records_per_pixel" toml:"records_per_pixel" yaml:"records_per_pixel"`
	AlphaThreshold  float64 `json:"alpha_threshold" toml:"alpha_threshold" yaml:"alpha_threshold"`

	// Interlaced field rendering
	Fields        bool `json:"fields" toml:"fields" yaml:"fields"`
	OddFieldFirst bool `json:"odd_field_first" toml:"odd_field_first" yaml:"odd_field_first"`

	// Shading
	Mist     MistConfig `json:"mist" toml:"mist" yaml:"mist"`
	LampHalo bool       `json:"lamp_halo" toml:"lamp_halo" yaml:"lamp_halo"`
	RayTrace bool       `json:"ray_trace" toml:"ray_trace" yaml:"ray_trace"`

	// Output
	ToneMap     string  `json:"tone_map" toml:"tone_map" yaml:"tone_map"`
	Exposure    float64 `json:"exposure" toml:"exposure" yaml:"exposure"`
	FloatBuffer bool    `json:"float_buffer" toml:"float_buffer" yaml:"float_buffer"`
	OutputDir   string  `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	Format      string  `json:"format" toml:"format" yaml:"format"`
	TextureDir  string  `json:"texture_dir" toml:"texture_dir" yaml:"texture_dir"`
	Workers     int     `json:"workers" toml:"workers" yaml:"workers"`
}

// MistConfig is the on-disk form of the mist settings.
type MistConfig struct {
	Enabled   bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	Start     float64 `json:"start" toml:"start" yaml:"start"`
	Dist      float64 `json:"dist" toml:"dist" yaml:"dist"`
	Height    float64 `json:"height" toml:"height" yaml:"height"`
	Kind      string  `json:"kind" toml:"kind" yaml:"kind"`
	Intensity float64 `json:"intensity" toml:"intensity" yaml:"intensity"`
}

// Load reads a JSON, TOML or YAML config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	var cfg Config
	if err := DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	Format     string
	TextureDir string
	Workers    int
	Width      int
	Height     int
	OSA        int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.OSA > 0 {
		c.OSA = flags.OSA
	}

	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 240
	}
	if c.OSA <= 0 {
		c.OSA = 8
	}
	if c.FilterSize <= 0 {
		c.FilterSize = 1.0
	}
	if c.BandHeight <= 0 {
		c.BandHeight = 32
	}
	if c.Threads == nil {
		on := true
		c.Threads = &on
	}
	if c.StackCap <= 0 {
		c.StackCap = 64
	}
	if c.RecordsPerPixel <= 0 {
		c.RecordsPerPixel = 8
	}
	if c.AlphaThreshold <= 0 {
		c.AlphaThreshold = 0.9998
	}
	if c.Exposure <= 0 {
		c.Exposure = 1.0
	}
	if c.Mist.Kind == "" {
		c.Mist.Kind = "quadratic"
	}
	if c.Mist.Intensity <= 0 {
		c.Mist.Intensity = 1.0
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.OutputDir == "" {
		cwd, _ := os.Getwd()
		c.OutputDir = filepath.Join(cwd, "renders")
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Build validates the resolved settings and returns the immutable per-render configuration.
func (c *Config) Build() (*RenderConfig, error) {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.OSA < 1 || c.OSA > MaxOSA:
		return nil, fmt.Errorf("%w: osa %d outside 1..%d", ErrInvalid, c.OSA, MaxOSA)
	case c.BandHeight < 2:
		return nil, fmt.Errorf("%w: band height %d, need at least 2", ErrInvalid, c.BandHeight)
	case c.Gamma < 0:
		return nil, fmt.Errorf("%w: gamma %g", ErrInvalid, c.Gamma)
	case !(c.FilterSize > 0):
		return nil, fmt.Errorf("%w: filter size %g", ErrInvalid, c.FilterSize)
	case c.AlphaThreshold > 1:
		return nil, fmt.Errorf("%w: alpha threshold %g above 1", ErrInvalid, c.AlphaThreshold)
	}

	mistKind, err := ParseMistKind(c.Mist.Kind)
	if err != nil {
		return nil, err
	}
	tone, err := ParseToneMap(c.ToneMap)
	if err != nil {
		return nil, err
	}

	threads := true
	if c.Threads != nil {
		threads = *c.Threads
	}
	band := c.BandHeight
	if band%2 == 1 {
		// row pairs must never straddle a band boundary
		band++
	}
	first := 0
	if c.OddFieldFirst {
		first = 1
	}

	rc := &RenderConfig{
		Width:           c.Width,
		Height:          c.Height,
		OSA:             c.OSA,
		Jitter:          JitterTable(c.OSA),
		FullMask:        uint16((1 << c.OSA) - 1),
		Gauss:           c.Gauss,
		FilterSize:      c.FilterSize,
		BandHeight:      band,
		Threads:         threads,
		Fields:          c.Fields,
		FirstField:      first,
		StackCap:        c.StackCap,
		RecordsPerPixel: c.RecordsPerPixel,
		AlphaThreshold:  float32(c.AlphaThreshold),
		LampHalo:        c.LampHalo,
		RayTrace:        c.RayTrace,
		ToneMap:         tone,
		Exposure:        float32(c.Exposure),
		FloatBuffer:     c.FloatBuffer,
		Mist: Mist{
			Enabled:   c.Mist.Enabled,
			Start:     c.Mist.Start,
			Dist:      c.Mist.Dist,
			Height:    c.Mist.Height,
			Kind:      mistKind,
			Intensity: float32(c.Mist.Intensity),
		},
	}
	rc.setGamma(c.Gamma)
	return rc, nil
}
