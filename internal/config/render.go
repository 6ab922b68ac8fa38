package config

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// RenderConfig is built once per render by Config.Build and passed by pointer into
// every pipeline component. It must not be modified after Build returns.
type RenderConfig struct {
	Width, Height int

	// OSA is the number of subsamples per pixel (1 disables oversampling).
	OSA int
	// Jitter holds the subsample offsets inside a pixel, each in [0,1)².
	Jitter [][2]float64
	// FullMask has one bit set per subsample.
	FullMask uint16

	Gauss      bool
	FilterSize float64

	BandHeight int
	Threads    bool

	Fields     bool
	FirstField int

	StackCap        int
	RecordsPerPixel int
	AlphaThreshold  float32

	Mist     Mist
	LampHalo bool
	RayTrace bool

	ToneMap     ToneMap
	Exposure    float32
	FloatBuffer bool

	gammaOn  bool
	gamma    float32
	invGamma float32
}

// Mist controls depth-based alpha attenuation of surfaces.
type Mist struct {
	Enabled   bool
	Start     float64
	Dist      float64
	Height    float64
	Kind      MistKind
	Intensity float32
}

// MistKind selects the mist falloff curve.
type MistKind int

const (
	MistQuadratic MistKind = iota
	MistLinear
	MistSqrt
)

// ParseMistKind maps the config spelling to a MistKind.
func ParseMistKind(s string) (MistKind, error) {
	switch strings.ToLower(s) {
	case "", "quadratic":
		return MistQuadratic, nil
	case "linear":
		return MistLinear, nil
	case "sqrt", "inverse_quadratic":
		return MistSqrt, nil
	}
	return 0, fmt.Errorf("%w: mist kind %q", ErrInvalid, s)
}

// ToneMap selects the curve applied to linear colour before gamma encoding.
type ToneMap int

const (
	ToneNone ToneMap = iota
	ToneACES
)

// ParseToneMap maps the config spelling to a ToneMap.
func ParseToneMap(s string) (ToneMap, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ToneNone, nil
	case "aces":
		return ToneACES, nil
	}
	return 0, fmt.Errorf("%w: tone map %q", ErrInvalid, s)
}

func (c *RenderConfig) setGamma(g float64) {
	if g <= 0 || g == 1 {
		c.gammaOn = false
		return
	}
	c.gammaOn = true
	c.gamma = float32(g)
	c.invGamma = float32(1 / g)
}

// GammaEnabled reports whether Gamma and InvGamma are anything but the identity.
func (c *RenderConfig) GammaEnabled() bool { return c.gammaOn }

// Gamma encodes a linear value for display.
func (c *RenderConfig) Gamma(x float32) float32 {
	if !c.gammaOn || x <= 0 {
		return x
	}
	return math32.Pow(x, c.invGamma)
}

// InvGamma decodes a display value back to linear light.
func (c *RenderConfig) InvGamma(x float32) float32 {
	if !c.gammaOn || x <= 0 {
		return x
	}
	return math32.Pow(x, c.gamma)
}

// FieldStep is the number of frame lines between consecutive raster rows.
func (c *RenderConfig) FieldStep() int {
	if c.Fields {
		return 2
	}
	return 1
}

// Parities lists the field parities rendered, in order.
func (c *RenderConfig) Parities() []int {
	if !c.Fields {
		return []int{0}
	}
	return []int{c.FirstField, 1 - c.FirstField}
}

// Rows is the number of raster rows in the field with the given parity.
func (c *RenderConfig) Rows(parity int) int {
	if !c.Fields {
		return c.Height
	}
	return (c.Height - parity + 1) / 2
}

// FrameY maps a raster-space y to frame-space for the given field parity.
// Raster row r covers frame row 2r+parity and the two share their centre line.
func (c *RenderConfig) FrameY(y float64, parity int) float64 {
	if !c.Fields {
		return y
	}
	return 2*y + float64(parity) - 0.5
}

// RasterY is the inverse of FrameY.
func (c *RenderConfig) RasterY(y float64, parity int) float64 {
	if !c.Fields {
		return y
	}
	return (y - float64(parity) + 0.5) / 2
}

// Centroid returns the mean subsample offset of the samples in mask.
// An empty mask yields the pixel centre.
func (c *RenderConfig) Centroid(mask uint16) (float64, float64) {
	var sx, sy float64
	n := 0
	for s := 0; s < c.OSA; s++ {
		if mask&(1<<s) != 0 {
			sx += c.Jitter[s][0]
			sy += c.Jitter[s][1]
			n++
		}
	}
	if n == 0 {
		return 0.5, 0.5
	}
	return sx / float64(n), sy / float64(n)
}

// JitterTable returns n deterministic, stratified subsample offsets in [0,1)².
// x is stratified on a regular grid, y follows the base-2 radical inverse,
// giving a Hammersley set that covers the pixel evenly for any n.
func JitterTable(n int) [][2]float64 {
	if n <= 1 {
		return [][2]float64{{0.5, 0.5}}
	}
	jit := make([][2]float64, n)
	half := 0.5 / float64(n)
	for i := range jit {
		y := radicalInverse(uint32(i)) + half
		if y >= 1 {
			y -= 1
		}
		jit[i] = [2]float64{(float64(i) + 0.5) / float64(n), y}
	}
	return jit
}

func radicalInverse(i uint32) float64 {
	i = (i << 16) | (i >> 16)
	i = ((i & 0x55555555) << 1) | ((i & 0xAAAAAAAA) >> 1)
	i = ((i & 0x33333333) << 2) | ((i & 0xCCCCCCCC) >> 2)
	i = ((i & 0x0F0F0F0F) << 4) | ((i & 0xF0F0F0F0) >> 4)
	i = ((i & 0x00FF00FF) << 8) | ((i & 0xFF00FF00) >> 8)
	return float64(i) / (1 << 32)
}
