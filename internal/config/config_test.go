package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, c Config) *RenderConfig {
	t.Helper()
	c.Resolve(Flags{})
	rc, err := c.Build()
	require.NoError(t, err)
	return rc
}

func TestResolveDefaults(t *testing.T) {
	var c Config
	c.Resolve(Flags{})
	assert.Equal(t, 320, c.Width)
	assert.Equal(t, 240, c.Height)
	assert.Equal(t, 8, c.OSA)
	assert.Equal(t, 32, c.BandHeight)
	assert.Equal(t, 64, c.StackCap)
	assert.Equal(t, 0.9998, c.AlphaThreshold)
	require.NotNil(t, c.Threads)
	assert.True(t, *c.Threads)
	assert.Equal(t, "webp", c.Format)
	assert.Positive(t, c.Workers)
}

func TestResolveFlagsOverride(t *testing.T) {
	c := Config{Width: 100, OSA: 5, Format: "png"}
	c.Resolve(Flags{Width: 64, OSA: 11, Format: "tga", OutputDir: "/tmp/out"})
	assert.Equal(t, 64, c.Width)
	assert.Equal(t, 11, c.OSA)
	assert.Equal(t, "tga", c.Format)
	assert.Equal(t, "/tmp/out", c.OutputDir)
}

func TestBuildRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"osa too large", func(c *Config) { c.OSA = 17 }},
		{"band too small", func(c *Config) { c.BandHeight = 1 }},
		{"negative gamma", func(c *Config) { c.Gamma = -2 }},
		{"bad mist kind", func(c *Config) { c.Mist.Kind = "fog" }},
		{"bad tone map", func(c *Config) { c.ToneMap = "reinhard" }},
		{"threshold above one", func(c *Config) { c.AlphaThreshold = 1.5 }},
		{"zero filter size", func(c *Config) { c.Gauss, c.FilterSize = true, 0 }},
		{"negative filter size", func(c *Config) { c.FilterSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.Resolve(Flags{})
			tt.mod(&c)
			_, err := c.Build()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestBuildRoundsBandToEven(t *testing.T) {
	rc := resolved(t, Config{BandHeight: 7})
	assert.Equal(t, 8, rc.BandHeight)
}

func TestGammaRoundTrip(t *testing.T) {
	rc := resolved(t, Config{Gamma: 2.2})
	require.True(t, rc.GammaEnabled())
	for i := 0; i <= 100; i++ {
		x := float32(i) / 100
		assert.InDelta(t, x, rc.InvGamma(rc.Gamma(x)), 1e-5)
	}
	assert.Greater(t, rc.Gamma(0.5), float32(0.5))

	off := resolved(t, Config{Gamma: 1})
	assert.False(t, off.GammaEnabled())
	assert.Equal(t, float32(0.3), off.Gamma(0.3))
	assert.Equal(t, float32(0.3), off.InvGamma(0.3))
}

func TestJitterTable(t *testing.T) {
	assert.Equal(t, [][2]float64{{0.5, 0.5}}, JitterTable(1))
	for _, n := range []int{2, 5, 8, 11, 16} {
		jit := JitterTable(n)
		require.Len(t, jit, n)
		seen := map[[2]float64]bool{}
		for _, j := range jit {
			assert.GreaterOrEqual(t, j[0], 0.0)
			assert.Less(t, j[0], 1.0)
			assert.GreaterOrEqual(t, j[1], 0.0)
			assert.Less(t, j[1], 1.0)
			assert.False(t, seen[j], "duplicate offset %v", j)
			seen[j] = true
		}
	}
}

func TestCentroid(t *testing.T) {
	rc := resolved(t, Config{OSA: 4})
	x, y := rc.Centroid(0)
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 0.5, y)
	x, y = rc.Centroid(1 << 2)
	assert.Equal(t, rc.Jitter[2][0], x)
	assert.Equal(t, rc.Jitter[2][1], y)
	assert.Equal(t, uint16(0xF), rc.FullMask)
}

func TestFieldMapping(t *testing.T) {
	rc := resolved(t, Config{Height: 5, Fields: true, OddFieldFirst: true})
	assert.Equal(t, []int{1, 0}, rc.Parities())
	assert.Equal(t, 3, rc.Rows(0))
	assert.Equal(t, 2, rc.Rows(1))
	assert.Equal(t, 2, rc.FieldStep())
	assert.Equal(t, 4.5, rc.FrameY(2, 1))
	assert.Equal(t, 5.5, rc.FrameY(2.5, 1))
	assert.Equal(t, 2.0, rc.RasterY(rc.FrameY(2, 1), 1))

	flat := resolved(t, Config{Height: 5})
	assert.Equal(t, []int{0}, flat.Parities())
	assert.Equal(t, 5, flat.Rows(0))
	assert.Equal(t, 3.5, flat.FrameY(3.5, 0))
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json": `{"width": 64, "osa": 5, "mist": {"enabled": true, "dist": 10}}`,
		"a.toml": "width = 64\nosa = 5\n[mist]\nenabled = true\ndist = 10.0\n",
		"a.yaml": "width: 64\nosa: 5\nmist:\n  enabled: true\n  dist: 10\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			c, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, 64, c.Width)
			assert.Equal(t, 5, c.OSA)
			assert.True(t, c.Mist.Enabled)
			assert.Equal(t, 10.0, c.Mist.Dist)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "config: read")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")

	ini := filepath.Join(dir, "x.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=1"), 0o644))
	_, err = Load(ini)
	assert.ErrorContains(t, err, "unsupported file type")
}
