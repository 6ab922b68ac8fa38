package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanline-renderer/internal/config"
)

const sceneJSON = `{
  "camera": {"ortho": true, "ortho_scale": 16},
  "world": {"horizon": [0.1, 0.2, 0.4]},
  "verts": [
    {"co": [-4, -4, -3]}, {"co": [4, -4, -3]}, {"co": [4, 4, -3]}, {"co": [-4, 4, -3]}
  ],
  "faces": [{"verts": [0, 1, 2, 3], "material": 0}],
  "materials": [{"color": [1, 0.5, 0], "shadeless": true}]
}`

func renderConfig(t *testing.T) *config.RenderConfig {
	t.Helper()
	c := config.Config{Width: 16, Height: 12, OSA: 4}
	c.Resolve(config.Flags{})
	rc, err := c.Build()
	require.NoError(t, err)
	return rc
}

func writeScene(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(sceneJSON), 0o644))
	return p
}

func TestJobsFromPaths(t *testing.T) {
	jobs := JobsFromPaths([]string{"a/b/cube.json", "scene.v2.yaml"})
	assert.Equal(t, []Job{{Name: "cube", Scene: "a/b/cube.json"}, {Name: "scene.v2", Scene: "scene.v2.yaml"}}, jobs)
}

func TestRunFormats(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeScene(t, dir, "box.json")

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, format)
			cfg := Config{Render: renderConfig(t), OutputDir: out, Format: format, Workers: 2}
			results := Run(context.Background(), cfg, []Job{{Name: "box", Scene: scenePath}})
			require.Len(t, results, 1)
			r := results[0]
			require.True(t, r.Success, r.Error)
			assert.Equal(t, "box."+format, r.Image)
			assert.Equal(t, 12, r.Rows)

			info, err := os.Stat(filepath.Join(out, r.Image))
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRunPNGContent(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Render: renderConfig(t), OutputDir: dir, Format: "png", Workers: 1}
	results := Run(context.Background(), cfg, []Job{{Name: "box", Scene: writeScene(t, dir, "box.json")}})
	require.True(t, results[0].Success, results[0].Error)

	f, err := os.Open(filepath.Join(dir, "box.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())

	r, g, b, a := img.At(8, 6).RGBA()
	assert.Equal(t, []uint32{0xffff, 0x8080, 0, 0xffff}, []uint32{r, g, b, a})
	_, _, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x6666), b)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeScene(t, dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	cfg := Config{Render: renderConfig(t), OutputDir: dir, Format: "bmp", Workers: 3}
	jobs := []Job{
		{Name: "missing", Scene: filepath.Join(dir, "missing.json")},
		{Name: "bad", Scene: bad},
		{Name: "good", Scene: good},
	}
	results := Run(context.Background(), cfg, jobs)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.False(t, r.Success)
	}
	assert.Contains(t, results[0].Error, "missing.json")
	assert.Contains(t, results[1].Error, "parse")
	assert.Contains(t, results[2].Error, "unknown output format")
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{Render: renderConfig(t), OutputDir: dir, Format: "png", Workers: 2}
	results := Run(ctx, cfg, JobsFromPaths([]string{writeScene(t, dir, "a.json"), writeScene(t, dir, "b.json")}))
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "context canceled")
	}
	_, err := os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), "gif")
	assert.ErrorIs(t, err, ErrFormat)
	assert.Zero(t, buf.Len())
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{{Name: "a", Scene: "a.json"}, {Name: "b", Scene: "b.toml"}}
	results := []Result{{Name: "a", Image: "a.webp", Rows: 12, Success: true}, {Name: "b", Error: "boom"}}
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, WriteManifest(path, jobs, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, ManifestEntry{Name: "a", Scene: "a.json", Image: "a.webp", Rows: 12, Success: true}, got[0])
	assert.Equal(t, "boom", got[1].Error)
	assert.False(t, got[1].Success)
}
