package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"scanline-renderer/internal/config"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("scene: invalid")

// Load reads a JSON, TOML or YAML scene file. Relative texture and background
// image paths are resolved against the scene file's directory.
func Load(path string) (*Scene, error) {
	var s Scene
	if err := config.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range s.Materials {
		s.Materials[i].Texture = resolvePath(dir, s.Materials[i].Texture)
	}
	s.World.Image = resolvePath(dir, s.World.Image)
	s.World.Texture = resolvePath(dir, s.World.Texture)
	s.Normalize()
	return &s, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Normalize fills defaults for fields left at their zero value.
func (s *Scene) Normalize() {
	if s.Camera.Lens <= 0 {
		s.Camera.Lens = 35
	}
	if s.Camera.OrthoScale <= 0 {
		s.Camera.OrthoScale = 6
	}
	if s.Camera.Near <= 0 {
		s.Camera.Near = 0.1
	}
	for i := range s.Materials {
		if s.Materials[i].Hardness <= 0 {
			s.Materials[i].Hardness = 50
		}
	}
	for i := range s.Halos {
		if s.Halos[i].Hard <= 0 {
			s.Halos[i].Hard = 50
		}
	}
	for i := range s.Lamps {
		if s.Lamps[i].Energy == 0 {
			s.Lamps[i].Energy = 1
		}
		if s.Lamps[i].SpotSize <= 0 {
			s.Lamps[i].SpotSize = 45
		}
	}
}

// Validate reports malformed topology. The renderer skips such faces on its own,
// so callers may treat the result as a warning.
func (s *Scene) Validate() error {
	var errs []error
	for i, f := range s.Faces {
		if n := len(f.Verts); n != 3 && n != 4 {
			errs = append(errs, fmt.Errorf("%w: face %d has %d vertices", ErrInvalid, i, n))
			continue
		}
		for _, v := range f.Verts {
			if v < 0 || v >= len(s.Verts) {
				errs = append(errs, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalid, i, v, len(s.Verts)))
				break
			}
		}
		if f.Material < 0 || f.Material >= len(s.Materials) {
			errs = append(errs, fmt.Errorf("%w: face %d references material %d of %d", ErrInvalid, i, f.Material, len(s.Materials)))
		}
	}
	for i, h := range s.Halos {
		if h.Size <= 0 {
			errs = append(errs, fmt.Errorf("%w: halo %d has size %g", ErrInvalid, i, h.Size))
		}
	}
	return errors.Join(errs...)
}
