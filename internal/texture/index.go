package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extensions maps the image extensions the loader understands to whether the
// format carries an alpha channel.
var extensions = map[string]bool{
	".png":  true,
	".tga":  true,
	".tif":  true,
	".tiff": true,
	".jpg":  false,
	".jpeg": false,
	".bmp":  false,
}

// Index maps lowercase texture stems to filesystem paths.
// A format with alpha takes priority over one without for the same stem.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir and its subdirectories for image files.
// An empty dir yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		alpha, ok := extensions[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists {
			idx.entries[stem] = path
		} else if alpha && !extensions[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Names that point at an existing file are used as is; anything else is
// looked up by stem, so "wood.jpg" may resolve to an indexed "Wood.png".
func (idx *Index) ResolvePath(texName string) (string, bool) {
	if texName == "" {
		return "", false
	}
	if info, err := os.Stat(texName); err == nil && !info.IsDir() {
		return texName, true
	}
	if idx == nil {
		return "", false
	}
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}
