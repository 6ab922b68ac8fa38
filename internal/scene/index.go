package scene

// Index identifies a renderable primitive in the A-buffer. Zero is the sky.
// Faces are numbered from 1; the second triangle of a quad carries QuadBit,
// halos carry HaloBit.
type Index uint32

const (
	QuadBit Index = 1 << 30
	HaloBit Index = 1 << 31

	numMask = QuadBit - 1
)

// FaceIndex is the index of the first (or only) triangle of face i.
func FaceIndex(i int) Index { return Index(i+1) & numMask }

// QuadHalfIndex is the index of the second triangle of quad i.
func QuadHalfIndex(i int) Index { return FaceIndex(i) | QuadBit }

// HaloIndex is the index of halo i.
func HaloIndex(i int) Index { return FaceIndex(i) | HaloBit }

// IsSky reports whether x is the background.
func (x Index) IsSky() bool { return x == 0 }

// IsHalo reports whether x refers to a halo.
func (x Index) IsHalo() bool { return x&HaloBit != 0 }

// IsQuadHalf reports whether x is the second triangle of a quad.
func (x Index) IsQuadHalf() bool { return x&HaloBit == 0 && x&QuadBit != 0 }

// Face returns the zero-based face number, or -1 for halos and the sky.
func (x Index) Face() int {
	if x == 0 || x.IsHalo() {
		return -1
	}
	return int(x&numMask) - 1
}

// Halo returns the zero-based halo number, or -1 for faces and the sky.
func (x Index) Halo() int {
	if !x.IsHalo() {
		return -1
	}
	return int(x&numMask) - 1
}
