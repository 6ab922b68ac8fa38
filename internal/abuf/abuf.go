// Package abuf holds the per-pixel record lists of the A-buffer for one band of
// scanlines at a time.
package abuf

import "scanline-renderer/internal/scene"

// none marks the end of a pixel's record chain.
const none int32 = -1

// Record is one primitive touching one pixel: its depth range over the covered
// subsamples and a bit per covered subsample.
type Record struct {
	Index scene.Index
	MinZ  float64
	MaxZ  float64
	Mask  uint16

	next int32
}

// Band is the A-buffer for a resident window [y0, y1) of scanlines.
// Records live in one growable arena and are chained per pixel by index, so the
// arena can be reused for every band without reallocation.
//
// A Band is filled by a single goroutine and only read while shading.
type Band struct {
	width  int
	height int
	y0, y1 int

	head []int32
	tail []int32
	recs []Record

	maxRecords int
	dropped    int
}

// NewBand allocates a band of width x height pixels that holds at most
// maxRecords records. maxRecords <= 0 means unbounded.
func NewBand(width, height, maxRecords int) *Band {
	n := width * height
	b := &Band{
		width:      width,
		height:     height,
		head:       make([]int32, n),
		tail:       make([]int32, n),
		maxRecords: maxRecords,
	}
	if maxRecords > 0 {
		b.recs = make([]Record, 0, min(maxRecords, n*2))
	}
	b.Reset(0, 0)
	return b
}

// Reset empties every pixel list and makes [y0, y1) the resident rows.
// y1 is clamped so the window never exceeds the band height.
func (b *Band) Reset(y0, y1 int) {
	if y1-y0 > b.height {
		y1 = y0 + b.height
	}
	if y1 < y0 {
		y1 = y0
	}
	b.y0, b.y1 = y0, y1
	for i := range b.head {
		b.head[i] = none
		b.tail[i] = none
	}
	b.recs = b.recs[:0]
}

// Width returns the band width in pixels.
func (b *Band) Width() int { return b.width }

// Bounds returns the resident rows [y0, y1).
func (b *Band) Bounds() (y0, y1 int) { return b.y0, b.y1 }

// Contains reports whether row y is resident.
func (b *Band) Contains(y int) bool { return y >= b.y0 && y < b.y1 }

// Len returns the number of records in the band.
func (b *Band) Len() int { return len(b.recs) }

// Dropped returns how many inserts were refused because the arena was full,
// summed over every band since the Band was created.
func (b *Band) Dropped() int { return b.dropped }

// Insert adds subsample s of primitive idx at depth z to pixel (x, y).
func (b *Band) Insert(x, y int, idx scene.Index, z float64, s int) bool {
	return b.InsertMask(x, y, idx, z, uint16(1)<<uint(s))
}

// InsertMask adds the subsamples in mask of primitive idx at depth z to pixel (x, y).
// A primitive that already has a record at this pixel gets its mask OR'ed and its
// depth range widened instead of a second record. Pixels outside the band are
// ignored. It returns false if the insert was dropped.
func (b *Band) InsertMask(x, y int, idx scene.Index, z float64, mask uint16) bool {
	if x < 0 || x >= b.width || y < b.y0 || y >= b.y1 {
		return false
	}
	p := (y-b.y0)*b.width + x

	for r := b.head[p]; r != none; r = b.recs[r].next {
		rec := &b.recs[r]
		if rec.Index != idx {
			continue
		}
		rec.Mask |= mask
		if z < rec.MinZ {
			rec.MinZ = z
		}
		if z > rec.MaxZ {
			rec.MaxZ = z
		}
		return true
	}

	if b.maxRecords > 0 && len(b.recs) >= b.maxRecords {
		b.dropped++
		return false
	}
	r := int32(len(b.recs))
	b.recs = append(b.recs, Record{Index: idx, MinZ: z, MaxZ: z, Mask: mask, next: none})
	if b.tail[p] == none {
		b.head[p] = r
	} else {
		b.recs[b.tail[p]].next = r
	}
	b.tail[p] = r
	return true
}

// Pixel appends the records of pixel (x, y) to dst in insertion order and
// returns the extended slice. Pixels outside the band have no records.
func (b *Band) Pixel(x, y int, dst []Record) []Record {
	if x < 0 || x >= b.width || y < b.y0 || y >= b.y1 {
		return dst
	}
	p := (y-b.y0)*b.width + x
	for r := b.head[p]; r != none; r = b.recs[r].next {
		dst = append(dst, b.recs[r])
	}
	return dst
}
