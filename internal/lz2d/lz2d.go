// Package lz2d implements the 2-D LZ matcher: it finds repeated rectangular
// blocks of pixels elsewhere in the same sprite sheet (the same tile drawn
// twice, a repeated background pattern) and records them as copy zones so
// the context model never has to spend residual bits coding them twice.
package lz2d

import "github.com/opengcif/gcif/internal/gcifimage"

// ZoneSeed is the side of the square pixel block the rolling hash is
// computed over; a match only becomes a candidate once this many columns
// and rows agree exactly.
const ZoneSeed = 3

// tableBits sizes the hash table at 2^18 entries, matching the coverage the
// reference matcher uses for sprite-sheet-sized images.
const tableBits = 18
const tableSize = 1 << tableBits
const tableMask = tableSize - 1

// maxZoneDim bounds a zone's transmitted size field to one byte: a zone is
// at least ZoneSeed x ZoneSeed, and at most ZoneSeed+255 per side.
const maxZoneDim = ZoneSeed + 255

// Zone is one matched rectangle: the w*h block at (SX,SY) is pixel-identical
// to the block at (DX,DY), with (SX,SY) guaranteed to precede (DX,DY) in
// raster order so the decoder can always copy from already-reconstructed
// pixels.
type Zone struct {
	SX, SY uint16
	DX, DY uint16
	W, H   uint16
}

func packedPixel(img *gcifimage.Image, x, y int) uint32 {
	r, g, b, a := img.At(x, y)
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// hashBlock computes a rolling-style hash of the ZoneSeed x ZoneSeed pixel
// block anchored at (x, y).
func hashBlock(img *gcifimage.Image, x, y int) uint32 {
	var h uint32 = 2166136261
	for dy := 0; dy < ZoneSeed; dy++ {
		for dx := 0; dx < ZoneSeed; dx++ {
			h ^= packedPixel(img, x+dx, y+dy)
			h *= 16777619
		}
	}
	return h
}

func blockEquals(img *gcifimage.Image, ax, ay, bx, by int) bool {
	for dy := 0; dy < ZoneSeed; dy++ {
		for dx := 0; dx < ZoneSeed; dx++ {
			if packedPixel(img, ax+dx, ay+dy) != packedPixel(img, bx+dx, by+dy) {
				return false
			}
		}
	}
	return true
}

// visitedMask tracks which destination pixels a zone has already claimed,
// so later candidates never overlap an earlier zone's destination.
type visitedMask struct {
	width int
	bits  []uint32
}

func newVisitedMask(width, height int) *visitedMask {
	return &visitedMask{width: width, bits: make([]uint32, (width*height+31)>>5)}
}

func (v *visitedMask) get(x, y int) bool {
	off := y*v.width + x
	return (v.bits[off>>5]>>(uint(off)&31))&1 != 0
}

func (v *visitedMask) set(x, y int) {
	off := y*v.width + x
	v.bits[off>>5] |= 1 << (uint(off) & 31)
}

func (v *visitedMask) setRect(x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			v.set(xx, yy)
		}
	}
}

func (v *visitedMask) rectFree(x, y, w, h int) bool {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if v.get(xx, yy) {
				return false
			}
		}
	}
	return true
}

// score weighs nonzero (visible) pixels 4x over fully-zero (transparent
// black) pixels, since runs of zero pixels already compress well under the
// chaos model and a match there saves much less.
func score(img *gcifimage.Image, x, y, w, h int) int {
	total := 0
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if packedPixel(img, xx, yy) == 0 {
				total++
			} else {
				total += 4
			}
		}
	}
	return total
}

// expand grows the matched ZoneSeed x ZoneSeed anchor to the right and
// downward as far as the source and destination blocks keep agreeing
// exactly, the destination stays within image bounds and unclaimed, and the
// zone stays within maxZoneDim per side.
func expand(img *gcifimage.Image, visited *visitedMask, sx, sy, dx, dy int) (w, h int) {
	w, h = ZoneSeed, ZoneSeed

	for w < maxZoneDim && dx+w < img.Width && sx+w < img.Width {
		col := w
		ok := true
		for yy := 0; yy < h; yy++ {
			if packedPixel(img, sx+col, sy+yy) != packedPixel(img, dx+col, dy+yy) {
				ok = false
				break
			}
			if visited.get(dx+col, dy+yy) {
				ok = false
				break
			}
		}
		if !ok {
			break
		}
		w++
	}

	for h < maxZoneDim && dy+h < img.Height && sy+h < img.Height {
		row := h
		ok := true
		for xx := 0; xx < w; xx++ {
			if packedPixel(img, sx+xx, sy+row) != packedPixel(img, dx+xx, dy+row) {
				ok = false
				break
			}
			if visited.get(dx+xx, dy+row) {
				ok = false
				break
			}
		}
		if !ok {
			break
		}
		h++
	}

	return w, h
}

// FindMatches scans the image left to right, top to bottom, looking up each
// ZoneSeed-anchored block in a rolling hash table and accepting matches
// that expand to a score of at least minScore. Matches never claim a
// destination pixel already claimed by an earlier match.
func FindMatches(img *gcifimage.Image, minScore int) []Zone {
	width, height := img.Width, img.Height
	if width < ZoneSeed || height < ZoneSeed {
		return nil
	}

	table := make([]int64, tableSize)
	for i := range table {
		table[i] = -1
	}
	visited := newVisitedMask(width, height)

	var zones []Zone

	for y := 0; y <= height-ZoneSeed; y++ {
		for x := 0; x <= width-ZoneSeed; x++ {
			if visited.get(x, y) {
				continue
			}

			h := hashBlock(img, x, y) & tableMask
			prev := table[h]
			table[h] = int64(y)<<32 | int64(x)

			if prev < 0 {
				continue
			}
			sx, sy := int(prev&0xffffffff), int(prev>>32)
			if sx == x && sy == y {
				continue
			}
			if !blockEquals(img, sx, sy, x, y) {
				continue
			}
			if !visited.rectFree(x, y, ZoneSeed, ZoneSeed) {
				continue
			}

			w, ht := expand(img, visited, sx, sy, x, y)
			if score(img, x, y, w, ht) < minScore {
				continue
			}

			visited.setRect(x, y, w, ht)
			zones = append(zones, Zone{
				SX: uint16(sx), SY: uint16(sy),
				DX: uint16(x), DY: uint16(y),
				W: uint16(w), H: uint16(ht),
			})
		}
	}

	return zones
}
