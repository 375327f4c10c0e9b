// Package mask implements the dominant-color bitplane codec: a cheap side
// channel that marks every pixel equal to one chosen RGBA color (fully
// transparent, or the image's most common opaque color) so the context
// model never has to spend chaos-coded residual bits on them.
package mask

import "github.com/opengcif/gcif/internal/gcifimage"

// Bitplane is a W*H bitmap packed 32 bits per word, MSB first: within word
// jj, bit 31 holds column 32*jj, bit 30 holds column 32*jj+1, and so on.
type Bitplane struct {
	Width, Height, Stride int
	Words                 []uint32
	covered               int
}

// NewBitplane allocates a zeroed bitplane sized for width x height.
func NewBitplane(width, height int) *Bitplane {
	stride := (width + 31) >> 5
	return &Bitplane{
		Width:  width,
		Height: height,
		Stride: stride,
		Words:  make([]uint32, stride*height),
	}
}

// Get reports whether bit (x, y) is set.
func (b *Bitplane) Get(x, y int) bool {
	word := b.Words[y*b.Stride+(x>>5)]
	return (word<<(uint(x)&31))>>31 != 0
}

// Set sets or clears bit (x, y).
func (b *Bitplane) Set(x, y int, v bool) {
	idx := y*b.Stride + (x >> 5)
	bitPos := uint(31 - (x & 31))
	if v {
		b.Words[idx] |= 1 << bitPos
	} else {
		b.Words[idx] &^= 1 << bitPos
	}
}

// packRGBA packs one pixel into the little-endian word layout the original
// masker compares against: R in the low byte, A in the high byte.
func packRGBA(r, g, b, a byte) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// BuildFromRGBA sets every bit whose pixel, masked by colorMask, equals
// color. Passing color 0 and colorMask 0xff000000 builds the
// fully-transparent alpha mask; passing a fully opaque RGB color and mask
// 0xffffffff builds the dominant-color mask.
func BuildFromRGBA(img *gcifimage.Image, color, colorMask uint32) *Bitplane {
	bp := NewBitplane(img.Width, img.Height)
	covered := 0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, a := img.At(x, y)
			if packRGBA(r, g, b, a)&colorMask == color {
				bp.Set(x, y, true)
				covered++
			}
		}
	}
	bp.covered = covered
	return bp
}

// covered is filled in by BuildFromRGBA; exported through Covered().
func (b *Bitplane) Covered() int { return b.covered }

// DominantOpaqueColor returns the most frequent fully-opaque RGB color in
// the image, packed as packRGBA(r,g,b,0xff). If no pixel is opaque it
// returns opaque black. Ties are broken by lowest packed color value, not
// by map iteration order, so the result is stable across runs of the same
// image.
func DominantOpaqueColor(img *gcifimage.Image) uint32 {
	counts := make(map[uint32]int)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, a := img.At(x, y)
			if a != 255 {
				continue
			}
			counts[packRGBA(r, g, b, a)]++
		}
	}
	best := packRGBA(0, 0, 0, 255)
	bestScore := 0
	for color, score := range counts {
		if score > bestScore || (score == bestScore && color < best) {
			bestScore = score
			best = color
		}
	}
	return best
}

// ApplyFilter XORs every row of the bitplane with the row above it (the
// first row is XORed with an assumed all-ones row, matching the original's
// "assume it is on the edges" border convention), sparsifying runs of
// pixels that repeat vertically.
func ApplyFilter(bp *Bitplane) []uint32 {
	stride := bp.Stride
	filtered := make([]uint32, len(bp.Words))
	for jj := 0; jj < stride; jj++ {
		filtered[jj] = bp.Words[jj] ^ 0xffffffff
	}
	for y := 1; y < bp.Height; y++ {
		rowOff := y * stride
		aboveOff := rowOff - stride
		for jj := 0; jj < stride; jj++ {
			filtered[rowOff+jj] = bp.Words[rowOff+jj] ^ bp.Words[aboveOff+jj]
		}
	}
	return filtered
}

// InverseFilter reconstructs the original bitplane words from ApplyFilter's
// output.
func InverseFilter(width, height int, filtered []uint32) *Bitplane {
	bp := NewBitplane(width, height)
	stride := bp.Stride
	for jj := 0; jj < stride; jj++ {
		bp.Words[jj] = filtered[jj] ^ 0xffffffff
	}
	for y := 1; y < height; y++ {
		rowOff := y * stride
		aboveOff := rowOff - stride
		for jj := 0; jj < stride; jj++ {
			bp.Words[rowOff+jj] = filtered[rowOff+jj] ^ bp.Words[aboveOff+jj]
		}
	}
	return bp
}
