// Package chaos implements the residual-magnitude "chaos" model that picks
// which Huffman table codes a given pixel's residual: neighboring residuals
// that are already close to zero predict that the current one will be too,
// so pixels in smooth regions get their own low-entropy table separate from
// pixels near an edge or a busy dithered area.
package chaos

import "math/bits"

// MaxLevels is the largest chaos-level count the model supports. The CM and
// monochrome subsystems both transmit the chosen level count in a 3-bit
// field, so this is also the field's maximum encodable value.
const MaxLevels = 8

// scoreTableSize covers every sum of two folded scores, each in [0,128].
const scoreTableSize = 257

// Score folds a residual byte (a signed difference mod 256) into [0,128]:
// small positive and small negative residuals score the same, since both
// mean "close to the prediction".
func Score(residual byte) int {
	r := int(residual)
	if r <= 128 {
		return r
	}
	return 256 - r
}

// calculate reproduces the reference chaos-table generator: the bin grows
// with the base-2 magnitude of the combined neighbor score, saturating at
// levels-1.
func calculate(sum, levels int) int {
	if sum <= 0 {
		return 0
	}
	c := 1 // BSR32(0)+1
	if sum > 1 {
		c = bits.Len32(uint32(sum - 1)) // BSR32(sum-1)+1
	}
	if c > levels-1 {
		return levels - 1
	}
	return c
}

// Table maps a combined left+top score to a chaos bin for a fixed level
// count.
type Table struct {
	levels int
	bins   [scoreTableSize]uint8
}

// NewTable builds the lookup table for the given level count (1..MaxLevels).
// A single-level table always returns bin 0, matching the degenerate case
// where chaos conditioning is disabled entirely.
func NewTable(levels int) *Table {
	t := &Table{levels: levels}
	if levels <= 1 {
		return t
	}
	for sum := 0; sum < scoreTableSize; sum++ {
		t.bins[sum] = uint8(calculate(sum, levels))
	}
	return t
}

// Levels reports the number of bins this table selects among.
func (t *Table) Levels() int {
	return t.levels
}

// Bin looks up the chaos bin for a pixel given its left and top neighbor
// scores.
func (t *Table) Bin(scoreLeft, scoreTop int) int {
	return int(t.bins[scoreLeft+scoreTop])
}

// RowBuffer holds, per channel, the previous row's residual scores plus the
// current row's scores as they're filled in left to right. Width+1 entries
// let index x-1 (the "left" neighbor of column 0) read as zero without a
// bounds check, matching the convention that edge neighbors score zero.
type RowBuffer struct {
	width    int
	channels int
	prevRow  []uint8
	curRow   []uint8
}

// NewRowBuffer allocates a row buffer for an image of the given width and
// channel count (4 for YUVA, 1 for a monochrome plane).
func NewRowBuffer(width, channels int) *RowBuffer {
	return &RowBuffer{
		width:    width,
		channels: channels,
		prevRow:  make([]uint8, (width+1)*channels),
		curRow:   make([]uint8, (width+1)*channels),
	}
}

// Neighbors returns the left and top folded scores for channel ch at column
// x, ready to feed Table.Bin.
func (rb *RowBuffer) Neighbors(ch, x int) (left, top int) {
	if x == 0 {
		left = 0
	} else {
		left = int(rb.curRow[ch*(rb.width+1)+x])
	}
	top = int(rb.prevRow[ch*(rb.width+1)+x+1])
	return
}

// Set records the folded score of the residual just coded at column x on
// channel ch.
func (rb *RowBuffer) Set(ch, x int, score int) {
	rb.curRow[ch*(rb.width+1)+x+1] = uint8(score)
}

// Zero records a zero score at column x on channel ch, used when a pixel is
// handled by the mask or 2-D LZ subsystem instead of the chaos coder.
func (rb *RowBuffer) Zero(ch, x int) {
	rb.Set(ch, x, 0)
}

// NextRow rotates the current row into the previous-row slot and clears a
// fresh current row, to be called once per scanline.
func (rb *RowBuffer) NextRow() {
	rb.prevRow, rb.curRow = rb.curRow, rb.prevRow
	for i := range rb.curRow {
		rb.curRow[i] = 0
	}
}
