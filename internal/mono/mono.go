// Package mono implements the general-purpose monochrome tile coder: the
// same tile-grid, per-tile spatial filter, and chaos-binned entropy design
// the context model uses for YUVA pixels, specialized to a single channel
// with an arbitrary symbol count. It codes the context model's SF/CF
// tile-assignment maps and the small-palette mode's index raster.
package mono

import (
	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/chaos"
	"github.com/opengcif/gcif/internal/filter"
	"github.com/opengcif/gcif/internal/zrle"
)

// candidates is the fixed library of monochrome predictors a tile can pick
// from. Unlike the context model's learned, transmitted filter subset
// (picked per image from 97 candidates), the monochrome coder always
// chooses among this small fixed set: the savings from a learned subset
// matter far less for single-channel planes (tile maps, palette indices) than for
// YUVA residuals, so transmitting one is not worth the header overhead.
var candidates = []filter.SpatialFilter{
	filter.SFZ,
	filter.SFA,
	filter.SFB,
	filter.SFAB,
	filter.SFPaeth,
	filter.SFABCClamp,
}

// paletteFlag is the reserved tile-descriptor symbol meaning "this tile is
// a single constant value, transmitted directly instead of as residuals."
const paletteFlag = 0

// Codec parameterizes one monochrome coding pass.
type Codec struct {
	Width, Height int
	N             int // alphabet size of the plane's symbols
	TileSize      int
}

// NewCodec builds a codec for a W x H plane with N possible symbol values,
// tiled at tileSize x tileSize.
func NewCodec(width, height, n, tileSize int) *Codec {
	return &Codec{Width: width, Height: height, N: n, TileSize: tileSize}
}

func (c *Codec) tilesX() int { return (c.Width + c.TileSize - 1) / c.TileSize }
func (c *Codec) tilesY() int { return (c.Height + c.TileSize - 1) / c.TileSize }

func (c *Codec) tileBounds(tx, ty int) (x0, y0, x1, y1 int) {
	x0, y0 = tx*c.TileSize, ty*c.TileSize
	x1, y1 = x0+c.TileSize, y0+c.TileSize
	if x1 > c.Width {
		x1 = c.Width
	}
	if y1 > c.Height {
		y1 = c.Height
	}
	return
}

// tileDescriptor describes one tile's coding choice.
type tileDescriptor struct {
	isPalette bool
	symbol    int // valid iff isPalette
	filterIdx int // index into candidates, valid iff !isPalette
}

// chooseTile picks a tile's descriptor: if every pixel shares one value it
// becomes a palette tile, otherwise the candidate filter with the smallest
// summed folded residual score wins.
func (c *Codec) chooseTile(plane *filter.Plane, x0, y0, x1, y1 int) tileDescriptor {
	first := plane.At(x0, y0)
	constant := true
outer:
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if plane.At(x, y) != first {
				constant = false
				break outer
			}
		}
	}
	if constant {
		return tileDescriptor{isPalette: true, symbol: int(first)}
	}

	bestIdx, bestScore := 0, -1
	for i, sf := range candidates {
		score := 0
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				pred := filter.Predict(sf, plane, x, y)
				residual := (int(plane.At(x, y)) - int(pred)) % c.N
				if residual < 0 {
					residual += c.N
				}
				score += chaos.Score(byte(residual))
			}
		}
		if bestScore < 0 || score < bestScore {
			bestScore, bestIdx = score, i
		}
	}
	return tileDescriptor{isPalette: false, filterIdx: bestIdx}
}

// Encoded holds everything needed to write one monochrome-coded plane.
type Encoded struct {
	c           *Codec
	tiles       []tileDescriptor
	chaosLevels int
	levelTables []*zrle.CodedStream
}

// Encode codes plane (values in [0, N)) under this codec's tile grid.
func Encode(c *Codec, plane *filter.Plane, chaosLevels int) *Encoded {
	tx, ty := c.tilesX(), c.tilesY()
	tiles := make([]tileDescriptor, tx*ty)
	for j := 0; j < ty; j++ {
		for i := 0; i < tx; i++ {
			x0, y0, x1, y1 := c.tileBounds(i, j)
			tiles[j*tx+i] = c.chooseTile(plane, x0, y0, x1, y1)
		}
	}

	encoders := make([]*zrle.Encoder, chaosLevels)
	for i := range encoders {
		encoders[i] = zrle.NewEncoder(c.N)
	}

	table := chaos.NewTable(chaosLevels)
	rb := chaos.NewRowBuffer(c.Width, 1)

	for y := 0; y < c.Height; y++ {
		tj := y / c.TileSize
		for x := 0; x < c.Width; x++ {
			ti := x / c.TileSize
			desc := tiles[tj*tx+ti]

			if desc.isPalette {
				rb.Zero(0, x)
				continue
			}

			sf := candidates[desc.filterIdx]
			pred := filter.Predict(sf, plane, x, y)
			residual := (int(plane.At(x, y)) - int(pred)) % c.N
			if residual < 0 {
				residual += c.N
			}

			left, top := rb.Neighbors(0, x)
			bin := table.Bin(left, top)
			encoders[bin].Push(residual)
			rb.Set(0, x, chaos.Score(byte(residual)))
		}
		rb.NextRow()
	}

	levelTables := make([]*zrle.CodedStream, chaosLevels)
	for i, enc := range encoders {
		levelTables[i] = enc.Finish()
	}

	return &Encoded{c: c, tiles: tiles, chaosLevels: chaosLevels, levelTables: levelTables}
}

// Write emits the tile descriptor stream followed by the chaos level count
// and every level's zRLE-coded residual stream.
func (e *Encoded) Write(w *bitio.Writer) {
	tileEnc := zrle.NewEncoder(len(candidates) + 1)
	var paletteSymbols []int
	for _, t := range e.tiles {
		if t.isPalette {
			tileEnc.Push(paletteFlag)
			paletteSymbols = append(paletteSymbols, t.symbol)
		} else {
			tileEnc.Push(t.filterIdx + 1)
		}
	}
	tileStream := tileEnc.Finish()
	tileStream.WriteTables(w)
	tileStream.WriteSymbols(w)
	for _, s := range paletteSymbols {
		w.Write9(s)
	}

	w.WriteBits(uint32(e.chaosLevels-1), 3)
	for _, lt := range e.levelTables {
		lt.WriteTables(w)
		lt.WriteSymbols(w)
	}
}

// Decoded wires a Read-produced tile map and per-level decoders back into a
// plane, used by Decode.
type Decoded struct {
	c           *Codec
	tiles       []tileDescriptor
	chaosLevels int
	decoders    []*zrle.Decoder
}

// Read parses the stream produced by Write. The caller must already know
// width, height, N, and tileSize (transmitted by the enclosing layer).
func Read(r *bitio.Reader, c *Codec) *Decoded {
	tx, ty := c.tilesX(), c.tilesY()
	n := tx * ty

	tileDec := zrle.ReadTables(r, len(candidates)+1, 9)
	rawTiles := make([]int, n)
	for i := range rawTiles {
		rawTiles[i] = tileDec.Next(r)
	}

	tiles := make([]tileDescriptor, n)
	for i, sym := range rawTiles {
		if sym == paletteFlag {
			tiles[i] = tileDescriptor{isPalette: true, symbol: r.Read9()}
		} else {
			tiles[i] = tileDescriptor{isPalette: false, filterIdx: sym - 1}
		}
	}

	chaosLevels := int(r.ReadBits(3)) + 1
	decoders := make([]*zrle.Decoder, chaosLevels)
	for i := range decoders {
		decoders[i] = zrle.ReadTables(r, c.N, 9)
	}

	return &Decoded{c: c, tiles: tiles, chaosLevels: chaosLevels, decoders: decoders}
}

// Decode reconstructs the plane from the bitstream, reading residual
// symbols from r as it goes in raster order.
func (d *Decoded) Decode(r *bitio.Reader) *filter.Plane {
	c := d.c
	plane := filter.NewPlane(c.Width, c.Height)
	tx := c.tilesX()

	table := chaos.NewTable(d.chaosLevels)
	rb := chaos.NewRowBuffer(c.Width, 1)

	for y := 0; y < c.Height; y++ {
		tj := y / c.TileSize
		for x := 0; x < c.Width; x++ {
			ti := x / c.TileSize
			desc := d.tiles[tj*tx+ti]

			if desc.isPalette {
				plane.Set(x, y, byte(desc.symbol))
				rb.Zero(0, x)
				continue
			}

			left, top := rb.Neighbors(0, x)
			bin := table.Bin(left, top)
			residual := d.decoders[bin].Next(r)

			sf := candidates[desc.filterIdx]
			pred := filter.Predict(sf, plane, x, y)
			value := (int(pred) + residual) % c.N
			if value < 0 {
				value += c.N
			}
			plane.Set(x, y, byte(value))
			rb.Set(0, x, chaos.Score(byte(residual)))
		}
		rb.NextRow()
	}

	return plane
}
