package cm

import (
	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/chaos"
	"github.com/opengcif/gcif/internal/filter"
	"github.com/opengcif/gcif/internal/gcifimage"
	"github.com/opengcif/gcif/internal/lz2d"
	"github.com/opengcif/gcif/internal/mask"
	"github.com/opengcif/gcif/internal/mono"
	"github.com/opengcif/gcif/internal/zrle"
)

// tableBits is the fast-lookup width handed to every Huffman decoder this
// package builds; it only sizes an internal cache, not the alphabet.
const tableBits = 9

// defaultChaosLevels is how many chaos bins the residual coder splits into;
// Encode always uses this count.
const defaultChaosLevels = 8

// channel indices into the per-chaos-level table group.
const (
	chanY = iota
	chanU
	chanV
	chanA
	channelCount
)

// Skip tells the context model which pixels some earlier layer already
// decided: the mask subsystem's flat color, or a 2-D LZ zone's destination.
// Covered pixels still feed the spatial predictors of their neighbors (they
// must already hold their true value by the time the context model reaches
// them) but never get a residual symbol of their own.
type Skip struct {
	Mask *mask.Bitplane
	LZ   *lz2d.CoveredMask
}

func (s *Skip) covered(x, y int) bool {
	if s == nil {
		return false
	}
	if s.Mask != nil && s.Mask.Get(x, y) {
		return true
	}
	if s.LZ != nil && s.LZ.Covered(x, y) {
		return true
	}
	return false
}

// Codec parameterizes one context-model pass over an RGBA image.
type Codec struct {
	Width, Height int
	TileSize      int
}

// NewCodec builds a codec for a W x H image tiled at tileSize x tileSize.
func NewCodec(width, height, tileSize int) *Codec {
	return &Codec{Width: width, Height: height, TileSize: tileSize}
}

func (c *Codec) tilesX() int { return (c.Width + c.TileSize - 1) / c.TileSize }
func (c *Codec) tilesY() int { return (c.Height + c.TileSize - 1) / c.TileSize }

// Encoded holds a finished context-model coding pass, ready to Write.
type Encoded struct {
	c             *Codec
	lib           []filter.SpatialFilter
	sfMap         *mono.Encoded
	cfMap         *mono.Encoded
	chaosLevels   int
	channelTables []*zrle.CodedStream // indexed level*channelCount + channel
}

// Encode runs the full context-model pipeline: filter-library design, tile
// assignment, residual generation, and chaos-conditioned entropy coding.
// Pixels skip reports as covered get no residual symbol and reset their
// chaos scores to zero, but their actual pixel values (already known, from
// the mask or the LZ source) still feed neighboring predictions. Library
// design and tile assignment score every pixel, covered or not.
func Encode(c *Codec, img *gcifimage.Image, skip *Skip) *Encoded {
	w, h := c.Width, c.Height

	rPlane := filter.NewPlane(w, h)
	gPlane := filter.NewPlane(w, h)
	bPlane := filter.NewPlane(w, h)
	aPlane := filter.NewPlane(w, h)
	lumaPlane := filter.NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(x, y)
			rPlane.Set(x, y, r)
			gPlane.Set(x, y, g)
			bPlane.Set(x, y, b)
			aPlane.Set(x, y, a)
			lumaPlane.Set(x, y, byte((int(r)+int(g)+int(b))/3))
		}
	}

	lib := designLibrary(lumaPlane, c.TileSize)
	tiles := assignTiles(rPlane, gPlane, bPlane, lib, c.TileSize)

	tx, ty := c.tilesX(), c.tilesY()
	sfPlane := filter.NewPlane(tx, ty)
	cfPlane := filter.NewPlane(tx, ty)
	for i, t := range tiles {
		sfPlane.Pix[i] = byte(t.sfIdx)
		cfPlane.Pix[i] = byte(t.cf)
	}

	chaosLevels := defaultChaosLevels
	if chaosLevels > chaos.MaxLevels {
		chaosLevels = chaos.MaxLevels
	}

	encoders := make([]*zrle.Encoder, channelCount*chaosLevels)
	for i := range encoders {
		encoders[i] = zrle.NewEncoder(256)
	}

	table := chaos.NewTable(chaosLevels)
	rb := chaos.NewRowBuffer(w, channelCount)

	for y := 0; y < h; y++ {
		tj := y / c.TileSize
		for x := 0; x < w; x++ {
			if skip.covered(x, y) {
				rb.Zero(chanY, x)
				rb.Zero(chanU, x)
				rb.Zero(chanV, x)
				rb.Zero(chanA, x)
				continue
			}

			ti := x / c.TileSize
			t := tiles[tj*tx+ti]
			sf := lib[t.sfIdx]

			pr := int(rPlane.At(x, y)) - int(filter.Predict(sf, rPlane, x, y))
			pg := int(gPlane.At(x, y)) - int(filter.Predict(sf, gPlane, x, y))
			pb := int(bPlane.At(x, y)) - int(filter.Predict(sf, bPlane, x, y))
			yy, uu, vv := filter.ForwardColor(t.cf, byte(pr), byte(pg), byte(pb))

			leftA := byte(255)
			if x > 0 {
				leftA = aPlane.At(x-1, y)
			}
			ra := byte(int(aPlane.At(x, y)) - int(leftA))

			yLeft, yTop := rb.Neighbors(chanY, x)
			uLeft, uTop := rb.Neighbors(chanU, x)
			vLeft, vTop := rb.Neighbors(chanV, x)
			aLeft, aTop := rb.Neighbors(chanA, x)

			encoders[table.Bin(yLeft, yTop)*channelCount+chanY].Push(int(yy))
			encoders[table.Bin(uLeft, uTop)*channelCount+chanU].Push(int(uu))
			encoders[table.Bin(vLeft, vTop)*channelCount+chanV].Push(int(vv))
			encoders[table.Bin(aLeft, aTop)*channelCount+chanA].Push(int(ra))

			rb.Set(chanY, x, chaos.Score(yy))
			rb.Set(chanU, x, chaos.Score(uu))
			rb.Set(chanV, x, chaos.Score(vv))
			rb.Set(chanA, x, chaos.Score(ra))
		}
		rb.NextRow()
	}

	channelTables := make([]*zrle.CodedStream, len(encoders))
	for i, enc := range encoders {
		channelTables[i] = enc.Finish()
	}

	sfMap := mono.Encode(mono.NewCodec(tx, ty, len(lib), 1), sfPlane, 1)
	cfMap := mono.Encode(mono.NewCodec(tx, ty, int(filter.ColorFilterCount), 1), cfPlane, 1)

	return &Encoded{
		c:             c,
		lib:           lib,
		sfMap:         sfMap,
		cfMap:         cfMap,
		chaosLevels:   chaosLevels,
		channelTables: channelTables,
	}
}

// Write emits the SF-library replacement list, the CF and SF tile maps, the
// chaos level count, and every level's four channel streams.
func (e *Encoded) Write(w *bitio.Writer) {
	replacements := e.lib[len(namedFilters):]
	w.WriteBits(uint32(len(replacements)), 5)
	for i, sf := range replacements {
		w.WriteBits(uint32(len(namedFilters)+i), 5)
		w.WriteBits(uint32(tapIndex(sf)), 7)
	}

	e.cfMap.Write(w)
	e.sfMap.Write(w)

	w.WriteBits(uint32(e.chaosLevels-1), 3)
	for _, s := range e.channelTables {
		s.WriteTables(w)
		s.WriteSymbols(w)
	}
}

// Decoded holds a parsed context-model header, ready to reconstruct pixels
// with Decode.
type Decoded struct {
	c               *Codec
	lib             []filter.SpatialFilter
	cfDec           *mono.Decoded
	sfDec           *mono.Decoded
	chaosLevels     int
	channelDecoders []*zrle.Decoder
}

// Read parses the header Write produced: the filter library, the CF and SF
// tile maps, and the per-level channel table headers. The maps are coded
// with one-entry tiles, so every entry is a constant tile whose value
// mono.Read consumes here; their residual streams carry no symbols.
func Read(r *bitio.Reader, c *Codec) *Decoded {
	tx, ty := c.tilesX(), c.tilesY()

	replCount := int(r.ReadBits(5))
	lib := append([]filter.SpatialFilter(nil), namedFilters...)
	for i := 0; i < replCount; i++ {
		r.ReadBits(5) // slot position; replacements always append in order
		tapIdx := int(r.ReadBits(7))
		lib = append(lib, tapFilter(tapIdx))
	}

	cfDec := mono.Read(r, mono.NewCodec(tx, ty, int(filter.ColorFilterCount), 1))
	sfDec := mono.Read(r, mono.NewCodec(tx, ty, len(lib), 1))

	chaosLevels := int(r.ReadBits(3)) + 1
	channelDecoders := make([]*zrle.Decoder, channelCount*chaosLevels)
	for i := range channelDecoders {
		channelDecoders[i] = zrle.ReadTables(r, 256, tableBits)
	}

	return &Decoded{
		c:               c,
		lib:             lib,
		cfDec:           cfDec,
		sfDec:           sfDec,
		chaosLevels:     chaosLevels,
		channelDecoders: channelDecoders,
	}
}

// unpackColor splits a mask.Bitplane's packed dominant color back into its
// four channels (see mask.packRGBA's layout: R in the low byte, A in the
// high byte).
func unpackColor(color uint32) (r, g, b, a byte) {
	return byte(color), byte(color >> 8), byte(color >> 16), byte(color >> 24)
}

// Decode reconstructs every pixel of img in raster order, the same "check
// mask first, check LZ trigger, otherwise decode a residual" order the
// encoder's coverage decisions assumed. maskBP/maskColor may be nil/0 if no
// mask layer was enabled; zones may be empty if no LZ layer was enabled.
// Because an LZ zone's source pixels can themselves be produced by an
// earlier step of this same loop, the three sources of truth (mask,
// scheduled LZ copies, and fresh residual decoding) must interleave in a
// single raster pass rather than being resolved independently.
func (d *Decoded) Decode(r *bitio.Reader, img *gcifimage.Image, maskBP *mask.Bitplane, maskColor uint32, zones []lz2d.Zone) {
	c := d.c
	w, h := c.Width, c.Height
	tx := c.tilesX()

	sfPlane := d.sfDec.Decode(r)
	cfPlane := d.cfDec.Decode(r)

	rPlane := filter.NewPlane(w, h)
	gPlane := filter.NewPlane(w, h)
	bPlane := filter.NewPlane(w, h)
	aPlane := filter.NewPlane(w, h)

	maskR, maskG, maskB, maskA := unpackColor(maskColor)
	sched := lz2d.NewScheduler(append([]lz2d.Zone(nil), zones...))

	table := chaos.NewTable(d.chaosLevels)
	rb := chaos.NewRowBuffer(w, channelCount)

	setPixel := func(x, y int, rVal, gVal, bVal, aVal byte) {
		rPlane.Set(x, y, rVal)
		gPlane.Set(x, y, gVal)
		bPlane.Set(x, y, bVal)
		aPlane.Set(x, y, aVal)
		img.Set(x, y, rVal, gVal, bVal, aVal)
	}

	for y := 0; y < h; y++ {
		tj := y / c.TileSize
		sched.BeginRow(y)

		for x := 0; x < w; {
			if maskBP != nil && maskBP.Get(x, y) {
				setPixel(x, y, maskR, maskG, maskB, maskA)
				rb.Zero(chanY, x)
				rb.Zero(chanU, x)
				rb.Zero(chanV, x)
				rb.Zero(chanA, x)
				x++
				continue
			}

			if tx2, ok := sched.NextTriggerX(); ok && tx2 == x {
				n := sched.Copy(img, y)
				for i := 0; i < n; i++ {
					cr, cg, cb, ca := img.At(x+i, y)
					rPlane.Set(x+i, y, cr)
					gPlane.Set(x+i, y, cg)
					bPlane.Set(x+i, y, cb)
					aPlane.Set(x+i, y, ca)
					rb.Zero(chanY, x+i)
					rb.Zero(chanU, x+i)
					rb.Zero(chanV, x+i)
					rb.Zero(chanA, x+i)
				}
				x += n
				continue
			}

			ti := x / c.TileSize
			sfIdx := int(sfPlane.At(ti, tj))
			cf := filter.ColorFilter(cfPlane.At(ti, tj))
			sf := d.lib[sfIdx]

			yLeft, yTop := rb.Neighbors(chanY, x)
			uLeft, uTop := rb.Neighbors(chanU, x)
			vLeft, vTop := rb.Neighbors(chanV, x)
			aLeft, aTop := rb.Neighbors(chanA, x)

			yy := byte(d.channelDecoders[table.Bin(yLeft, yTop)*channelCount+chanY].Next(r))
			uu := byte(d.channelDecoders[table.Bin(uLeft, uTop)*channelCount+chanU].Next(r))
			vv := byte(d.channelDecoders[table.Bin(vLeft, vTop)*channelCount+chanV].Next(r))
			ra := byte(d.channelDecoders[table.Bin(aLeft, aTop)*channelCount+chanA].Next(r))

			pr, pg, pb := filter.InverseColor(cf, yy, uu, vv)

			predR := filter.Predict(sf, rPlane, x, y)
			predG := filter.Predict(sf, gPlane, x, y)
			predB := filter.Predict(sf, bPlane, x, y)

			rVal := byte(int(predR) + int(pr))
			gVal := byte(int(predG) + int(pg))
			bVal := byte(int(predB) + int(pb))

			leftA := byte(255)
			if x > 0 {
				leftA = aPlane.At(x-1, y)
			}
			aVal := byte(int(leftA) + int(ra))

			setPixel(x, y, rVal, gVal, bVal, aVal)
			rb.Set(chanY, x, chaos.Score(yy))
			rb.Set(chanU, x, chaos.Score(uu))
			rb.Set(chanV, x, chaos.Score(vv))
			rb.Set(chanA, x, chaos.Score(ra))
			x++
		}
		rb.NextRow()
	}
}
