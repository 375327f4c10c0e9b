package mask

import (
	"github.com/pierrec/lz4/v4"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/gcifimage"
	"github.com/opengcif/gcif/internal/huffman"
)

// huffThresh mirrors the original encoder's decision point: below this many
// post-LZ bytes, a Huffman table costs more than it saves and the stream is
// written as raw 8-bit symbols instead.
const huffThresh = 128

// Encoded holds everything needed to write one mask (alpha or dominant
// color) to the bitstream, or nothing if the mask was not worth sending.
type Encoded struct {
	Enabled bool
	Color   uint32

	rleLen int
	lz     []byte
	table  *huffman.Table
}

// Encode builds the bitplane of pixels matching (color & colorMask),
// filters, RLE-encodes, LZ4-compresses it, and decides whether a Huffman
// table is worth transmitting. minRatio is the minimum (covered pixels *
// 32) / (estimated bits) ratio required to keep the mask enabled;
// passing 0 always enables a mask with any coverage.
func Encode(img *gcifimage.Image, color, colorMask uint32, minRatio int) *Encoded {
	bp := BuildFromRGBA(img, color, colorMask)
	covered := bp.Covered()
	if covered == 0 {
		return &Encoded{Enabled: false}
	}

	filtered := ApplyFilter(bp)
	rle := encodeRLE(filtered, bp.Stride, bp.Height)

	bound := lz4.CompressBlockBound(len(rle))
	lzBuf := make([]byte, bound)
	var compressor lz4.CompressorHC
	n, err := compressor.CompressBlock(rle, lzBuf)
	var lz []byte
	if err != nil || n == 0 || n >= len(rle) {
		lz = rle
	} else {
		lz = lzBuf[:n]
	}

	useHuffman := len(lz) >= huffThresh
	var table *huffman.Table
	if useHuffman {
		hist := make([]uint32, 256)
		for _, b := range lz {
			hist[b]++
		}
		table = huffman.BuildTable(hist)
	}

	simulatedBits := 32
	if useHuffman {
		for _, b := range lz {
			simulatedBits += table.BitCost(int(b))
		}
	} else {
		simulatedBits += len(lz) * 8
	}

	enabled := true
	if minRatio > 0 {
		ratio := (covered * 32) / simulatedBits
		enabled = ratio >= minRatio
	}

	return &Encoded{
		Enabled: enabled,
		Color:   color,
		rleLen:  len(rle),
		lz:      lz,
		table:   table,
	}
}

// Write emits the enable bit and, if enabled, the color word, length
// fields, the Huffman table (if used), and the coded LZ bytes.
func (e *Encoded) Write(w *bitio.Writer) {
	if !e.Enabled {
		w.WriteBit(0)
		return
	}
	w.WriteBit(1)
	w.WriteWord(e.Color)
	w.Write9(e.rleLen)
	w.Write9(len(e.lz))

	useHuffman := e.table != nil
	if useHuffman {
		w.WriteBit(1)
		huffman.WriteCodeLengths(w, e.table.CodeLengths)
		for _, b := range e.lz {
			e.table.Encode(w, int(b))
		}
	} else {
		w.WriteBit(0)
		for _, b := range e.lz {
			w.WriteBits(uint32(b), 8)
		}
	}
}

// Read reads a mask written by Write and reconstructs its bitplane. The
// second return value is false when the mask was disabled at encode time.
func Read(r *bitio.Reader, width, height int) (*Bitplane, uint32, bool) {
	if r.ReadBit() == 0 {
		return nil, 0, false
	}

	color := r.ReadWord()
	rleLen := r.Read9()
	lzLen := r.Read9()
	useHuffman := r.ReadBit() == 1

	lz := make([]byte, lzLen)
	if useHuffman {
		lens := huffman.ReadCodeLengths(r, 256)
		dec := huffman.NewDecoder(lens, 9)
		for i := range lz {
			lz[i] = byte(dec.Next(r))
		}
	} else {
		for i := range lz {
			lz[i] = byte(r.ReadBits(8))
		}
	}

	stride := (width + 31) >> 5
	rle := make([]byte, rleLen)
	if rleLen == len(lz) {
		copy(rle, lz)
	} else {
		n, err := lz4.UncompressBlock(lz, rle)
		if err != nil || n != rleLen {
			rle = rle[:0]
			rle = append(rle, lz...)
			if len(rle) > rleLen {
				rle = rle[:rleLen]
			}
		}
	}

	filtered := decodeRLE(rle, stride, height)
	bp := InverseFilter(width, height, filtered)
	return bp, color, true
}
