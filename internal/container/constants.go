// Package container implements the GCIF file container: the fixed 5-word
// header (magic, dimensions, two payload hashes, a header hash) that wraps
// the bit-packed layer stream the mask, 2-D LZ, context-model, and palette
// packages produce.
package container

import "encoding/binary"

// FourCC packs four bytes into a little-endian 32-bit word, the same way
// the GCIF magic number is defined: byte 'G' in the low bits, 'F' in the
// high bits.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Magic is word 0 of every GCIF file.
var Magic = FourCC('G', 'C', 'I', 'F')

// HeaderWords is the number of fixed words preceding the layer bit stream.
const HeaderWords = 5

// ReadLE32 reads a little-endian uint32 from data.
func ReadLE32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// PutLE32 writes a little-endian uint32 to data.
func PutLE32(data []byte, v uint32) {
	binary.LittleEndian.PutUint32(data, v)
}
