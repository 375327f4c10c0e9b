package container

import (
	"errors"

	"github.com/spaolacci/murmur3"
)

// ErrBadMagic means word 0 wasn't the GCIF magic number.
var ErrBadMagic = errors.New("container: bad magic")

// ErrBadHash means the header hash or one of the two data hashes didn't
// match what was stored, so the file is either corrupt or truncated.
var ErrBadHash = errors.New("container: hash mismatch")

// ErrTruncated means fewer than HeaderWords words were available.
var ErrTruncated = errors.New("container: truncated header")

// Header is the parsed form of a GCIF file's fixed 5-word prologue.
type Header struct {
	Width, Height int
}

// fastHash is a cheap multiplicative rolling hash over the payload words,
// checked before the slower murmur3 hash so a corrupt file is usually
// rejected without hashing the whole payload twice.
func fastHash(words []uint32) uint32 {
	h := uint32(0x9e3779b9)
	for _, w := range words {
		h = (h ^ w) * 0x01000193
		h = (h << 13) | (h >> 19)
	}
	return h
}

// goodHash is the payload's murmur3 hash, computed over its little-endian
// byte representation.
func goodHash(words []uint32) uint32 {
	return murmur3.Sum32(wordsToBytes(words))
}

func headerHash(w0, w1, w2, w3 uint32) uint32 {
	return murmur3.Sum32(wordsToBytes([]uint32{w0, w1, w2, w3}))
}

func wordsToBytes(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		PutLE32(buf[i*4:], w)
	}
	return buf
}

// BuildHeader computes the 5-word header for a width x height image whose
// bit-packed layer stream is dataWords.
func BuildHeader(width, height int, dataWords []uint32) [HeaderWords]uint32 {
	var h [HeaderWords]uint32
	h[0] = Magic
	h[1] = uint32(width)<<16 | uint32(height)
	h[2] = fastHash(dataWords)
	h[3] = goodHash(dataWords)
	h[4] = headerHash(h[0], h[1], h[2], h[3])
	return h
}

// ParseHeader validates and parses the first HeaderWords of words, returning
// the header and the remaining data words (the layer bit stream).
func ParseHeader(words []uint32) (Header, []uint32, error) {
	if len(words) < HeaderWords {
		return Header{}, nil, ErrTruncated
	}
	if words[0] != Magic {
		return Header{}, nil, ErrBadMagic
	}

	data := words[HeaderWords:]
	if headerHash(words[0], words[1], words[2], words[3]) != words[4] {
		return Header{}, nil, ErrBadHash
	}
	if fastHash(data) != words[2] || goodHash(data) != words[3] {
		return Header{}, nil, ErrBadHash
	}

	return Header{
		Width:  int(words[1] >> 16),
		Height: int(words[1] & 0xffff),
	}, data, nil
}
