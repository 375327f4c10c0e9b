// Package gcif implements a lossless image codec specialized for game
// sprite sheets: RGBA rasters dominated by transparent regions, repeated
// sub-images, and small color palettes. It layers a dominant-color mask, a
// 2-D LZ matcher, and a chaos-conditioned context model (or, orthogonally,
// a small-palette mode) over a word-oriented bit stream, wrapped in a
// 5-word container header carrying two independent payload hashes.
package gcif

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/chaos"
	"github.com/opengcif/gcif/internal/cm"
	"github.com/opengcif/gcif/internal/container"
	"github.com/opengcif/gcif/internal/gcifimage"
	"github.com/opengcif/gcif/internal/lz2d"
	"github.com/opengcif/gcif/internal/mask"
	"github.com/opengcif/gcif/internal/palette"
)

// Image is the raw RGBA raster every encode/decode call operates on.
type Image = gcifimage.Image

// NewImage allocates a zeroed W x H raster.
func NewImage(width, height int) *Image { return gcifimage.New(width, height) }

// EncodeOptions gives full control over the encoder's knobs, the way
// encode_ex exposes every parameter encode's level presets only pick for
// the caller.
type EncodeOptions struct {
	// TileSize is the context model's (and, when used, the monochrome tile
	// map's) tile edge length. It is transmitted in the stream, so a
	// decoder never needs to assume a particular value.
	TileSize int
	// LZMinScore is the minimum match score (§4.7) the 2-D LZ matcher will
	// accept; 0 disables the LZ layer entirely.
	LZMinScore int
	// MaskMinRatio is the minimum (covered pixels * 32) / (estimated
	// compressed mask bits) ratio required to keep the mask layer enabled;
	// 0 always keeps it enabled when any pixel matches the chosen dominant
	// color.
	MaskMinRatio int
	// ChaosLevels is the number of chaos bins the small-palette mode's
	// index raster is coded with. (The general context model picks its
	// own level count internally.)
	ChaosLevels int
	// Palette allows the encoder to try the small-palette mode first, per
	// §4.10, when the image has few enough distinct colors.
	Palette bool
}

// Level presets knobs, trading encode time and ratio the way level 0..3
// does for most lossless image codecs: 0 is fastest, 3 spends the most
// effort searching for LZ matches and transmitting a less forgiving mask.
const (
	LevelFastest = 0
	LevelDefault = 2
	LevelBest    = 3
)

// DefaultOptions returns the knob values for one of the four encode()
// presets. Levels outside [0,3] clamp to the nearest end.
func DefaultOptions(level int) EncodeOptions {
	switch {
	case level <= 0:
		return EncodeOptions{TileSize: 16, LZMinScore: 64, MaskMinRatio: 0, ChaosLevels: 4, Palette: true}
	case level == 1:
		return EncodeOptions{TileSize: 8, LZMinScore: 48, MaskMinRatio: 2, ChaosLevels: 6, Palette: true}
	case level == 2:
		return EncodeOptions{TileSize: 4, LZMinScore: 32, MaskMinRatio: 4, ChaosLevels: 8, Palette: true}
	default:
		return EncodeOptions{TileSize: 4, LZMinScore: 16, MaskMinRatio: 8, ChaosLevels: 8, Palette: true}
	}
}

// EncodeError reports why EncodeEx failed, mirroring the WE_* status codes.
type EncodeError struct {
	Code container.WriteCode
	Err  error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("gcif: encode: %s: %v", e.Code, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports why Decode failed, mirroring the RE_* status codes.
type DecodeError struct {
	Code container.ReadCode
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("gcif: decode: %s: %v", e.Code, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// Encode writes img to out using one of the four level presets (0..3).
func Encode(img *Image, out io.Writer, level int) error {
	return EncodeEx(img, out, DefaultOptions(level))
}

// EncodeEx writes img to out under full knob control.
func EncodeEx(img *Image, out io.Writer, opts EncodeOptions) error {
	if err := img.Validate(); err != nil {
		return &EncodeError{Code: container.WriteBadDims, Err: err}
	}
	if opts.TileSize < 1 {
		return &EncodeError{Code: container.WriteBadParams, Err: fmt.Errorf("tile size %d must be >= 1", opts.TileSize)}
	}

	w := bitio.NewWriter(img.Width * img.Height / 8)

	if opts.Palette {
		if enc, ok := palette.Encode(img, clampChaosLevels(opts.ChaosLevels)); ok {
			w.WriteBit(1)
			enc.Write(w)
			return writeContainer(out, img.Width, img.Height, w)
		}
	}
	w.WriteBit(0)

	w.WriteBits(uint32(opts.TileSize), 8)

	maskColor, maskColorMask := chooseMaskColor(img)
	maskEnc := mask.Encode(img, maskColor, maskColorMask, opts.MaskMinRatio)
	maskEnc.Write(w)

	var maskBP *mask.Bitplane
	if maskEnc.Enabled {
		maskBP = mask.BuildFromRGBA(img, maskColor, maskColorMask)
	}

	var zones []lz2d.Zone
	if opts.LZMinScore > 0 {
		zones = lz2d.FindMatches(img, opts.LZMinScore)
	}
	lz2d.WriteZones(w, zones)

	skip := &cm.Skip{Mask: maskBP, LZ: lz2d.NewCoveredMask(img.Width, img.Height, zones)}

	c := cm.NewCodec(img.Width, img.Height, opts.TileSize)
	cmEnc := cm.Encode(c, img, skip)
	cmEnc.Write(w)

	return writeContainer(out, img.Width, img.Height, w)
}

// chooseMaskColor picks the mask subsystem's single target color: the
// fully-transparent convention when the image has any transparency, else
// the image's dominant opaque RGB color. Only one mask layer is ever
// transmitted (see DESIGN.md).
func chooseMaskColor(img *Image) (color, colorMask uint32) {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 {
			return 0, 0xff000000
		}
	}
	return mask.DominantOpaqueColor(img), 0xffffffff
}

func clampChaosLevels(n int) int {
	if n < 1 {
		return 1
	}
	if n > chaos.MaxLevels {
		return chaos.MaxLevels
	}
	return n
}

func writeContainer(out io.Writer, width, height int, w *bitio.Writer) error {
	data := w.Finish()
	header := container.BuildHeader(width, height, data)

	buf := make([]byte, (container.HeaderWords+len(data))*4)
	for i, word := range header {
		container.PutLE32(buf[i*4:], word)
	}
	off := container.HeaderWords * 4
	for i, word := range data {
		container.PutLE32(buf[off+i*4:], word)
	}

	if _, err := out.Write(buf); err != nil {
		return &EncodeError{Code: container.WriteFile, Err: err}
	}
	return nil
}

// Decode reads a GCIF stream from in and reconstructs its image.
func Decode(in io.Reader) (*Image, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, &DecodeError{Code: container.ReadFile, Err: err}
	}
	if len(raw)%4 != 0 {
		return nil, &DecodeError{Code: container.ReadBadData, Err: fmt.Errorf("stream length %d not a multiple of 4", len(raw))}
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = container.ReadLE32(raw[i*4:])
	}

	head, data, err := container.ParseHeader(words)
	if err != nil {
		switch err {
		case container.ErrBadMagic, container.ErrTruncated:
			return nil, &DecodeError{Code: container.ReadBadHead, Err: err}
		case container.ErrBadHash:
			return nil, &DecodeError{Code: container.ReadBadHash, Err: err}
		default:
			return nil, &DecodeError{Code: container.ReadBadData, Err: err}
		}
	}
	if head.Width < 1 || head.Width > gcifimage.MaxDimension || head.Height < 1 || head.Height > gcifimage.MaxDimension {
		return nil, &DecodeError{Code: container.ReadBadDims, Err: fmt.Errorf("dimensions %dx%d out of range", head.Width, head.Height)}
	}

	r := bitio.NewReader(data)

	if r.ReadBit() == 1 {
		img := palette.Read(r, head.Width, head.Height)
		if r.EOF() {
			return nil, &DecodeError{Code: container.ReadBadPal, Err: fmt.Errorf("truncated palette stream")}
		}
		return img, nil
	}

	tileSize := int(r.ReadBits(8))
	if tileSize < 1 {
		return nil, &DecodeError{Code: container.ReadBadDims, Err: fmt.Errorf("invalid tile size %d", tileSize)}
	}

	maskBP, maskColor, maskEnabled := mask.Read(r, head.Width, head.Height)
	if r.EOF() {
		return nil, &DecodeError{Code: container.ReadMaskCodes, Err: fmt.Errorf("truncated mask stream")}
	}
	if !maskEnabled {
		maskBP = nil
	}

	zones := lz2d.ReadZones(r)
	if r.EOF() {
		return nil, &DecodeError{Code: container.ReadLZCodes, Err: fmt.Errorf("truncated 2-D LZ stream")}
	}
	for _, z := range zones {
		if int(z.DX)+int(z.W) > head.Width || int(z.DY)+int(z.H) > head.Height ||
			int(z.SX)+int(z.W) > head.Width || int(z.SY)+int(z.H) > head.Height {
			return nil, &DecodeError{Code: container.ReadLZBad, Err: fmt.Errorf("zone %+v extends outside the image", z)}
		}
		if z.SY > z.DY || (z.SY == z.DY && z.SX >= z.DX) {
			return nil, &DecodeError{Code: container.ReadLZBad, Err: fmt.Errorf("zone %+v source does not precede destination", z)}
		}
	}

	c := cm.NewCodec(head.Width, head.Height, tileSize)
	dec := cm.Read(r, c)
	if r.EOF() {
		return nil, &DecodeError{Code: container.ReadCMCodes, Err: fmt.Errorf("truncated context-model stream")}
	}

	img := gcifimage.New(head.Width, head.Height)
	dec.Decode(r, img, maskBP, maskColor, zones)
	if r.EOF() {
		return nil, &DecodeError{Code: container.ReadBadData, Err: fmt.Errorf("truncated pixel stream")}
	}

	return img, nil
}

// EncodeFile encodes img and writes it to path.
func EncodeFile(path string, img *Image, level int) error {
	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Code: container.WriteFile, Err: err}
	}
	defer f.Close()
	if err := Encode(img, f, level); err != nil {
		return err
	}
	return nil
}

// DecodeFile reads and decodes the GCIF file at path.
func DecodeFile(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Code: container.ReadFile, Err: err}
	}
	return Decode(bytes.NewReader(raw))
}
