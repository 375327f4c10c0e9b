// Package gcifimage defines the in-memory raster type shared by every GCIF
// encoding and decoding stage: a tightly packed RGBA buffer plus the width
// and height the rest of the codec indexes against.
package gcifimage

import "fmt"

// MaxDimension is the largest width or height a GCIF raster may have in
// either direction, per the container's 16-bit dimension fields.
const MaxDimension = 65535

// Image is an uncompressed RGBA raster: W*H pixels, 4 bytes each, row-major,
// top to bottom, left to right. It is the type every codec stage (mask, LZ,
// CM, palette) reads from or writes into; none of them touch image/color or
// image.Image directly, so the core packages stay independent of the
// standard library's image model until the top-level API converts at the
// edges.
type Image struct {
	Width  int
	Height int
	Pix    []byte // len(Pix) == Width*Height*4, row-major RGBA
}

// New allocates a zeroed Image of the given dimensions. It does not validate
// them; call Validate before using the result in the codec.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Validate checks the dimension and buffer-size invariants the rest of the
// codec assumes hold for every Image it is handed.
func (img *Image) Validate() error {
	if img.Width < 1 || img.Width > MaxDimension {
		return fmt.Errorf("gcifimage: width %d out of range [1,%d]", img.Width, MaxDimension)
	}
	if img.Height < 1 || img.Height > MaxDimension {
		return fmt.Errorf("gcifimage: height %d out of range [1,%d]", img.Height, MaxDimension)
	}
	want := img.Width * img.Height * 4
	if len(img.Pix) != want {
		return fmt.Errorf("gcifimage: pixel buffer has %d bytes, want %d for %dx%d", len(img.Pix), want, img.Width, img.Height)
	}
	return nil
}

// Offset returns the index into Pix of pixel (x, y)'s first (red) byte.
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * 4
}

// At returns the RGBA bytes of pixel (x, y).
func (img *Image) At(x, y int) (r, g, b, a byte) {
	o := img.Offset(x, y)
	p := img.Pix[o : o+4 : o+4]
	return p[0], p[1], p[2], p[3]
}

// Set writes the RGBA bytes of pixel (x, y).
func (img *Image) Set(x, y int, r, g, b, a byte) {
	o := img.Offset(x, y)
	p := img.Pix[o : o+4 : o+4]
	p[0], p[1], p[2], p[3] = r, g, b, a
}

// Opaque reports whether every pixel in the image has alpha 255. Several
// codec stages (the mask layer in particular) take a cheaper path when an
// image carries no transparency at all.
func (img *Image) Opaque() bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
