// Package palette implements the small-palette mode: an orthogonal,
// top-level alternative to the mask/LZ/context-model pipeline for images
// that use at most MaxColors distinct RGBA colors. The color list is
// transmitted once, then every pixel is reduced to a palette index and
// coded with the monochrome sub-codec.
package palette

import (
	"sort"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/filter"
	"github.com/opengcif/gcif/internal/gcifimage"
	"github.com/opengcif/gcif/internal/mono"
)

// MaxColors is the largest palette this mode will use; above this the
// top-level encoder falls back to the full pipeline.
const MaxColors = 16

// tileSize is the monochrome sub-codec's tile size for the index raster.
// The reference design searches a range of tile sizes per image; fixing one
// value here trades a small amount of compression for a simpler encoder,
// since index rasters are already low-entropy (long same-color runs) and
// not very sensitive to tile granularity.
const tileSize = 4

type rgba struct{ r, g, b, a byte }

func luma(c rgba) int {
	return (77*int(c.r) + 150*int(c.g) + 29*int(c.b)) >> 8
}

// Detect scans img and, if it uses at most MaxColors distinct RGBA colors,
// returns them sorted by luminance (then alpha) so that visually similar
// colors land on adjacent indices, improving the index raster's spatial
// correlation.
func Detect(img *gcifimage.Image) ([]rgba, bool) {
	seen := make(map[rgba]struct{}, MaxColors+1)
	for i := 0; i < len(img.Pix); i += 4 {
		c := rgba{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
		if _, ok := seen[c]; !ok {
			if len(seen) == MaxColors {
				return nil, false
			}
			seen[c] = struct{}{}
		}
	}

	colors := make([]rgba, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		li, lj := luma(colors[i]), luma(colors[j])
		if li != lj {
			return li < lj
		}
		return colors[i].a < colors[j].a
	})
	return colors, true
}

func buildIndexPlane(img *gcifimage.Image, colors []rgba) *filter.Plane {
	lookup := make(map[rgba]byte, len(colors))
	for i, c := range colors {
		lookup[c] = byte(i)
	}
	p := filter.NewPlane(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, a := img.At(x, y)
			p.Set(x, y, lookup[rgba{r, g, b, a}])
		}
	}
	return p
}

// Encoded holds a finished small-palette coding pass.
type Encoded struct {
	width, height int
	colors        []rgba
	idx           *mono.Encoded
}

// Encode detects img's palette and codes its index raster. ok is false (and
// the rest of the return values are unusable) when img has more than
// MaxColors distinct colors.
func Encode(img *gcifimage.Image, chaosLevels int) (enc *Encoded, ok bool) {
	colors, ok := Detect(img)
	if !ok {
		return nil, false
	}

	idxPlane := buildIndexPlane(img, colors)
	c := mono.NewCodec(img.Width, img.Height, len(colors), tileSize)
	idxEnc := mono.Encode(c, idxPlane, chaosLevels)

	return &Encoded{width: img.Width, height: img.Height, colors: colors, idx: idxEnc}, true
}

// Write emits the color count, the palette itself (8 bits per channel), and
// the monochrome-coded index raster.
func (e *Encoded) Write(w *bitio.Writer) {
	w.WriteBits(uint32(len(e.colors)), 5)
	for _, c := range e.colors {
		w.WriteBits(uint32(c.r), 8)
		w.WriteBits(uint32(c.g), 8)
		w.WriteBits(uint32(c.b), 8)
		w.WriteBits(uint32(c.a), 8)
	}
	e.idx.Write(w)
}

// Read parses the stream Write produced back into a full RGBA image. The
// caller supplies width and height from the container header.
func Read(r *bitio.Reader, width, height int) *gcifimage.Image {
	count := int(r.ReadBits(5))
	colors := make([]rgba, count)
	for i := range colors {
		colors[i] = rgba{
			r: byte(r.ReadBits(8)),
			g: byte(r.ReadBits(8)),
			b: byte(r.ReadBits(8)),
			a: byte(r.ReadBits(8)),
		}
	}

	dec := mono.Read(r, mono.NewCodec(width, height, count, tileSize))
	idxPlane := dec.Decode(r)

	img := gcifimage.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colors[idxPlane.At(x, y)]
			img.Set(x, y, c.r, c.g, c.b, c.a)
		}
	}
	return img
}
