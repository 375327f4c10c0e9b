package mono

import (
	"testing"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/filter"
)

func gradientPlane(w, h, n int) *filter.Plane {
	p := filter.NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Set(x, y, byte((x+y*3)%n))
		}
	}
	return p
}

func constantPlane(w, h int, v byte) *filter.Plane {
	p := filter.NewPlane(w, h)
	for i := range p.Pix {
		p.Pix[i] = v
	}
	return p
}

func roundTrip(t *testing.T, plane *filter.Plane, n, tileSize, chaosLevels int) *filter.Plane {
	t.Helper()
	c := NewCodec(plane.Width, plane.Height, n, tileSize)
	enc := Encode(c, plane, chaosLevels)

	w := bitio.NewWriter(0)
	enc.Write(w)
	words := w.Finish()

	r := bitio.NewReader(words)
	dec := Read(r, NewCodec(plane.Width, plane.Height, n, tileSize))
	return dec.Decode(r)
}

func assertPlanesEqual(t *testing.T, got, want *filter.Plane) {
	t.Helper()
	for y := 0; y < want.Height; y++ {
		for x := 0; x < want.Width; x++ {
			if got.At(x, y) != want.At(x, y) {
				t.Fatalf("pixel (%d,%d): got %d want %d", x, y, got.At(x, y), want.At(x, y))
			}
		}
	}
}

func TestMonoRoundTripGradient(t *testing.T) {
	plane := gradientPlane(37, 23, 256)
	got := roundTrip(t, plane, 256, 8, 4)
	assertPlanesEqual(t, got, plane)
}

func TestMonoRoundTripConstant(t *testing.T) {
	plane := constantPlane(16, 16, 200)
	got := roundTrip(t, plane, 256, 8, 1)
	assertPlanesEqual(t, got, plane)
}

func TestMonoRoundTripSmallAlphabet(t *testing.T) {
	plane := gradientPlane(20, 20, 12)
	got := roundTrip(t, plane, 12, 4, 4)
	assertPlanesEqual(t, got, plane)
}

func TestMonoRoundTripMixedPaletteAndResidualTiles(t *testing.T) {
	plane := filter.NewPlane(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				plane.Set(x, y, 42)
			} else {
				plane.Set(x, y, byte((x*7+y)%256))
			}
		}
	}
	got := roundTrip(t, plane, 256, 8, 4)
	assertPlanesEqual(t, got, plane)
}
