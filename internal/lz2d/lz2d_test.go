package lz2d

import (
	"testing"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/gcifimage"
)

// tiledImage repeats an 8x8 tile across a larger canvas so the matcher has
// obvious repeated blocks to find.
func tiledImage(tilesX, tilesY int) *gcifimage.Image {
	const tile = 8
	img := gcifimage.New(tilesX*tile, tilesY*tile)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			tx, ty := x%tile, y%tile
			img.Set(x, y, byte(tx*20), byte(ty*20), 50, 255)
		}
	}
	return img
}

func TestFindMatchesFindsRepeatedTiles(t *testing.T) {
	img := tiledImage(4, 3)
	zones := FindMatches(img, 16)
	if len(zones) == 0 {
		t.Fatal("expected at least one match in a tiled image")
	}
	for _, z := range zones {
		if z.DY < z.SY || (z.DY == z.SY && z.DX <= z.SX) {
			t.Fatalf("zone destination does not follow source in raster order: %+v", z)
		}
	}
}

func TestApplyReproducesSource(t *testing.T) {
	img := tiledImage(4, 3)
	zones := FindMatches(img, 16)

	// Build a second image with the destination rectangles blanked out,
	// then apply the zones and confirm they restore the original pixels.
	blanked := gcifimage.New(img.Width, img.Height)
	copy(blanked.Pix, img.Pix)
	for _, z := range zones {
		for row := 0; row < int(z.H); row++ {
			for col := 0; col < int(z.W); col++ {
				blanked.Set(int(z.DX)+col, int(z.DY)+row, 0, 0, 0, 0)
			}
		}
	}

	Apply(blanked, zones)

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			wr, wg, wb, wa := img.At(x, y)
			gr, gg, gb, ga := blanked.At(x, y)
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d): got (%d,%d,%d,%d) want (%d,%d,%d,%d)", x, y, gr, gg, gb, ga, wr, wg, wb, wa)
			}
		}
	}
}

func TestZoneSerializationRoundTrip(t *testing.T) {
	img := tiledImage(5, 4)
	zones := FindMatches(img, 16)
	if len(zones) == 0 {
		t.Fatal("expected matches to serialize")
	}
	sortByDestination(zones)

	w := bitio.NewWriter(0)
	WriteZones(w, append([]Zone(nil), zones...))
	words := w.Finish()

	r := bitio.NewReader(words)
	got := ReadZones(r)

	if len(got) != len(zones) {
		t.Fatalf("got %d zones, want %d", len(got), len(zones))
	}
	for i := range zones {
		if got[i] != zones[i] {
			t.Fatalf("zone %d: got %+v want %+v", i, got[i], zones[i])
		}
	}
}

func TestSchedulerReplaysZonesInRasterOrder(t *testing.T) {
	img := tiledImage(4, 3)
	zones := FindMatches(img, 16)
	sortByDestination(zones)

	blanked := gcifimage.New(img.Width, img.Height)
	copy(blanked.Pix, img.Pix)
	for _, z := range zones {
		for row := 0; row < int(z.H); row++ {
			for col := 0; col < int(z.W); col++ {
				blanked.Set(int(z.DX)+col, int(z.DY)+row, 0, 0, 0, 0)
			}
		}
	}

	sched := NewScheduler(append([]Zone(nil), zones...))
	for y := 0; y < blanked.Height; y++ {
		sched.BeginRow(y)
		x := 0
		for x < blanked.Width {
			if tx, ok := sched.NextTriggerX(); ok && tx == x {
				x += sched.Copy(blanked, y)
				continue
			}
			x++
		}
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			wr, wg, wb, wa := img.At(x, y)
			gr, gg, gb, ga := blanked.At(x, y)
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d): got (%d,%d,%d,%d) want (%d,%d,%d,%d)", x, y, gr, gg, gb, ga, wr, wg, wb, wa)
			}
		}
	}
}
