package mask

import (
	"testing"

	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/gcifimage"
)

func checkerboardImage(w, h int) *gcifimage.Image {
	img := gcifimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%3 == 0 {
				img.Set(x, y, 0, 0, 0, 0) // fully transparent
			} else {
				img.Set(x, y, byte(x), byte(y), 10, 255)
			}
		}
	}
	return img
}

func TestBitplaneFilterRoundTrip(t *testing.T) {
	img := checkerboardImage(40, 17)
	bp := BuildFromRGBA(img, 0, 0xff000000)

	filtered := ApplyFilter(bp)
	restored := InverseFilter(img.Width, img.Height, filtered)

	for i := range bp.Words {
		if bp.Words[i] != restored.Words[i] {
			t.Fatalf("word %d: got %x want %x", i, restored.Words[i], bp.Words[i])
		}
	}
}

func TestRLERoundTrip(t *testing.T) {
	img := checkerboardImage(65, 9)
	bp := BuildFromRGBA(img, 0, 0xff000000)
	filtered := ApplyFilter(bp)

	rle := encodeRLE(filtered, bp.Stride, bp.Height)
	words := decodeRLE(rle, bp.Stride, bp.Height)

	for i := range filtered {
		if filtered[i] != words[i] {
			t.Fatalf("word %d: got %x want %x", i, words[i], filtered[i])
		}
	}
}

func TestEncodeReadRoundTrip(t *testing.T) {
	img := checkerboardImage(48, 33)

	enc := Encode(img, 0, 0xff000000, 0)
	if !enc.Enabled {
		t.Fatal("expected mask to be enabled")
	}

	w := bitio.NewWriter(0)
	enc.Write(w)
	words := w.Finish()

	r := bitio.NewReader(words)
	bp, color, ok := Read(r, img.Width, img.Height)
	if !ok {
		t.Fatal("expected mask to decode as enabled")
	}
	if color != 0 {
		t.Fatalf("color = %#x, want 0", color)
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			_, _, _, a := img.At(x, y)
			want := a == 0
			if bp.Get(x, y) != want {
				t.Fatalf("pixel (%d,%d): got %v want %v", x, y, bp.Get(x, y), want)
			}
		}
	}
}

func TestEncodeNoMatchesDisabled(t *testing.T) {
	img := gcifimage.New(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, 1, 2, 3, 255)
		}
	}
	enc := Encode(img, 0, 0xff000000, 0)
	if enc.Enabled {
		t.Fatal("expected mask with zero coverage to be disabled")
	}

	w := bitio.NewWriter(0)
	enc.Write(w)
	words := w.Finish()

	r := bitio.NewReader(words)
	_, _, ok := Read(r, img.Width, img.Height)
	if ok {
		t.Fatal("expected disabled mask to decode as not-ok")
	}
}
