package gcif

import (
	"bytes"
	"testing"
)

func spriteImage(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%3 == 0 {
				img.Set(x, y, 0, 0, 0, 0)
				continue
			}
			img.Set(x, y, byte(x*3+y), byte(200-x), byte(y*2), 255)
		}
	}
	// Stamp a repeated tile so the 2-D LZ layer has something to find.
	for ty := 0; ty < h-8; ty += 16 {
		for tx := 0; tx < w-8; tx += 16 {
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					img.Set(tx+x, ty+y, 10, 20, 30, 255)
				}
			}
		}
	}
	return img
}

func twoColorImage(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, 255, 0, 0, 255)
			} else {
				img.Set(x, y, 0, 0, 255, 255)
			}
		}
	}
	return img
}

func assertRoundTrips(t *testing.T, src *Image, level int) {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(src, &buf, level); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != src.Width || got.Height != src.Height {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width, got.Height, src.Width, src.Height)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			wr, wg, wb, wa := src.At(x, y)
			gr, gg, gb, ga := got.At(x, y)
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d): got (%d,%d,%d,%d) want (%d,%d,%d,%d)", x, y, gr, gg, gb, ga, wr, wg, wb, wa)
			}
		}
	}
}

func TestEncodeDecodeRoundTripAllLevels(t *testing.T) {
	src := spriteImage(48, 32)
	for level := 0; level <= 3; level++ {
		assertRoundTrips(t, src, level)
	}
}

func TestEncodeDecodeRoundTripSmallPalette(t *testing.T) {
	assertRoundTrips(t, twoColorImage(20, 20), LevelDefault)
}

func TestEncodeDecodeRoundTripNoTransparencyNoRepeats(t *testing.T) {
	img := NewImage(17, 13)
	for y := 0; y < 13; y++ {
		for x := 0; x < 17; x++ {
			img.Set(x, y, byte(x*5+y*7), byte(x*x), byte(y*y), 255)
		}
	}
	assertRoundTrips(t, img, LevelBest)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(spriteImage(8, 8), &buf, LevelDefault); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	data[0] ^= 0xff

	_, err := Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatalf("Decode: want error for corrupted magic, got nil")
	}
	var decErr *DecodeError
	if !asDecodeError(err, &decErr) {
		t.Fatalf("Decode: error %v is not a *DecodeError", err)
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(spriteImage(24, 24), &buf, LevelDefault); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Fatalf("Decode: want error for corrupted payload, got nil")
	}
}

func TestEncodeRejectsBadDimensions(t *testing.T) {
	img := &Image{Width: 0, Height: 4, Pix: make([]byte, 0)}
	var buf bytes.Buffer
	err := Encode(img, &buf, LevelDefault)
	if err == nil {
		t.Fatalf("Encode: want error for zero width, got nil")
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	if de, ok := err.(*DecodeError); ok {
		*target = de
		return true
	}
	return false
}
