package container

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	data := []uint32{1, 2, 3, 4, 5}
	header := BuildHeader(640, 480, data)

	words := append(append([]uint32(nil), header[:]...), data...)
	got, rest, err := ParseHeader(words)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("got %dx%d, want 640x480", got.Width, got.Height)
	}
	if len(rest) != len(data) {
		t.Fatalf("got %d data words, want %d", len(rest), len(data))
	}
	for i := range data {
		if rest[i] != data[i] {
			t.Fatalf("data word %d: got %d want %d", i, rest[i], data[i])
		}
	}
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	data := []uint32{1, 2, 3}
	header := BuildHeader(10, 10, data)
	words := append(append([]uint32(nil), header[:]...), data...)
	words[0] = 0

	if _, _, err := ParseHeader(words); err != ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestHeaderRejectsCorruptPayload(t *testing.T) {
	data := []uint32{1, 2, 3}
	header := BuildHeader(10, 10, data)
	words := append(append([]uint32(nil), header[:]...), data...)
	words[len(words)-1] ^= 0xffffffff

	if _, _, err := ParseHeader(words); err != ErrBadHash {
		t.Fatalf("got %v, want ErrBadHash", err)
	}
}

func TestHeaderRejectsTruncated(t *testing.T) {
	if _, _, err := ParseHeader([]uint32{1, 2, 3}); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}
