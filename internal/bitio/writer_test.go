package bitio

import "testing"

func TestWriteReadBitsRoundTrip(t *testing.T) {
	w := NewWriter(0)
	vals := []struct {
		v uint32
		n int
	}{
		{0, 1}, {1, 1}, {0x1f, 5}, {0x3ff, 10}, {0xdeadbeef, 32},
		{0, 7}, {127, 7}, {1, 32},
	}
	for _, tc := range vals {
		w.WriteBits(tc.v, tc.n)
	}
	words := w.Finish()

	r := NewReader(words)
	for _, tc := range vals {
		got := r.ReadBits(tc.n)
		want := tc.v
		if tc.n < 32 {
			want &= (1 << uint(tc.n)) - 1
		}
		if got != want {
			t.Fatalf("ReadBits(%d) = %#x, want %#x", tc.n, got, want)
		}
	}
	if r.EOF() {
		t.Fatalf("unexpected EOF after reading exactly what was written")
	}
}

func TestWrite9RoundTrip(t *testing.T) {
	w := NewWriter(0)
	vals := []int{0, 1, 17, 255, 256, 1000, 65535}
	for _, v := range vals {
		w.Write9(v)
	}
	words := w.Finish()
	r := NewReader(words)
	for _, v := range vals {
		if got := r.Read9(); got != v {
			t.Fatalf("Read9() = %d, want %d", got, v)
		}
	}
}

func TestWrite17RoundTrip(t *testing.T) {
	w := NewWriter(0)
	for v := 0; v <= 16; v++ {
		w.Write17(v)
	}
	words := w.Finish()
	r := NewReader(words)
	for v := 0; v <= 16; v++ {
		if got := r.Read17(); got != v {
			t.Fatalf("Read17() = %d, want %d", got, v)
		}
	}
}

func TestWrite335RoundTrip(t *testing.T) {
	w := NewWriter(0)
	vals := []int{0, 1, 7, 8, 15, 16, 47, 48, 127, 126, 175, 176, 177, 302, 303, 1000, 1_000_000}
	for _, v := range vals {
		w.Write335(v)
	}
	words := w.Finish()
	r := NewReader(words)
	for _, v := range vals {
		if got := r.Read335(); got != v {
			t.Fatalf("Read335() = %d, want %d", got, v)
		}
	}
}

func TestReaderEOFIsSticky(t *testing.T) {
	w := NewWriter(0)
	w.WriteBits(0xff, 8)
	words := w.Finish()

	r := NewReader(words)
	r.ReadBits(8)
	r.ReadBits(32) // past the end: zero-filled, EOF set
	if !r.EOF() {
		t.Fatalf("expected EOF after reading past the supplied words")
	}
	r.ReadBits(1)
	if !r.EOF() {
		t.Fatalf("EOF flag should stay set once tripped")
	}
}

func TestWordCountAndFinishPadding(t *testing.T) {
	w := NewWriter(0)
	w.WriteBits(1, 1)
	if w.WordCount() != 0 {
		t.Fatalf("WordCount() = %d before Finish, want 0", w.WordCount())
	}
	words := w.Finish()
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
	if words[0] != 1<<31 {
		t.Fatalf("words[0] = %#x, want bit padded to MSB position %#x", words[0], uint32(1)<<31)
	}
}
