package huffman

import (
	"math/rand"
	"testing"

	"github.com/opengcif/gcif/internal/bitio"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hist := []uint32{50, 1, 1, 10, 0, 5, 0, 0, 100, 2}
	table := BuildTable(hist)

	symbols := make([]int, 0, 200)
	for sym, count := range hist {
		for i := uint32(0); i < count; i++ {
			symbols = append(symbols, sym)
		}
	}
	r := rand.New(rand.NewSource(1))
	r.Shuffle(len(symbols), func(i, j int) { symbols[i], symbols[j] = symbols[j], symbols[i] })

	w := bitio.NewWriter(0)
	for _, s := range symbols {
		table.Encode(w, s)
	}
	words := w.Finish()

	dec := NewDecoder(table.CodeLengths, 8)
	br := bitio.NewReader(words)
	for i, want := range symbols {
		got := dec.Next(br)
		if got != want {
			t.Fatalf("symbol %d: Next() = %d, want %d", i, got, want)
		}
	}
}

func TestDegenerateOneSymbolTable(t *testing.T) {
	hist := make([]uint32, 5)
	hist[3] = 40
	table := BuildTable(hist)

	w := bitio.NewWriter(0)
	for i := 0; i < 10; i++ {
		table.Encode(w, 3)
	}
	words := w.Finish()
	if len(words) != 0 {
		t.Fatalf("one-symbol table should emit zero bits, got %d words", len(words))
	}

	dec := NewDecoder(table.CodeLengths, 8)
	br := bitio.NewReader(words)
	for i := 0; i < 10; i++ {
		if got := dec.Next(br); got != 3 {
			t.Fatalf("Next() = %d, want 3", got)
		}
	}
}

func TestCodeLengthsRoundTripShortAlphabet(t *testing.T) {
	cl := []uint8{1, 2, 3, 0, 0, 4, 5}
	w := bitio.NewWriter(0)
	WriteCodeLengths(w, cl)
	words := w.Finish()

	r := bitio.NewReader(words)
	got := ReadCodeLengths(r, len(cl))
	for i := range cl {
		if got[i] != cl[i] {
			t.Fatalf("codelength[%d] = %d, want %d", i, got[i], cl[i])
		}
	}
}

func TestCodeLengthsRoundTripLongAlphabet(t *testing.T) {
	cl := make([]uint8, 300)
	r := rand.New(rand.NewSource(2))
	for i := range cl {
		if r.Intn(3) == 0 {
			cl[i] = 0
		} else {
			cl[i] = uint8(1 + r.Intn(MaxCodeLength))
		}
	}
	// Shave a trailing run to exercise the shaving path.
	for i := len(cl) - 20; i < len(cl); i++ {
		cl[i] = 0
	}

	w := bitio.NewWriter(0)
	WriteCodeLengths(w, cl)
	words := w.Finish()

	br := bitio.NewReader(words)
	got := ReadCodeLengths(br, len(cl))
	for i := range cl {
		if got[i] != cl[i] {
			t.Fatalf("codelength[%d] = %d, want %d", i, got[i], cl[i])
		}
	}
}

func TestBuildTableLimitsMaxCodeLength(t *testing.T) {
	hist := make([]uint32, 64)
	hist[0] = 1
	for i := 1; i < 64; i++ {
		hist[i] = 1
	}
	table := BuildTable(hist)
	for _, cl := range table.CodeLengths {
		if int(cl) > MaxCodeLength {
			t.Fatalf("codelength %d exceeds MaxCodeLength %d", cl, MaxCodeLength)
		}
	}
}
