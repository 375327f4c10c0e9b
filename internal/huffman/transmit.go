package huffman

import "github.com/opengcif/gcif/internal/bitio"

// TableThresh is the alphabet size at or below which a table's codelengths
// are transmitted raw, one write17 call per symbol: below this size the
// fixed overhead of a meta-Huffman pass outweighs what it would save.
const TableThresh = 20

// predictMode names one of the four ways consecutive codelengths can be
// predicted from their neighbors before the residual stream is
// meta-Huffman-coded; the encoder tries all four and keeps the cheapest.
type predictMode int

const (
	predictRaw predictMode = iota
	predictAvgCutoff
	predictAvg
	predictFloorAvg
	predictModeCount
)

// predictCutoff bounds how far apart the two previous codelengths may be
// before predictAvgCutoff gives up averaging and just predicts the
// immediately preceding value.
const predictCutoff = 4

// predict returns this mode's prediction for the codelength at position i,
// given the two preceding (already-decoded) codelengths prev1 (i-1) and
// prev2 (i-2). Both default to 8 before the sequence starts, matching the
// usual "most codes cluster near the middle" prior.
func (m predictMode) predict(prev1, prev2 int) int {
	switch m {
	case predictAvgCutoff:
		if abs(prev1-prev2) > predictCutoff {
			return prev1
		}
		return (prev1 + prev2 + 1) / 2
	case predictAvg:
		return (prev1 + prev2 + 1) / 2
	case predictFloorAvg:
		return (prev1 + prev2) / 2
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// residual maps an actual codelength against a predicted one into the
// write17-representable range [0, MaxCodeLength], wrapping modulo
// MaxCodeLength+1 so the transform is always invertible regardless of how
// far off the prediction is.
func residual(actual, predicted int) int {
	m := MaxCodeLength + 1
	r := (actual - predicted) % m
	if r < 0 {
		r += m
	}
	return r
}

func unresidual(r, predicted int) int {
	m := MaxCodeLength + 1
	v := (predicted + r) % m
	if v < 0 {
		v += m
	}
	return v
}

// transformed applies mode's prediction to every codelength in the
// sequence, returning the residual stream that would actually be
// transmitted under that mode.
func transformed(codeLengths []uint8, mode predictMode) []int {
	out := make([]int, len(codeLengths))
	prev1, prev2 := 8, 8
	for i, cl := range codeLengths {
		actual := int(cl)
		pred := mode.predict(prev1, prev2)
		out[i] = residual(actual, pred)
		prev2 = prev1
		prev1 = actual
	}
	return out
}

// WriteCodeLengths transmits a table's codelengths: short alphabets go out
// raw via write17; longer ones are shaved of trailing unused entries, then
// the best of four prediction-residual streams is meta-Huffman-coded (the
// meta table's own codelengths are themselves raw write17, since it never
// has more than MaxCodeLength+1 symbols).
func WriteCodeLengths(w *bitio.Writer, codeLengths []uint8) {
	n := len(codeLengths)

	// Alphabet shaving: suppress an all-zero tail.
	kept := n
	for kept > 0 && codeLengths[kept-1] == 0 {
		kept--
	}
	if kept < n {
		w.WriteBit(1)
		w.Write9(kept)
	} else {
		w.WriteBit(0)
	}
	codeLengths = codeLengths[:kept]
	n = kept

	if n <= TableThresh {
		for _, cl := range codeLengths {
			w.Write17(int(cl))
		}
		return
	}

	bestMode := predictRaw
	bestCost := -1
	var bestResiduals []int
	var bestMeta *Table
	for mode := predictMode(0); mode < predictModeCount; mode++ {
		res := transformed(codeLengths, mode)
		hist := make([]uint32, MaxCodeLength+1)
		for _, r := range res {
			hist[r]++
		}
		meta := BuildTable(hist)
		cost := metaTableHeaderCost(meta) + residualStreamCost(meta, res)
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			bestMode = mode
			bestResiduals = res
			bestMeta = meta
		}
	}

	w.WriteBits(uint32(bestMode), 2)
	for _, cl := range bestMeta.CodeLengths {
		w.Write17(int(cl))
	}
	for _, r := range bestResiduals {
		bestMeta.Encode(w, r)
	}
}

func metaTableHeaderCost(meta *Table) int {
	return len(meta.CodeLengths) * 5 // write17 worst case, good enough for mode selection
}

func residualStreamCost(meta *Table, residuals []int) int {
	cost := 0
	for _, r := range residuals {
		cost += meta.BitCost(r)
	}
	return cost
}

// ReadCodeLengths is the inverse of WriteCodeLengths.
func ReadCodeLengths(r *bitio.Reader, n int) []uint8 {
	kept := n
	if r.ReadBit() == 1 {
		kept = r.Read9()
	}

	out := make([]uint8, n)
	if kept <= TableThresh {
		for i := 0; i < kept; i++ {
			out[i] = uint8(r.Read17())
		}
		return out
	}

	mode := predictMode(r.ReadBits(2))
	metaLens := make([]uint8, MaxCodeLength+1)
	for i := range metaLens {
		metaLens[i] = uint8(r.Read17())
	}
	metaDecoder := NewDecoder(metaLens, 8)

	prev1, prev2 := 8, 8
	for i := 0; i < kept; i++ {
		res := metaDecoder.Next(r)
		pred := mode.predict(prev1, prev2)
		actual := unresidual(res, pred)
		out[i] = uint8(actual)
		prev2 = prev1
		prev1 = actual
	}
	return out
}
