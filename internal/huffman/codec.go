package huffman

import "github.com/opengcif/gcif/internal/bitio"

// Encode writes one symbol using t's canonical code. Degenerate one-symbol
// tables emit nothing: the decoder already knows the only possible value.
func (t *Table) Encode(w *bitio.Writer, symbol int) {
	if t.oneSymbol {
		return
	}
	cl := t.CodeLengths[symbol]
	if cl == 0 {
		// Symbol never appeared in the histogram the table was built from;
		// callers must not ask to encode it.
		return
	}
	w.WriteBits(uint32(t.Codes[symbol]), int(cl))
}

// BitCost returns the number of bits Encode would spend on symbol.
func (t *Table) BitCost(symbol int) int {
	if t.oneSymbol {
		return 0
	}
	return int(t.CodeLengths[symbol])
}

// Decoder decodes symbols written by a Table's Encode method. It implements
// the canonical min/max-code table walk: a direct lookup table answers
// codes of length <= TableBits in one step, longer codes fall back to a
// linear scan over per-length maximum codes followed by an offset into the
// sorted symbol order.
type Decoder struct {
	numSyms int

	oneSymbol   bool
	oneSymValue int

	minCodeSize int
	maxCodeSize int

	maxCodes [MaxCodeLength + 2]uint32
	valPtrs  [MaxCodeLength + 2]int

	sortedSymbolOrder []uint16

	tableBits           int
	lookup              []uint32 // entry = symbol | (codeLength << 16)
	tableMaxCode        uint32
	decodeStartCodeSize int
}

// NewDecoder builds decode tables for the canonical code described by
// codeLengths (indexed by symbol, 0 meaning unused), mirroring the
// generate_decoder_tables construction: a histogram of codelengths yields
// per-length code ranges, which are then either looked up directly (short
// codes, within tableBits) or walked linearly (long codes).
func NewDecoder(codeLengths []uint8, tableBits int) *Decoder {
	d := &Decoder{numSyms: len(codeLengths)}

	var nonZero []int
	for i, cl := range codeLengths {
		if cl > 0 {
			nonZero = append(nonZero, i)
		}
	}
	if len(nonZero) == 0 {
		return d
	}
	if len(nonZero) == 1 {
		d.oneSymbol = true
		d.oneSymValue = nonZero[0]
		return d
	}

	var numCodes [MaxCodeLength + 1]int
	for _, cl := range codeLengths {
		numCodes[cl]++
	}

	var minCodes [MaxCodeLength + 1]uint32
	var sortedPositions [MaxCodeLength + 1]int

	nextCode := uint32(0)
	totalUsed := 0
	minCodeSize := MaxCodeLength + 1
	maxCodeSize := 0

	for l := 1; l <= MaxCodeLength; l++ {
		n := numCodes[l]
		if n == 0 {
			d.maxCodes[l-1] = 0
			nextCode <<= 1
			continue
		}
		if l < minCodeSize {
			minCodeSize = l
		}
		if l > maxCodeSize {
			maxCodeSize = l
		}

		minCodes[l-1] = nextCode

		maxCode := nextCode + uint32(n) - 1
		d.maxCodes[l-1] = 1 + ((maxCode << uint(16-l)) | ((1 << uint(16-l)) - 1))

		d.valPtrs[l-1] = totalUsed
		sortedPositions[l] = totalUsed

		nextCode += uint32(n)
		totalUsed += n

		nextCode <<= 1
	}

	d.minCodeSize = minCodeSize
	d.maxCodeSize = maxCodeSize

	d.sortedSymbolOrder = make([]uint16, totalUsed)
	for sym, cl := range codeLengths {
		if cl == 0 {
			continue
		}
		pos := sortedPositions[cl]
		sortedPositions[cl]++
		d.sortedSymbolOrder[pos] = uint16(sym)
	}

	if tableBits > MaxTableBits {
		tableBits = MaxTableBits
	}
	if tableBits <= minCodeSize {
		tableBits = 0
	}
	d.tableBits = tableBits

	if tableBits > 0 {
		tableSize := 1 << tableBits
		d.lookup = make([]uint32, tableSize)
		for i := range d.lookup {
			d.lookup[i] = 0xffffffff
		}

		for cl := 1; cl <= tableBits; cl++ {
			if numCodes[cl] == 0 {
				continue
			}
			fillSize := tableBits - cl
			fillNum := 1 << fillSize

			minCode := minCodes[cl-1]
			maxCode := d.maxCodes[cl-1]
			if maxCode == 0 {
				maxCode = 0xffffffff
			} else {
				maxCode = (maxCode - 1) >> uint(16-cl)
			}
			valPtr := d.valPtrs[cl-1]

			for code := minCode; code <= maxCode; code++ {
				symIndex := d.sortedSymbolOrder[valPtr+int(code-minCode)]
				for j := 0; j < fillNum; j++ {
					tt := uint32(j) + (code << uint(fillSize))
					d.lookup[tt] = uint32(symIndex) | uint32(cl)<<16
				}
			}
		}
	}

	for i := range minCodes {
		d.valPtrs[i] -= int(minCodes[i])
	}

	d.tableMaxCode = 0
	d.decodeStartCodeSize = d.minCodeSize

	if tableBits > 0 {
		ii := tableBits
		found := false
		for ; ii >= 1; ii-- {
			if numCodes[ii] != 0 {
				d.tableMaxCode = d.maxCodes[ii-1]
				found = true
				break
			}
		}
		if found {
			d.decodeStartCodeSize = tableBits + 1
			for ii = tableBits + 1; ii <= maxCodeSize; ii++ {
				if numCodes[ii] != 0 {
					d.decodeStartCodeSize = ii
					break
				}
			}
		}
	}

	d.maxCodes[MaxCodeLength+1] = 0xffffffff
	d.valPtrs[MaxCodeLength+1] = 0xfffff

	return d
}

// Next decodes the next symbol from r.
func (d *Decoder) Next(r *bitio.Reader) int {
	if d.oneSymbol {
		return d.oneSymValue
	}

	peek := r.Peek(16)
	k := peek + 1

	var sym, length uint32
	if d.tableBits > 0 && k <= d.tableMaxCode {
		entry := d.lookup[peek>>uint(16-d.tableBits)]
		sym = entry & 0xffff
		length = entry >> 16
	} else {
		length = uint32(d.decodeStartCodeSize)
		for k > d.maxCodes[length-1] {
			length++
		}
		valPtr := d.valPtrs[length-1] + int(peek>>uint(16-length))
		if valPtr < 0 || valPtr >= len(d.sortedSymbolOrder) {
			valPtr = 0
		}
		sym = uint32(d.sortedSymbolOrder[valPtr])
	}

	r.Eat(int(length))
	return int(sym)
}
