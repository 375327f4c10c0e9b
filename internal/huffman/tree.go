// Package huffman implements the canonical Huffman codec shared by every
// GCIF entropy-coded stream: mask RLE bytes, 2-D LZ zone records, tile maps,
// and per-channel chaos-binned residuals all funnel through the same
// table-build, encode, and decode machinery.
package huffman

import "container/heap"

// MaxCodeLength is the longest canonical code this package ever produces;
// it doubles as the codelength alphabet size (0..MaxCodeLength) used when
// transmitting a table's own codelengths.
const MaxCodeLength = 16

// MaxTableBits bounds the size of a decoder's direct lookup table.
const MaxTableBits = 11

// Table is a canonical Huffman code over a fixed-size alphabet: CodeLengths
// holds one entry per symbol (0 meaning "unused"), Codes holds the
// corresponding canonical codeword. GCIF packs codes MSB-first, so Codes are stored in natural (non-reversed)
// bit order and written via the high bits of each codeword.
type Table struct {
	NumSymbols  int
	CodeLengths []uint8
	Codes       []uint16

	// oneSymbol is set when exactly one symbol has nonzero frequency; no
	// bits are emitted for such a symbol and Encode is a no-op.
	oneSymbol    bool
	oneSymValue  int
}

// treeNode is an internal or leaf node used while building a Huffman tree
// from symbol frequencies via a min-heap, mirroring the textbook
// Huffman/Moffat-Katajainen construction: repeatedly merge the two
// least-frequent nodes until one root remains.
type treeNode struct {
	count uint32
	value int // symbol index for leaves, -1 for internal nodes
	left  int // pool index, -1 if none
	right int
}

type nodeHeap struct {
	pool    []treeNode
	indices []int
}

func (h *nodeHeap) Len() int { return len(h.indices) }
func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.count != b.count {
		return a.count < b.count
	}
	return h.indices[i] < h.indices[j]
}
func (h *nodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *nodeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	v := old[n-1]
	h.indices = old[:n-1]
	return v
}

// BuildTable computes optimal canonical codelengths from a symbol frequency
// histogram, limiting the maximum codelength to MaxCodeLength by the
// standard "double count_min and rebuild" technique: any leaf forced below
// its fair share of the frequency mass sinks deeper in the tree, so
// artificially raising the floor on rare symbols flattens the tree until
// every depth fits.
func BuildTable(histogram []uint32) *Table {
	n := len(histogram)
	t := &Table{
		NumSymbols:  n,
		CodeLengths: make([]uint8, n),
		Codes:       make([]uint16, n),
	}

	var nonZero []int
	for i, c := range histogram {
		if c > 0 {
			nonZero = append(nonZero, i)
		}
	}

	switch len(nonZero) {
	case 0:
		return t
	case 1:
		t.oneSymbol = true
		t.oneSymValue = nonZero[0]
		t.CodeLengths[nonZero[0]] = 1
		return t
	case 2:
		t.CodeLengths[nonZero[0]] = 1
		t.CodeLengths[nonZero[1]] = 1
		generateCanonicalCodes(t)
		return t
	}

	buildTreeAndExtractLengths(histogram, n, MaxCodeLength, t.CodeLengths)
	generateCanonicalCodes(t)
	return t
}

func buildTreeAndExtractLengths(histogram []uint32, numSymbols, limit int, codeLengths []uint8) {
	for countMin := uint32(1); ; countMin *= 2 {
		for i := range codeLengths {
			codeLengths[i] = 0
		}

		h := &nodeHeap{}
		for sym := 0; sym < numSymbols; sym++ {
			if histogram[sym] == 0 {
				continue
			}
			count := histogram[sym]
			if count < countMin {
				count = countMin
			}
			idx := len(h.pool)
			h.pool = append(h.pool, treeNode{count: count, value: sym, left: -1, right: -1})
			h.indices = append(h.indices, idx)
		}

		if len(h.indices) == 1 {
			codeLengths[h.pool[h.indices[0]].value] = 1
			return
		}

		heap.Init(h)
		for h.Len() > 1 {
			l := heap.Pop(h).(int)
			r := heap.Pop(h).(int)
			parent := len(h.pool)
			h.pool = append(h.pool, treeNode{
				count: h.pool[l].count + h.pool[r].count,
				value: -1,
				left:  l,
				right: r,
			})
			heap.Push(h, parent)
		}

		root := h.indices[0]
		assignDepths(h.pool, root, 0, codeLengths)

		maxDepth := 0
		for _, cl := range codeLengths {
			if int(cl) > maxDepth {
				maxDepth = int(cl)
			}
		}
		if maxDepth <= limit {
			return
		}
	}
}

func assignDepths(pool []treeNode, idx, depth int, codeLengths []uint8) {
	node := &pool[idx]
	if node.value >= 0 {
		codeLengths[node.value] = uint8(depth)
		return
	}
	if node.left >= 0 {
		assignDepths(pool, node.left, depth+1, codeLengths)
	}
	if node.right >= 0 {
		assignDepths(pool, node.right, depth+1, codeLengths)
	}
}

// symLen pairs a symbol with its codelength for canonical code assignment.
type symLen struct {
	symbol int
	length uint8
}

func (a symLen) less(b symLen) bool {
	if a.length != b.length {
		return a.length < b.length
	}
	return a.symbol < b.symbol
}

// generateCanonicalCodes assigns sequential codes in (codelength, symbol)
// order, left-shifting the running code whenever the length increases. The
// resulting Codes are in natural MSB-first bit order (no reversal), matching
// the word-oriented Writer's convention.
func generateCanonicalCodes(t *Table) {
	var symbols []symLen
	for i, cl := range t.CodeLengths {
		if cl > 0 {
			symbols = append(symbols, symLen{i, cl})
		}
	}
	// Insertion sort by (length, symbol): alphabets are small enough
	// (at most a few hundred symbols) that this is plenty fast and keeps
	// the dependency list to the stdlib-free minimum.
	for i := 1; i < len(symbols); i++ {
		j := i
		for j > 0 && symbols[j].less(symbols[j-1]) {
			symbols[j], symbols[j-1] = symbols[j-1], symbols[j]
			j--
		}
	}

	code := uint32(0)
	prevLen := uint8(0)
	for _, s := range symbols {
		if s.length > prevLen {
			code <<= s.length - prevLen
			prevLen = s.length
		}
		t.Codes[s.symbol] = uint16(code)
		code++
	}
}
