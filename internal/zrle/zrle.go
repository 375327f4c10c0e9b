// Package zrle implements the zero run-length entropy coder layered on top
// of the Huffman codec: runs of the zero symbol are collapsed into escape
// codes instead of being spelled out literal by literal, which matters for
// GCIF because well-predicted regions leave long zero runs in the per-pixel
// residual streams that the chaos model otherwise has to code one at a
// time. (Masked and LZ-covered pixels emit no residual symbols at all.)
package zrle

import (
	"github.com/opengcif/gcif/internal/bitio"
	"github.com/opengcif/gcif/internal/huffman"
)

// escapeCount is the number of escape symbols appended after the N literal
// symbols in the before-zero alphabet. Escapes 0..escapeCount-2 encode an
// exact run length of 1..escapeCount-1 zeros; the last escape means "at
// least escapeCount zeros", with the remainder beyond escapeCount spelled
// out as overflow bytes.
const escapeCount = 8

// overflowChunk is the byte value that means "more overflow follows"; a
// final byte strictly less than it ends the run.
const overflowChunk = 255

// runEscapeSymbol maps a run length to the escape symbol that covers it.
func runEscapeSymbol(n, run int) int {
	if run < escapeCount {
		return n + run - 1
	}
	return n + escapeCount - 1
}

// event is one recorded step of the symbol stream: either a zero run or a
// literal symbol, tagged with whether it immediately follows a zero run
// (selecting the after-zero table).
type event struct {
	isRun bool
	run   int
	sym   int
	after bool
}

// Encoder accumulates symbols and flushes zero runs as escape codes. N is
// the literal alphabet size; symbols in [0, N) are literals.
type Encoder struct {
	n int

	beforeHist []uint32 // N + escapeCount
	afterHist  []uint32 // N

	events    []event
	run       int
	afterZero bool
}

// NewEncoder creates an Encoder for an alphabet of n literal symbols.
func NewEncoder(n int) *Encoder {
	return &Encoder{
		n:          n,
		beforeHist: make([]uint32, n+escapeCount),
		afterHist:  make([]uint32, n),
	}
}

// Push records one symbol. Zero accumulates into a pending run; any other
// value flushes the pending run (if any) and is itself recorded.
func (e *Encoder) Push(symbol int) {
	if symbol == 0 {
		e.run++
		return
	}
	e.flushRun()
	hist := e.beforeHist
	if e.afterZero {
		hist = e.afterHist
	}
	hist[symbol]++
	e.events = append(e.events, event{sym: symbol, after: e.afterZero})
	e.afterZero = false
}

func (e *Encoder) flushRun() {
	if e.run == 0 {
		return
	}
	e.events = append(e.events, event{isRun: true, run: e.run})
	e.beforeHist[runEscapeSymbol(e.n, e.run)]++
	e.run = 0
	e.afterZero = true
}

// Finish flushes any trailing zero run and returns the built tables plus
// the event stream ready for WriteSymbols.
func (e *Encoder) Finish() *CodedStream {
	e.flushRun()

	before := huffman.BuildTable(e.beforeHist)

	hasAfter := false
	for _, c := range e.afterHist {
		if c > 0 {
			hasAfter = true
			break
		}
	}
	var after *huffman.Table
	if hasAfter {
		after = huffman.BuildTable(e.afterHist)
	}

	return &CodedStream{
		n:      e.n,
		before: before,
		after:  after,
		events: e.events,
	}
}

// CodedStream holds the built Huffman tables and the symbol/run events
// ready to be written to a bit stream.
type CodedStream struct {
	n      int
	before *huffman.Table
	after  *huffman.Table
	events []event
}

// WriteTables emits the header bit selecting whether an after-zero table is
// present, followed by both tables' codelengths.
func (s *CodedStream) WriteTables(w *bitio.Writer) {
	if s.after != nil {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
	huffman.WriteCodeLengths(w, s.before.CodeLengths)
	if s.after != nil {
		huffman.WriteCodeLengths(w, s.after.CodeLengths)
	}
}

// WriteSymbols emits the recorded event stream.
func (s *CodedStream) WriteSymbols(w *bitio.Writer) {
	afterZero := false
	for _, ev := range s.events {
		if ev.isRun {
			esc := runEscapeSymbol(s.n, ev.run)
			s.before.Encode(w, esc)

			if esc == s.n+escapeCount-1 {
				remaining := ev.run - escapeCount
				for {
					if remaining >= overflowChunk {
						w.WriteBits(overflowChunk, 8)
						remaining -= overflowChunk
						continue
					}
					w.WriteBits(uint32(remaining), 8)
					break
				}
			}
			afterZero = true
			continue
		}

		table := s.before
		if afterZero && s.after != nil {
			table = s.after
		}
		table.Encode(w, ev.sym)
		afterZero = false
	}
}

// Decoder is the decode-side counterpart of Encoder: given the alphabet
// size and the tables read from the stream, it replays the literal and
// zero-run events one symbol at a time via Next.
type Decoder struct {
	n      int
	before *huffman.Decoder
	after  *huffman.Decoder

	pendingZeros int
	afterZero    bool
}

// ReadTables reads the header bit and both tables' codelengths, mirroring
// WriteTables.
func ReadTables(r *bitio.Reader, n, tableBits int) *Decoder {
	hasAfter := r.ReadBit() == 1
	beforeLens := huffman.ReadCodeLengths(r, n+escapeCount)
	d := &Decoder{
		n:      n,
		before: huffman.NewDecoder(beforeLens, tableBits),
	}
	if hasAfter {
		afterLens := huffman.ReadCodeLengths(r, n)
		d.after = huffman.NewDecoder(afterLens, tableBits)
	}
	return d
}

// Next returns the next decoded literal symbol, transparently absorbing any
// zero-run escapes encountered along the way.
func (d *Decoder) Next(r *bitio.Reader) int {
	if d.pendingZeros > 0 {
		d.pendingZeros--
		return 0
	}

	table := d.before
	if d.afterZero && d.after != nil {
		table = d.after
	}
	sym := table.Next(r)

	if sym < d.n {
		d.afterZero = false
		return sym
	}

	escIdx := sym - d.n
	run := escIdx + 1
	if escIdx == escapeCount-1 {
		run = escapeCount
		for {
			chunk := int(r.ReadBits(8))
			run += chunk
			if chunk < overflowChunk {
				break
			}
		}
	}
	d.afterZero = true
	d.pendingZeros = run - 1
	return 0
}
