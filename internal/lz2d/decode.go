package lz2d

import "github.com/opengcif/gcif/internal/gcifimage"

// activeEntry tracks one zone currently being copied row by row: rowsDone
// counts how many of its rows have already been emitted, so the next
// source row is always SY+rowsDone.
type activeEntry struct {
	zone     Zone
	rowsDone int
}

// Scheduler replays a sorted zone list in raster order against the
// destination image being reconstructed, exactly mirroring the order an
// encoder would have produced the zones in: source rows always precede the
// destination rows that copy them.
type Scheduler struct {
	pending []Zone
	active  []*activeEntry
	next    int // index into active of the next zone to trigger on this row
}

// NewScheduler builds a scheduler over zones already sorted by (DY, DX),
// the order WriteZones/ReadZones produce.
func NewScheduler(zones []Zone) *Scheduler {
	return &Scheduler{pending: zones}
}

// BeginRow activates every pending zone whose destination row is y,
// inserting each into the active list in ascending DX order, and rewinds to
// the lowest-DX active zone.
func (s *Scheduler) BeginRow(y int) {
	for len(s.pending) > 0 && int(s.pending[0].DY) == y {
		z := s.pending[0]
		s.pending = s.pending[1:]

		entry := &activeEntry{zone: z}
		i := 0
		for i < len(s.active) && s.active[i].zone.DX < z.DX {
			i++
		}
		s.active = append(s.active, nil)
		copy(s.active[i+1:], s.active[i:])
		s.active[i] = entry
	}
	s.next = 0
}

// NextTriggerX reports the destination column of the next active copy, if
// any remain for the current row.
func (s *Scheduler) NextTriggerX() (x int, ok bool) {
	if s.next >= len(s.active) {
		return 0, false
	}
	return int(s.active[s.next].zone.DX), true
}

// Copy executes one scanline of the next active zone into row y of img,
// retiring the zone once its full height has been copied, and moves on to
// the following active zone of the row. It returns the number of
// destination columns consumed, so the caller can skip ahead past the
// copied pixels.
func (s *Scheduler) Copy(img *gcifimage.Image, y int) int {
	e := s.active[s.next]
	z := e.zone
	srcY := int(z.SY) + e.rowsDone

	for i := 0; i < int(z.W); i++ {
		r, g, b, a := img.At(int(z.SX)+i, srcY)
		img.Set(int(z.DX)+i, y, r, g, b, a)
	}

	e.rowsDone++
	if e.rowsDone >= int(z.H) {
		s.active = append(s.active[:s.next], s.active[s.next+1:]...)
	} else {
		s.next++
	}

	return int(z.W)
}

// Done reports whether every zone (pending and active) has been fully
// replayed.
func (s *Scheduler) Done() bool {
	return len(s.pending) == 0 && len(s.active) == 0
}

// Apply copies every zone into img, replaying them in raster order through
// a Scheduler exactly as the decoder does, so a zone whose source overlaps
// another zone's destination reads the already-restored pixels. zones may
// be in any order; Apply sorts a copy by destination.
func Apply(img *gcifimage.Image, zones []Zone) {
	sorted := append([]Zone(nil), zones...)
	sortByDestination(sorted)
	s := NewScheduler(sorted)
	for y := 0; y < img.Height; y++ {
		s.BeginRow(y)
		for x := 0; x < img.Width; {
			if tx, ok := s.NextTriggerX(); ok && tx == x {
				x += s.Copy(img, y)
				continue
			}
			x++
		}
	}
}

// CoveredMask marks every destination pixel any zone claims, letting the
// context model skip them entirely.
type CoveredMask struct {
	width int
	bits  []uint32
}

// NewCoveredMask builds a coverage bitmap for width x height marking every
// zone's destination rectangle.
func NewCoveredMask(width, height int, zones []Zone) *CoveredMask {
	m := &CoveredMask{width: width, bits: make([]uint32, (width*height+31)>>5)}
	for _, z := range zones {
		for row := 0; row < int(z.H); row++ {
			for col := 0; col < int(z.W); col++ {
				x, y := int(z.DX)+col, int(z.DY)+row
				off := y*width + x
				m.bits[off>>5] |= 1 << (uint(off) & 31)
			}
		}
	}
	return m
}

// Covered reports whether (x, y) is claimed by some zone's destination.
func (m *CoveredMask) Covered(x, y int) bool {
	off := y*m.width + x
	return (m.bits[off>>5]>>(uint(off)&31))&1 != 0
}
